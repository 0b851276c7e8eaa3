package model

import "encoding/json"

// ActivityLog is the audit trail fed by the result submitter and browsed by
// HR. Details holds action-specific fields (e.g. the final score).
// swagger:model ActivityLog
type ActivityLog struct {
	BaseModel
	UserID     uint            `gorm:"index;type:bigint unsigned" json:"userId"`
	Action     string          `gorm:"size:100;not null" json:"action"`
	EntityType string          `gorm:"size:50" json:"entityType"`
	EntityID   uint            `gorm:"index;type:bigint unsigned" json:"entityId"`
	Details    json.RawMessage `gorm:"type:json" json:"details,omitempty"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
