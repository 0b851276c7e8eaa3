package model

import (
	"encoding/json"
	"time"
)

// AssessmentResult is written exactly once per completed attempt. Answers and
// AnswerTimings are JSON maps keyed by question id: selected option index and
// seconds spent respectively. A timed-out question appears in AnswerTimings
// but not in Answers.
// swagger:model AssessmentResult
type AssessmentResult struct {
	BaseModel
	CandidateID   uint            `gorm:"index;type:bigint unsigned" json:"candidateId"`
	Candidate     *User           `gorm:"foreignKey:CandidateID" json:"candidate,omitempty"`
	AssessmentID  uint            `gorm:"index;type:bigint unsigned" json:"assessmentId"`
	Score         float64         `gorm:"not null" json:"score"` // percentage, 0-100
	Answers       json.RawMessage `gorm:"type:json" json:"answers"`
	AnswerTimings json.RawMessage `gorm:"type:json" json:"answerTimings"`
	Completed     bool            `gorm:"default:false" json:"completed"`
	StartedAt     time.Time       `json:"startedAt"`
	CompletedAt   time.Time       `json:"completedAt"`
}

func (AssessmentResult) TableName() string {
	return "assessment_results"
}
