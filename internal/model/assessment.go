package model

import (
	"encoding/json"
	"time"
)

// Assessment is the content definition a candidate attempt runs against.
// Sections keep their stored order; only questions inside a section are
// shuffled, and only when RandomizeQuestions is set.
// swagger:model Assessment
type Assessment struct {
	BaseModel
	Title               string     `gorm:"size:255;not null" json:"title"`
	Description         string     `gorm:"type:text" json:"description"`
	TimeLimitSeconds    int        `gorm:"default:60" json:"timeLimitSeconds"` // default per-question limit
	RandomizeQuestions  bool       `gorm:"default:false" json:"randomizeQuestions"`
	PreventBacktracking bool       `gorm:"default:true" json:"preventBacktracking"`
	IsPublished         bool       `gorm:"default:false" json:"isPublished"`
	PublishedAt         *time.Time `json:"publishedAt,omitempty"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// swagger:model AssessmentSection
type AssessmentSection struct {
	BaseModel
	AssessmentID uint   `gorm:"index;type:bigint unsigned" json:"assessmentId"`
	Title        string `gorm:"size:255;not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	Order        int    `gorm:"default:0" json:"order"`
}

func (AssessmentSection) TableName() string {
	return "assessment_sections"
}

// AssessmentQuestion stores its options as a JSON array of strings.
// TimeLimitSeconds of 0 means "use the assessment default".
// swagger:model AssessmentQuestion
type AssessmentQuestion struct {
	BaseModel
	SectionID          uint            `gorm:"index;type:bigint unsigned" json:"sectionId"`
	Text               string          `gorm:"type:text;not null" json:"text"`
	Options            json.RawMessage `gorm:"type:json" json:"options"`
	CorrectAnswerIndex int             `gorm:"not null" json:"correctAnswerIndex"`
	TimeLimitSeconds   int             `gorm:"default:0" json:"timeLimitSeconds"`
	Order              int             `gorm:"default:0" json:"order"`
}

func (AssessmentQuestion) TableName() string {
	return "assessment_questions"
}
