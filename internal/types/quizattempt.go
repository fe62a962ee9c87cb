package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// QuizAttempt records one scored run through a material's quiz. Answers
// holds the per-question verdicts as a JSON array; Percentage is an
// integer 0-100.
type QuizAttempt struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"material_id"`
	Score          int            `gorm:"column:score;not null" json:"score"`
	TotalQuestions int            `gorm:"column:total_questions;not null" json:"total_questions"`
	Percentage     int            `gorm:"column:percentage;not null" json:"percentage"`
	Answers        datatypes.JSON `gorm:"type:jsonb;column:answers" json:"answers"`
	CompletedAt    time.Time      `gorm:"column:completed_at;not null;index" json:"completed_at"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempt"
}
