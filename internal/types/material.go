package types

import (
	"time"

	"github.com/google/uuid"
)

type ProcessingStatus string

const (
	ProcessingStatusQueued     ProcessingStatus = "queued"
	ProcessingStatusProcessing ProcessingStatus = "processing"
	ProcessingStatusCompleted  ProcessingStatus = "completed"
	ProcessingStatusFailed     ProcessingStatus = "failed"
)

type Material struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Title              string           `gorm:"column:title" json:"title"`
	FullText           string           `gorm:"column:full_text" json:"full_text,omitempty"`
	ProcessingStatus   ProcessingStatus `gorm:"column:processing_status;not null;default:queued;index" json:"processing_status"`
	ProcessingProgress int              `gorm:"column:processing_progress;not null;default:0" json:"processing_progress"`
	ProcessingError    *string          `gorm:"column:processing_error" json:"processing_error,omitempty"`
	CreatedAt          time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"not null" json:"updated_at"`
}

func (Material) TableName() string {
	return "material"
}
