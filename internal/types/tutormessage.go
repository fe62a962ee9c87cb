package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	TutorRoleUser      = "user"
	TutorRoleAssistant = "assistant"
)

// TutorMessage is append-only conversation history. Context carries the
// caller-provided tag ("chat", "selection", ...).
type TutorMessage struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialID uuid.UUID `gorm:"type:uuid;not null;index" json:"material_id"`
	Role       string    `gorm:"column:role;not null" json:"role"`
	Content    string    `gorm:"column:content;not null" json:"content"`
	Context    string    `gorm:"column:context;not null;default:chat" json:"context"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}

func (TutorMessage) TableName() string {
	return "tutor_message"
}
