package types

import (
	"time"

	"github.com/google/uuid"
)

type Flashcard struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialID uuid.UUID `gorm:"type:uuid;not null;index" json:"material_id"`
	Question   string    `gorm:"column:question;not null" json:"question"`
	Answer     string    `gorm:"column:answer;not null" json:"answer"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (Flashcard) TableName() string {
	return "flashcard"
}
