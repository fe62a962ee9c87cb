package types

import (
	"time"

	"github.com/google/uuid"
)

// QuizQuestion stores CorrectOption as the full text of one of the four
// options, never a bare letter.
type QuizQuestion struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialID    uuid.UUID `gorm:"type:uuid;not null;index" json:"material_id"`
	Question      string    `gorm:"column:question;not null" json:"question"`
	OptionA       string    `gorm:"column:option_a;not null" json:"option_a"`
	OptionB       string    `gorm:"column:option_b;not null" json:"option_b"`
	OptionC       string    `gorm:"column:option_c;not null" json:"option_c"`
	OptionD       string    `gorm:"column:option_d;not null" json:"option_d"`
	CorrectOption string    `gorm:"column:correct_option;not null" json:"correct_option"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

func (QuizQuestion) TableName() string {
	return "quiz_question"
}
