package types

import (
	"time"

	"github.com/google/uuid"
)

// MaterialNotes is singleton-per-material, same upsert discipline as
// MaterialSummary. Notes are markdown.
type MaterialNotes struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"material_id"`
	Notes      string    `gorm:"column:notes;not null" json:"notes"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (MaterialNotes) TableName() string {
	return "material_notes"
}
