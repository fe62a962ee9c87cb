package types

import (
	"time"

	"github.com/google/uuid"
)

// MaterialSummary is singleton-per-material: one row per material_id,
// replaced in place on regeneration.
type MaterialSummary struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"material_id"`
	Summary    string    `gorm:"column:summary;not null" json:"summary"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (MaterialSummary) TableName() string {
	return "material_summary"
}
