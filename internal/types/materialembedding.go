package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MaterialEmbedding is one chunk of a material's text plus its vector.
// The whole set for a material is replaced atomically on reprocessing.
type MaterialEmbedding struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialID uuid.UUID      `gorm:"type:uuid;not null;index" json:"material_id"`
	ChunkIndex int            `gorm:"column:chunk_index;not null" json:"chunk_index"`
	ChunkText  string         `gorm:"column:chunk_text;not null" json:"chunk_text"`
	Embedding  datatypes.JSON `gorm:"type:jsonb;column:embedding" json:"embedding"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
}

func (MaterialEmbedding) TableName() string {
	return "material_embedding"
}
