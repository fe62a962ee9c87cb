package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyowl/studyowl-backend/internal/logger"
	"github.com/studyowl/studyowl-backend/internal/types"
)

type MaterialEmbeddingRepo interface {
	Create(ctx context.Context, tx *gorm.DB, embeddings []*types.MaterialEmbedding) ([]*types.MaterialEmbedding, error)
	GetByMaterialID(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) ([]*types.MaterialEmbedding, error)
	DeleteByMaterialID(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) error
}

type materialEmbeddingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialEmbeddingRepo(db *gorm.DB, baseLog *logger.Logger) MaterialEmbeddingRepo {
	repoLog := baseLog.With("repo", "MaterialEmbeddingRepo")
	return &materialEmbeddingRepo{db: db, log: repoLog}
}

func (r *materialEmbeddingRepo) Create(ctx context.Context, tx *gorm.DB, embeddings []*types.MaterialEmbedding) ([]*types.MaterialEmbedding, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(embeddings) == 0 {
		return []*types.MaterialEmbedding{}, nil
	}
	for _, e := range embeddings {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
	}

	// Keep batches small because ChunkText and Embedding are large
	const batchSize = 100

	if err := transaction.WithContext(ctx).CreateInBatches(embeddings, batchSize).Error; err != nil {
		return nil, err
	}
	return embeddings, nil
}

func (r *materialEmbeddingRepo) GetByMaterialID(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) ([]*types.MaterialEmbedding, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.MaterialEmbedding
	if err := transaction.WithContext(ctx).
		Where("material_id = ?", materialID).
		Order("chunk_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *materialEmbeddingRepo) DeleteByMaterialID(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("material_id = ?", materialID).
		Delete(&types.MaterialEmbedding{}).Error
}
