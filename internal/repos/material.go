package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyowl/studyowl-backend/internal/logger"
	"github.com/studyowl/studyowl-backend/internal/types"
)

type MaterialRepo interface {
	Create(ctx context.Context, tx *gorm.DB, material *types.Material) (*types.Material, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Material, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Material, error)
	UpdateTitle(ctx context.Context, tx *gorm.DB, id uuid.UUID, title string) (*types.Material, error)
	UpdateProcessingState(ctx context.Context, tx *gorm.DB, id uuid.UUID, status types.ProcessingStatus, progress int, processingErr *string) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type materialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRepo {
	repoLog := baseLog.With("repo", "MaterialRepo")
	return &materialRepo{db: db, log: repoLog}
}

func (r *materialRepo) Create(ctx context.Context, tx *gorm.DB, material *types.Material) (*types.Material, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if material.ID == uuid.Nil {
		material.ID = uuid.New()
	}
	if material.ProcessingStatus == "" {
		material.ProcessingStatus = types.ProcessingStatusQueued
	}
	if err := transaction.WithContext(ctx).Create(material).Error; err != nil {
		return nil, err
	}
	return material, nil
}

func (r *materialRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Material, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Material
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *materialRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Material, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Material
	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *materialRepo) UpdateTitle(ctx context.Context, tx *gorm.DB, id uuid.UUID, title string) (*types.Material, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	result := transaction.WithContext(ctx).
		Model(&types.Material{}).
		Where("id = ?", id).
		Update("title", title)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, tx, id)
}

func (r *materialRepo) UpdateProcessingState(ctx context.Context, tx *gorm.DB, id uuid.UUID, status types.ProcessingStatus, progress int, processingErr *string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	updates := map[string]any{
		"processing_status":   status,
		"processing_progress": progress,
		"processing_error":    processingErr,
	}
	return transaction.WithContext(ctx).
		Model(&types.Material{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Delete removes the material and every derived row in one transaction;
// the schema carries no FK cascade.
func (r *materialRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		for _, model := range []any{
			&types.MaterialSummary{},
			&types.MaterialNotes{},
			&types.Flashcard{},
			&types.QuizQuestion{},
			&types.QuizAttempt{},
			&types.MaterialEmbedding{},
			&types.TutorMessage{},
		} {
			if err := inner.Where("material_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		result := inner.Where("id = ?", id).Delete(&types.Material{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
