package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyowl/studyowl-backend/internal/logger"
	"github.com/studyowl/studyowl-backend/internal/types"
)

type MaterialSummaryRepo interface {
	GetByMaterialID(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) (*types.MaterialSummary, error)
	Upsert(ctx context.Context, tx *gorm.DB, materialID uuid.UUID, summary string) (*types.MaterialSummary, error)
}

type materialSummaryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialSummaryRepo(db *gorm.DB, baseLog *logger.Logger) MaterialSummaryRepo {
	repoLog := baseLog.With("repo", "MaterialSummaryRepo")
	return &materialSummaryRepo{db: db, log: repoLog}
}

func (r *materialSummaryRepo) GetByMaterialID(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) (*types.MaterialSummary, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.MaterialSummary
	if err := transaction.WithContext(ctx).
		Where("material_id = ?", materialID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *materialSummaryRepo) Upsert(ctx context.Context, tx *gorm.DB, materialID uuid.UUID, summary string) (*types.MaterialSummary, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var existing types.MaterialSummary
	err := transaction.WithContext(ctx).
		Where("material_id = ?", materialID).
		First(&existing).Error
	switch {
	case err == nil:
		existing.Summary = summary
		existing.UpdatedAt = time.Now()
		if err := transaction.WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		created := &types.MaterialSummary{
			ID:         uuid.New(),
			MaterialID: materialID,
			Summary:    summary,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}
		if err := transaction.WithContext(ctx).Create(created).Error; err != nil {
			return nil, err
		}
		return created, nil
	default:
		return nil, err
	}
}
