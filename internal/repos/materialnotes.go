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

type MaterialNotesRepo interface {
	GetByMaterialID(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) (*types.MaterialNotes, error)
	Upsert(ctx context.Context, tx *gorm.DB, materialID uuid.UUID, notes string) (*types.MaterialNotes, error)
}

type materialNotesRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialNotesRepo(db *gorm.DB, baseLog *logger.Logger) MaterialNotesRepo {
	repoLog := baseLog.With("repo", "MaterialNotesRepo")
	return &materialNotesRepo{db: db, log: repoLog}
}

func (r *materialNotesRepo) GetByMaterialID(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) (*types.MaterialNotes, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.MaterialNotes
	if err := transaction.WithContext(ctx).
		Where("material_id = ?", materialID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *materialNotesRepo) Upsert(ctx context.Context, tx *gorm.DB, materialID uuid.UUID, notes string) (*types.MaterialNotes, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var existing types.MaterialNotes
	err := transaction.WithContext(ctx).
		Where("material_id = ?", materialID).
		First(&existing).Error
	switch {
	case err == nil:
		existing.Notes = notes
		existing.UpdatedAt = time.Now()
		if err := transaction.WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		created := &types.MaterialNotes{
			ID:         uuid.New(),
			MaterialID: materialID,
			Notes:      notes,
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
