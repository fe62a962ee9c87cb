package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyowl/studyowl-backend/internal/logger"
	"github.com/studyowl/studyowl-backend/internal/types"
)

type TutorMessageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, messages []*types.TutorMessage) ([]*types.TutorMessage, error)
	// GetRecent returns the newest messages first, up to limit.
	GetRecent(ctx context.Context, tx *gorm.DB, materialID uuid.UUID, limit int) ([]*types.TutorMessage, error)
	// GetHistory returns the oldest messages first, up to limit.
	GetHistory(ctx context.Context, tx *gorm.DB, materialID uuid.UUID, limit int) ([]*types.TutorMessage, error)
	DeleteByMaterialID(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) (int64, error)
}

type tutorMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTutorMessageRepo(db *gorm.DB, baseLog *logger.Logger) TutorMessageRepo {
	repoLog := baseLog.With("repo", "TutorMessageRepo")
	return &tutorMessageRepo{db: db, log: repoLog}
}

func (r *tutorMessageRepo) Create(ctx context.Context, tx *gorm.DB, messages []*types.TutorMessage) ([]*types.TutorMessage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(messages) == 0 {
		return []*types.TutorMessage{}, nil
	}
	for _, m := range messages {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(ctx).Create(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *tutorMessageRepo) GetRecent(ctx context.Context, tx *gorm.DB, materialID uuid.UUID, limit int) ([]*types.TutorMessage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.TutorMessage
	query := transaction.WithContext(ctx).
		Where("material_id = ?", materialID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *tutorMessageRepo) GetHistory(ctx context.Context, tx *gorm.DB, materialID uuid.UUID, limit int) ([]*types.TutorMessage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.TutorMessage
	query := transaction.WithContext(ctx).
		Where("material_id = ?", materialID).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *tutorMessageRepo) DeleteByMaterialID(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	result := transaction.WithContext(ctx).
		Where("material_id = ?", materialID).
		Delete(&types.TutorMessage{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
