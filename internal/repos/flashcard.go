package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyowl/studyowl-backend/internal/logger"
	"github.com/studyowl/studyowl-backend/internal/types"
)

type FlashcardRepo interface {
	Create(ctx context.Context, tx *gorm.DB, cards []*types.Flashcard) ([]*types.Flashcard, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Flashcard, error)
	GetByMaterialID(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) ([]*types.Flashcard, error)
	// Update overwrites only the provided fields; nil leaves a field alone.
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, question, answer *string) (*types.Flashcard, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DeleteByMaterialID(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) error
}

type flashcardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlashcardRepo(db *gorm.DB, baseLog *logger.Logger) FlashcardRepo {
	repoLog := baseLog.With("repo", "FlashcardRepo")
	return &flashcardRepo{db: db, log: repoLog}
}

func (r *flashcardRepo) Create(ctx context.Context, tx *gorm.DB, cards []*types.Flashcard) ([]*types.Flashcard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(cards) == 0 {
		return []*types.Flashcard{}, nil
	}
	for _, card := range cards {
		if card.ID == uuid.Nil {
			card.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(ctx).Create(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *flashcardRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Flashcard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Flashcard
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *flashcardRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, question, answer *string) (*types.Flashcard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	updates := map[string]any{}
	if question != nil {
		updates["question"] = *question
	}
	if answer != nil {
		updates["answer"] = *answer
	}
	if len(updates) > 0 {
		result := transaction.WithContext(ctx).
			Model(&types.Flashcard{}).
			Where("id = ?", id).
			Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.GetByID(ctx, tx, id)
}

func (r *flashcardRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	result := transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Flashcard{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *flashcardRepo) GetByMaterialID(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) ([]*types.Flashcard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Flashcard
	if err := transaction.WithContext(ctx).
		Where("material_id = ?", materialID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *flashcardRepo) DeleteByMaterialID(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("material_id = ?", materialID).
		Delete(&types.Flashcard{}).Error
}
