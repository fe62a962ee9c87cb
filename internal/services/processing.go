package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/studyowl/studyowl-backend/internal/chunker"
	"github.com/studyowl/studyowl-backend/internal/logger"
	"github.com/studyowl/studyowl-backend/internal/repos"
	"github.com/studyowl/studyowl-backend/internal/types"
)

// ErrNoText is returned when a material has no text to work with.
var ErrNoText = fmt.Errorf("material has no text to process")

// ProcessingService drives the material pipeline: queued -> processing ->
// completed|failed. All four generated artifacts land in one transaction
// or none of them do; the embedding set is replaced with the same
// discipline.
type ProcessingService interface {
	ProcessMaterial(ctx context.Context, materialID uuid.UUID, fullText string) error
	RegenerateSummary(ctx context.Context, materialID uuid.UUID) (*types.MaterialSummary, error)
	RegenerateNotes(ctx context.Context, materialID uuid.UUID) (*types.MaterialNotes, error)
	RegenerateFlashcards(ctx context.Context, materialID uuid.UUID, count int) ([]*types.Flashcard, error)
	RegenerateQuiz(ctx context.Context, materialID uuid.UUID, count int) ([]*types.QuizQuestion, error)
}

type processingService struct {
	db            *gorm.DB
	materialRepo  repos.MaterialRepo
	summaryRepo   repos.MaterialSummaryRepo
	notesRepo     repos.MaterialNotesRepo
	flashcardRepo repos.FlashcardRepo
	quizRepo      repos.QuizQuestionRepo
	embeddingRepo repos.MaterialEmbeddingRepo
	ai            AIService
	log           *logger.Logger

	chunkSize      int
	flashcardCount int
	quizCount      int
}

func NewProcessingService(
	db *gorm.DB,
	materialRepo repos.MaterialRepo,
	summaryRepo repos.MaterialSummaryRepo,
	notesRepo repos.MaterialNotesRepo,
	flashcardRepo repos.FlashcardRepo,
	quizRepo repos.QuizQuestionRepo,
	embeddingRepo repos.MaterialEmbeddingRepo,
	ai AIService,
	baseLog *logger.Logger,
	chunkSize int,
	flashcardCount int,
	quizCount int,
) ProcessingService {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if flashcardCount <= 0 {
		flashcardCount = 15
	}
	if quizCount <= 0 {
		quizCount = 10
	}
	return &processingService{
		db:             db,
		materialRepo:   materialRepo,
		summaryRepo:    summaryRepo,
		notesRepo:      notesRepo,
		flashcardRepo:  flashcardRepo,
		quizRepo:       quizRepo,
		embeddingRepo:  embeddingRepo,
		ai:             ai,
		log:            baseLog.With("service", "ProcessingService"),
		chunkSize:      chunkSize,
		flashcardCount: flashcardCount,
		quizCount:      quizCount,
	}
}

func (s *processingService) ProcessMaterial(ctx context.Context, materialID uuid.UUID, fullText string) error {
	if strings.TrimSpace(fullText) == "" {
		s.markFailed(ctx, materialID, ErrNoText)
		return ErrNoText
	}

	if err := s.materialRepo.UpdateProcessingState(ctx, nil, materialID, types.ProcessingStatusProcessing, 35, nil); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	s.log.Info("Processing material", "material_id", materialID)

	// All four generations read the same immutable snapshot.
	var (
		summary    string
		notes      string
		flashcards []FlashcardItem
		quiz       []QuizItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.ai.GenerateSummary(gctx, fullText)
		return err
	})
	g.Go(func() error {
		var err error
		notes, err = s.ai.GenerateNotes(gctx, fullText)
		return err
	})
	g.Go(func() error {
		var err error
		flashcards, err = s.ai.GenerateFlashcards(gctx, fullText, s.flashcardCount)
		return err
	})
	g.Go(func() error {
		var err error
		quiz, err = s.ai.GenerateQuiz(gctx, fullText, s.quizCount)
		return err
	})
	if err := g.Wait(); err != nil {
		s.markFailed(ctx, materialID, err)
		return err
	}

	if err := s.saveArtifacts(ctx, materialID, summary, notes, flashcards, quiz); err != nil {
		s.markFailed(ctx, materialID, err)
		return err
	}
	// A progress write that fails after a committed step still ends the run
	// as failed; the material must never stay parked at an interim state.
	if err := s.materialRepo.UpdateProcessingState(ctx, nil, materialID, types.ProcessingStatusProcessing, 85, nil); err != nil {
		err = fmt.Errorf("advance progress: %w", err)
		s.markFailed(ctx, materialID, err)
		return err
	}

	if err := s.replaceEmbeddings(ctx, materialID, fullText); err != nil {
		s.markFailed(ctx, materialID, err)
		return err
	}
	if err := s.materialRepo.UpdateProcessingState(ctx, nil, materialID, types.ProcessingStatusProcessing, 95, nil); err != nil {
		err = fmt.Errorf("advance progress: %w", err)
		s.markFailed(ctx, materialID, err)
		return err
	}

	if err := s.materialRepo.UpdateProcessingState(ctx, nil, materialID, types.ProcessingStatusCompleted, 100, nil); err != nil {
		err = fmt.Errorf("mark completed: %w", err)
		s.markFailed(ctx, materialID, err)
		return err
	}
	s.log.Info("Material processed", "material_id", materialID,
		"flashcards", len(flashcards), "quiz_questions", len(quiz))
	return nil
}

// saveArtifacts commits all four artifacts in one transaction so stale and
// fresh generations never coexist.
func (s *processingService) saveArtifacts(ctx context.Context, materialID uuid.UUID, summary, notes string, flashcards []FlashcardItem, quiz []QuizItem) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.summaryRepo.Upsert(ctx, tx, materialID, summary); err != nil {
			return fmt.Errorf("save summary: %w", err)
		}
		if _, err := s.notesRepo.Upsert(ctx, tx, materialID, notes); err != nil {
			return fmt.Errorf("save notes: %w", err)
		}

		if err := s.flashcardRepo.DeleteByMaterialID(ctx, tx, materialID); err != nil {
			return fmt.Errorf("clear flashcards: %w", err)
		}
		cards := make([]*types.Flashcard, 0, len(flashcards))
		for _, item := range flashcards {
			cards = append(cards, &types.Flashcard{
				MaterialID: materialID,
				Question:   item.Question,
				Answer:     item.Answer,
			})
		}
		if _, err := s.flashcardRepo.Create(ctx, tx, cards); err != nil {
			return fmt.Errorf("save flashcards: %w", err)
		}

		if err := s.quizRepo.DeleteByMaterialID(ctx, tx, materialID); err != nil {
			return fmt.Errorf("clear quiz: %w", err)
		}
		questions := make([]*types.QuizQuestion, 0, len(quiz))
		for _, item := range quiz {
			questions = append(questions, &types.QuizQuestion{
				MaterialID:    materialID,
				Question:      item.Question,
				OptionA:       item.OptionA,
				OptionB:       item.OptionB,
				OptionC:       item.OptionC,
				OptionD:       item.OptionD,
				CorrectOption: item.CorrectOption,
			})
		}
		if _, err := s.quizRepo.Create(ctx, tx, questions); err != nil {
			return fmt.Errorf("save quiz: %w", err)
		}
		return nil
	})
}

// replaceEmbeddings chunks the text, embeds every chunk in one batch call
// and swaps the stored set atomically.
func (s *processingService) replaceEmbeddings(ctx context.Context, materialID uuid.UUID, fullText string) error {
	chunks := chunker.Split(fullText, s.chunkSize)
	if len(chunks) == 0 {
		return ErrNoText
	}

	vectors, err := s.ai.CreateEmbeddingsBatch(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	embeddings := make([]*types.MaterialEmbedding, 0, len(chunks))
	for i, chunk := range chunks {
		encoded, mErr := types.MarshalEmbedding(vectors[i])
		if mErr != nil {
			return fmt.Errorf("encode embedding %d: %w", i, mErr)
		}
		embeddings = append(embeddings, &types.MaterialEmbedding{
			MaterialID: materialID,
			ChunkIndex: i,
			ChunkText:  chunk,
			Embedding:  encoded,
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.embeddingRepo.DeleteByMaterialID(ctx, tx, materialID); err != nil {
			return fmt.Errorf("clear embeddings: %w", err)
		}
		if _, err := s.embeddingRepo.Create(ctx, tx, embeddings); err != nil {
			return fmt.Errorf("save embeddings: %w", err)
		}
		return nil
	})
}

func (s *processingService) markFailed(ctx context.Context, materialID uuid.UUID, cause error) {
	msg := cause.Error()
	if err := s.materialRepo.UpdateProcessingState(ctx, nil, materialID, types.ProcessingStatusFailed, 0, &msg); err != nil {
		s.log.Error("Failed to record processing failure", "material_id", materialID, "error", err.Error())
	}
	s.log.Error("Material processing failed", "material_id", materialID, "cause", msg)
}

// loadTextOrFail fetches the material and insists on non-empty text.
func (s *processingService) loadTextOrFail(ctx context.Context, materialID uuid.UUID) (string, error) {
	material, err := s.materialRepo.GetByID(ctx, nil, materialID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(material.FullText) == "" {
		return "", ErrNoText
	}
	return material.FullText, nil
}

func (s *processingService) RegenerateSummary(ctx context.Context, materialID uuid.UUID) (*types.MaterialSummary, error) {
	text, err := s.loadTextOrFail(ctx, materialID)
	if err != nil {
		return nil, err
	}
	summary, err := s.ai.GenerateSummary(ctx, text)
	if err != nil {
		return nil, err
	}
	return s.summaryRepo.Upsert(ctx, nil, materialID, summary)
}

func (s *processingService) RegenerateNotes(ctx context.Context, materialID uuid.UUID) (*types.MaterialNotes, error) {
	text, err := s.loadTextOrFail(ctx, materialID)
	if err != nil {
		return nil, err
	}
	notes, err := s.ai.GenerateNotes(ctx, text)
	if err != nil {
		return nil, err
	}
	return s.notesRepo.Upsert(ctx, nil, materialID, notes)
}

func (s *processingService) RegenerateFlashcards(ctx context.Context, materialID uuid.UUID, count int) ([]*types.Flashcard, error) {
	if count <= 0 {
		count = s.flashcardCount
	}
	text, err := s.loadTextOrFail(ctx, materialID)
	if err != nil {
		return nil, err
	}
	items, err := s.ai.GenerateFlashcards(ctx, text, count)
	if err != nil {
		return nil, err
	}

	var saved []*types.Flashcard
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.flashcardRepo.DeleteByMaterialID(ctx, tx, materialID); err != nil {
			return err
		}
		cards := make([]*types.Flashcard, 0, len(items))
		for _, item := range items {
			cards = append(cards, &types.Flashcard{
				MaterialID: materialID,
				Question:   item.Question,
				Answer:     item.Answer,
			})
		}
		var txErr error
		saved, txErr = s.flashcardRepo.Create(ctx, tx, cards)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *processingService) RegenerateQuiz(ctx context.Context, materialID uuid.UUID, count int) ([]*types.QuizQuestion, error) {
	if count <= 0 {
		count = s.quizCount
	}
	text, err := s.loadTextOrFail(ctx, materialID)
	if err != nil {
		return nil, err
	}
	items, err := s.ai.GenerateQuiz(ctx, text, count)
	if err != nil {
		return nil, err
	}

	var saved []*types.QuizQuestion
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.quizRepo.DeleteByMaterialID(ctx, tx, materialID); err != nil {
			return err
		}
		questions := make([]*types.QuizQuestion, 0, len(items))
		for _, item := range items {
			questions = append(questions, &types.QuizQuestion{
				MaterialID:    materialID,
				Question:      item.Question,
				OptionA:       item.OptionA,
				OptionB:       item.OptionB,
				OptionC:       item.OptionC,
				OptionD:       item.OptionD,
				CorrectOption: item.CorrectOption,
			})
		}
		var txErr error
		saved, txErr = s.quizRepo.Create(ctx, tx, questions)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}
