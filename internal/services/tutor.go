package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/studyowl/studyowl-backend/internal/clients/openai"
	"github.com/studyowl/studyowl-backend/internal/logger"
	"github.com/studyowl/studyowl-backend/internal/repos"
	"github.com/studyowl/studyowl-backend/internal/types"
)

// TutorAnswer is the outcome of one tutor turn.
type TutorAnswer struct {
	Answer string
	Cached bool
}

// TutorService runs the RAG turn: embed the question, try the answer
// cache, otherwise retrieve context plus history and generate. Every turn
// is persisted as a user/assistant message pair.
type TutorService interface {
	SendMessage(ctx context.Context, materialID uuid.UUID, question, contextTag string, historyLimit int) (*TutorAnswer, error)
	GetHistory(ctx context.Context, materialID uuid.UUID, limit int) ([]*types.TutorMessage, error)
	ClearHistory(ctx context.Context, materialID uuid.UUID) (int64, error)
}

type tutorService struct {
	materialRepo repos.MaterialRepo
	messageRepo  repos.TutorMessageRepo
	ai           AIService
	retrieval    RetrievalService
	answerCache  AnswerCacheService
	log          *logger.Logger

	defaultHistoryLimit int
}

func NewTutorService(
	materialRepo repos.MaterialRepo,
	messageRepo repos.TutorMessageRepo,
	ai AIService,
	retrieval RetrievalService,
	answerCache AnswerCacheService,
	baseLog *logger.Logger,
	defaultHistoryLimit int,
) TutorService {
	if defaultHistoryLimit <= 0 {
		defaultHistoryLimit = 10
	}
	return &tutorService{
		materialRepo:        materialRepo,
		messageRepo:         messageRepo,
		ai:                  ai,
		retrieval:           retrieval,
		answerCache:         answerCache,
		log:                 baseLog.With("service", "TutorService"),
		defaultHistoryLimit: defaultHistoryLimit,
	}
}

func (s *tutorService) SendMessage(ctx context.Context, materialID uuid.UUID, question, contextTag string, historyLimit int) (*TutorAnswer, error) {
	if question == "" {
		return nil, fmt.Errorf("question required")
	}
	if contextTag == "" {
		contextTag = "chat"
	}
	if historyLimit <= 0 {
		historyLimit = s.defaultHistoryLimit
	}

	if _, err := s.materialRepo.GetByID(ctx, nil, materialID); err != nil {
		return nil, err
	}

	// One embedding serves both the cache probe and retrieval. Failure
	// here degrades the turn instead of failing it: the cache is skipped
	// and retrieval falls back to raw text.
	questionEmbedding, err := s.ai.CreateEmbedding(ctx, question)
	if err != nil {
		s.log.Warn("Question embedding failed, degrading turn", "material_id", materialID, "error", err.Error())
		questionEmbedding = nil
	}

	if answer, hit := s.answerCache.Lookup(ctx, materialID, questionEmbedding); hit {
		if err := s.saveTurn(ctx, materialID, question, answer, contextTag); err != nil {
			return nil, err
		}
		return &TutorAnswer{Answer: answer, Cached: true}, nil
	}

	relevantContext := s.retrieval.FindRelevantContext(ctx, materialID, questionEmbedding)
	history, err := s.conversationHistory(ctx, materialID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	answer, err := s.ai.ChatWithContext(ctx, question, relevantContext, history)
	if err != nil {
		return nil, err
	}

	s.answerCache.Store(ctx, materialID, questionEmbedding, answer)

	if err := s.saveTurn(ctx, materialID, question, answer, contextTag); err != nil {
		return nil, err
	}
	return &TutorAnswer{Answer: answer, Cached: false}, nil
}

// conversationHistory returns the last limit turns oldest-first. Fetch is
// newest-first over 2x limit rows (user + assistant pairs), then reversed.
func (s *tutorService) conversationHistory(ctx context.Context, materialID uuid.UUID, limit int) ([]openai.ChatMessage, error) {
	messages, err := s.messageRepo.GetRecent(ctx, nil, materialID, limit*2)
	if err != nil {
		return nil, err
	}
	history := make([]openai.ChatMessage, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		history = append(history, openai.ChatMessage{
			Role:    messages[i].Role,
			Content: messages[i].Content,
		})
	}
	return history, nil
}

func (s *tutorService) saveTurn(ctx context.Context, materialID uuid.UUID, question, answer, contextTag string) error {
	_, err := s.messageRepo.Create(ctx, nil, []*types.TutorMessage{
		{
			MaterialID: materialID,
			Role:       types.TutorRoleUser,
			Content:    question,
			Context:    contextTag,
		},
		{
			MaterialID: materialID,
			Role:       types.TutorRoleAssistant,
			Content:    answer,
			Context:    contextTag,
		},
	})
	if err != nil {
		return fmt.Errorf("save conversation pair: %w", err)
	}
	return nil
}

func (s *tutorService) GetHistory(ctx context.Context, materialID uuid.UUID, limit int) ([]*types.TutorMessage, error) {
	return s.messageRepo.GetHistory(ctx, nil, materialID, limit)
}

func (s *tutorService) ClearHistory(ctx context.Context, materialID uuid.UUID) (int64, error) {
	deleted, err := s.messageRepo.DeleteByMaterialID(ctx, nil, materialID)
	if err != nil {
		return 0, err
	}
	s.log.Info("Cleared tutor history", "material_id", materialID, "deleted", deleted)
	return deleted, nil
}
