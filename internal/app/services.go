package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/studyowl/studyowl-backend/internal/clients/openai"
	"github.com/studyowl/studyowl-backend/internal/clients/redis"
	"github.com/studyowl/studyowl-backend/internal/logger"
	"github.com/studyowl/studyowl-backend/internal/services"
)

type Services struct {
	AI          services.AIService
	Processing  services.ProcessingService
	Quiz        services.QuizService
	Retrieval   services.RetrievalService
	AnswerCache services.AnswerCacheService
	Tutor       services.TutorService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, cache redis.Store) (Services, error) {
	log.Info("Wiring services...")

	openaiClient, err := openai.NewClient(log)
	if err != nil {
		return Services{}, fmt.Errorf("init openai client: %w", err)
	}

	ai := services.NewAIService(openaiClient, log, cfg.GenerationTextLimit)

	processing := services.NewProcessingService(
		db,
		reposet.Material,
		reposet.MaterialSummary,
		reposet.MaterialNotes,
		reposet.Flashcard,
		reposet.QuizQuestion,
		reposet.MaterialEmbedding,
		ai,
		log,
		cfg.EmbeddingChunkSize,
		cfg.FlashcardCount,
		cfg.QuizCount,
	)

	quiz := services.NewQuizService(
		reposet.Material,
		reposet.QuizQuestion,
		reposet.QuizAttempt,
		log,
	)

	retrieval := services.NewRetrievalService(
		reposet.Material,
		reposet.MaterialEmbedding,
		log,
		cfg.RetrievalTopK,
		cfg.RetrievalDistanceThreshold,
		cfg.FallbackContextChars,
	)

	answerCache := services.NewAnswerCacheService(cache, log, cfg.CacheDistanceThreshold, cfg.AnswerCacheTTL)

	tutor := services.NewTutorService(
		reposet.Material,
		reposet.TutorMessage,
		ai,
		retrieval,
		answerCache,
		log,
		cfg.TutorHistoryLimit,
	)

	return Services{
		AI:          ai,
		Processing:  processing,
		Quiz:        quiz,
		Retrieval:   retrieval,
		AnswerCache: answerCache,
		Tutor:       tutor,
	}, nil
}
