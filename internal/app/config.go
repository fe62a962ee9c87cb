package app

import (
	"time"

	"github.com/studyowl/studyowl-backend/internal/logger"
	"github.com/studyowl/studyowl-backend/internal/utils"
)

type Config struct {
	EmbeddingChunkSize          int
	FlashcardCount              int
	QuizCount                   int
	RetrievalTopK               int
	RetrievalDistanceThreshold  float64
	CacheDistanceThreshold      float64
	AnswerCacheTTL              time.Duration
	FallbackContextChars        int
	TutorHistoryLimit           int
	GenerationTextLimit         int
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		EmbeddingChunkSize:         utils.GetEnvAsInt("EMBEDDING_CHUNK_SIZE", 1000, log),
		FlashcardCount:             utils.GetEnvAsInt("FLASHCARD_COUNT", 15, log),
		QuizCount:                  utils.GetEnvAsInt("QUIZ_COUNT", 10, log),
		RetrievalTopK:              utils.GetEnvAsInt("RETRIEVAL_TOP_K", 5, log),
		RetrievalDistanceThreshold: utils.GetEnvAsFloat("RETRIEVAL_DISTANCE_THRESHOLD", 0.35, log),
		CacheDistanceThreshold:     utils.GetEnvAsFloat("CACHE_DISTANCE_THRESHOLD", 0.12, log),
		AnswerCacheTTL:             utils.GetEnvAsSeconds("ANSWER_CACHE_TTL_SECONDS", 24*time.Hour, log),
		FallbackContextChars:       utils.GetEnvAsInt("FALLBACK_CONTEXT_CHARS", 5000, log),
		TutorHistoryLimit:          utils.GetEnvAsInt("TUTOR_HISTORY_LIMIT", 10, log),
		GenerationTextLimit:        utils.GetEnvAsInt("GENERATION_TEXT_LIMIT", 50000, log),
	}
}
