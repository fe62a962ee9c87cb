package services

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/studyowl/studyowl-backend/internal/logger"
	"github.com/studyowl/studyowl-backend/internal/repos"
	"github.com/studyowl/studyowl-backend/internal/types"
)

// NoContentFallback is returned when even the raw-text fallback has
// nothing to offer.
const NoContentFallback = "No content available for this material."

// RetrievalService selects the chunks most relevant to a query embedding.
// It never fails the caller: any storage or comparison problem degrades
// to a prefix of the material's raw text.
type RetrievalService interface {
	FindRelevantContext(ctx context.Context, materialID uuid.UUID, queryEmbedding []float32) string
}

type retrievalService struct {
	materialRepo  repos.MaterialRepo
	embeddingRepo repos.MaterialEmbeddingRepo
	log           *logger.Logger

	topK              int
	distanceThreshold float64
	fallbackChars     int
}

func NewRetrievalService(
	materialRepo repos.MaterialRepo,
	embeddingRepo repos.MaterialEmbeddingRepo,
	baseLog *logger.Logger,
	topK int,
	distanceThreshold float64,
	fallbackChars int,
) RetrievalService {
	if topK <= 0 {
		topK = 5
	}
	if fallbackChars <= 0 {
		fallbackChars = 5000
	}
	return &retrievalService{
		materialRepo:      materialRepo,
		embeddingRepo:     embeddingRepo,
		log:               baseLog.With("service", "RetrievalService"),
		topK:              topK,
		distanceThreshold: distanceThreshold,
		fallbackChars:     fallbackChars,
	}
}

type scoredChunk struct {
	text     string
	distance float64
}

func (s *retrievalService) FindRelevantContext(ctx context.Context, materialID uuid.UUID, queryEmbedding []float32) string {
	if len(queryEmbedding) == 0 {
		return s.fallback(ctx, materialID)
	}

	stored, err := s.embeddingRepo.GetByMaterialID(ctx, nil, materialID)
	if err != nil {
		s.log.Warn("Embedding lookup failed, using raw-text fallback", "material_id", materialID, "error", err.Error())
		return s.fallback(ctx, materialID)
	}
	if len(stored) == 0 {
		return s.fallback(ctx, materialID)
	}

	scored := make([]scoredChunk, 0, len(stored))
	for _, emb := range stored {
		vec := types.ParseEmbeddingJSON(emb.Embedding)
		dist, ok := cosineDistance(queryEmbedding, vec)
		if !ok {
			continue
		}
		scored = append(scored, scoredChunk{text: emb.ChunkText, distance: dist})
	}
	if len(scored) == 0 {
		return s.fallback(ctx, materialID)
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].distance < scored[j].distance
	})
	if len(scored) > s.topK {
		scored = scored[:s.topK]
	}

	// Relevance floor applies even inside the top-k.
	var parts []string
	for _, c := range scored {
		if c.distance >= s.distanceThreshold {
			continue
		}
		parts = append(parts, c.text)
	}
	if len(parts) == 0 {
		s.log.Debug("All candidates above distance threshold, using raw-text fallback", "material_id", materialID)
		return s.fallback(ctx, materialID)
	}

	return strings.Join(parts, "\n\n")
}

func (s *retrievalService) fallback(ctx context.Context, materialID uuid.UUID) string {
	material, err := s.materialRepo.GetByID(ctx, nil, materialID)
	if err != nil || material == nil || strings.TrimSpace(material.FullText) == "" {
		return NoContentFallback
	}
	runes := []rune(material.FullText)
	if len(runes) > s.fallbackChars {
		runes = runes[:s.fallbackChars]
	}
	return string(runes)
}
