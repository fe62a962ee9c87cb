package services

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/studyowl/studyowl-backend/internal/clients/redis"
	"github.com/studyowl/studyowl-backend/internal/logger"
)

// AnswerCacheService caches tutor answers keyed by question embedding, so
// paraphrased repeats of a question skip generation entirely. The cache is
// best-effort: with no store, or a failing one, Lookup always misses and
// Store silently drops.
type AnswerCacheService interface {
	Lookup(ctx context.Context, materialID uuid.UUID, queryEmbedding []float32) (string, bool)
	Store(ctx context.Context, materialID uuid.UUID, queryEmbedding []float32, answer string)
}

type answerCacheService struct {
	store redis.Store
	log   *logger.Logger

	distanceThreshold float64
	ttl               time.Duration
}

func NewAnswerCacheService(store redis.Store, baseLog *logger.Logger, distanceThreshold float64, ttl time.Duration) AnswerCacheService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &answerCacheService{
		store:             store,
		log:               baseLog.With("service", "AnswerCacheService"),
		distanceThreshold: distanceThreshold,
		ttl:               ttl,
	}
}

type cachedAnswer struct {
	Embedding []float32 `json:"embedding"`
	Answer    string    `json:"answer"`
}

func cacheKeyPrefix(materialID uuid.UUID) string {
	return fmt.Sprintf("tutor:answer:%s:", materialID)
}

// embeddingDigest derives a compact key suffix from a prefix of the
// vector. Collisions are harmless: entries are matched by distance, the
// digest only has to spread keys out.
func embeddingDigest(embedding []float32) string {
	const prefixLen = 64
	n := len(embedding)
	if n > prefixLen {
		n = prefixLen
	}
	h := sha256.New()
	buf := make([]byte, 4)
	for _, f := range embedding[:n] {
		binary.LittleEndian.PutUint32(buf, uint32(int32(f*1e6)))
		h.Write(buf)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func (s *answerCacheService) Lookup(ctx context.Context, materialID uuid.UUID, queryEmbedding []float32) (string, bool) {
	if s.store == nil || len(queryEmbedding) == 0 {
		return "", false
	}

	keys, err := s.store.ScanPrefix(ctx, cacheKeyPrefix(materialID), 0)
	if err != nil {
		s.log.Warn("Answer cache scan failed", "material_id", materialID, "error", err.Error())
		return "", false
	}

	for _, key := range keys {
		raw, found, err := s.store.Get(ctx, key)
		if err != nil {
			s.log.Warn("Answer cache read failed", "key", key, "error", err.Error())
			return "", false
		}
		if !found {
			continue
		}

		var entry cachedAnswer
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			s.log.Warn("Answer cache entry malformed", "key", key, "error", err.Error())
			continue
		}

		dist, ok := cosineDistance(queryEmbedding, entry.Embedding)
		if !ok {
			continue
		}
		if dist < s.distanceThreshold {
			s.log.Info("Answer cache hit", "material_id", materialID, "distance", dist)
			return entry.Answer, true
		}
	}
	return "", false
}

func (s *answerCacheService) Store(ctx context.Context, materialID uuid.UUID, queryEmbedding []float32, answer string) {
	if s.store == nil || len(queryEmbedding) == 0 || answer == "" {
		return
	}

	raw, err := json.Marshal(cachedAnswer{Embedding: queryEmbedding, Answer: answer})
	if err != nil {
		s.log.Warn("Answer cache marshal failed", "material_id", materialID, "error", err.Error())
		return
	}

	key := cacheKeyPrefix(materialID) + embeddingDigest(queryEmbedding)
	if err := s.store.SetWithTTL(ctx, key, string(raw), s.ttl); err != nil {
		s.log.Warn("Answer cache write failed", "key", key, "error", err.Error())
	}
}
