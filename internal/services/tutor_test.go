package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyowl/studyowl-backend/internal/logger"
	"github.com/studyowl/studyowl-backend/internal/types"
)

type fakeTutorMessageRepo struct {
	messages []*types.TutorMessage
}

func (f *fakeTutorMessageRepo) Create(ctx context.Context, tx *gorm.DB, messages []*types.TutorMessage) ([]*types.TutorMessage, error) {
	now := time.Now().Add(time.Duration(len(f.messages)) * time.Millisecond)
	for i, m := range messages {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		m.CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
		f.messages = append(f.messages, m)
	}
	return messages, nil
}

func (f *fakeTutorMessageRepo) forMaterial(materialID uuid.UUID) []*types.TutorMessage {
	var out []*types.TutorMessage
	for _, m := range f.messages {
		if m.MaterialID == materialID {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeTutorMessageRepo) GetRecent(ctx context.Context, tx *gorm.DB, materialID uuid.UUID, limit int) ([]*types.TutorMessage, error) {
	all := f.forMaterial(materialID)
	var out []*types.TutorMessage
	for i := len(all) - 1; i >= 0; i-- {
		out = append(out, all[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeTutorMessageRepo) GetHistory(ctx context.Context, tx *gorm.DB, materialID uuid.UUID, limit int) ([]*types.TutorMessage, error) {
	all := f.forMaterial(materialID)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeTutorMessageRepo) DeleteByMaterialID(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) (int64, error) {
	var kept []*types.TutorMessage
	var deleted int64
	for _, m := range f.messages {
		if m.MaterialID == materialID {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	f.messages = kept
	return deleted, nil
}

type stubRetrieval struct {
	context       string
	lastEmbedding []float32
	calls         int
}

func (s *stubRetrieval) FindRelevantContext(ctx context.Context, materialID uuid.UUID, queryEmbedding []float32) string {
	s.calls++
	s.lastEmbedding = queryEmbedding
	return s.context
}

type tutorFixture struct {
	materialRepo *fakeMaterialRepo
	messageRepo  *fakeTutorMessageRepo
	ai           *fakeAI
	retrieval    *stubRetrieval
	cacheStore   *fakeCacheStore
	svc          TutorService
	materialID   uuid.UUID
}

func newTutorFixture(t *testing.T) *tutorFixture {
	t.Helper()
	materialRepo := newFakeMaterialRepo()
	messageRepo := &fakeTutorMessageRepo{}
	ai := newFakeAI()
	retrieval := &stubRetrieval{context: "retrieved context"}
	cacheStore := newFakeCacheStore()
	answerCache := NewAnswerCacheService(cacheStore, logger.NewNop(), 0.12, time.Hour)

	materialID := uuid.New()
	materialRepo.materials[materialID] = &types.Material{ID: materialID, FullText: "doc text"}

	return &tutorFixture{
		materialRepo: materialRepo,
		messageRepo:  messageRepo,
		ai:           ai,
		retrieval:    retrieval,
		cacheStore:   cacheStore,
		svc: NewTutorService(
			materialRepo, messageRepo, ai, retrieval, answerCache,
			logger.NewNop(), 10,
		),
		materialID: materialID,
	}
}

func TestSendMessageGeneratesAndPersists(t *testing.T) {
	fx := newTutorFixture(t)
	ctx := context.Background()

	result, err := fx.svc.SendMessage(ctx, fx.materialID, "what is entropy?", "", 0)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.Cached {
		t.Error("first ask must not be a cache hit")
	}
	if result.Answer != "tutor answer" {
		t.Errorf("answer = %q", result.Answer)
	}
	if fx.ai.chatCalls != 1 {
		t.Errorf("chat calls = %d, want 1", fx.ai.chatCalls)
	}
	if fx.ai.lastContext != "retrieved context" {
		t.Errorf("chat got context %q", fx.ai.lastContext)
	}

	msgs := fx.messageRepo.forMaterial(fx.materialID)
	if len(msgs) != 2 {
		t.Fatalf("persisted messages = %d, want user+assistant pair", len(msgs))
	}
	if msgs[0].Role != types.TutorRoleUser || msgs[1].Role != types.TutorRoleAssistant {
		t.Errorf("unexpected roles: %s, %s", msgs[0].Role, msgs[1].Role)
	}
	if msgs[0].Context != "chat" {
		t.Errorf("default context tag = %q, want chat", msgs[0].Context)
	}
	if len(fx.cacheStore.entries) != 1 {
		t.Errorf("expected answer cached, entries = %d", len(fx.cacheStore.entries))
	}
}

func TestSendMessageRepeatHitsCache(t *testing.T) {
	fx := newTutorFixture(t)
	ctx := context.Background()

	if _, err := fx.svc.SendMessage(ctx, fx.materialID, "what is entropy?", "chat", 0); err != nil {
		t.Fatalf("first send: %v", err)
	}
	retrievalCallsAfterFirst := fx.retrieval.calls

	// Same question embeds identically, so the cached answer comes back
	// without another generation or retrieval.
	result, err := fx.svc.SendMessage(ctx, fx.materialID, "what is entropy?", "chat", 0)
	if err != nil {
		t.Fatalf("second send: %v", err)
	}
	if !result.Cached {
		t.Fatal("expected cache hit on repeat question")
	}
	if fx.ai.chatCalls != 1 {
		t.Errorf("chat calls = %d, want 1 (no regeneration)", fx.ai.chatCalls)
	}
	if fx.retrieval.calls != retrievalCallsAfterFirst {
		t.Error("retrieval must be skipped on a cache hit")
	}

	// The turn is still recorded.
	if msgs := fx.messageRepo.forMaterial(fx.materialID); len(msgs) != 4 {
		t.Errorf("persisted messages = %d, want 4", len(msgs))
	}
}

func TestSendMessageEmbeddingFailureDegrades(t *testing.T) {
	fx := newTutorFixture(t)
	fx.ai.embedErr = errors.New("embedding provider down")
	ctx := context.Background()

	result, err := fx.svc.SendMessage(ctx, fx.materialID, "question?", "chat", 0)
	if err != nil {
		t.Fatalf("send should degrade, not fail: %v", err)
	}
	if result.Cached {
		t.Error("cache cannot hit without an embedding")
	}
	if fx.retrieval.lastEmbedding != nil {
		t.Error("retrieval should receive a nil embedding and fall back")
	}
	if len(fx.cacheStore.entries) != 0 {
		t.Error("nothing should be cached without an embedding")
	}
}

func TestSendMessagePassesHistoryOldestFirst(t *testing.T) {
	fx := newTutorFixture(t)
	ctx := context.Background()

	seed := []*types.TutorMessage{
		{MaterialID: fx.materialID, Role: types.TutorRoleUser, Content: "first q", Context: "chat"},
		{MaterialID: fx.materialID, Role: types.TutorRoleAssistant, Content: "first a", Context: "chat"},
		{MaterialID: fx.materialID, Role: types.TutorRoleUser, Content: "second q", Context: "chat"},
		{MaterialID: fx.materialID, Role: types.TutorRoleAssistant, Content: "second a", Context: "chat"},
	}
	if _, err := fx.messageRepo.Create(ctx, nil, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := fx.svc.SendMessage(ctx, fx.materialID, "third q", "chat", 10); err != nil {
		t.Fatalf("send: %v", err)
	}

	history := fx.ai.lastHistory
	if len(history) != 4 {
		t.Fatalf("history length = %d, want 4", len(history))
	}
	if history[0].Content != "first q" || history[3].Content != "second a" {
		t.Errorf("history not oldest-first: %v", history)
	}
}

func TestSendMessageUnknownMaterial(t *testing.T) {
	fx := newTutorFixture(t)
	if _, err := fx.svc.SendMessage(context.Background(), uuid.New(), "q", "chat", 0); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want record not found", err)
	}
}

func TestSendMessageEmptyQuestion(t *testing.T) {
	fx := newTutorFixture(t)
	if _, err := fx.svc.SendMessage(context.Background(), fx.materialID, "", "chat", 0); err == nil {
		t.Fatal("expected error for empty question")
	}
}

func TestClearHistoryReturnsCount(t *testing.T) {
	fx := newTutorFixture(t)
	ctx := context.Background()

	if _, err := fx.svc.SendMessage(ctx, fx.materialID, "q1", "chat", 0); err != nil {
		t.Fatalf("send: %v", err)
	}

	deleted, err := fx.svc.ClearHistory(ctx, fx.materialID)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	remaining, _ := fx.svc.GetHistory(ctx, fx.materialID, 50)
	if len(remaining) != 0 {
		t.Errorf("history after clear = %d, want 0", len(remaining))
	}
}
