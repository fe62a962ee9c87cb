package repos

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/studyowl/studyowl-backend/internal/logger"
	"github.com/studyowl/studyowl-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.Material{},
		&types.MaterialSummary{},
		&types.MaterialNotes{},
		&types.Flashcard{},
		&types.QuizQuestion{},
		&types.QuizAttempt{},
		&types.MaterialEmbedding{},
		&types.TutorMessage{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestMaterialRepoCreateDefaults(t *testing.T) {
	db := newTestDB(t)
	repo := NewMaterialRepo(db, logger.NewNop())
	ctx := context.Background()

	created, err := repo.Create(ctx, nil, &types.Material{Title: "intro", FullText: "text"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("expected id assigned")
	}
	if created.ProcessingStatus != types.ProcessingStatusQueued {
		t.Errorf("status = %s, want queued", created.ProcessingStatus)
	}
}

func TestMaterialRepoUpdateProcessingState(t *testing.T) {
	db := newTestDB(t)
	repo := NewMaterialRepo(db, logger.NewNop())
	ctx := context.Background()

	created, err := repo.Create(ctx, nil, &types.Material{Title: "intro"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cause := "generation failed"
	if err := repo.UpdateProcessingState(ctx, nil, created.ID, types.ProcessingStatusFailed, 0, &cause); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetByID(ctx, nil, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ProcessingStatus != types.ProcessingStatusFailed || got.ProcessingProgress != 0 {
		t.Errorf("state = %s/%d", got.ProcessingStatus, got.ProcessingProgress)
	}
	if got.ProcessingError == nil || *got.ProcessingError != cause {
		t.Errorf("error not recorded: %v", got.ProcessingError)
	}

	// Clearing the error on a retry writes NULL, not a stale string.
	if err := repo.UpdateProcessingState(ctx, nil, created.ID, types.ProcessingStatusProcessing, 35, nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = repo.GetByID(ctx, nil, created.ID)
	if got.ProcessingError != nil {
		t.Errorf("expected error cleared, got %q", *got.ProcessingError)
	}
}

func TestMaterialRepoGetMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewMaterialRepo(db, logger.NewNop())

	if _, err := repo.GetByID(context.Background(), nil, uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want record not found", err)
	}
}

func TestMaterialRepoListNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewMaterialRepo(db, logger.NewNop())
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, nil, &types.Material{
			Title:     fmt.Sprintf("lecture %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := repo.List(ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 || got[0].Title != "lecture 2" {
		t.Errorf("list[0] = %v, want newest first", got[0])
	}
}

func TestMaterialRepoUpdateTitle(t *testing.T) {
	db := newTestDB(t)
	repo := NewMaterialRepo(db, logger.NewNop())
	ctx := context.Background()

	created, err := repo.Create(ctx, nil, &types.Material{Title: "draft", FullText: "text"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := repo.UpdateTitle(ctx, nil, created.ID, "final")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "final" {
		t.Errorf("title = %q, want final", updated.Title)
	}
	if updated.FullText != "text" {
		t.Errorf("full text changed: %q", updated.FullText)
	}

	if _, err := repo.UpdateTitle(ctx, nil, uuid.New(), "x"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want record not found", err)
	}
}

func TestMaterialRepoDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	log := logger.NewNop()
	materialRepo := NewMaterialRepo(db, log)
	flashcardRepo := NewFlashcardRepo(db, log)
	attemptRepo := NewQuizAttemptRepo(db, log)
	ctx := context.Background()

	created, err := materialRepo.Create(ctx, nil, &types.Material{Title: "doomed"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := flashcardRepo.Create(ctx, nil, []*types.Flashcard{
		{MaterialID: created.ID, Question: "q", Answer: "a"},
	}); err != nil {
		t.Fatalf("create card: %v", err)
	}
	if _, err := attemptRepo.Create(ctx, nil, &types.QuizAttempt{
		MaterialID:     created.ID,
		Score:          1,
		TotalQuestions: 1,
		Percentage:     100,
		Answers:        []byte("[]"),
	}); err != nil {
		t.Fatalf("create attempt: %v", err)
	}

	if err := materialRepo.Delete(ctx, nil, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := materialRepo.GetByID(ctx, nil, created.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("material still present: %v", err)
	}
	cards, _ := flashcardRepo.GetByMaterialID(ctx, nil, created.ID)
	if len(cards) != 0 {
		t.Errorf("flashcards survived delete: %d", len(cards))
	}
	attempts, _ := attemptRepo.GetByMaterialID(ctx, nil, created.ID, 0)
	if len(attempts) != 0 {
		t.Errorf("attempts survived delete: %d", len(attempts))
	}

	if err := materialRepo.Delete(ctx, nil, uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want record not found", err)
	}
}

func TestFlashcardUpdateAndDeleteByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewFlashcardRepo(db, logger.NewNop())
	ctx := context.Background()
	materialID := uuid.New()

	cards, err := repo.Create(ctx, nil, []*types.Flashcard{
		{MaterialID: materialID, Question: "q1", Answer: "a1"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	answer := "better answer"
	updated, err := repo.Update(ctx, nil, cards[0].ID, nil, &answer)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Question != "q1" {
		t.Errorf("question changed: %q", updated.Question)
	}
	if updated.Answer != "better answer" {
		t.Errorf("answer = %q", updated.Answer)
	}

	if err := repo.DeleteByID(ctx, nil, cards[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteByID(ctx, nil, cards[0].ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want record not found", err)
	}
}

func TestMaterialSummaryUpsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewMaterialSummaryRepo(db, logger.NewNop())
	ctx := context.Background()
	materialID := uuid.New()

	first, err := repo.Upsert(ctx, nil, materialID, "v1")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	second, err := repo.Upsert(ctx, nil, materialID, "v2")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if first.ID != second.ID {
		t.Error("upsert must keep the same row")
	}

	var count int64
	db.Model(&types.MaterialSummary{}).Where("material_id = ?", materialID).Count(&count)
	if count != 1 {
		t.Errorf("rows = %d, want 1", count)
	}

	got, err := repo.GetByMaterialID(ctx, nil, materialID)
	if err != nil || got.Summary != "v2" {
		t.Errorf("summary = %v, err = %v", got, err)
	}
}

func TestFlashcardReplaceCycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewFlashcardRepo(db, logger.NewNop())
	ctx := context.Background()
	materialID := uuid.New()

	_, err := repo.Create(ctx, nil, []*types.Flashcard{
		{MaterialID: materialID, Question: "q1", Answer: "a1"},
		{MaterialID: materialID, Question: "q2", Answer: "a2"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.DeleteByMaterialID(ctx, nil, materialID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = repo.Create(ctx, nil, []*types.Flashcard{
		{MaterialID: materialID, Question: "q3", Answer: "a3"},
	})
	if err != nil {
		t.Fatalf("recreate: %v", err)
	}

	got, err := repo.GetByMaterialID(ctx, nil, materialID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 || got[0].Question != "q3" {
		t.Errorf("expected replaced set, got %v", got)
	}
}

func TestMaterialEmbeddingOrderedByChunkIndex(t *testing.T) {
	db := newTestDB(t)
	repo := NewMaterialEmbeddingRepo(db, logger.NewNop())
	ctx := context.Background()
	materialID := uuid.New()

	encoded, err := types.MarshalEmbedding([]float32{0.5, 0.5})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	_, err = repo.Create(ctx, nil, []*types.MaterialEmbedding{
		{MaterialID: materialID, ChunkIndex: 2, ChunkText: "third", Embedding: encoded},
		{MaterialID: materialID, ChunkIndex: 0, ChunkText: "first", Embedding: encoded},
		{MaterialID: materialID, ChunkIndex: 1, ChunkText: "second", Embedding: encoded},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByMaterialID(ctx, nil, materialID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("rows = %d, want 3", len(got))
	}
	for i, e := range got {
		if e.ChunkIndex != i {
			t.Errorf("position %d has chunk index %d", i, e.ChunkIndex)
		}
		if vec := types.ParseEmbeddingJSON(e.Embedding); len(vec) != 2 {
			t.Errorf("chunk %d embedding did not round-trip", i)
		}
	}
}

func TestTutorMessageOrderingAndClear(t *testing.T) {
	db := newTestDB(t)
	repo := NewTutorMessageRepo(db, logger.NewNop())
	ctx := context.Background()
	materialID := uuid.New()

	base := time.Now().Add(-time.Hour)
	var batch []*types.TutorMessage
	for i := 0; i < 6; i++ {
		role := types.TutorRoleUser
		if i%2 == 1 {
			role = types.TutorRoleAssistant
		}
		batch = append(batch, &types.TutorMessage{
			MaterialID: materialID,
			Role:       role,
			Content:    fmt.Sprintf("message %d", i),
			Context:    "chat",
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		})
	}
	if _, err := repo.Create(ctx, nil, batch); err != nil {
		t.Fatalf("create: %v", err)
	}

	recent, err := repo.GetRecent(ctx, nil, materialID, 4)
	if err != nil {
		t.Fatalf("get recent: %v", err)
	}
	if len(recent) != 4 || recent[0].Content != "message 5" {
		t.Errorf("recent[0] = %v, want newest first", recent[0])
	}

	history, err := repo.GetHistory(ctx, nil, materialID, 10)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(history) != 6 || history[0].Content != "message 0" {
		t.Errorf("history[0] = %v, want oldest first", history[0])
	}

	deleted, err := repo.DeleteByMaterialID(ctx, nil, materialID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != 6 {
		t.Errorf("deleted = %d, want 6", deleted)
	}
}
