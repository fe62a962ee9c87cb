package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyowl/studyowl-backend/internal/logger"
	"github.com/studyowl/studyowl-backend/internal/repos"
	"github.com/studyowl/studyowl-backend/internal/services"
	"github.com/studyowl/studyowl-backend/internal/types"
)

type MaterialHandler struct {
	log           *logger.Logger
	materialRepo  repos.MaterialRepo
	summaryRepo   repos.MaterialSummaryRepo
	notesRepo     repos.MaterialNotesRepo
	flashcardRepo repos.FlashcardRepo
	quizRepo      repos.QuizQuestionRepo
	processing    services.ProcessingService
}

func NewMaterialHandler(
	log *logger.Logger,
	materialRepo repos.MaterialRepo,
	summaryRepo repos.MaterialSummaryRepo,
	notesRepo repos.MaterialNotesRepo,
	flashcardRepo repos.FlashcardRepo,
	quizRepo repos.QuizQuestionRepo,
	processing services.ProcessingService,
) *MaterialHandler {
	return &MaterialHandler{
		log:           log.With("handler", "MaterialHandler"),
		materialRepo:  materialRepo,
		summaryRepo:   summaryRepo,
		notesRepo:     notesRepo,
		flashcardRepo: flashcardRepo,
		quizRepo:      quizRepo,
		processing:    processing,
	}
}

func materialIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("invalid material id"))
		return uuid.Nil, false
	}
	return id, true
}

type createMaterialRequest struct {
	Title    string `json:"title" binding:"required"`
	FullText string `json:"full_text"`
}

// POST /api/materials
// Register a material with its extracted text; processing is a separate
// call.
func (h *MaterialHandler) CreateMaterial(c *gin.Context) {
	var req createMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	material, err := h.materialRepo.Create(c.Request.Context(), nil, &types.Material{
		Title:            req.Title,
		FullText:         req.FullText,
		ProcessingStatus: types.ProcessingStatusQueued,
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "create_failed", err)
		return
	}
	RespondCreated(c, material)
}

// GET /api/materials
func (h *MaterialHandler) ListMaterials(c *gin.Context) {
	materials, err := h.materialRepo.List(c.Request.Context(), nil)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "lookup_failed", err)
		return
	}
	RespondOK(c, materials)
}

type updateMaterialRequest struct {
	Title *string `json:"title"`
}

// PUT /api/materials/:id
// Only the title is mutable; the text is an immutable snapshot.
func (h *MaterialHandler) UpdateMaterial(c *gin.Context) {
	id, ok := materialIDParam(c)
	if !ok {
		return
	}
	var req updateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.Title == nil {
		material, err := h.materialRepo.GetByID(c.Request.Context(), nil, id)
		if err != nil {
			h.respondLookupError(c, err)
			return
		}
		RespondOK(c, material)
		return
	}

	material, err := h.materialRepo.UpdateTitle(c.Request.Context(), nil, id, *req.Title)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	RespondOK(c, material)
}

// DELETE /api/materials/:id
// Removes the material along with all generated artifacts, embeddings,
// attempts and tutor history.
func (h *MaterialHandler) DeleteMaterial(c *gin.Context) {
	id, ok := materialIDParam(c)
	if !ok {
		return
	}
	if err := h.materialRepo.Delete(c.Request.Context(), nil, id); err != nil {
		h.respondLookupError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": id})
}

// GET /api/materials/:id
// Status, progress and error of the pipeline, plus the material itself.
func (h *MaterialHandler) GetMaterial(c *gin.Context) {
	id, ok := materialIDParam(c)
	if !ok {
		return
	}
	material, err := h.materialRepo.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	RespondOK(c, material)
}

// POST /api/materials/:id/process
// Kick off the full pipeline. Runs detached from the request; poll
// GET /api/materials/:id for progress.
func (h *MaterialHandler) ProcessMaterial(c *gin.Context) {
	id, ok := materialIDParam(c)
	if !ok {
		return
	}
	material, err := h.materialRepo.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	if strings.TrimSpace(material.FullText) == "" {
		RespondError(c, http.StatusUnprocessableEntity, "no_text", services.ErrNoText)
		return
	}

	// The status flip happens before the response so a poll issued right
	// after the 202 already sees the material as processing.
	if err := h.materialRepo.UpdateProcessingState(c.Request.Context(), nil, material.ID, types.ProcessingStatusProcessing, 35, nil); err != nil {
		RespondError(c, http.StatusInternalServerError, "dispatch_failed", err)
		return
	}

	go func() {
		if err := h.processing.ProcessMaterial(context.Background(), material.ID, material.FullText); err != nil {
			h.log.Error("Background processing failed", "material_id", material.ID, "error", err.Error())
		}
	}()

	RespondAccepted(c, gin.H{
		"material_id": material.ID,
		"status":      types.ProcessingStatusProcessing,
	})
}

// GET /api/materials/:id/summary
func (h *MaterialHandler) GetSummary(c *gin.Context) {
	id, ok := materialIDParam(c)
	if !ok {
		return
	}
	summary, err := h.summaryRepo.GetByMaterialID(c.Request.Context(), nil, id)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	RespondOK(c, summary)
}

// GET /api/materials/:id/notes
func (h *MaterialHandler) GetNotes(c *gin.Context) {
	id, ok := materialIDParam(c)
	if !ok {
		return
	}
	notes, err := h.notesRepo.GetByMaterialID(c.Request.Context(), nil, id)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	RespondOK(c, notes)
}

// GET /api/materials/:id/flashcards
func (h *MaterialHandler) GetFlashcards(c *gin.Context) {
	id, ok := materialIDParam(c)
	if !ok {
		return
	}
	cards, err := h.flashcardRepo.GetByMaterialID(c.Request.Context(), nil, id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "lookup_failed", err)
		return
	}
	RespondOK(c, cards)
}

// GET /api/materials/:id/quiz
func (h *MaterialHandler) GetQuiz(c *gin.Context) {
	id, ok := materialIDParam(c)
	if !ok {
		return
	}
	questions, err := h.quizRepo.GetByMaterialID(c.Request.Context(), nil, id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "lookup_failed", err)
		return
	}
	RespondOK(c, questions)
}

type createFlashcardRequest struct {
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
}

// POST /api/materials/:id/flashcards
// Adds a single hand-written card next to the generated ones.
func (h *MaterialHandler) CreateFlashcard(c *gin.Context) {
	id, ok := materialIDParam(c)
	if !ok {
		return
	}
	var req createFlashcardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if _, err := h.materialRepo.GetByID(c.Request.Context(), nil, id); err != nil {
		h.respondLookupError(c, err)
		return
	}

	cards, err := h.flashcardRepo.Create(c.Request.Context(), nil, []*types.Flashcard{
		{MaterialID: id, Question: req.Question, Answer: req.Answer},
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "create_failed", err)
		return
	}
	RespondCreated(c, cards[0])
}

type updateFlashcardRequest struct {
	Question *string `json:"question"`
	Answer   *string `json:"answer"`
}

// PUT /api/flashcards/:id
func (h *MaterialHandler) UpdateFlashcard(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("invalid flashcard id"))
		return
	}
	var req updateFlashcardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	card, err := h.flashcardRepo.Update(c.Request.Context(), nil, id, req.Question, req.Answer)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	RespondOK(c, card)
}

// DELETE /api/flashcards/:id
func (h *MaterialHandler) DeleteFlashcard(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("invalid flashcard id"))
		return
	}
	if err := h.flashcardRepo.DeleteByID(c.Request.Context(), nil, id); err != nil {
		h.respondLookupError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": id})
}

// POST /api/materials/:id/summary/regenerate
func (h *MaterialHandler) RegenerateSummary(c *gin.Context) {
	id, ok := materialIDParam(c)
	if !ok {
		return
	}
	summary, err := h.processing.RegenerateSummary(c.Request.Context(), id)
	if err != nil {
		h.respondRegenerateError(c, err)
		return
	}
	RespondOK(c, summary)
}

// POST /api/materials/:id/notes/regenerate
func (h *MaterialHandler) RegenerateNotes(c *gin.Context) {
	id, ok := materialIDParam(c)
	if !ok {
		return
	}
	notes, err := h.processing.RegenerateNotes(c.Request.Context(), id)
	if err != nil {
		h.respondRegenerateError(c, err)
		return
	}
	RespondOK(c, notes)
}

type regenerateCountRequest struct {
	Count int `json:"count"`
}

// POST /api/materials/:id/flashcards/regenerate
func (h *MaterialHandler) RegenerateFlashcards(c *gin.Context) {
	id, ok := materialIDParam(c)
	if !ok {
		return
	}
	var req regenerateCountRequest
	_ = c.ShouldBindJSON(&req)

	cards, err := h.processing.RegenerateFlashcards(c.Request.Context(), id, req.Count)
	if err != nil {
		h.respondRegenerateError(c, err)
		return
	}
	RespondOK(c, cards)
}

// POST /api/materials/:id/quiz/regenerate
func (h *MaterialHandler) RegenerateQuiz(c *gin.Context) {
	id, ok := materialIDParam(c)
	if !ok {
		return
	}
	var req regenerateCountRequest
	_ = c.ShouldBindJSON(&req)

	questions, err := h.processing.RegenerateQuiz(c.Request.Context(), id, req.Count)
	if err != nil {
		h.respondRegenerateError(c, err)
		return
	}
	RespondOK(c, questions)
}

func (h *MaterialHandler) respondLookupError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		RespondError(c, http.StatusNotFound, "not_found", errors.New("not found"))
		return
	}
	RespondError(c, http.StatusInternalServerError, "lookup_failed", err)
}

func (h *MaterialHandler) respondRegenerateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		RespondError(c, http.StatusNotFound, "not_found", errors.New("material not found"))
	case errors.Is(err, services.ErrNoText):
		RespondError(c, http.StatusUnprocessableEntity, "no_text", err)
	default:
		RespondError(c, http.StatusInternalServerError, "generation_failed", err)
	}
}
