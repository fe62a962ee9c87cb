package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/studyowl/studyowl-backend/internal/logger"
	"github.com/studyowl/studyowl-backend/internal/services"
)

type TutorHandler struct {
	log      *logger.Logger
	tutorSvc services.TutorService
}

func NewTutorHandler(log *logger.Logger, tutorSvc services.TutorService) *TutorHandler {
	return &TutorHandler{
		log:      log.With("handler", "TutorHandler"),
		tutorSvc: tutorSvc,
	}
}

type tutorMessageRequest struct {
	Message      string `json:"message" binding:"required"`
	Context      string `json:"context"`
	HistoryLimit int    `json:"history_limit"`
}

// POST /api/materials/:id/tutor
// One tutor turn: question in, answer out. Cached answers are flagged.
func (h *TutorHandler) SendMessage(c *gin.Context) {
	id, ok := materialIDParam(c)
	if !ok {
		return
	}
	var req tutorMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	result, err := h.tutorSvc.SendMessage(c.Request.Context(), id, req.Message, req.Context, req.HistoryLimit)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RespondError(c, http.StatusNotFound, "not_found", errors.New("material not found"))
			return
		}
		RespondError(c, http.StatusInternalServerError, "tutor_failed", err)
		return
	}

	RespondOK(c, gin.H{
		"answer": result.Answer,
		"cached": result.Cached,
	})
}

// GET /api/materials/:id/tutor/history?limit=50
func (h *TutorHandler) GetHistory(c *gin.Context) {
	id, ok := materialIDParam(c)
	if !ok {
		return
	}
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			RespondError(c, http.StatusBadRequest, "invalid_limit", errors.New("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	messages, err := h.tutorSvc.GetHistory(c.Request.Context(), id, limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "lookup_failed", err)
		return
	}
	RespondOK(c, messages)
}

// DELETE /api/materials/:id/tutor/history
func (h *TutorHandler) ClearHistory(c *gin.Context) {
	id, ok := materialIDParam(c)
	if !ok {
		return
	}
	deleted, err := h.tutorSvc.ClearHistory(c.Request.Context(), id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "clear_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": deleted})
}
