package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyowl/studyowl-backend/internal/logger"
	"github.com/studyowl/studyowl-backend/internal/services"
)

type QuizHandler struct {
	log  *logger.Logger
	quiz services.QuizService
}

func NewQuizHandler(log *logger.Logger, quiz services.QuizService) *QuizHandler {
	return &QuizHandler{
		log:  log.With("handler", "QuizHandler"),
		quiz: quiz,
	}
}

type checkAnswerRequest struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Selected   string    `json:"selected" binding:"required"`
}

// POST /api/quiz/check
// Verdict for a single answer, nothing persisted.
func (h *QuizHandler) CheckAnswer(c *gin.Context) {
	var req checkAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	result, err := h.quiz.CheckAnswer(c.Request.Context(), req.QuestionID, req.Selected)
	if err != nil {
		h.respondQuizError(c, err)
		return
	}
	RespondOK(c, result)
}

type submitAttemptRequest struct {
	Answers []services.QuizAnswer `json:"answers" binding:"required"`
}

// POST /api/materials/:id/quiz/attempt
// Scores the full answer set and records the attempt.
func (h *QuizHandler) SubmitAttempt(c *gin.Context) {
	id, ok := materialIDParam(c)
	if !ok {
		return
	}
	var req submitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	result, err := h.quiz.SubmitAttempt(c.Request.Context(), id, req.Answers)
	if err != nil {
		h.respondQuizError(c, err)
		return
	}
	RespondCreated(c, result)
}

// GET /api/materials/:id/quiz/attempts
func (h *QuizHandler) GetAttempts(c *gin.Context) {
	id, ok := materialIDParam(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			RespondError(c, http.StatusBadRequest, "invalid_limit", errors.New("limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	attempts, err := h.quiz.GetAttempts(c.Request.Context(), id, limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "lookup_failed", err)
		return
	}
	RespondOK(c, attempts)
}

// GET /api/materials/:id/quiz/statistics
func (h *QuizHandler) GetStatistics(c *gin.Context) {
	id, ok := materialIDParam(c)
	if !ok {
		return
	}
	stats, err := h.quiz.GetStatistics(c.Request.Context(), id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "lookup_failed", err)
		return
	}
	RespondOK(c, stats)
}

// DELETE /api/quiz/attempts/:id
func (h *QuizHandler) DeleteAttempt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("invalid attempt id"))
		return
	}
	if err := h.quiz.DeleteAttempt(c.Request.Context(), id); err != nil {
		h.respondQuizError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": id})
}

func (h *QuizHandler) respondQuizError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		RespondError(c, http.StatusNotFound, "not_found", errors.New("not found"))
	case errors.Is(err, services.ErrNoAnswers):
		RespondError(c, http.StatusBadRequest, "no_answers", err)
	case errors.Is(err, services.ErrQuestionMismatch):
		RespondError(c, http.StatusUnprocessableEntity, "question_mismatch", err)
	default:
		RespondError(c, http.StatusInternalServerError, "quiz_failed", err)
	}
}
