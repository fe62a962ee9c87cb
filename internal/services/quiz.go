package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/studyowl/studyowl-backend/internal/logger"
	"github.com/studyowl/studyowl-backend/internal/repos"
	"github.com/studyowl/studyowl-backend/internal/types"
)

// ErrNoAnswers is returned when an attempt arrives without a single answer.
var ErrNoAnswers = fmt.Errorf("quiz attempt has no answers")

// ErrQuestionMismatch is returned when an answered question belongs to a
// different material than the attempt.
var ErrQuestionMismatch = fmt.Errorf("question does not belong to this material")

// QuizAnswer is one submitted answer: the chosen option as full text, the
// same form the questions store their correct option in.
type QuizAnswer struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Selected   string    `json:"selected" binding:"required"`
}

// QuizAnswerResult is the verdict for one answer.
type QuizAnswerResult struct {
	QuestionID    uuid.UUID `json:"question_id"`
	Selected      string    `json:"selected"`
	Correct       bool      `json:"correct"`
	CorrectOption string    `json:"correct_option"`
}

// QuizAttemptResult pairs the persisted attempt with its per-answer
// verdicts.
type QuizAttemptResult struct {
	Attempt *types.QuizAttempt `json:"attempt"`
	Results []QuizAnswerResult `json:"results"`
}

// QuizStatistics aggregates a material's attempt history.
type QuizStatistics struct {
	TotalAttempts     int                  `json:"total_attempts"`
	BestScore         int                  `json:"best_score"`
	BestPercentage    int                  `json:"best_percentage"`
	AverageScore      float64              `json:"average_score"`
	AveragePercentage float64              `json:"average_percentage"`
	LastAttempt       *types.QuizAttempt   `json:"last_attempt,omitempty"`
	Attempts          []*types.QuizAttempt `json:"attempts"`
}

// QuizService scores submitted answers against the stored questions and
// keeps the attempt history per material.
type QuizService interface {
	CheckAnswer(ctx context.Context, questionID uuid.UUID, selected string) (*QuizAnswerResult, error)
	SubmitAttempt(ctx context.Context, materialID uuid.UUID, answers []QuizAnswer) (*QuizAttemptResult, error)
	GetAttempts(ctx context.Context, materialID uuid.UUID, limit int) ([]*types.QuizAttempt, error)
	GetStatistics(ctx context.Context, materialID uuid.UUID) (*QuizStatistics, error)
	DeleteAttempt(ctx context.Context, attemptID uuid.UUID) error
}

type quizService struct {
	materialRepo repos.MaterialRepo
	questionRepo repos.QuizQuestionRepo
	attemptRepo  repos.QuizAttemptRepo
	log          *logger.Logger
}

func NewQuizService(
	materialRepo repos.MaterialRepo,
	questionRepo repos.QuizQuestionRepo,
	attemptRepo repos.QuizAttemptRepo,
	baseLog *logger.Logger,
) QuizService {
	return &quizService{
		materialRepo: materialRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		log:          baseLog.With("service", "QuizService"),
	}
}

func (s *quizService) CheckAnswer(ctx context.Context, questionID uuid.UUID, selected string) (*QuizAnswerResult, error) {
	question, err := s.questionRepo.GetByID(ctx, nil, questionID)
	if err != nil {
		return nil, err
	}
	return &QuizAnswerResult{
		QuestionID:    question.ID,
		Selected:      selected,
		Correct:       selected == question.CorrectOption,
		CorrectOption: question.CorrectOption,
	}, nil
}

func (s *quizService) SubmitAttempt(ctx context.Context, materialID uuid.UUID, answers []QuizAnswer) (*QuizAttemptResult, error) {
	if len(answers) == 0 {
		return nil, ErrNoAnswers
	}
	if _, err := s.materialRepo.GetByID(ctx, nil, materialID); err != nil {
		return nil, err
	}

	results := make([]QuizAnswerResult, 0, len(answers))
	correct := 0
	for _, answer := range answers {
		question, err := s.questionRepo.GetByID(ctx, nil, answer.QuestionID)
		if err != nil {
			return nil, fmt.Errorf("question %s: %w", answer.QuestionID, err)
		}
		if question.MaterialID != materialID {
			return nil, ErrQuestionMismatch
		}
		isCorrect := answer.Selected == question.CorrectOption
		if isCorrect {
			correct++
		}
		results = append(results, QuizAnswerResult{
			QuestionID:    question.ID,
			Selected:      answer.Selected,
			Correct:       isCorrect,
			CorrectOption: question.CorrectOption,
		})
	}

	total := len(answers)
	percentage := int(math.Round(float64(correct) / float64(total) * 100))

	encoded, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	attempt, err := s.attemptRepo.Create(ctx, nil, &types.QuizAttempt{
		MaterialID:     materialID,
		Score:          correct,
		TotalQuestions: total,
		Percentage:     percentage,
		Answers:        encoded,
		CompletedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("save attempt: %w", err)
	}

	s.log.Info("Quiz attempt scored", "material_id", materialID,
		"score", correct, "total", total, "percentage", percentage)
	return &QuizAttemptResult{Attempt: attempt, Results: results}, nil
}

func (s *quizService) GetAttempts(ctx context.Context, materialID uuid.UUID, limit int) ([]*types.QuizAttempt, error) {
	return s.attemptRepo.GetByMaterialID(ctx, nil, materialID, limit)
}

func (s *quizService) GetStatistics(ctx context.Context, materialID uuid.UUID) (*QuizStatistics, error) {
	attempts, err := s.attemptRepo.GetByMaterialID(ctx, nil, materialID, 0)
	if err != nil {
		return nil, err
	}

	stats := &QuizStatistics{Attempts: attempts}
	if len(attempts) == 0 {
		return stats, nil
	}

	stats.TotalAttempts = len(attempts)
	stats.LastAttempt = attempts[0]

	var scoreSum, percentageSum int
	for _, attempt := range attempts {
		if attempt.Score > stats.BestScore {
			stats.BestScore = attempt.Score
		}
		if attempt.Percentage > stats.BestPercentage {
			stats.BestPercentage = attempt.Percentage
		}
		scoreSum += attempt.Score
		percentageSum += attempt.Percentage
	}
	stats.AverageScore = float64(scoreSum) / float64(len(attempts))
	stats.AveragePercentage = float64(percentageSum) / float64(len(attempts))
	return stats, nil
}

func (s *quizService) DeleteAttempt(ctx context.Context, attemptID uuid.UUID) error {
	return s.attemptRepo.DeleteByID(ctx, nil, attemptID)
}
