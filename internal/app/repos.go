package app

import (
	"gorm.io/gorm"

	"github.com/studyowl/studyowl-backend/internal/logger"
	"github.com/studyowl/studyowl-backend/internal/repos"
)

type Repos struct {
	Material          repos.MaterialRepo
	MaterialSummary   repos.MaterialSummaryRepo
	MaterialNotes     repos.MaterialNotesRepo
	Flashcard         repos.FlashcardRepo
	QuizQuestion      repos.QuizQuestionRepo
	QuizAttempt       repos.QuizAttemptRepo
	MaterialEmbedding repos.MaterialEmbeddingRepo
	TutorMessage      repos.TutorMessageRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Material:          repos.NewMaterialRepo(db, log),
		MaterialSummary:   repos.NewMaterialSummaryRepo(db, log),
		MaterialNotes:     repos.NewMaterialNotesRepo(db, log),
		Flashcard:         repos.NewFlashcardRepo(db, log),
		QuizQuestion:      repos.NewQuizQuestionRepo(db, log),
		QuizAttempt:       repos.NewQuizAttemptRepo(db, log),
		MaterialEmbedding: repos.NewMaterialEmbeddingRepo(db, log),
		TutorMessage:      repos.NewTutorMessageRepo(db, log),
	}
}
