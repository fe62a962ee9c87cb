package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/studyowl/studyowl-backend/internal/handlers"
)

type RouterConfig struct {
	MaterialHandler *handlers.MaterialHandler
	QuizHandler     *handlers.QuizHandler
	TutorHandler    *handlers.TutorHandler
	AllowOrigins    []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Materials + pipeline
		api.POST("/materials", cfg.MaterialHandler.CreateMaterial)
		api.GET("/materials", cfg.MaterialHandler.ListMaterials)
		api.GET("/materials/:id", cfg.MaterialHandler.GetMaterial)
		api.PUT("/materials/:id", cfg.MaterialHandler.UpdateMaterial)
		api.DELETE("/materials/:id", cfg.MaterialHandler.DeleteMaterial)
		api.POST("/materials/:id/process", cfg.MaterialHandler.ProcessMaterial)

		// Generated artifacts
		api.GET("/materials/:id/summary", cfg.MaterialHandler.GetSummary)
		api.POST("/materials/:id/summary/regenerate", cfg.MaterialHandler.RegenerateSummary)
		api.GET("/materials/:id/notes", cfg.MaterialHandler.GetNotes)
		api.POST("/materials/:id/notes/regenerate", cfg.MaterialHandler.RegenerateNotes)
		api.GET("/materials/:id/flashcards", cfg.MaterialHandler.GetFlashcards)
		api.POST("/materials/:id/flashcards/regenerate", cfg.MaterialHandler.RegenerateFlashcards)
		api.GET("/materials/:id/quiz", cfg.MaterialHandler.GetQuiz)
		api.POST("/materials/:id/quiz/regenerate", cfg.MaterialHandler.RegenerateQuiz)
		api.POST("/materials/:id/flashcards", cfg.MaterialHandler.CreateFlashcard)
		api.PUT("/flashcards/:id", cfg.MaterialHandler.UpdateFlashcard)
		api.DELETE("/flashcards/:id", cfg.MaterialHandler.DeleteFlashcard)

		// Quiz scoring
		api.POST("/quiz/check", cfg.QuizHandler.CheckAnswer)
		api.POST("/materials/:id/quiz/attempt", cfg.QuizHandler.SubmitAttempt)
		api.GET("/materials/:id/quiz/attempts", cfg.QuizHandler.GetAttempts)
		api.GET("/materials/:id/quiz/statistics", cfg.QuizHandler.GetStatistics)
		api.DELETE("/quiz/attempts/:id", cfg.QuizHandler.DeleteAttempt)

		// Tutor
		api.POST("/materials/:id/tutor", cfg.TutorHandler.SendMessage)
		api.GET("/materials/:id/tutor/history", cfg.TutorHandler.GetHistory)
		api.DELETE("/materials/:id/tutor/history", cfg.TutorHandler.ClearHistory)
	}

	return router
}
