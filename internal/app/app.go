package app

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/studyowl/studyowl-backend/internal/clients/redis"
	"github.com/studyowl/studyowl-backend/internal/db"
	"github.com/studyowl/studyowl-backend/internal/handlers"
	"github.com/studyowl/studyowl-backend/internal/logger"
	"github.com/studyowl/studyowl-backend/internal/server"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Redis    *redis.Client
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	// Redis is optional: without it the answer cache degrades to a no-op.
	var cache redis.Store
	redisClient, err := redis.NewClient(log)
	if err != nil {
		log.Warn("Redis unavailable, answer cache disabled", "error", err.Error())
		redisClient = nil
	} else {
		cache = redisClient
	}

	reposet := wireRepos(theDB, log)

	serviceset, err := wireServices(theDB, log, cfg, reposet, cache)
	if err != nil {
		log.Sync()
		return nil, err
	}

	materialHandler := handlers.NewMaterialHandler(
		log,
		reposet.Material,
		reposet.MaterialSummary,
		reposet.MaterialNotes,
		reposet.Flashcard,
		reposet.QuizQuestion,
		serviceset.Processing,
	)
	quizHandler := handlers.NewQuizHandler(log, serviceset.Quiz)
	tutorHandler := handlers.NewTutorHandler(log, serviceset.Tutor)

	router := server.NewRouter(server.RouterConfig{
		MaterialHandler: materialHandler,
		QuizHandler:     quizHandler,
		TutorHandler:    tutorHandler,
	})

	return &App{
		Log:      log,
		DB:       theDB,
		Router:   router,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		Redis:    redisClient,
	}, nil
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Starting HTTP server", "addr", addr)
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	a.Log.Sync()
}
