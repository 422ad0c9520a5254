package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/templui/ritual/internal/config"
	"github.com/templui/ritual/internal/db"
	"github.com/templui/ritual/internal/middleware"
	"github.com/templui/ritual/internal/repository"
	"github.com/templui/ritual/internal/service"
	"github.com/templui/ritual/internal/storage"
)

type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	TokenVerifier   *middleware.TokenVerifier
	GoalService     *service.GoalService
	ActivityService *service.ActivityService
	LogService      *service.LogService
	StatsService    *service.StatsService
	MediaService    *service.MediaService
	AnalysisService *service.AnalysisService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	if cfg.DBMigrate {
		err = db.RunMigrations(database.DB, cfg.DBDriver)
		if err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to run migrations: %v", err)
		}
	}

	return Wire(ctx, cfg, database)
}

// Wire builds the repositories and services on an open database.
func Wire(ctx context.Context, cfg *config.Config, database *sqlx.DB) (*App, error) {
	loc := cfg.Location()

	// Repositories
	activityCache := repository.NewActivityCache()
	goalRepository := repository.NewGoalRepository(database, activityCache)
	activityRepository := repository.NewActivityRepository(database, activityCache)
	logRepository := repository.NewLogRepository(database)

	// Storage (optional: media uploads are disabled without a bucket)
	var mediaStorage storage.Storage
	s, err := storage.New(ctx, cfg)
	switch {
	case errors.Is(err, storage.ErrDisabled):
		slog.Info("media storage not configured, uploads disabled")
	case err != nil:
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	default:
		mediaStorage = s
	}

	// Services
	goalService := service.NewGoalService(goalRepository, activityRepository, logRepository)
	activityService := service.NewActivityService(activityRepository, goalRepository, logRepository, loc)
	logService := service.NewLogService(logRepository, activityRepository, goalService, loc)
	statsService := service.NewStatsService(logRepository, activityRepository, loc)
	mediaService := service.NewMediaService(logRepository, mediaStorage)
	analysisService := service.NewAnalysisService(logRepository, cfg.AnalysisURL, cfg.AnalysisAPIKey, cfg.AnalysisTimeout)

	return &App{
		Cfg:             cfg,
		DB:              database,
		TokenVerifier:   middleware.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		GoalService:     goalService,
		ActivityService: activityService,
		LogService:      logService,
		StatsService:    statsService,
		MediaService:    mediaService,
		AnalysisService: analysisService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return db.Close(a.DB)
	}
	return nil
}
