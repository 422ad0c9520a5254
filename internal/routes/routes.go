package routes

import (
	"net/http"
	"time"

	"github.com/templui/ritual/internal/app"
	"github.com/templui/ritual/internal/handler"
	"github.com/templui/ritual/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	loc := app.Cfg.Location()

	// Handlers
	health := handler.NewHealthHandler(app.DB)
	goal := handler.NewGoalHandler(app.GoalService, app.ActivityService, app.LogService, app.StatsService, loc)
	activity := handler.NewActivityHandler(app.ActivityService, app.GoalService, loc)
	logs := handler.NewLogHandler(app.LogService, app.GoalService)
	stats := handler.NewStatsHandler(app.StatsService)
	media := handler.NewMediaHandler(app.MediaService, app.GoalService, app.Cfg.MediaMaxUploadBytes)
	analysis := handler.NewAnalysisHandler(app.AnalysisService, app.GoalService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Health)
	mux.HandleFunc("GET /api/goals/defaults", goal.Defaults)

	// ============================================================================
	// PROTECTED ROUTES (/api/*)
	// ============================================================================

	// Uploads and analysis are expensive: 10 requests per minute per user
	limiter := middleware.RateLimit(middleware.NewRateLimiter(10, time.Minute))

	// Goals
	mux.HandleFunc("GET /api/goals", middleware.RequireAuth(goal.List))
	mux.HandleFunc("POST /api/goals", middleware.RequireAuth(goal.Create))
	mux.HandleFunc("GET /api/goals/{id}", middleware.RequireAuth(goal.Show))
	mux.HandleFunc("PATCH /api/goals/{id}", middleware.RequireAuth(goal.Update))
	mux.HandleFunc("DELETE /api/goals/{id}", middleware.RequireAuth(goal.Delete))
	mux.HandleFunc("PUT /api/goals/{id}/activities", middleware.RequireAuth(goal.ReplaceActivities))
	mux.HandleFunc("GET /api/goals/{id}/activities", middleware.RequireAuth(goal.ActivityStates))
	mux.HandleFunc("POST /api/goals/{id}/copy", middleware.RequireAuth(goal.Copy))
	mux.HandleFunc("POST /api/goals/{id}/progress", middleware.RequireAuth(goal.Progress))
	mux.HandleFunc("GET /api/goals/{id}/pending", middleware.RequireAuth(goal.Pending))
	mux.HandleFunc("GET /api/goals/{id}/stats", middleware.RequireAuth(goal.Stats))
	mux.HandleFunc("GET /api/goals/{id}/streak", middleware.RequireAuth(goal.Streak))
	mux.HandleFunc("GET /api/goals/{id}/logs", middleware.RequireAuth(goal.Logs))

	// Media & analysis
	mux.HandleFunc("POST /api/goals/{id}/media", middleware.RequireAuth(limiter(media.Upload)))
	mux.HandleFunc("POST /api/goals/{id}/analysis", middleware.RequireAuth(limiter(analysis.Analyze)))

	// Activities
	mux.HandleFunc("POST /api/activities", middleware.RequireAuth(activity.Create))
	mux.HandleFunc("GET /api/activities/{id}", middleware.RequireAuth(activity.Show))
	mux.HandleFunc("PUT /api/activities/{id}", middleware.RequireAuth(activity.Update))
	mux.HandleFunc("DELETE /api/activities/{id}", middleware.RequireAuth(activity.Delete))
	mux.HandleFunc("GET /api/activities/{id}/logs/today", middleware.RequireAuth(logs.ActivityToday))

	// Today
	mux.HandleFunc("GET /api/pending", middleware.RequireAuth(activity.Pending))
	mux.HandleFunc("GET /api/reminders", middleware.RequireAuth(activity.Reminders))
	mux.HandleFunc("GET /api/streak", middleware.RequireAuth(stats.Streak))

	// Logs
	mux.HandleFunc("GET /api/logs", middleware.RequireAuth(logs.List))
	mux.HandleFunc("POST /api/logs", middleware.RequireAuth(logs.Create))

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Auth(app.TokenVerifier), // Before logging so the user id is known
		middleware.RequestLogging,
	)

	return handler
}
