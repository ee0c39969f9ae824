package routes

import (
	"net/http"

	"github.com/pledgeline/pledgeline/internal/app"
	"github.com/pledgeline/pledgeline/internal/handler"
	"github.com/pledgeline/pledgeline/internal/metrics"
	"github.com/pledgeline/pledgeline/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	goal := handler.NewGoalHandler(app.GoalService)
	checkIn := handler.NewCheckInHandler(app.GoalService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Health)
	if app.Cfg.MetricsEnabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	// ============================================================================
	// PROTECTED ROUTES (/api/*)
	// ============================================================================

	requireAuth := middleware.RequireAuth(app.AuthService)
	limitWrites := middleware.RateLimitWrites(app.Cfg.RateLimitWrites, app.Cfg.RateLimitWindow)
	protect := func(h http.HandlerFunc) http.HandlerFunc {
		return requireAuth(limitWrites(h))
	}

	// Goals
	mux.HandleFunc("GET /api/goals", protect(goal.List))
	mux.HandleFunc("POST /api/goals", protect(goal.Create))
	mux.HandleFunc("GET /api/goals/{id}", protect(goal.Show))
	mux.HandleFunc("PUT /api/goals/{id}", protect(goal.Update))
	mux.HandleFunc("DELETE /api/goals/{id}", protect(goal.Delete))
	mux.HandleFunc("POST /api/goals/{id}/pause", protect(goal.Pause))
	mux.HandleFunc("POST /api/goals/{id}/resume", protect(goal.Resume))

	// Progress
	mux.HandleFunc("GET /api/goals/{id}/status", protect(goal.Status))
	mux.HandleFunc("GET /api/goals/{id}/chart", protect(goal.Chart))
	mux.HandleFunc("POST /api/goals/{id}/segments", protect(goal.AddSegment))
	mux.HandleFunc("GET /api/stats", protect(goal.Stats))

	// Check-ins
	mux.HandleFunc("GET /api/goals/{id}/check-ins", protect(checkIn.List))
	mux.HandleFunc("POST /api/goals/{id}/check-ins", protect(checkIn.Create))
	mux.HandleFunc("DELETE /api/goals/{id}/check-ins/{checkInID}", protect(checkIn.Delete))

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Config(app.Cfg),
		middleware.SecurityHeaders,
		middleware.RequestLogging, // Last, so it sees the route pattern the mux matched
	)

	return handler
}
