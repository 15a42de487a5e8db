package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hireloop/interview-service/internal/http/features/admin"
	"github.com/hireloop/interview-service/internal/http/features/validate"
	"github.com/hireloop/interview-service/internal/http/middleware"
	"github.com/hireloop/interview-service/internal/httputil"
	"github.com/hireloop/interview-service/internal/insights"
	"github.com/hireloop/interview-service/internal/interview"
)

// maxRequestBody bounds request bodies; the largest legitimate payload is a
// bulk schedule of 1000 candidate ids.
const maxRequestBody int64 = 1 << 20

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger     *slog.Logger
	Validator  *interview.Validator
	Issuer     *interview.Issuer
	Lifecycle  *interview.Lifecycle
	Scheduler  *interview.Scheduler
	Store      interview.SessionStore
	Candidates interview.CandidateDirectory
	Sender     interview.InviteSender
	Insights   *insights.Service
	Clock      interview.Clock

	AdminJWTSecret []byte
	JWTIssuer      string

	RateLimitEnabled          bool
	ValidateRequestsPerMinute int
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.RequestSizeLimit(maxRequestBody))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	validateLimiter := middleware.NoRateLimit()
	if cfg.RateLimitEnabled {
		validateLimiter = middleware.RateLimit(middleware.RateLimitConfig{
			Requests: cfg.ValidateRequestsPerMinute,
			Window:   time.Minute,
			Logger:   cfg.Logger,
		})
	}

	// Candidate-facing access check
	validateHandler := validate.NewHandler(cfg.Validator, cfg.Logger)
	r.With(validateLimiter).Get("/interview/validate/{token}", validateHandler.Validate)

	// Administrator session management
	adminHandler := admin.NewHandler(
		cfg.Logger,
		cfg.Issuer,
		cfg.Lifecycle,
		cfg.Scheduler,
		cfg.Store,
		cfg.Candidates,
		cfg.Sender,
		cfg.Insights,
		cfg.Clock,
	)
	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.AdminJWTSecret, cfg.JWTIssuer))
		r.Post("/admin/interview-sessions", adminHandler.CreateSession)
		r.Post("/admin/interview-sessions/{id}/status", adminHandler.UpdateStatus)
		r.Post("/admin/interview-sessions/bulk-schedule", adminHandler.BulkSchedule)
		r.Get("/admin/exams/{examID}/insights", adminHandler.ExamInsights)
	})

	return r
}
