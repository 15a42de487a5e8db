package validate

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hireloop/interview-service/internal/domain"
	"github.com/hireloop/interview-service/internal/httputil"
	"github.com/hireloop/interview-service/internal/interview"
)

// Handler serves candidate access checks.
type Handler struct {
	validator *interview.Validator
	logger    *slog.Logger
}

// NewHandler creates a new validate handler.
func NewHandler(validator *interview.Validator, logger *slog.Logger) *Handler {
	return &Handler{validator: validator, logger: logger}
}

// AllowResponse is returned when the bearer may enter the interview.
type AllowResponse struct {
	Success       bool                     `json:"success"`
	Session       *domain.InterviewSession `json:"session"`
	IsProctored   bool                     `json:"isProctored"`
	ResumeContext json.RawMessage          `json:"resumeContext,omitempty"`
}

// DenyResponse is returned when access is refused. The window fields are
// included only for NotYetAvailable and Expired denials.
type DenyResponse struct {
	Success        bool       `json:"success"`
	Error          string     `json:"error"`
	Reason         string     `json:"reason"`
	ScheduledStart *time.Time `json:"scheduledStart,omitempty"`
	ScheduledEnd   *time.Time `json:"scheduledEnd,omitempty"`
}

// Validate decides whether the token bearer may (re)enter their interview.
// GET /interview/validate/{token}
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	decision, err := h.validator.Validate(r.Context(), token)
	if err != nil {
		h.logger.Error("validation failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to validate interview access")
		return
	}

	if decision.Allowed {
		httputil.JSON(w, http.StatusOK, AllowResponse{
			Success:       true,
			Session:       decision.Session,
			IsProctored:   decision.Session.IsProctored(),
			ResumeContext: decision.ResumeContext,
		})
		return
	}

	resp := DenyResponse{
		Error:  decision.Message,
		Reason: string(decision.Reason),
	}
	status := http.StatusBadRequest
	switch decision.Reason {
	case domain.DenyNotFound:
		status = http.StatusNotFound
	case domain.DenyNotYetAvailable, domain.DenyExpired:
		if decision.Session != nil {
			resp.ScheduledStart = decision.Session.ScheduledStart
			resp.ScheduledEnd = decision.Session.ScheduledEnd
		}
	}
	httputil.JSON(w, status, resp)
}
