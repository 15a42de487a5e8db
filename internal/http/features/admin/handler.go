package admin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hireloop/interview-service/internal/domain"
	"github.com/hireloop/interview-service/internal/httputil"
	"github.com/hireloop/interview-service/internal/insights"
	"github.com/hireloop/interview-service/internal/interview"
)

// Handler serves administrator session management endpoints.
type Handler struct {
	logger     *slog.Logger
	issuer     *interview.Issuer
	lifecycle  *interview.Lifecycle
	scheduler  *interview.Scheduler
	store      interview.SessionStore
	candidates interview.CandidateDirectory
	sender     interview.InviteSender
	insights   *insights.Service
	clock      interview.Clock
}

// NewHandler creates a new admin handler. sender may be nil when SMTP is not
// configured.
func NewHandler(
	logger *slog.Logger,
	issuer *interview.Issuer,
	lifecycle *interview.Lifecycle,
	scheduler *interview.Scheduler,
	store interview.SessionStore,
	candidates interview.CandidateDirectory,
	sender interview.InviteSender,
	insightsService *insights.Service,
	clock interview.Clock,
) *Handler {
	return &Handler{
		logger:     logger,
		issuer:     issuer,
		lifecycle:  lifecycle,
		scheduler:  scheduler,
		store:      store,
		candidates: candidates,
		sender:     sender,
		insights:   insightsService,
		clock:      clock,
	}
}

// CreateSessionRequest schedules a single interview session.
type CreateSessionRequest struct {
	CandidateID      string     `json:"candidateId"`
	ExamID           *string    `json:"examId,omitempty"`
	SubcategoryID    *string    `json:"subcategoryId,omitempty"`
	ScheduledTime    *time.Time `json:"scheduledTime,omitempty"`
	ScheduledEndTime *time.Time `json:"scheduledEndTime,omitempty"`
	InterviewMode    string     `json:"interviewMode,omitempty"`
	SendEmail        bool       `json:"sendEmail"`
}

// CreateSessionResponse is the single-create result.
type CreateSessionResponse struct {
	Success   bool                     `json:"success"`
	Session   *domain.InterviewSession `json:"session"`
	EmailSent bool                     `json:"emailSent"`
}

// CreateSession issues one session and optionally dispatches the link.
// POST /admin/interview-sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	candidateID, err := uuid.Parse(req.CandidateID)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "candidateId must be a valid id")
		return
	}
	examID, err := parseOptionalID(req.ExamID)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "examId must be a valid id")
		return
	}
	subcategoryID, err := parseOptionalID(req.SubcategoryID)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "subcategoryId must be a valid id")
		return
	}

	candidate, err := h.candidates.GetByID(r.Context(), candidateID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	session, err := h.issuer.IssueSession(r.Context(), interview.IssueParams{
		CandidateID:    candidateID,
		ExamID:         examID,
		SubcategoryID:  subcategoryID,
		ScheduledStart: req.ScheduledTime,
		ScheduledEnd:   req.ScheduledEndTime,
		Mode:           domain.InterviewMode(req.InterviewMode),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	emailSent := false
	if req.SendEmail && h.sender != nil {
		if err := h.sender.SendInterviewInvite(r.Context(), candidate, session); err != nil {
			// The session stands regardless; the link can be re-sent later.
			h.logger.Warn("failed to send interview invite",
				"session_id", session.ID, "error", err)
		} else {
			emailSent = true
			if err := h.store.MarkLinkSent(r.Context(), session.ID, h.clock.Now()); err != nil {
				h.logger.Error("failed to record link dispatch",
					"session_id", session.ID, "error", err)
			}
		}
	}

	httputil.JSON(w, http.StatusOK, CreateSessionResponse{
		Success:   true,
		Session:   session,
		EmailSent: emailSent,
	})
}

// UpdateStatusRequest is an explicit lifecycle transition.
type UpdateStatusRequest struct {
	Status    string     `json:"status"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// UpdateStatus applies an explicit status transition.
// POST /admin/interview-sessions/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, http.StatusNotFound, "session not found")
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.lifecycle.Transition(r.Context(), id, interview.TransitionInput{
		Status:    domain.SessionStatus(req.Status),
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"session": session,
	})
}

// BulkScheduleRequest schedules sessions for many candidates at once.
type BulkScheduleRequest struct {
	CandidateIDs     []string   `json:"candidateIds"`
	ExamID           *string    `json:"examId,omitempty"`
	SubcategoryID    *string    `json:"subcategoryId,omitempty"`
	ScheduledTime    *time.Time `json:"scheduledTime,omitempty"`
	ScheduledEndTime *time.Time `json:"scheduledEndTime,omitempty"`
	InterviewMode    string     `json:"interviewMode,omitempty"`
	SendEmail        bool       `json:"sendEmail"`
}

// BulkSchedule issues sessions for a list of candidates with per-item failure
// isolation.
// POST /admin/interview-sessions/bulk-schedule
func (h *Handler) BulkSchedule(w http.ResponseWriter, r *http.Request) {
	var req BulkScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	examID, err := parseOptionalID(req.ExamID)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "examId must be a valid id")
		return
	}
	subcategoryID, err := parseOptionalID(req.SubcategoryID)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "subcategoryId must be a valid id")
		return
	}

	candidateIDs := make([]uuid.UUID, 0, len(req.CandidateIDs))
	for _, raw := range req.CandidateIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.Error(w, http.StatusBadRequest, "candidateIds must be valid ids")
			return
		}
		candidateIDs = append(candidateIDs, id)
	}

	result, err := h.scheduler.ScheduleBatch(r.Context(), candidateIDs, interview.BatchParams{
		ExamID:         examID,
		SubcategoryID:  subcategoryID,
		ScheduledStart: req.ScheduledTime,
		ScheduledEnd:   req.ScheduledEndTime,
		Mode:           domain.InterviewMode(req.InterviewMode),
		SendEmail:      req.SendEmail,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// ExamInsights returns cached session-outcome insights for one exam.
// GET /admin/exams/{examID}/insights
func (h *Handler) ExamInsights(w http.ResponseWriter, r *http.Request) {
	examID, err := uuid.Parse(chi.URLParam(r, "examID"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "examID must be a valid id")
		return
	}

	result, err := h.insights.ExamInsights(r.Context(), examID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, result)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		httputil.Error(w, http.StatusNotFound, "session not found")
	case errors.Is(err, domain.ErrCandidateNotFound):
		httputil.Error(w, http.StatusNotFound, "candidate not found")
	case errors.Is(err, domain.ErrInvalidWindow),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrTerminalState),
		errors.Is(err, domain.ErrEmptyBatch),
		errors.Is(err, domain.ErrTooManyItems):
		httputil.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("admin request failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

func parseOptionalID(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
