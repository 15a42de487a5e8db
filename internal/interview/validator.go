package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hireloop/interview-service/internal/domain"
)

// GraceBuffer absorbs clock skew between issuing and validating parties. It
// applies only to the deadline check; opening early is never permitted.
const GraceBuffer = 5 * time.Minute

// Decision is the outcome of one access attempt.
type Decision struct {
	Allowed bool
	Reason  domain.DenyReason
	Message string
	Session *domain.InterviewSession
	// ResumeContext carries prior resume analysis for the candidate, when
	// any exists. Best-effort enrichment only.
	ResumeContext json.RawMessage
}

// Validator decides, per access attempt, whether the token bearer may enter
// the interview, repairing the stored status where wall-clock evaluation
// contradicts it.
type Validator struct {
	store      SessionStore
	candidates CandidateDirectory
	clock      Clock
	logger     *slog.Logger
	events     EventSink
}

// NewValidator creates a new access validator. candidates may be nil when no
// resume context source is configured.
func NewValidator(store SessionStore, candidates CandidateDirectory, clock Clock, logger *slog.Logger, events EventSink) *Validator {
	if events == nil {
		events = NoopSink()
	}
	return &Validator{store: store, candidates: candidates, clock: clock, logger: logger, events: events}
}

// Validate evaluates the token against a single sampling of the clock. The
// decision is idempotent under repeated calls: every self-heal writes the
// state a second evaluation would also conclude, and terminal sessions never
// become enterable again.
func (v *Validator) Validate(ctx context.Context, token string) (*Decision, error) {
	now := v.clock.Now()

	// A failed conditional write means a concurrent caller repaired the
	// session first; one re-read with the same `now` settles the decision.
	for attempt := 0; attempt < 2; attempt++ {
		d, retry, err := v.evaluate(ctx, token, now)
		if err != nil {
			return nil, err
		}
		if !retry {
			return d, nil
		}
	}
	return nil, fmt.Errorf("session for token changed twice during validation")
}

func (v *Validator) evaluate(ctx context.Context, token string, now time.Time) (*Decision, bool, error) {
	s, err := v.store.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return deny(domain.DenyNotFound, "interview session not found", nil), false, nil
		}
		return nil, false, err
	}

	if !s.IsActive {
		return deny(domain.DenyInactive, "this interview link is no longer active", nil), false, nil
	}

	if s.CompletedAt != nil || s.Status == domain.StatusCompleted {
		return deny(domain.DenyAlreadyCompleted, "this interview has already been completed", nil), false, nil
	}

	if s.Status == domain.StatusAbandoned {
		if s.StartedAt != nil {
			return deny(domain.DenyAbandoned, "this interview was ended and can no longer be resumed", nil), false, nil
		}
		// Abandonment recorded before the candidate ever started must not
		// lock them out. Repair to pending and keep evaluating.
		ok, err := v.store.UpdateStatusIf(ctx, s.ID, domain.StatusAbandoned, StatusUpdate{
			Target:         domain.StatusPending,
			At:             now,
			ClearAbandoned: true,
		})
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, true, nil
		}
		v.logRepair(s, domain.StatusAbandoned, domain.StatusPending)
		s.AbandonedAt = nil
	}

	// The scheduled window outranks a stale expired status: inside the
	// window the session is valid no matter what was stored.
	if s.ScheduledEnd != nil && s.Status == domain.StatusExpired &&
		!now.After(*s.ScheduledEnd) &&
		(s.ScheduledStart == nil || !now.Before(*s.ScheduledStart)) {
		ok, err := v.store.UpdateStatusIf(ctx, s.ID, domain.StatusExpired, StatusUpdate{
			Target: domain.StatusPending,
			At:     now,
		})
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, true, nil
		}
		v.logRepair(s, domain.StatusExpired, domain.StatusPending)
	}

	if s.ScheduledStart != nil && now.Before(*s.ScheduledStart) {
		msg := fmt.Sprintf("this interview is not yet available. It opens in %s",
			formatRemaining(s.ScheduledStart.Sub(now)))
		return deny(domain.DenyNotYetAvailable, msg, s), false, nil
	}

	deadline := s.Deadline()
	if now.After(deadline.Add(GraceBuffer)) {
		if !s.WindowGoverned() && s.Status != domain.StatusExpired {
			// Only the absolute-deadline path writes expired back. A
			// past-window session stays stored as-is for an administrator
			// to settle; writing expired here would fight the window
			// self-heal on a borderline clock.
			ok, err := v.store.UpdateStatusIf(ctx, s.ID, s.Status, StatusUpdate{
				Target: domain.StatusExpired,
				At:     now,
			})
			if err != nil {
				return nil, false, err
			}
			if ok {
				v.logRepair(s, s.Status, domain.StatusExpired)
			}
		}
		msg := "this interview link has expired"
		if s.WindowGoverned() {
			msg = "the interview window has ended"
		}
		return deny(domain.DenyExpired, msg, s), false, nil
	}

	return &Decision{
		Allowed:       true,
		Session:       s,
		ResumeContext: v.resumeContext(ctx, s),
	}, false, nil
}

func (v *Validator) resumeContext(ctx context.Context, s *domain.InterviewSession) json.RawMessage {
	if v.candidates == nil {
		return nil
	}
	c, err := v.candidates.GetByID(ctx, s.CandidateID)
	if err != nil {
		// Enrichment only; an allowed candidate enters regardless.
		v.logger.Warn("failed to load resume context",
			"session_id", s.ID, "candidate_id", s.CandidateID, "error", err)
		return nil
	}
	return c.ResumeAnalysis
}

func (v *Validator) logRepair(s *domain.InterviewSession, from, to domain.SessionStatus) {
	v.logger.Info("repaired session status",
		"session_id", s.ID, "from", from, "to", to)
	s.Status = to
	v.events.SessionEvent("session.status_repaired", s)
}

func deny(reason domain.DenyReason, message string, s *domain.InterviewSession) *Decision {
	return &Decision{Reason: reason, Message: message, Session: s}
}

// formatRemaining renders a wait duration in whole hours and minutes, always
// rounding up so "opens in 1 minute" never shows for a window already open.
func formatRemaining(d time.Duration) string {
	minutes := int((d + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	hours := minutes / 60
	minutes = minutes % 60
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%s %s", plural(hours, "hour"), plural(minutes, "minute"))
	case hours > 0:
		return plural(hours, "hour")
	default:
		return plural(minutes, "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
