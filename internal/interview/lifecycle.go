package interview

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hireloop/interview-service/internal/domain"
)

// TransitionInput is an explicit, administrator- or system-driven status
// change.
type TransitionInput struct {
	Status domain.SessionStatus
	// ExpiresAt force-moves the absolute deadline. Honored only when the
	// target status is expired.
	ExpiresAt *time.Time
}

// Lifecycle applies explicit status transitions with write-once timestamp
// stamping. It emits no notifications.
type Lifecycle struct {
	store  SessionStore
	clock  Clock
	logger *slog.Logger
	events EventSink
}

// NewLifecycle creates a new lifecycle updater.
func NewLifecycle(store SessionStore, clock Clock, logger *slog.Logger, events EventSink) *Lifecycle {
	if events == nil {
		events = NoopSink()
	}
	return &Lifecycle{store: store, clock: clock, logger: logger, events: events}
}

// Transition moves the session to in.Status. A completed session never
// transitions out of completed; started/completed/abandoned stamps are set at
// most once and repeated calls leave an existing stamp untouched.
func (l *Lifecycle) Transition(ctx context.Context, id uuid.UUID, in TransitionInput) (*domain.InterviewSession, error) {
	if !domain.ValidStatus(in.Status) {
		return nil, domain.ErrInvalidStatus
	}

	cur, err := l.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if (cur.CompletedAt != nil || cur.Status == domain.StatusCompleted) && in.Status != domain.StatusCompleted {
		return nil, domain.ErrTerminalState
	}

	upd := StatusUpdate{
		Target: in.Status,
		At:     l.clock.Now(),
	}
	if in.Status == domain.StatusExpired {
		upd.ExpiresAt = in.ExpiresAt
	}

	updated, err := l.store.UpdateStatus(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	l.logger.Info("session transitioned",
		"session_id", id, "from", cur.Status, "to", in.Status)
	l.events.SessionEvent("session.status_changed", updated)
	return updated, nil
}
