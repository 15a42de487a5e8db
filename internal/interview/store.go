package interview

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hireloop/interview-service/internal/domain"
)

// StatusUpdate describes a status write against a session. Timestamp columns
// implied by the target status (started_at, completed_at, abandoned_at) are
// stamped with At only when still null; an already-set stamp is never
// overwritten.
type StatusUpdate struct {
	Target domain.SessionStatus
	At     time.Time
	// ExpiresAt, when set, overrides the absolute deadline. Used to
	// force-expire a session regardless of its schedule.
	ExpiresAt *time.Time
	// ClearAbandoned drops a stray abandonment marker recorded before the
	// candidate ever started.
	ClearAbandoned bool
}

// SessionStore is the persistence surface the lifecycle services run against.
type SessionStore interface {
	// Create persists a new session. Returns domain.ErrDuplicateToken when
	// the token collides with an existing row.
	Create(ctx context.Context, s *domain.InterviewSession) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.InterviewSession, error)
	GetByToken(ctx context.Context, token string) (*domain.InterviewSession, error)

	// UpdateStatus applies upd unconditionally and returns the updated row.
	UpdateStatus(ctx context.Context, id uuid.UUID, upd StatusUpdate) (*domain.InterviewSession, error)

	// UpdateStatusIf applies upd only while the stored status still equals
	// expect. Returns false when the guard failed, so callers can re-read and
	// re-evaluate instead of clobbering a concurrent writer.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, expect domain.SessionStatus, upd StatusUpdate) (bool, error)

	// MarkLinkSent stamps link_sent_at (write-once) and promotes a pending
	// session to link_sent.
	MarkLinkSent(ctx context.Context, id uuid.UUID, at time.Time) error
}

// CandidateDirectory resolves candidate records owned by the admissions
// service.
type CandidateDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Candidate, error)
}

// EventSink receives best-effort session events after successful core writes.
// Implementations must never block core decisions; failures are theirs to
// swallow.
type EventSink interface {
	SessionEvent(event string, s *domain.InterviewSession)
}

type noopSink struct{}

func (noopSink) SessionEvent(string, *domain.InterviewSession) {}

// NoopSink returns an EventSink that discards everything.
func NoopSink() EventSink { return noopSink{} }
