package interview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hireloop/interview-service/internal/domain"
)

// DefaultValidity is how long a session without a scheduled window stays
// enterable after creation.
const DefaultValidity = 7 * 24 * time.Hour

// tokenRetries bounds retries on a token uniqueness violation.
const tokenRetries = 3

// IssueParams describes a session to create.
type IssueParams struct {
	CandidateID    uuid.UUID
	ExamID         *uuid.UUID
	SubcategoryID  *uuid.UUID
	ScheduledStart *time.Time
	ScheduledEnd   *time.Time
	Mode           domain.InterviewMode
}

// Issuer creates interview sessions with fresh access tokens.
type Issuer struct {
	store    SessionStore
	clock    Clock
	generate TokenGenerator
	events   EventSink
}

// NewIssuer creates a new token issuer.
func NewIssuer(store SessionStore, clock Clock, generate TokenGenerator, events EventSink) *Issuer {
	if generate == nil {
		generate = NewToken
	}
	if events == nil {
		events = NoopSink()
	}
	return &Issuer{store: store, clock: clock, generate: generate, events: events}
}

// IssueSession creates a pending session for the candidate. The scheduled
// window end, when given, becomes the operative deadline; otherwise the
// session expires DefaultValidity after creation.
func (i *Issuer) IssueSession(ctx context.Context, p IssueParams) (*domain.InterviewSession, error) {
	if p.ScheduledStart != nil && p.ScheduledEnd != nil && !p.ScheduledEnd.After(*p.ScheduledStart) {
		return nil, domain.ErrInvalidWindow
	}

	now := i.clock.Now()
	expiresAt := now.Add(DefaultValidity)
	if p.ScheduledEnd != nil {
		expiresAt = *p.ScheduledEnd
	}

	mode := p.Mode
	if mode == "" {
		mode = domain.ModeStandard
	}

	var lastErr error
	for attempt := 0; attempt <= tokenRetries; attempt++ {
		token, err := i.generate()
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %w", err)
		}

		s := &domain.InterviewSession{
			ID:             uuid.New(),
			Token:          token,
			CandidateID:    p.CandidateID,
			ExamID:         p.ExamID,
			SubcategoryID:  p.SubcategoryID,
			Status:         domain.StatusPending,
			Mode:           mode,
			ScheduledStart: p.ScheduledStart,
			ScheduledEnd:   p.ScheduledEnd,
			ExpiresAt:      expiresAt,
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		err = i.store.Create(ctx, s)
		if err == nil {
			i.events.SessionEvent("session.created", s)
			return s, nil
		}
		if !errors.Is(err, domain.ErrDuplicateToken) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to issue session after %d attempts: %w", tokenRetries+1, lastErr)
}
