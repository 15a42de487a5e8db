package storefakes

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hireloop/interview-service/internal/domain"
	"github.com/hireloop/interview-service/internal/interview"
)

var _ interview.SessionStore = (*FakeSessionStore)(nil)

// FakeSessionStore is a mutex-guarded in-memory SessionStore with the same
// write-once stamping and compare-and-swap semantics as the Postgres repo.
type FakeSessionStore struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*domain.InterviewSession
	byToken  map[string]uuid.UUID
	// CreateErr, when set, fails the next Create calls.
	CreateErr error
	// FailCandidates fails Create for sessions belonging to these candidates.
	FailCandidates map[uuid.UUID]error
}

func NewFakeSessionStore() *FakeSessionStore {
	return &FakeSessionStore{
		byID:    make(map[uuid.UUID]*domain.InterviewSession),
		byToken: make(map[string]uuid.UUID),
	}
}

func (f *FakeSessionStore) Create(_ context.Context, s *domain.InterviewSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.CreateErr != nil {
		return f.CreateErr
	}
	if err, ok := f.FailCandidates[s.CandidateID]; ok {
		return err
	}
	if _, exists := f.byToken[s.Token]; exists {
		return domain.ErrDuplicateToken
	}

	cp := *s
	f.byID[cp.ID] = &cp
	f.byToken[cp.Token] = cp.ID
	return nil
}

func (f *FakeSessionStore) GetByID(_ context.Context, id uuid.UUID) (*domain.InterviewSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *FakeSessionStore) GetByToken(_ context.Context, token string) (*domain.InterviewSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.byToken[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *f.byID[id]
	return &cp, nil
}

func (f *FakeSessionStore) UpdateStatus(_ context.Context, id uuid.UUID, upd interview.StatusUpdate) (*domain.InterviewSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	apply(s, upd)
	cp := *s
	return &cp, nil
}

func (f *FakeSessionStore) UpdateStatusIf(_ context.Context, id uuid.UUID, expect domain.SessionStatus, upd interview.StatusUpdate) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.byID[id]
	if !ok {
		return false, domain.ErrSessionNotFound
	}
	if s.Status != expect {
		return false, nil
	}
	apply(s, upd)
	return true, nil
}

func (f *FakeSessionStore) MarkLinkSent(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.byID[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if s.LinkSentAt == nil {
		s.LinkSentAt = &at
	}
	if s.Status == domain.StatusPending {
		s.Status = domain.StatusLinkSent
	}
	s.UpdatedAt = at
	return nil
}

// Seed inserts a session directly, bypassing Create-failure hooks.
func (f *FakeSessionStore) Seed(s *domain.InterviewSession) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.byID[cp.ID] = &cp
	f.byToken[cp.Token] = cp.ID
}

// Count returns the number of stored sessions.
func (f *FakeSessionStore) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

// All returns copies of every stored session.
func (f *FakeSessionStore) All() []*domain.InterviewSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.InterviewSession, 0, len(f.byID))
	for _, s := range f.byID {
		cp := *s
		out = append(out, &cp)
	}
	return out
}

func apply(s *domain.InterviewSession, upd interview.StatusUpdate) {
	s.Status = upd.Target
	switch upd.Target {
	case domain.StatusInProgress:
		if s.StartedAt == nil {
			at := upd.At
			s.StartedAt = &at
		}
	case domain.StatusCompleted:
		if s.CompletedAt == nil {
			at := upd.At
			s.CompletedAt = &at
		}
	case domain.StatusAbandoned:
		if s.AbandonedAt == nil {
			at := upd.At
			s.AbandonedAt = &at
		}
	case domain.StatusExpired:
		if upd.ExpiresAt != nil {
			s.ExpiresAt = *upd.ExpiresAt
		}
	}
	if upd.ClearAbandoned {
		s.AbandonedAt = nil
	}
	s.UpdatedAt = upd.At
}
