package interview_test

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hireloop/interview-service/internal/domain"
	"github.com/hireloop/interview-service/internal/interview"
	"github.com/hireloop/interview-service/internal/interview/storefakes"
)

// fakeClock pins Now for deterministic window and deadline checks.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// fakeSender records invite dispatches and can fail selected candidates.
type fakeSender struct {
	mu          sync.Mutex
	failFor     map[uuid.UUID]error
	sent        []uuid.UUID
	delay       time.Duration
	inFlight    int
	maxInFlight int
}

func newFakeSender() *fakeSender {
	return &fakeSender{failFor: make(map[uuid.UUID]error)}
}

func (f *fakeSender) SendInterviewInvite(_ context.Context, c *domain.Candidate, _ *domain.InterviewSession) error {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
	if err, ok := f.failFor[c.ID]; ok {
		return err
	}
	f.sent = append(f.sent, c.ID)
	return nil
}

type fixture struct {
	store      *storefakes.FakeSessionStore
	candidates *storefakes.FakeCandidateDirectory
	clock      *fakeClock
	issuer     *interview.Issuer
	validator  *interview.Validator
	lifecycle  *interview.Lifecycle
}

var baseTime = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := storefakes.NewFakeSessionStore()
	candidates := storefakes.NewFakeCandidateDirectory()
	clock := newFakeClock(baseTime)
	logger := slog.New(slog.DiscardHandler)

	return &fixture{
		store:      store,
		candidates: candidates,
		clock:      clock,
		issuer:     interview.NewIssuer(store, clock, nil, nil),
		validator:  interview.NewValidator(store, candidates, clock, logger, nil),
		lifecycle:  interview.NewLifecycle(store, clock, logger, nil),
	}
}

// seedSession stores a session directly, bypassing the issuer.
func (f *fixture) seedSession(t *testing.T, mutate func(*domain.InterviewSession)) *domain.InterviewSession {
	t.Helper()

	token, err := interview.NewToken()
	require.NoError(t, err)

	s := &domain.InterviewSession{
		ID:          uuid.New(),
		Token:       token,
		CandidateID: uuid.New(),
		Status:      domain.StatusPending,
		Mode:        domain.ModeStandard,
		ExpiresAt:   baseTime.Add(interview.DefaultValidity),
		IsActive:    true,
		CreatedAt:   baseTime,
		UpdatedAt:   baseTime,
	}
	if mutate != nil {
		mutate(s)
	}
	f.store.Seed(s)
	return s
}

func (f *fixture) addCandidates(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
		f.candidates.Add(&domain.Candidate{
			ID:    ids[i],
			Name:  fmt.Sprintf("Candidate %d", i),
			Email: fmt.Sprintf("candidate%d@example.com", i),
		})
	}
	return ids
}

func timePtr(t time.Time) *time.Time { return &t }
