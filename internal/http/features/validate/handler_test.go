package validate_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hireloop/interview-service/internal/domain"
	"github.com/hireloop/interview-service/internal/http/features/validate"
	"github.com/hireloop/interview-service/internal/interview"
	"github.com/hireloop/interview-service/internal/interview/storefakes"
)

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

var testNow = time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)

func newTestServer(store *storefakes.FakeSessionStore) *chi.Mux {
	logger := slog.New(slog.DiscardHandler)
	validator := interview.NewValidator(store, storefakes.NewFakeCandidateDirectory(), fixedClock(testNow), logger, nil)
	h := validate.NewHandler(validator, logger)

	r := chi.NewRouter()
	r.Get("/interview/validate/{token}", h.Validate)
	return r
}

func seedSession(store *storefakes.FakeSessionStore, mutate func(*domain.InterviewSession)) *domain.InterviewSession {
	s := &domain.InterviewSession{
		ID:          uuid.New(),
		Token:       "aaaabbbbccccddddeeeeffff00001111",
		CandidateID: uuid.New(),
		Status:      domain.StatusPending,
		Mode:        domain.ModeStandard,
		ExpiresAt:   testNow.Add(24 * time.Hour),
		IsActive:    true,
		CreatedAt:   testNow.Add(-time.Hour),
		UpdatedAt:   testNow.Add(-time.Hour),
	}
	if mutate != nil {
		mutate(s)
	}
	store.Seed(s)
	return s
}

func doValidate(t *testing.T, r http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/interview/validate/"+token, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestValidateAllowed(t *testing.T) {
	store := storefakes.NewFakeSessionStore()
	s := seedSession(store, nil)
	r := newTestServer(store)

	rec := doValidate(t, r, s.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp validate.AllowResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Error("success = false, want true")
	}
	if resp.Session == nil || resp.Session.ID != s.ID {
		t.Error("response session missing or wrong")
	}
	if resp.IsProctored {
		t.Error("isProctored = true for a standard session")
	}
}

func TestValidateUnknownToken(t *testing.T) {
	store := storefakes.NewFakeSessionStore()
	r := newTestServer(store)

	rec := doValidate(t, r, "deadbeefdeadbeefdeadbeefdeadbeef")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var resp validate.DenyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Success {
		t.Error("success = true, want false")
	}
	if resp.Reason != string(domain.DenyNotFound) {
		t.Errorf("reason = %q, want %q", resp.Reason, domain.DenyNotFound)
	}
}

func TestValidateDeniedCompleted(t *testing.T) {
	store := storefakes.NewFakeSessionStore()
	s := seedSession(store, func(s *domain.InterviewSession) {
		s.Status = domain.StatusCompleted
		done := testNow.Add(-time.Hour)
		s.CompletedAt = &done
	})
	r := newTestServer(store)

	rec := doValidate(t, r, s.Token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp validate.DenyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Reason != string(domain.DenyAlreadyCompleted) {
		t.Errorf("reason = %q, want %q", resp.Reason, domain.DenyAlreadyCompleted)
	}
	if resp.ScheduledStart != nil || resp.ScheduledEnd != nil {
		t.Error("window fields should be omitted for completed denials")
	}
}

func TestValidateNotYetAvailableIncludesWindow(t *testing.T) {
	store := storefakes.NewFakeSessionStore()
	start := testNow.Add(time.Hour)
	end := testNow.Add(2 * time.Hour)
	s := seedSession(store, func(s *domain.InterviewSession) {
		s.ScheduledStart = &start
		s.ScheduledEnd = &end
		s.ExpiresAt = end
	})
	r := newTestServer(store)

	rec := doValidate(t, r, s.Token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp validate.DenyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Reason != string(domain.DenyNotYetAvailable) {
		t.Errorf("reason = %q, want %q", resp.Reason, domain.DenyNotYetAvailable)
	}
	if resp.ScheduledStart == nil || !resp.ScheduledStart.Equal(start) {
		t.Error("scheduledStart missing from not-yet-available denial")
	}
	if resp.ScheduledEnd == nil || !resp.ScheduledEnd.Equal(end) {
		t.Error("scheduledEnd missing from not-yet-available denial")
	}
}

func TestValidateExpiredToken(t *testing.T) {
	store := storefakes.NewFakeSessionStore()
	s := seedSession(store, func(s *domain.InterviewSession) {
		s.ExpiresAt = testNow.Add(-time.Hour)
	})
	r := newTestServer(store)

	rec := doValidate(t, r, s.Token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp validate.DenyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Reason != string(domain.DenyExpired) {
		t.Errorf("reason = %q, want %q", resp.Reason, domain.DenyExpired)
	}
}
