package insights

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hireloop/interview-service/internal/domain"
)

func TestCacheGetSet(t *testing.T) {
	c := NewCache(4, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	c.Set("k", 42)
	v, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if v.(int) != 42 {
		t.Errorf("got %v, want 42", v)
	}
}

func TestCacheExpiry(t *testing.T) {
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	c := NewCache(4, 5*time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", "v")

	now = now.Add(5 * time.Minute)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry should still be live exactly at its expiry")
	}

	now = now.Add(time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry should have expired")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not swept, len = %d", c.Len())
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := NewCache(4, time.Minute)
	c.Set("k", "v")
	c.Invalidate("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry should be gone after Invalidate")
	}
}

func TestCacheEvictsExpiredFirst(t *testing.T) {
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	c := NewCache(2, 5*time.Minute)
	c.now = func() time.Time { return now }

	c.Set("old", 1)
	now = now.Add(6 * time.Minute)
	c.Set("live", 2)
	c.Set("more", 3)

	if _, ok := c.Get("live"); !ok {
		t.Error("live entry evicted instead of the expired one")
	}
	if _, ok := c.Get("more"); !ok {
		t.Error("new entry missing")
	}
}

func TestCacheEvictsSoonestExpiring(t *testing.T) {
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	c := NewCache(2, 5*time.Minute)
	c.now = func() time.Time { return now }

	c.Set("first", 1)
	now = now.Add(time.Minute)
	c.Set("second", 2)
	now = now.Add(time.Minute)
	c.Set("third", 3)

	if _, ok := c.Get("first"); ok {
		t.Error("earliest-expiring entry should have been evicted")
	}
	if _, ok := c.Get("second"); !ok {
		t.Error("later entry evicted")
	}
	if _, ok := c.Get("third"); !ok {
		t.Error("new entry missing")
	}
	if c.Len() != 2 {
		t.Errorf("len = %d, want 2", c.Len())
	}
}

func TestCacheNeverExceedsBound(t *testing.T) {
	c := NewCache(8, time.Minute)
	for i := 0; i < 100; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	if c.Len() > 8 {
		t.Errorf("len = %d, want at most 8", c.Len())
	}
}

type stubOutcomes struct {
	counts map[domain.SessionStatus]int
	err    error
	calls  int
}

func (s *stubOutcomes) CountByStatusForExam(_ context.Context, _ uuid.UUID) (map[domain.SessionStatus]int, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.counts, nil
}

func TestExamInsightsComputesRates(t *testing.T) {
	outcomes := &stubOutcomes{counts: map[domain.SessionStatus]int{
		domain.StatusPending:    2,
		domain.StatusLinkSent:   1,
		domain.StatusInProgress: 1,
		domain.StatusCompleted:  5,
		domain.StatusExpired:    1,
	}}
	svc := NewService(outcomes, NewCache(4, time.Minute))

	got, err := svc.ExamInsights(context.Background(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if got.Total != 10 {
		t.Errorf("total = %d, want 10", got.Total)
	}
	if got.Outstanding != 3 {
		t.Errorf("outstanding = %d, want 3", got.Outstanding)
	}
	if got.CompletionRate != 0.5 {
		t.Errorf("completionRate = %v, want 0.5", got.CompletionRate)
	}
}

func TestExamInsightsMemoizes(t *testing.T) {
	outcomes := &stubOutcomes{counts: map[domain.SessionStatus]int{
		domain.StatusCompleted: 1,
	}}
	svc := NewService(outcomes, NewCache(4, time.Minute))
	examID := uuid.New()

	first, err := svc.ExamInsights(context.Background(), examID)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.ExamInsights(context.Background(), examID)
	if err != nil {
		t.Fatal(err)
	}
	if outcomes.calls != 1 {
		t.Errorf("store queried %d times, want 1", outcomes.calls)
	}
	if first != second {
		t.Error("cached call should return the same computed value")
	}

	// A different exam is its own cache line.
	if _, err := svc.ExamInsights(context.Background(), uuid.New()); err != nil {
		t.Fatal(err)
	}
	if outcomes.calls != 2 {
		t.Errorf("store queried %d times, want 2", outcomes.calls)
	}
}

func TestExamInsightsEmptyExam(t *testing.T) {
	outcomes := &stubOutcomes{counts: map[domain.SessionStatus]int{}}
	svc := NewService(outcomes, NewCache(4, time.Minute))

	got, err := svc.ExamInsights(context.Background(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if got.Total != 0 || got.CompletionRate != 0 {
		t.Errorf("empty exam should report zeros, got total=%d rate=%v", got.Total, got.CompletionRate)
	}
}
