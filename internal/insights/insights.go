package insights

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hireloop/interview-service/internal/domain"
)

// SessionOutcomes is the read surface insights are derived from.
type SessionOutcomes interface {
	CountByStatusForExam(ctx context.Context, examID uuid.UUID) (map[domain.SessionStatus]int, error)
}

// ExamInsights summarizes how sessions for one exam have gone so far.
type ExamInsights struct {
	ExamID         uuid.UUID `json:"examId"`
	Total          int       `json:"total"`
	Completed      int       `json:"completed"`
	InProgress     int       `json:"inProgress"`
	Expired        int       `json:"expired"`
	Abandoned      int       `json:"abandoned"`
	Outstanding    int       `json:"outstanding"`
	CompletionRate float64   `json:"completionRate"`
	GeneratedAt    time.Time `json:"generatedAt"`
}

// Service computes per-exam question-pattern insights, memoized through a
// bounded cache.
type Service struct {
	outcomes SessionOutcomes
	cache    *Cache
}

// NewService creates a new insights service.
func NewService(outcomes SessionOutcomes, cache *Cache) *Service {
	return &Service{outcomes: outcomes, cache: cache}
}

// ExamInsights returns outcome insights for the exam, served from cache while
// fresh.
func (s *Service) ExamInsights(ctx context.Context, examID uuid.UUID) (*ExamInsights, error) {
	key := "exam:" + examID.String()
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*ExamInsights), nil
	}

	counts, err := s.outcomes.CountByStatusForExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	result := &ExamInsights{
		ExamID:      examID,
		Completed:   counts[domain.StatusCompleted],
		InProgress:  counts[domain.StatusInProgress],
		Expired:     counts[domain.StatusExpired],
		Abandoned:   counts[domain.StatusAbandoned],
		Outstanding: counts[domain.StatusPending] + counts[domain.StatusLinkSent],
		GeneratedAt: time.Now().UTC(),
	}
	for _, n := range counts {
		result.Total += n
	}
	if result.Total > 0 {
		result.CompletionRate = float64(result.Completed) / float64(result.Total)
	}

	s.cache.Set(key, result)
	return result, nil
}
