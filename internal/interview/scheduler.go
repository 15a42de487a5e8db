package interview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hireloop/interview-service/internal/domain"
)

const (
	// MaxBatchSize caps a single bulk-schedule request.
	MaxBatchSize = 1000
	// groupSize bounds how many candidates are processed concurrently; each
	// group is joined before the next starts, so a burst never exceeds this
	// many simultaneous store and dispatcher calls.
	groupSize = 50
)

// InviteSender dispatches the access link to a candidate. One attempt per
// call; retry policy belongs to the transport.
type InviteSender interface {
	SendInterviewInvite(ctx context.Context, c *domain.Candidate, s *domain.InterviewSession) error
}

// BatchParams are the issue parameters shared by every candidate in a batch.
type BatchParams struct {
	ExamID         *uuid.UUID
	SubcategoryID  *uuid.UUID
	ScheduledStart *time.Time
	ScheduledEnd   *time.Time
	Mode           domain.InterviewMode
	SendEmail      bool
}

// BatchItemError records one candidate's failure without touching the rest of
// the batch.
type BatchItemError struct {
	CandidateID uuid.UUID `json:"candidateId"`
	Email       string    `json:"email"`
	Error       string    `json:"error"`
}

// BatchResult aggregates a bulk-schedule run. Session creation and email
// dispatch fail independently per candidate, hence the four counters.
type BatchResult struct {
	Total       int              `json:"total"`
	Success     int              `json:"success"`
	Failed      int              `json:"failed"`
	Errors      []BatchItemError `json:"errors"`
	EmailSent   int              `json:"emailSent"`
	EmailFailed int              `json:"emailFailed"`
}

// Scheduler issues many sessions concurrently with per-item failure
// isolation.
type Scheduler struct {
	issuer     *Issuer
	store      SessionStore
	candidates CandidateDirectory
	sender     InviteSender
	clock      Clock
	logger     *slog.Logger
}

// NewScheduler creates a new bulk scheduler. sender may be nil when no
// dispatcher is configured; sendEmail batches then count every item as an
// email failure.
func NewScheduler(issuer *Issuer, store SessionStore, candidates CandidateDirectory, sender InviteSender, clock Clock, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		issuer:     issuer,
		store:      store,
		candidates: candidates,
		sender:     sender,
		clock:      clock,
		logger:     logger,
	}
}

// ScheduleBatch issues one session per candidate in concurrent groups of
// fifty. A bad shared window or an oversized batch fails the whole request
// before any item runs; after that point, one candidate's failure never
// aborts another's.
func (s *Scheduler) ScheduleBatch(ctx context.Context, candidateIDs []uuid.UUID, p BatchParams) (*BatchResult, error) {
	if len(candidateIDs) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	if len(candidateIDs) > MaxBatchSize {
		return nil, domain.ErrTooManyItems
	}
	if p.ScheduledStart != nil && p.ScheduledEnd != nil && !p.ScheduledEnd.After(*p.ScheduledStart) {
		return nil, domain.ErrInvalidWindow
	}

	result := &BatchResult{Total: len(candidateIDs), Errors: []BatchItemError{}}
	var mu sync.Mutex

	for start := 0; start < len(candidateIDs); start += groupSize {
		end := start + groupSize
		if end > len(candidateIDs) {
			end = len(candidateIDs)
		}

		var wg sync.WaitGroup
		for _, id := range candidateIDs[start:end] {
			wg.Add(1)
			go func(candidateID uuid.UUID) {
				defer wg.Done()
				s.scheduleOne(ctx, candidateID, p, result, &mu)
			}(id)
		}
		wg.Wait()
	}

	s.logger.Info("bulk schedule finished",
		"total", result.Total,
		"success", result.Success,
		"failed", result.Failed,
		"email_sent", result.EmailSent,
		"email_failed", result.EmailFailed,
	)
	return result, nil
}

func (s *Scheduler) scheduleOne(ctx context.Context, candidateID uuid.UUID, p BatchParams, result *BatchResult, mu *sync.Mutex) {
	candidate, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		s.recordFailure(result, mu, candidateID, "", err)
		return
	}

	session, err := s.issuer.IssueSession(ctx, IssueParams{
		CandidateID:    candidateID,
		ExamID:         p.ExamID,
		SubcategoryID:  p.SubcategoryID,
		ScheduledStart: p.ScheduledStart,
		ScheduledEnd:   p.ScheduledEnd,
		Mode:           p.Mode,
	})
	if err != nil {
		s.recordFailure(result, mu, candidateID, candidate.Email, err)
		return
	}

	mu.Lock()
	result.Success++
	mu.Unlock()

	if !p.SendEmail {
		return
	}
	if err := s.sendInvite(ctx, candidate, session); err != nil {
		s.logger.Warn("failed to send interview invite",
			"session_id", session.ID, "candidate_id", candidateID, "error", err)
		mu.Lock()
		result.EmailFailed++
		mu.Unlock()
		return
	}
	mu.Lock()
	result.EmailSent++
	mu.Unlock()
}

func (s *Scheduler) sendInvite(ctx context.Context, c *domain.Candidate, session *domain.InterviewSession) error {
	if s.sender == nil {
		return domain.ErrDispatcherUnavailable
	}
	if err := s.sender.SendInterviewInvite(ctx, c, session); err != nil {
		return err
	}
	// A successful dispatch stamps link_sent_at; a stamp failure is logged
	// but the email has already gone out, so it does not count against the
	// dispatch.
	if err := s.store.MarkLinkSent(ctx, session.ID, s.clock.Now()); err != nil {
		s.logger.Error("failed to record link dispatch",
			"session_id", session.ID, "error", err)
	}
	return nil
}

func (s *Scheduler) recordFailure(result *BatchResult, mu *sync.Mutex, candidateID uuid.UUID, email string, err error) {
	s.logger.Warn("bulk schedule item failed",
		"candidate_id", candidateID, "error", err)
	mu.Lock()
	defer mu.Unlock()
	result.Failed++
	result.Errors = append(result.Errors, BatchItemError{
		CandidateID: candidateID,
		Email:       email,
		Error:       err.Error(),
	})
}
