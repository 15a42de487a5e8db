package storefakes

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/hireloop/interview-service/internal/domain"
	"github.com/hireloop/interview-service/internal/interview"
)

var _ interview.CandidateDirectory = (*FakeCandidateDirectory)(nil)

// FakeCandidateDirectory is an in-memory CandidateDirectory.
type FakeCandidateDirectory struct {
	mu         sync.RWMutex
	candidates map[uuid.UUID]*domain.Candidate
}

func NewFakeCandidateDirectory() *FakeCandidateDirectory {
	return &FakeCandidateDirectory{candidates: make(map[uuid.UUID]*domain.Candidate)}
}

func (f *FakeCandidateDirectory) Add(c *domain.Candidate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.candidates[cp.ID] = &cp
}

func (f *FakeCandidateDirectory) GetByID(_ context.Context, id uuid.UUID) (*domain.Candidate, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	c, ok := f.candidates[id]
	if !ok {
		return nil, domain.ErrCandidateNotFound
	}
	cp := *c
	return &cp, nil
}
