package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/hireloop/interview-service/internal/domain"
	"github.com/hireloop/interview-service/internal/interview"
)

var _ interview.CandidateDirectory = (*CandidatesRepository)(nil)

// CandidatesRepository reads candidate records. Candidates are written by the
// admissions service; this service only resolves them.
type CandidatesRepository struct {
	db *sql.DB
}

// NewCandidatesRepository creates a new candidates repository.
func NewCandidatesRepository(db *sql.DB) *CandidatesRepository {
	return &CandidatesRepository{db: db}
}

// GetByID retrieves a candidate by ID.
func (r *CandidatesRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Candidate, error) {
	query := `
		SELECT id, name, email, resume_analysis, created_at
		FROM candidates
		WHERE id = $1
	`
	c := &domain.Candidate{}
	var resume []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Email, &resume, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCandidateNotFound
	}
	if err != nil {
		return nil, err
	}
	c.ResumeAnalysis = resume
	return c, nil
}
