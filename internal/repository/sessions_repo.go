package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hireloop/interview-service/internal/domain"
	"github.com/hireloop/interview-service/internal/interview"
)

const sessionColumns = `
	id, token, candidate_id, exam_id, subcategory_id, status, mode,
	scheduled_start, scheduled_end, expires_at,
	started_at, completed_at, abandoned_at, link_sent_at,
	is_active, created_at, updated_at
`

// Timestamp columns implied by a status target are stamped at most once:
// COALESCE keeps an existing value, so replays and double self-heals leave
// the first stamp intact.
const sessionStatusSet = `
	status = $2,
	started_at = CASE WHEN $2 = 'in_progress' THEN COALESCE(started_at, $3) ELSE started_at END,
	completed_at = CASE WHEN $2 = 'completed' THEN COALESCE(completed_at, $3) ELSE completed_at END,
	abandoned_at = CASE
		WHEN $5 THEN NULL
		WHEN $2 = 'abandoned' THEN COALESCE(abandoned_at, $3)
		ELSE abandoned_at
	END,
	expires_at = COALESCE($4, expires_at),
	updated_at = $3
`

var _ interview.SessionStore = (*SessionsRepository)(nil)

// SessionsRepository persists interview sessions in Postgres.
type SessionsRepository struct {
	db *sql.DB
}

// NewSessionsRepository creates a new sessions repository.
func NewSessionsRepository(db *sql.DB) *SessionsRepository {
	return &SessionsRepository{db: db}
}

// Create inserts a new session. A token collision surfaces as
// domain.ErrDuplicateToken so the issuer can retry with a fresh token.
func (r *SessionsRepository) Create(ctx context.Context, s *domain.InterviewSession) error {
	query := `
		INSERT INTO interview_sessions (
			id, token, candidate_id, exam_id, subcategory_id, status, mode,
			scheduled_start, scheduled_end, expires_at, is_active, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Token, s.CandidateID, nullUUID(s.ExamID), nullUUID(s.SubcategoryID),
		s.Status, s.Mode, s.ScheduledStart, s.ScheduledEnd, s.ExpiresAt,
		s.IsActive, s.CreatedAt, s.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return domain.ErrDuplicateToken
	}
	return err
}

// GetByID retrieves a session by ID.
func (r *SessionsRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.InterviewSession, error) {
	query := `SELECT` + sessionColumns + `FROM interview_sessions WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByToken retrieves a session by its access token.
func (r *SessionsRepository) GetByToken(ctx context.Context, token string) (*domain.InterviewSession, error) {
	query := `SELECT` + sessionColumns + `FROM interview_sessions WHERE token = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, token))
}

// UpdateStatus applies upd unconditionally and returns the updated session.
func (r *SessionsRepository) UpdateStatus(ctx context.Context, id uuid.UUID, upd interview.StatusUpdate) (*domain.InterviewSession, error) {
	query := `
		UPDATE interview_sessions
		SET` + sessionStatusSet + `
		WHERE id = $1
		RETURNING` + sessionColumns
	return r.scanOne(r.db.QueryRowContext(ctx, query,
		id, upd.Target, upd.At, upd.ExpiresAt, upd.ClearAbandoned))
}

// UpdateStatusIf applies upd only while the stored status still equals
// expect. The WHERE guard makes the read-then-write sequence in the validator
// safe against a concurrent repair of the same session.
func (r *SessionsRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, expect domain.SessionStatus, upd interview.StatusUpdate) (bool, error) {
	query := `
		UPDATE interview_sessions
		SET` + sessionStatusSet + `
		WHERE id = $1 AND status = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		id, upd.Target, upd.At, upd.ExpiresAt, upd.ClearAbandoned, expect)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// MarkLinkSent stamps link_sent_at once and promotes a still-pending session
// to link_sent.
func (r *SessionsRepository) MarkLinkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE interview_sessions
		SET link_sent_at = COALESCE(link_sent_at, $2),
		    status = CASE WHEN status = 'pending' THEN 'link_sent' ELSE status END,
		    updated_at = $2
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// List returns the most recently created sessions, newest first.
func (r *SessionsRepository) List(ctx context.Context, limit int) ([]*domain.InterviewSession, error) {
	query := `SELECT` + sessionColumns + `
		FROM interview_sessions
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.InterviewSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// CountByStatusForExam aggregates session outcomes for one exam.
func (r *SessionsRepository) CountByStatusForExam(ctx context.Context, examID uuid.UUID) (map[domain.SessionStatus]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM interview_sessions
		WHERE exam_id = $1
		GROUP BY status
	`
	rows, err := r.db.QueryContext(ctx, query, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.SessionStatus]int)
	for rows.Next() {
		var status domain.SessionStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SessionsRepository) scanOne(row *sql.Row) (*domain.InterviewSession, error) {
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func scanSession(row rowScanner) (*domain.InterviewSession, error) {
	s := &domain.InterviewSession{}
	var examID, subcategoryID uuid.NullUUID
	err := row.Scan(
		&s.ID, &s.Token, &s.CandidateID, &examID, &subcategoryID, &s.Status, &s.Mode,
		&s.ScheduledStart, &s.ScheduledEnd, &s.ExpiresAt,
		&s.StartedAt, &s.CompletedAt, &s.AbandonedAt, &s.LinkSentAt,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if examID.Valid {
		s.ExamID = &examID.UUID
	}
	if subcategoryID.Valid {
		s.SubcategoryID = &subcategoryID.UUID
	}
	return s, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
