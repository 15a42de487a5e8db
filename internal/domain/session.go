package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the persisted lifecycle state of an interview session.
type SessionStatus string

const (
	StatusPending    SessionStatus = "pending"
	StatusLinkSent   SessionStatus = "link_sent"
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusExpired    SessionStatus = "expired"
	StatusAbandoned  SessionStatus = "abandoned"
)

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s SessionStatus) bool {
	switch s {
	case StatusPending, StatusLinkSent, StatusInProgress,
		StatusCompleted, StatusExpired, StatusAbandoned:
		return true
	}
	return false
}

// InterviewMode selects how the interview is conducted.
type InterviewMode string

const (
	ModeStandard  InterviewMode = "standard"
	ModeProctored InterviewMode = "proctored"
)

// InterviewSession is a single scheduled interview, gated by its token.
type InterviewSession struct {
	ID             uuid.UUID     `json:"id"`
	Token          string        `json:"token"`
	CandidateID    uuid.UUID     `json:"candidateId"`
	ExamID         *uuid.UUID    `json:"examId,omitempty"`
	SubcategoryID  *uuid.UUID    `json:"subcategoryId,omitempty"`
	Status         SessionStatus `json:"status"`
	Mode           InterviewMode `json:"mode"`
	ScheduledStart *time.Time    `json:"scheduledStart,omitempty"`
	ScheduledEnd   *time.Time    `json:"scheduledEnd,omitempty"`
	ExpiresAt      time.Time     `json:"expiresAt"`
	StartedAt      *time.Time    `json:"startedAt,omitempty"`
	CompletedAt    *time.Time    `json:"completedAt,omitempty"`
	AbandonedAt    *time.Time    `json:"abandonedAt,omitempty"`
	LinkSentAt     *time.Time    `json:"linkSentAt,omitempty"`
	IsActive       bool          `json:"isActive"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// Deadline returns the operative deadline: the scheduled window end when one
// exists, otherwise the absolute expiry.
func (s *InterviewSession) Deadline() time.Time {
	if s.ScheduledEnd != nil {
		return *s.ScheduledEnd
	}
	return s.ExpiresAt
}

// WindowGoverned reports whether the scheduled window, not the absolute
// expiry, is the authoritative deadline.
func (s *InterviewSession) WindowGoverned() bool {
	return s.ScheduledEnd != nil
}

// IsTerminal reports whether the session can never become enterable again.
// An abandonment recorded before the candidate ever started is recoverable
// and therefore not terminal.
func (s *InterviewSession) IsTerminal() bool {
	if s.CompletedAt != nil || s.Status == StatusCompleted {
		return true
	}
	return s.Status == StatusAbandoned && s.StartedAt != nil
}

// IsProctored reports whether the session runs in proctored mode.
func (s *InterviewSession) IsProctored() bool {
	return s.Mode == ModeProctored
}
