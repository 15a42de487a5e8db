package domain

import "errors"

// Session errors
var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrDuplicateToken    = errors.New("token already exists")
	ErrInvalidWindow     = errors.New("scheduled end must be after scheduled start")
	ErrInvalidStatus     = errors.New("invalid session status")
	ErrTerminalState     = errors.New("session is in a terminal state")
	ErrTooManyItems      = errors.New("too many candidates in one batch")
	ErrEmptyBatch        = errors.New("candidate list is empty")

	ErrDispatcherUnavailable = errors.New("notification dispatcher is not configured")
)

// DenyReason classifies why an access attempt was refused.
type DenyReason string

const (
	DenyNotFound         DenyReason = "NotFound"
	DenyInactive         DenyReason = "Inactive"
	DenyAlreadyCompleted DenyReason = "AlreadyCompleted"
	DenyAbandoned        DenyReason = "Abandoned"
	DenyNotYetAvailable  DenyReason = "NotYetAvailable"
	DenyExpired          DenyReason = "Expired"
)
