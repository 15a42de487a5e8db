package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Candidate is the person a session is issued for. Candidate records are
// owned by the admissions service; this service only reads them.
type Candidate struct {
	ID             uuid.UUID
	Name           string
	Email          string
	ResumeAnalysis json.RawMessage
	CreatedAt      time.Time
}
