package records

import (
	"encoding/json"
	"errors"
	"time"
)

// Known tables.
const (
	TableResumes      = "resumes"
	TableFlowcharts   = "flowcharts"
	TableChatHistory  = "chat_history"
	TableResumeScores = "resume_scores"
)

// ErrNotFound is returned when no row matches.
var ErrNotFound = errors.New("record not found")

// Record is one row of a user-scoped table. Payload is opaque JSON.
type Record struct {
	ID        string          `json:"id"`
	Table     string          `json:"table"`
	UserID    string          `json:"-"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Filter selects rows for deletion. An empty ID matches every row the user owns in the table.
type Filter struct {
	ID string
}
