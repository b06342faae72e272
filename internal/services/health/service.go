package health

import (
	"context"
	"database/sql"
	"time"
)

const pingTimeout = 2 * time.Second

// Status is the payload served by GET /health.
type Status struct {
	OK       bool   `json:"ok"`
	Storage  string `json:"storage"`
	Database string `json:"database,omitempty"`
}

// Service reports whether the API and its database are reachable.
type Service struct {
	DB *sql.DB
}

// NewService constructs a health service. A nil database means in-memory storage.
func NewService(database *sql.DB) *Service {
	return &Service{DB: database}
}

// Status pings the database when one is configured.
func (s *Service) Status(ctx context.Context) Status {
	if s == nil || s.DB == nil {
		return Status{OK: true, Storage: "memory"}
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		return Status{OK: false, Storage: "postgres", Database: "unreachable"}
	}
	return Status{OK: true, Storage: "postgres", Database: "ok"}
}
