// Package state persists run outcomes so daemon status and troubleshooting
// can look back at recent runs. Only outcomes are stored, never scraped
// payloads.
package state

import "time"

// RunRecord captures the outcome of a single update run.
type RunRecord struct {
	ID         string            `json:"id"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Changed    bool              `json:"changed"`
	Sections   map[string]string `json:"sections,omitempty"` // section -> rendered|unavailable|disabled
	Error      string            `json:"error,omitempty"`
}

// Store records and retrieves run outcomes.
type Store interface {
	Record(rec RunRecord) error
	Recent(limit int) ([]RunRecord, error)
	Close() error
}
