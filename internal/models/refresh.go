package models

import "time"

// RefreshState is the lifecycle state of the background price refresh job.
type RefreshState string

const (
	RefreshIdle      RefreshState = "idle"
	RefreshRunning   RefreshState = "running"
	RefreshCompleted RefreshState = "completed"
	RefreshFailed    RefreshState = "failed"
)

// RefreshJob is the observable state of the single process-wide refresh job.
// At most one job is running at any time; status reads return a copy.
type RefreshJob struct {
	State       RefreshState `json:"state"`
	Progress    int          `json:"progress"`
	Total       int          `json:"total"`
	CurrentCard string       `json:"current_card"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	FinishedAt  *time.Time   `json:"finished_at,omitempty"`
	LastError   string       `json:"last_error,omitempty"`
}
