package models

import "time"

type SyncState string

const (
	SyncStateIdle        SyncState = "idle"
	SyncStateRunning     SyncState = "running"
	SyncStateCompleted   SyncState = "completed"
	SyncStateStopped     SyncState = "stopped"
	SyncStateFailed      SyncState = "failed"
	SyncStateInterrupted SyncState = "interrupted" // context cancelled, checkpoint kept for resume
	SyncStateBusy        SyncState = "busy"        // another run holds the lock
)

// Terminal reports whether no further progress will be made by the run
func (s SyncState) Terminal() bool {
	switch s {
	case SyncStateCompleted, SyncStateStopped, SyncStateFailed:
		return true
	}
	return false
}

// SyncStatus is the human readable status plus progress tuple shown to operators
type SyncStatus struct {
	RunID     string    `json:"run_id,omitempty"`
	Mode      SyncMode  `json:"mode,omitempty"`
	State     SyncState `json:"state"`
	Message   string    `json:"message"`
	Processed int       `json:"processed"`
	Total     int       `json:"total"`
	Errors    int       `json:"errors"`
	UpdatedAt time.Time `json:"updated_at"`
}
