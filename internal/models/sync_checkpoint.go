package models

import "time"

// SyncMode selects where normalized vessels are written
type SyncMode string

const (
	ModeCPT     SyncMode = "cpt"      // durable upsert into the vessel table
	ModeAPIOnly SyncMode = "api_only" // short-lived cache entries only
)

// ParseSyncMode maps a user supplied mode, falling back to ModeCPT for empty input
func ParseSyncMode(s string) (SyncMode, bool) {
	switch SyncMode(s) {
	case "", ModeCPT:
		return ModeCPT, true
	case ModeAPIOnly:
		return ModeAPIOnly, true
	}
	return "", false
}

// SyncCheckpoint is the persisted progress of the in-flight (or last interrupted) run
type SyncCheckpoint struct {
	RunID     string    `json:"run_id"`
	Mode      SyncMode  `json:"mode"`
	Processed int       `json:"processed"`
	Total     int       `json:"total"`
	Errors    int       `json:"errors"`
	VesselIDs []int64   `json:"vessel_ids"`
	Vessels   []Vessel  `json:"vessels"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Complete reports whether every vessel of the run has been processed
func (c *SyncCheckpoint) Complete() bool {
	return c.Processed >= c.Total
}

// IsStale reports whether the owning run stopped heartbeating
func (c *SyncCheckpoint) IsStale(now time.Time, staleAfter time.Duration) bool {
	return c.Processed < c.Total && now.Sub(c.UpdatedAt) > staleAfter
}

// Percent returns progress rounded down to a whole percent
func (c *SyncCheckpoint) Percent() int {
	if c.Total == 0 {
		return 100
	}
	return c.Processed * 100 / c.Total
}
