package models

import "time"

// SyncRun is one row of run history, written when a run starts and again when it ends
type SyncRun struct {
	ID         string     `gorm:"column:id;primaryKey" json:"id"`
	Mode       SyncMode   `gorm:"column:mode" json:"mode"`
	Status     SyncState  `gorm:"column:status;index" json:"status"`
	Processed  int        `gorm:"column:processed" json:"processed"`
	Errors     int        `gorm:"column:errors" json:"errors"`
	Total      int        `gorm:"column:total" json:"total"`
	LastError  *string    `gorm:"column:last_error" json:"last_error,omitempty"`
	StartedAt  time.Time  `gorm:"column:started_at" json:"started_at"`
	FinishedAt *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`
}

// TableName specifies the table name for GORM
func (SyncRun) TableName() string {
	return "sync_run"
}
