package service

import (
	"strconv"
	"time"
)

// Store keys shared by the runner, the stats tracker and the status checker
const (
	KeyCheckpoint   = "yatco_sync_checkpoint"
	KeyStatus       = "yatco_sync_status"
	KeyStopSignal   = "yatco_sync_stop"
	KeyActiveIDs    = "yatco_active_vessel_ids"
	KeyVesselCache  = "yatco_vessel_cache"
	KeyDailyStats   = "yatco_daily_stats"
	vesselKeyPrefix = "yatco_vessel_"
)

func vesselKey(vesselID int64) string {
	return vesselKeyPrefix + strconv.FormatInt(vesselID, 10)
}

// SyncOptions tunes a SyncRunner
type SyncOptions struct {
	BatchSize  int
	MaxVessels int // 0 means every active vessel
	CacheTTL   time.Duration
	IDListTTL  time.Duration
	VesselTTL  time.Duration
	StaleAfter time.Duration
	StopTTL    time.Duration
}

func DefaultSyncOptions() SyncOptions {
	return SyncOptions{
		BatchSize:  20,
		CacheTTL:   30 * time.Minute,
		IDListTTL:  6 * time.Hour,
		VesselTTL:  time.Hour,
		StaleAfter: 30 * time.Minute,
		StopTTL:    5 * time.Minute,
	}
}
