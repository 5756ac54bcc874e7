package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vipul43/yatco-sync/internal/models"
	"github.com/vipul43/yatco-sync/internal/store"
	"go.uber.org/zap"
)

// Progress is the operator view of the current or last run
type Progress struct {
	Status     models.SyncStatus  `json:"status"`
	Checkpoint *CheckpointSummary `json:"checkpoint,omitempty"`
	Running    bool               `json:"running"`
	Stale      bool               `json:"stale"`
}

// CheckpointSummary is a checkpoint without its accumulated records
type CheckpointSummary struct {
	RunID     string          `json:"run_id"`
	Mode      models.SyncMode `json:"mode"`
	Processed int             `json:"processed"`
	Total     int             `json:"total"`
	Errors    int             `json:"errors"`
	Percent   int             `json:"percent"`
	StartedAt time.Time       `json:"started_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// loadCheckpoint returns a resumable checkpoint for mode. Stale, corrupt and
// other-mode checkpoints are deleted.
func (r *SyncRunner) loadCheckpoint(ctx context.Context, mode models.SyncMode) (*models.SyncCheckpoint, bool) {
	var cp models.SyncCheckpoint
	err := store.GetJSON(ctx, r.kv, KeyCheckpoint, &cp)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false
	}

	switch {
	case err != nil:
		r.log.Warn("Discarding unreadable checkpoint", zap.Error(err))
	case cp.IsStale(r.now(), r.opts.StaleAfter):
		r.log.Info("Discarding stale checkpoint",
			zap.String("run_id", cp.RunID),
			zap.Int("processed", cp.Processed),
			zap.Int("total", cp.Total),
			zap.Time("updated_at", cp.UpdatedAt))
	case cp.Mode != mode:
		r.log.Info("Discarding checkpoint of another mode",
			zap.String("run_id", cp.RunID),
			zap.String("mode", string(cp.Mode)))
	case len(cp.VesselIDs) != cp.Total || cp.Processed > cp.Total || cp.Processed < 0:
		r.log.Warn("Discarding inconsistent checkpoint", zap.String("run_id", cp.RunID))
	default:
		return &cp, true
	}

	r.clearCheckpoint(ctx)
	return nil, false
}

func (r *SyncRunner) saveCheckpoint(ctx context.Context, cp *models.SyncCheckpoint) error {
	return store.SetJSON(ctx, r.kv, KeyCheckpoint, cp, 0)
}

func (r *SyncRunner) clearCheckpoint(ctx context.Context) {
	if err := r.kv.Delete(context.WithoutCancel(ctx), KeyCheckpoint); err != nil {
		r.log.Warn("Failed to clear checkpoint", zap.Error(err))
	}
}

func (r *SyncRunner) stopRequested(ctx context.Context) bool {
	_, err := r.kv.Get(ctx, KeyStopSignal)
	return err == nil
}

// RequestStop asks the running sync to halt at its next batch boundary
func (r *SyncRunner) RequestStop(ctx context.Context) error {
	if err := r.kv.Set(ctx, KeyStopSignal, []byte("1"), r.opts.StopTTL); err != nil {
		return fmt.Errorf("failed to set stop signal: %w", err)
	}
	r.log.Info("Stop requested")
	return nil
}

// ClearCheckpoint drops the saved progress so the next run starts fresh
func (r *SyncRunner) ClearCheckpoint(ctx context.Context) error {
	if err := r.kv.Delete(ctx, KeyCheckpoint); err != nil {
		return fmt.Errorf("failed to clear checkpoint: %w", err)
	}
	r.log.Info("Checkpoint cleared")
	return nil
}

// ClearCaches drops the id list, the record cache and every per-vessel entry
func (r *SyncRunner) ClearCaches(ctx context.Context) error {
	if err := r.kv.Delete(ctx, KeyActiveIDs); err != nil {
		return fmt.Errorf("failed to clear id list cache: %w", err)
	}
	// also matches KeyVesselCache
	if err := r.kv.DeletePrefix(ctx, vesselKeyPrefix); err != nil {
		return fmt.Errorf("failed to clear vessel caches: %w", err)
	}
	r.log.Info("Caches cleared")
	return nil
}

// Status returns the last persisted status
func (r *SyncRunner) Status(ctx context.Context) (models.SyncStatus, error) {
	var st models.SyncStatus
	err := store.GetJSON(ctx, r.kv, KeyStatus, &st)
	if errors.Is(err, store.ErrNotFound) {
		return models.SyncStatus{State: models.SyncStateIdle, Message: "No sync has run yet"}, nil
	}
	if err != nil {
		return models.SyncStatus{}, err
	}
	return st, nil
}

// Progress combines the status with the checkpoint. A stale checkpoint is
// cleared and never reported as running.
func (r *SyncRunner) Progress(ctx context.Context) (Progress, error) {
	st, err := r.Status(ctx)
	if err != nil {
		return Progress{}, err
	}
	p := Progress{Status: st}

	var cp models.SyncCheckpoint
	err = store.GetJSON(ctx, r.kv, KeyCheckpoint, &cp)
	if errors.Is(err, store.ErrNotFound) {
		return p, nil
	}
	if err != nil {
		return Progress{}, err
	}

	if cp.IsStale(r.now(), r.opts.StaleAfter) {
		p.Stale = true
		if err := r.kv.Delete(ctx, KeyCheckpoint); err != nil {
			return Progress{}, fmt.Errorf("failed to clear stale checkpoint: %w", err)
		}
		if p.Status.State == models.SyncStateRunning {
			p.Status.State = models.SyncStateInterrupted
			p.Status.Message = fmt.Sprintf("Sync stalled at vessel %d of %d", cp.Processed, cp.Total)
		}
		return p, nil
	}

	p.Checkpoint = &CheckpointSummary{
		RunID:     cp.RunID,
		Mode:      cp.Mode,
		Processed: cp.Processed,
		Total:     cp.Total,
		Errors:    cp.Errors,
		Percent:   cp.Percent(),
		StartedAt: cp.StartedAt,
		UpdatedAt: cp.UpdatedAt,
	}
	p.Running = st.State == models.SyncStateRunning
	return p, nil
}

// HasResumableCheckpoint reports whether a fresh checkpoint exists
func (r *SyncRunner) HasResumableCheckpoint(ctx context.Context) (models.SyncMode, bool) {
	var cp models.SyncCheckpoint
	if err := store.GetJSON(ctx, r.kv, KeyCheckpoint, &cp); err != nil {
		return "", false
	}
	if cp.IsStale(r.now(), r.opts.StaleAfter) {
		return "", false
	}
	return cp.Mode, true
}

// CachedVessels returns the record list and facets written by the last completed run
func (r *SyncRunner) CachedVessels(ctx context.Context) (*models.VesselCache, error) {
	var cache models.VesselCache
	if err := store.GetJSON(ctx, r.kv, KeyVesselCache, &cache); err != nil {
		return nil, err
	}
	return &cache, nil
}
