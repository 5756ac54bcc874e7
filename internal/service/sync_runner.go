package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vipul43/yatco-sync/internal/models"
	"github.com/vipul43/yatco-sync/internal/normalizer"
	"github.com/vipul43/yatco-sync/internal/repository"
	"github.com/vipul43/yatco-sync/internal/store"
	"github.com/vipul43/yatco-sync/internal/yatco"
	"go.uber.org/zap"
)

// VesselClient interface for the YATCO listing API
type VesselClient interface {
	Configured() bool
	ListActiveVesselIDs(ctx context.Context, limit int) ([]int64, error)
	FetchFullSpecs(ctx context.Context, vesselID int64) (normalizer.Document, error)
}

// VesselNormalizer maps a remote document to a vessel record
type VesselNormalizer interface {
	Normalize(vesselID int64, doc normalizer.Document) models.Vessel
}

// VesselRepository interface for the durable vessel store
type VesselRepository interface {
	FindByMLSID(ctx context.Context, mlsID string) (*models.Vessel, error)
	FindByVesselID(ctx context.Context, vesselID int64) (*models.Vessel, error)
	Create(ctx context.Context, vessel *models.Vessel) error
	Update(ctx context.Context, vessel *models.Vessel) error
	DeactivateMissing(ctx context.Context, activeIDs []int64) (int64, error)
}

// SyncRunRecorder keeps the run history
type SyncRunRecorder interface {
	Create(ctx context.Context, run models.SyncRun) error
	Finish(ctx context.Context, run models.SyncRun) error
}

// Locker is a non-blocking mutual exclusion lock held for the length of a run
type Locker interface {
	TryLock() (bool, error)
	Unlock() error
}

type SyncRunner struct {
	client     VesselClient
	normalizer VesselNormalizer
	vessels    VesselRepository // nil when no durable store is configured
	runs       SyncRunRecorder  // optional
	kv         store.Store
	stats      *StatsTracker
	lock       Locker
	opts       SyncOptions
	log        *zap.Logger
	now        func() time.Time
}

func NewSyncRunner(
	client VesselClient,
	norm VesselNormalizer,
	vessels VesselRepository,
	runs SyncRunRecorder,
	kv store.Store,
	stats *StatsTracker,
	lock Locker,
	opts SyncOptions,
	log *zap.Logger,
) *SyncRunner {
	defaults := DefaultSyncOptions()
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaults.BatchSize
	}
	// the store treats a zero ttl as no expiry
	for _, d := range []struct{ dst, fallback *time.Duration }{
		{&opts.CacheTTL, &defaults.CacheTTL},
		{&opts.IDListTTL, &defaults.IDListTTL},
		{&opts.VesselTTL, &defaults.VesselTTL},
		{&opts.StaleAfter, &defaults.StaleAfter},
		{&opts.StopTTL, &defaults.StopTTL},
	} {
		if *d.dst <= 0 {
			*d.dst = *d.fallback
		}
	}
	return &SyncRunner{
		client:     client,
		normalizer: norm,
		vessels:    vessels,
		runs:       runs,
		kv:         kv,
		stats:      stats,
		lock:       lock,
		opts:       opts,
		log:        log,
		now:        time.Now,
	}
}

// run is the bookkeeping of one invocation of Run
type run struct {
	record models.SyncRun
	cp     *models.SyncCheckpoint
}

// Run executes (or resumes) a sync in the given mode. It never returns an
// error: every outcome is expressed as the returned and persisted status.
func (r *SyncRunner) Run(ctx context.Context, mode models.SyncMode) (result models.SyncStatus) {
	locked, err := r.lock.TryLock()
	if err != nil {
		r.log.Error("Failed to acquire sync lock", zap.Error(err))
		return r.setStatus(ctx, models.SyncStatus{
			Mode:    mode,
			State:   models.SyncStateFailed,
			Message: fmt.Sprintf("Failed to acquire sync lock: %v", err),
		})
	}
	if !locked {
		r.log.Info("Sync already running, skipping", zap.String("mode", string(mode)))
		return models.SyncStatus{
			Mode:      mode,
			State:     models.SyncStateBusy,
			Message:   "A sync is already running",
			UpdatedAt: r.now(),
		}
	}
	defer func() {
		if err := r.lock.Unlock(); err != nil {
			r.log.Warn("Failed to release sync lock", zap.Error(err))
		}
	}()

	cp, resumed := r.loadCheckpoint(ctx, mode)
	rn := &run{cp: cp}
	rn.record = models.SyncRun{
		ID:        uuid.New().String(),
		Mode:      mode,
		Status:    models.SyncStateRunning,
		StartedAt: r.now(),
	}
	if resumed {
		rn.record.ID = cp.RunID
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("Sync panicked", zap.String("run_id", rn.record.ID), zap.Any("panic", p))
			result = r.finish(ctx, rn, models.SyncStateFailed, fmt.Sprintf("Sync failed: %v", p))
		}
	}()

	r.recordStart(ctx, rn)

	if !r.client.Configured() {
		return r.finish(ctx, rn, models.SyncStateFailed, "API token not configured")
	}
	if mode == models.ModeCPT && r.vessels == nil {
		return r.finish(ctx, rn, models.SyncStateFailed, "Durable vessel store not configured")
	}

	if resumed {
		r.log.Info("Resuming sync from checkpoint",
			zap.String("run_id", rn.record.ID),
			zap.String("mode", string(mode)),
			zap.Int("processed", cp.Processed),
			zap.Int("total", cp.Total))
		r.setStatus(ctx, r.progressStatus(rn, fmt.Sprintf("Resuming sync at vessel %d of %d...", cp.Processed, cp.Total)))
	} else {
		// a stop requested while nothing was running must not cancel the new run
		if err := r.kv.Delete(ctx, KeyStopSignal); err != nil {
			r.log.Warn("Failed to clear stop signal", zap.Error(err))
		}

		ids, err := r.activeVesselIDs(ctx, mode)
		if err != nil {
			return r.finish(ctx, rn, models.SyncStateFailed, fmt.Sprintf("Failed to fetch vessel IDs: %v", err))
		}

		now := r.now()
		rn.cp = &models.SyncCheckpoint{
			RunID:     rn.record.ID,
			Mode:      mode,
			Total:     len(ids),
			VesselIDs: ids,
			Vessels:   []models.Vessel{},
			StartedAt: now,
			UpdatedAt: now,
		}
		if err := r.saveCheckpoint(ctx, rn.cp); err != nil {
			return r.finish(ctx, rn, models.SyncStateFailed, fmt.Sprintf("Failed to save checkpoint: %v", err))
		}

		r.log.Info("Starting sync",
			zap.String("run_id", rn.record.ID),
			zap.String("mode", string(mode)),
			zap.Int("total", len(ids)))
		r.setStatus(ctx, r.progressStatus(rn, fmt.Sprintf("Starting sync of %d vessels...", len(ids))))
	}

	return r.loop(ctx, rn)
}

func (r *SyncRunner) loop(ctx context.Context, rn *run) models.SyncStatus {
	cp := rn.cp
	for !cp.Complete() {
		if ctx.Err() != nil {
			return r.interrupt(ctx, rn)
		}
		if r.stopRequested(ctx) {
			return r.stop(ctx, rn)
		}

		end := cp.Processed + r.opts.BatchSize
		if end > cp.Total {
			end = cp.Total
		}

		err := r.processBatch(ctx, cp, cp.VesselIDs[cp.Processed:end])
		if err != nil && ctx.Err() != nil {
			return r.interrupt(ctx, rn)
		}
		if err != nil {
			r.log.Error("Batch failed", zap.String("run_id", cp.RunID), zap.Error(err))
			return r.finish(ctx, rn, models.SyncStateFailed, fmt.Sprintf("Sync failed: %v", err))
		}

		cp.UpdatedAt = r.now()
		if err := r.saveCheckpoint(ctx, cp); err != nil {
			r.log.Warn("Failed to save checkpoint", zap.String("run_id", cp.RunID), zap.Error(err))
		}
		r.setStatus(ctx, r.progressStatus(rn, fmt.Sprintf("Processing vessel %d of %d (%d%%)...",
			cp.Processed, cp.Total, cp.Percent())))

		if r.stopRequested(ctx) {
			return r.stop(ctx, rn)
		}
	}

	return r.complete(ctx, rn)
}

// processBatch syncs each id of the batch, advancing cp as it goes. Per-vessel
// failures are counted; only a panic or cancellation returns an error.
func (r *SyncRunner) processBatch(ctx context.Context, cp *models.SyncCheckpoint, ids []int64) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic while processing batch: %v", p)
		}
	}()

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		vessel, syncErr := r.syncVessel(ctx, cp.Mode, id)
		if err := ctx.Err(); err != nil {
			// the in-flight vessel is retried on resume
			return err
		}

		cp.Processed++
		if syncErr != nil {
			cp.Errors++
			r.log.Warn("Failed to sync vessel",
				zap.String("run_id", cp.RunID),
				zap.Int64("vessel_id", id),
				zap.Bool("remote", yatco.IsVesselError(syncErr)),
				zap.Error(syncErr))
			continue
		}
		cp.Vessels = append(cp.Vessels, vessel)
	}
	return nil
}

// syncVessel fetches, normalizes and persists one vessel
func (r *SyncRunner) syncVessel(ctx context.Context, mode models.SyncMode, vesselID int64) (models.Vessel, error) {
	if mode == models.ModeAPIOnly {
		var cached models.Vessel
		if err := store.GetJSON(ctx, r.kv, vesselKey(vesselID), &cached); err == nil {
			return cached, nil
		}
	}

	doc, err := r.client.FetchFullSpecs(ctx, vesselID)
	if err != nil {
		return models.Vessel{}, err
	}

	vessel := r.normalizer.Normalize(vesselID, doc)
	vessel.LastSyncedAt = r.now()

	if mode == models.ModeAPIOnly {
		if err := store.SetJSON(ctx, r.kv, vesselKey(vesselID), vessel, r.opts.VesselTTL); err != nil {
			return models.Vessel{}, &repository.PersistenceError{VesselID: vesselID, Op: "cache", Err: err}
		}
		return vessel, nil
	}

	if err := r.upsert(ctx, &vessel); err != nil {
		return models.Vessel{}, err
	}
	return vessel, nil
}

// upsert matches by MLS id first and vessel id second. A match keeps its
// primary key and creation time, every other column is overwritten.
func (r *SyncRunner) upsert(ctx context.Context, vessel *models.Vessel) error {
	existing, err := r.findExisting(ctx, vessel)
	if err != nil {
		return &repository.PersistenceError{VesselID: vessel.VesselID, Op: "look up", Err: err}
	}

	if existing == nil {
		if err := r.vessels.Create(ctx, vessel); err != nil {
			return &repository.PersistenceError{VesselID: vessel.VesselID, Op: "create", Err: err}
		}
		return nil
	}

	vessel.ID = existing.ID
	vessel.CreatedAt = existing.CreatedAt
	if err := r.vessels.Update(ctx, vessel); err != nil {
		return &repository.PersistenceError{VesselID: vessel.VesselID, Op: "update", Err: err}
	}
	return nil
}

// findExisting returns the MLS id match, unless another row already holds the
// vessel id: vessel_id is unique, so that row is the only one we can update.
func (r *SyncRunner) findExisting(ctx context.Context, vessel *models.Vessel) (*models.Vessel, error) {
	var byMLS *models.Vessel
	if vessel.MLSID != "" {
		found, err := r.vessels.FindByMLSID(ctx, vessel.MLSID)
		switch {
		case err == nil:
			if found.VesselID == vessel.VesselID {
				return found, nil
			}
			byMLS = found
		case !errors.Is(err, repository.ErrVesselNotFound):
			return nil, err
		}
	}

	byID, err := r.vessels.FindByVesselID(ctx, vessel.VesselID)
	if errors.Is(err, repository.ErrVesselNotFound) {
		return byMLS, nil
	}
	if err != nil {
		return nil, err
	}

	if byMLS != nil {
		r.log.Warn("MLS id and vessel id match different rows, updating the vessel id row",
			zap.String("mls_id", vessel.MLSID),
			zap.Int64("vessel_id", vessel.VesselID),
			zap.Int64("mls_row_vessel_id", byMLS.VesselID))
	}
	return byID, nil
}

// activeVesselIDs returns the ids of this run. API-only mode serves the list
// from cache. A full (unlimited) list always refreshes the cache.
func (r *SyncRunner) activeVesselIDs(ctx context.Context, mode models.SyncMode) ([]int64, error) {
	if mode == models.ModeAPIOnly {
		var cached []int64
		if err := store.GetJSON(ctx, r.kv, KeyActiveIDs, &cached); err == nil && len(cached) > 0 {
			if r.opts.MaxVessels > 0 && len(cached) > r.opts.MaxVessels {
				cached = cached[:r.opts.MaxVessels]
			}
			return cached, nil
		}
	}

	ids, err := r.client.ListActiveVesselIDs(ctx, r.opts.MaxVessels)
	if err != nil {
		return nil, err
	}

	if r.opts.MaxVessels == 0 {
		if err := store.SetJSON(ctx, r.kv, KeyActiveIDs, ids, r.opts.IDListTTL); err != nil {
			r.log.Warn("Failed to cache active vessel IDs", zap.Error(err))
		}
	}
	return ids, nil
}

func (r *SyncRunner) complete(ctx context.Context, rn *run) models.SyncStatus {
	cp := rn.cp
	now := r.now()

	cache := models.VesselCache{
		Vessels:   cp.Vessels,
		Facets:    BuildFacets(cp.Vessels),
		UpdatedAt: now,
	}
	if err := store.SetJSON(ctx, r.kv, KeyVesselCache, cache, r.opts.CacheTTL); err != nil {
		r.log.Warn("Failed to write vessel cache", zap.String("run_id", cp.RunID), zap.Error(err))
	}

	// a limited run (or an empty list) does not describe the whole market
	if r.opts.MaxVessels == 0 && len(cp.VesselIDs) > 0 {
		if r.stats != nil {
			snap, err := r.stats.RecordDailySnapshot(ctx, cp.VesselIDs)
			if err != nil {
				r.log.Warn("Failed to record daily snapshot", zap.Error(err))
			} else {
				r.log.Info("Recorded daily snapshot",
					zap.String("date", snap.Date),
					zap.Int("added", snap.Added),
					zap.Int("removed", snap.Removed),
					zap.Int("total", snap.Total))
			}
		}

		if cp.Mode == models.ModeCPT {
			n, err := r.vessels.DeactivateMissing(ctx, cp.VesselIDs)
			if err != nil {
				r.log.Warn("Failed to deactivate missing vessels", zap.Error(err))
			} else if n > 0 {
				r.log.Info("Deactivated vessels missing from the active list", zap.Int64("count", n))
			}
		}
	}

	r.clearCheckpoint(ctx)

	msg := fmt.Sprintf("Sync completed: %d vessels processed, %d errors", len(cp.Vessels), cp.Errors)
	r.log.Info(msg, zap.String("run_id", cp.RunID), zap.String("mode", string(cp.Mode)))
	return r.finish(ctx, rn, models.SyncStateCompleted, msg)
}

func (r *SyncRunner) stop(ctx context.Context, rn *run) models.SyncStatus {
	r.clearCheckpoint(ctx)
	if err := r.kv.Delete(ctx, KeyStopSignal); err != nil {
		r.log.Warn("Failed to clear stop signal", zap.Error(err))
	}

	msg := fmt.Sprintf("Sync stopped at vessel %d of %d", rn.cp.Processed, rn.cp.Total)
	r.log.Info(msg, zap.String("run_id", rn.cp.RunID))
	return r.finish(ctx, rn, models.SyncStateStopped, msg)
}

// interrupt keeps the checkpoint so the next run resumes where this one left off
func (r *SyncRunner) interrupt(ctx context.Context, rn *run) models.SyncStatus {
	ctx = context.WithoutCancel(ctx)
	rn.cp.UpdatedAt = r.now()
	if err := r.saveCheckpoint(ctx, rn.cp); err != nil {
		r.log.Warn("Failed to save checkpoint", zap.String("run_id", rn.cp.RunID), zap.Error(err))
	}

	msg := fmt.Sprintf("Sync interrupted at vessel %d of %d", rn.cp.Processed, rn.cp.Total)
	r.log.Warn(msg, zap.String("run_id", rn.cp.RunID))
	return r.finish(ctx, rn, models.SyncStateInterrupted, msg)
}

// finish persists the final status and closes the run record
func (r *SyncRunner) finish(ctx context.Context, rn *run, state models.SyncState, message string) models.SyncStatus {
	ctx = context.WithoutCancel(ctx)

	st := r.progressStatus(rn, message)
	st.State = state
	st = r.setStatus(ctx, st)

	if r.runs != nil {
		rn.record.Status = state
		rn.record.Processed = st.Processed
		rn.record.Errors = st.Errors
		rn.record.Total = st.Total
		if state == models.SyncStateFailed {
			rn.record.LastError = &message
		}
		if err := r.runs.Finish(ctx, rn.record); err != nil {
			r.log.Warn("Failed to record sync run", zap.String("run_id", rn.record.ID), zap.Error(err))
		}
	}
	return st
}

func (r *SyncRunner) recordStart(ctx context.Context, rn *run) {
	if r.runs == nil {
		return
	}
	if err := r.runs.Create(ctx, rn.record); err != nil {
		r.log.Warn("Failed to record sync run", zap.String("run_id", rn.record.ID), zap.Error(err))
	}
}

func (r *SyncRunner) progressStatus(rn *run, message string) models.SyncStatus {
	st := models.SyncStatus{
		RunID:   rn.record.ID,
		Mode:    rn.record.Mode,
		State:   models.SyncStateRunning,
		Message: message,
	}
	if rn.cp != nil {
		st.Processed = rn.cp.Processed
		st.Total = rn.cp.Total
		st.Errors = rn.cp.Errors
	}
	return st
}

func (r *SyncRunner) setStatus(ctx context.Context, st models.SyncStatus) models.SyncStatus {
	st.UpdatedAt = r.now()
	if err := store.SetJSON(context.WithoutCancel(ctx), r.kv, KeyStatus, st, 0); err != nil {
		r.log.Warn("Failed to persist sync status", zap.Error(err))
	}
	return st
}
