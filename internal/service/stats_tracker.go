package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/vipul43/yatco-sync/internal/models"
	"github.com/vipul43/yatco-sync/internal/store"
)

const (
	dateLayout     = "2006-01-02"
	statsRetention = 30 // days
)

// StatsTracker keeps one change snapshot per calendar day
type StatsTracker struct {
	kv  store.Store
	now func() time.Time
}

func NewStatsTracker(kv store.Store) *StatsTracker {
	return &StatsTracker{kv: kv, now: time.Now}
}

// RecordDailySnapshot diffs ids against the previous snapshot. A second call
// on the same day diffs against that day's snapshot and adds the deltas to
// its counts instead of replacing them.
func (t *StatsTracker) RecordDailySnapshot(ctx context.Context, ids []int64) (models.DailyStatSnapshot, error) {
	snapshots, err := t.load(ctx)
	if err != nil {
		return models.DailyStatSnapshot{}, err
	}

	now := t.now()
	today := now.Format(dateLayout)
	current := uniqueSorted(ids)

	var snap models.DailyStatSnapshot
	if existing, ok := snapshots[today]; ok {
		added, removed, kept := diff(existing.VesselIDs, current)
		snap = existing
		snap.Added += added
		snap.Removed += removed
		snap.Updated = kept
	} else if prev, ok := latestBefore(snapshots, today); ok {
		added, removed, kept := diff(prev.VesselIDs, current)
		snap = models.DailyStatSnapshot{Added: added, Removed: removed, Updated: kept}
	} else {
		snap = models.DailyStatSnapshot{Added: len(current), Baseline: true}
	}

	snap.Date = today
	snap.Total = len(current)
	snap.VesselIDs = current
	snap.UpdatedAt = now
	snapshots[today] = snap

	cutoff := now.AddDate(0, 0, -statsRetention).Format(dateLayout)
	for date := range snapshots {
		if date < cutoff {
			delete(snapshots, date)
		}
	}

	if err := store.SetJSON(ctx, t.kv, KeyDailyStats, snapshots, 0); err != nil {
		return models.DailyStatSnapshot{}, fmt.Errorf("failed to save daily stats: %w", err)
	}
	return snap, nil
}

// History returns the retained snapshots, oldest first
func (t *StatsTracker) History(ctx context.Context) ([]models.DailyStatSnapshot, error) {
	snapshots, err := t.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.DailyStatSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (t *StatsTracker) load(ctx context.Context) (map[string]models.DailyStatSnapshot, error) {
	snapshots := make(map[string]models.DailyStatSnapshot)
	err := store.GetJSON(ctx, t.kv, KeyDailyStats, &snapshots)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to load daily stats: %w", err)
	}
	return snapshots, nil
}

func latestBefore(snapshots map[string]models.DailyStatSnapshot, date string) (models.DailyStatSnapshot, bool) {
	var (
		best  models.DailyStatSnapshot
		found bool
	)
	for d, s := range snapshots {
		if d < date && (!found || d > best.Date) {
			best = s
			best.Date = d
			found = true
		}
	}
	return best, found
}

// diff counts ids only in next (added), only in prev (removed) and in both
func diff(prev, next []int64) (added, removed, kept int) {
	before := make(map[int64]struct{}, len(prev))
	for _, id := range prev {
		before[id] = struct{}{}
	}
	for _, id := range next {
		if _, ok := before[id]; ok {
			kept++
			delete(before, id)
		} else {
			added++
		}
	}
	return added, len(before), kept
}

func uniqueSorted(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
