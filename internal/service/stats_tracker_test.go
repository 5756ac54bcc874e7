package service

import (
	"context"
	"testing"
	"time"

	"github.com/vipul43/yatco-sync/internal/store"
)

func newTestTracker(day *time.Time) *StatsTracker {
	tracker := NewStatsTracker(store.NewMemoryStore())
	tracker.now = func() time.Time { return *day }
	return tracker
}

func TestStatsTracker_RecordDailySnapshot_Baseline(t *testing.T) {
	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tracker := newTestTracker(&day)

	snap, err := tracker.RecordDailySnapshot(context.Background(), []int64{3, 1, 2, 2})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !snap.Baseline {
		t.Error("expected first snapshot to be a baseline")
	}
	if snap.Date != "2026-03-10" || snap.Total != 3 || snap.Added != 3 || snap.Removed != 0 {
		t.Errorf("unexpected baseline snapshot: %+v", snap)
	}
}

func TestStatsTracker_RecordDailySnapshot_DiffsAgainstPreviousDay(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tracker := newTestTracker(&day)

	if _, err := tracker.RecordDailySnapshot(ctx, []int64{1, 2, 3}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	day = day.AddDate(0, 0, 2)
	snap, err := tracker.RecordDailySnapshot(ctx, []int64{2, 3, 4})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if snap.Baseline {
		t.Error("expected a diff, got a baseline")
	}
	if snap.Added != 1 || snap.Removed != 1 || snap.Total != 3 || snap.Updated != 2 {
		t.Errorf("expected added 1, removed 1, total 3, updated 2, got %+v", snap)
	}
}

func TestStatsTracker_RecordDailySnapshot_SameDayAccumulates(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tracker := newTestTracker(&day)

	_, _ = tracker.RecordDailySnapshot(ctx, []int64{1, 2, 3})
	day = day.AddDate(0, 0, 1)
	first, err := tracker.RecordDailySnapshot(ctx, []int64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if first.Added != 1 || first.Removed != 0 {
		t.Fatalf("unexpected first snapshot of the day: %+v", first)
	}

	day = day.Add(6 * time.Hour)
	second, err := tracker.RecordDailySnapshot(ctx, []int64{1, 2, 4, 5})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if second.Added != 2 || second.Removed != 1 || second.Total != 4 {
		t.Errorf("expected running totals added 2, removed 1, total 4, got %+v", second)
	}

	history, err := tracker.History(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(history) != 2 {
		t.Errorf("expected one snapshot per day, got %d", len(history))
	}
}

func TestStatsTracker_RecordDailySnapshot_PurgesOldSnapshots(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	tracker := newTestTracker(&day)

	_, _ = tracker.RecordDailySnapshot(ctx, []int64{1})
	day = day.AddDate(0, 0, 20)
	_, _ = tracker.RecordDailySnapshot(ctx, []int64{1, 2})
	day = day.AddDate(0, 0, 20)
	_, _ = tracker.RecordDailySnapshot(ctx, []int64{1, 2, 3})

	history, err := tracker.History(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 retained snapshots, got %d", len(history))
	}
	if history[0].Date != "2026-01-21" || history[1].Date != "2026-02-10" {
		t.Errorf("expected oldest first without the purged day, got %s and %s", history[0].Date, history[1].Date)
	}
}

func TestStatsTracker_History_Empty(t *testing.T) {
	day := time.Now()
	tracker := newTestTracker(&day)

	history, err := tracker.History(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected no snapshots, got %d", len(history))
	}
}
