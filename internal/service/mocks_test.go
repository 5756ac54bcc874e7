package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vipul43/yatco-sync/internal/models"
	"github.com/vipul43/yatco-sync/internal/normalizer"
	"github.com/vipul43/yatco-sync/internal/repository"
	"github.com/vipul43/yatco-sync/internal/store"
	"go.uber.org/zap"
)

type mockVesselClient struct {
	unconfigured bool
	listFunc     func(ctx context.Context, limit int) ([]int64, error)
	fetchFunc    func(ctx context.Context, vesselID int64) (normalizer.Document, error)

	mu        sync.Mutex
	listCalls int
	fetched   []int64
}

func (m *mockVesselClient) Configured() bool {
	return !m.unconfigured
}

func (m *mockVesselClient) ListActiveVesselIDs(ctx context.Context, limit int) ([]int64, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()
	if m.listFunc != nil {
		return m.listFunc(ctx, limit)
	}
	return []int64{}, nil
}

func (m *mockVesselClient) FetchFullSpecs(ctx context.Context, vesselID int64) (normalizer.Document, error) {
	m.mu.Lock()
	m.fetched = append(m.fetched, vesselID)
	m.mu.Unlock()
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, vesselID)
	}
	return vesselDoc(vesselID), nil
}

func (m *mockVesselClient) fetchedIDs() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.fetched...)
}

// fakeVesselRepository is an in-memory vessel table
type fakeVesselRepository struct {
	rows        []models.Vessel
	nextID      uint
	createErr   map[int64]error
	deactivated []int64
}

func (f *fakeVesselRepository) FindByMLSID(ctx context.Context, mlsID string) (*models.Vessel, error) {
	for _, v := range f.rows {
		if v.MLSID == mlsID {
			found := v
			return &found, nil
		}
	}
	return nil, repository.ErrVesselNotFound
}

func (f *fakeVesselRepository) FindByVesselID(ctx context.Context, vesselID int64) (*models.Vessel, error) {
	for _, v := range f.rows {
		if v.VesselID == vesselID {
			found := v
			return &found, nil
		}
	}
	return nil, repository.ErrVesselNotFound
}

func (f *fakeVesselRepository) Create(ctx context.Context, vessel *models.Vessel) error {
	if err := f.createErr[vessel.VesselID]; err != nil {
		return err
	}
	f.nextID++
	vessel.ID = f.nextID
	if vessel.CreatedAt.IsZero() {
		vessel.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	f.rows = append(f.rows, *vessel)
	return nil
}

func (f *fakeVesselRepository) Update(ctx context.Context, vessel *models.Vessel) error {
	for i, v := range f.rows {
		if v.ID == vessel.ID {
			f.rows[i] = *vessel
			return nil
		}
	}
	return fmt.Errorf("no row with id %d", vessel.ID)
}

func (f *fakeVesselRepository) DeactivateMissing(ctx context.Context, activeIDs []int64) (int64, error) {
	f.deactivated = append([]int64(nil), activeIDs...)
	active := make(map[int64]bool, len(activeIDs))
	for _, id := range activeIDs {
		active[id] = true
	}
	var n int64
	for i, v := range f.rows {
		if v.Active && !active[v.VesselID] {
			f.rows[i].Active = false
			n++
		}
	}
	return n, nil
}

type mockSyncRunRecorder struct {
	created  []models.SyncRun
	finished []models.SyncRun
}

func (m *mockSyncRunRecorder) Create(ctx context.Context, run models.SyncRun) error {
	m.created = append(m.created, run)
	return nil
}

func (m *mockSyncRunRecorder) Finish(ctx context.Context, run models.SyncRun) error {
	m.finished = append(m.finished, run)
	return nil
}

type mockLocker struct {
	tryLockFunc func() (bool, error)
	unlocks     int
}

func (m *mockLocker) TryLock() (bool, error) {
	if m.tryLockFunc != nil {
		return m.tryLockFunc()
	}
	return true, nil
}

func (m *mockLocker) Unlock() error {
	m.unlocks++
	return nil
}

func vesselDoc(id int64) normalizer.Document {
	return normalizer.Document{
		"Result": map[string]any{
			"MLSID": fmt.Sprintf("M%d", id),
		},
		"BasicInfo": map[string]any{
			"BoatName":       fmt.Sprintf("Vessel %d", id),
			"Builder":        "Benetti",
			"VesselType":     "Motor Yacht",
			"MainCategory":   "Motor",
			"Condition":      "Used",
			"YearBuilt":      float64(2010),
			"LOAFeet":        float64(100),
			"AskingPriceUSD": float64(1000000),
			"Status":         "Active",
		},
	}
}

func idRange(from, to int64) []int64 {
	ids := make([]int64, 0, to-from+1)
	for id := from; id <= to; id++ {
		ids = append(ids, id)
	}
	return ids
}

type testRunner struct {
	*SyncRunner
	client *mockVesselClient
	repo   *fakeVesselRepository
	runs   *mockSyncRunRecorder
	kv     *store.MemoryStore
	lock   *mockLocker
}

func newTestRunner(client *mockVesselClient, opts SyncOptions) *testRunner {
	tr := &testRunner{
		client: client,
		repo:   &fakeVesselRepository{},
		runs:   &mockSyncRunRecorder{},
		kv:     store.NewMemoryStore(),
		lock:   &mockLocker{},
	}
	tr.SyncRunner = NewSyncRunner(
		client,
		normalizer.New("https://www.yatco.com/yacht/"),
		tr.repo,
		tr.runs,
		tr.kv,
		NewStatsTracker(tr.kv),
		tr.lock,
		opts,
		zap.NewNop(),
	)
	return tr
}
