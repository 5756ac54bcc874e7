package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vipul43/yatco-sync/internal/models"
	"github.com/vipul43/yatco-sync/internal/repository"
	"github.com/vipul43/yatco-sync/internal/store"
)

// VesselLookup finds a stored vessel by upstream id
type VesselLookup interface {
	FindByVesselID(ctx context.Context, vesselID int64) (*models.Vessel, error)
}

// StatusChecker decides whether a vessel is still for sale
type StatusChecker struct {
	client    VesselClient
	vessels   VesselLookup // optional
	kv        store.Store
	idListTTL time.Duration
}

func NewStatusChecker(client VesselClient, vessels VesselLookup, kv store.Store, idListTTL time.Duration) *StatusChecker {
	if idListTTL <= 0 {
		idListTTL = DefaultSyncOptions().IDListTTL
	}
	return &StatusChecker{
		client:    client,
		vessels:   vessels,
		kv:        kv,
		idListTTL: idListTTL,
	}
}

// CheckVesselStatus treats a vessel missing from the active list as sold or
// removed. A listed vessel whose status mentions "sold" or "under contract"
// is sold while still active.
func (c *StatusChecker) CheckVesselStatus(ctx context.Context, vesselID int64) (models.VesselStatus, error) {
	ids, err := c.activeIDs(ctx)
	if err != nil {
		return models.VesselStatus{}, err
	}

	if !containsID(ids, vesselID) {
		return models.VesselStatus{
			VesselID: vesselID,
			IsActive: false,
			IsSold:   true,
			Status:   "Removed",
		}, nil
	}

	status, err := c.statusText(ctx, vesselID)
	if err != nil {
		return models.VesselStatus{}, err
	}
	if status == "" {
		status = "Active"
	}

	lower := strings.ToLower(status)
	return models.VesselStatus{
		VesselID: vesselID,
		IsActive: true,
		IsSold:   strings.Contains(lower, "sold") || strings.Contains(lower, "under contract"),
		Status:   status,
	}, nil
}

func (c *StatusChecker) activeIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := store.GetJSON(ctx, c.kv, KeyActiveIDs, &ids); err == nil && len(ids) > 0 {
		return ids, nil
	}

	ids, err := c.client.ListActiveVesselIDs(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active vessel IDs: %w", err)
	}
	// a failed cache write only costs a refetch next time
	_ = store.SetJSON(ctx, c.kv, KeyActiveIDs, ids, c.idListTTL)
	return ids, nil
}

// statusText prefers the per-vessel cache over the durable record
func (c *StatusChecker) statusText(ctx context.Context, vesselID int64) (string, error) {
	var cached models.Vessel
	if err := store.GetJSON(ctx, c.kv, vesselKey(vesselID), &cached); err == nil {
		return cached.Status, nil
	}

	if c.vessels == nil {
		return "", nil
	}
	v, err := c.vessels.FindByVesselID(ctx, vesselID)
	if errors.Is(err, repository.ErrVesselNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get vessel: %w", err)
	}
	return v.Status, nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
