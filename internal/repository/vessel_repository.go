package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vipul43/yatco-sync/internal/models"
	"gorm.io/gorm"
)

var ErrVesselNotFound = errors.New("vessel not found")

// VesselFilter narrows List results. Zero values mean no filter.
type VesselFilter struct {
	Builder    string
	Type       string
	ActiveOnly bool
	Limit      int
	Offset     int
}

type VesselRepository struct {
	db *gorm.DB
}

func NewVesselRepository(db *gorm.DB) *VesselRepository {
	return &VesselRepository{db: db}
}

// FindByMLSID retrieves the vessel with the given MLS id
func (r *VesselRepository) FindByMLSID(ctx context.Context, mlsID string) (*models.Vessel, error) {
	var vessel models.Vessel
	result := r.db.WithContext(ctx).First(&vessel, "mls_id = ?", mlsID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrVesselNotFound
		}
		return nil, fmt.Errorf("failed to get vessel by mls id: %w", result.Error)
	}
	return &vessel, nil
}

// FindByVesselID retrieves the vessel with the given upstream id
func (r *VesselRepository) FindByVesselID(ctx context.Context, vesselID int64) (*models.Vessel, error) {
	var vessel models.Vessel
	result := r.db.WithContext(ctx).First(&vessel, "vessel_id = ?", vesselID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrVesselNotFound
		}
		return nil, fmt.Errorf("failed to get vessel: %w", result.Error)
	}
	return &vessel, nil
}

// Create inserts a new vessel
func (r *VesselRepository) Create(ctx context.Context, vessel *models.Vessel) error {
	result := r.db.WithContext(ctx).Create(vessel)
	if result.Error != nil {
		return fmt.Errorf("failed to create vessel: %w", result.Error)
	}
	return nil
}

// Update overwrites every column of an existing vessel
func (r *VesselRepository) Update(ctx context.Context, vessel *models.Vessel) error {
	result := r.db.WithContext(ctx).Save(vessel)
	if result.Error != nil {
		return fmt.Errorf("failed to update vessel: %w", result.Error)
	}
	return nil
}

// DeactivateMissing marks vessels not in activeIDs as inactive.
// An empty id list is ignored rather than deactivating everything.
func (r *VesselRepository) DeactivateMissing(ctx context.Context, activeIDs []int64) (int64, error) {
	if len(activeIDs) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Model(&models.Vessel{}).
		Where("active = ? AND vessel_id NOT IN ?", true, activeIDs).
		Updates(map[string]interface{}{
			"active":     false,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to deactivate vessels: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// List retrieves vessels ordered by vessel id
func (r *VesselRepository) List(ctx context.Context, filter VesselFilter) ([]models.Vessel, error) {
	query := r.db.WithContext(ctx).Model(&models.Vessel{})
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if filter.Builder != "" {
		query = query.Where("builder = ?", filter.Builder)
	}
	if filter.Type != "" {
		query = query.Where("vessel_type = ?", filter.Type)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var vessels []models.Vessel
	if err := query.Order("vessel_id ASC").Find(&vessels).Error; err != nil {
		return nil, fmt.Errorf("failed to list vessels: %w", err)
	}
	return vessels, nil
}
