package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vipul43/yatco-sync/internal/models"
	"github.com/vipul43/yatco-sync/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVRepository is the postgres implementation of store.Store
type KVRepository struct {
	db *gorm.DB
}

var _ store.Store = (*KVRepository)(nil)

func NewKVRepository(db *gorm.DB) *KVRepository {
	return &KVRepository{db: db}
}

func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var entry models.KVEntry
	result := r.db.WithContext(ctx).First(&entry, "key = ?", key)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, result.Error)
	}

	if entry.ExpiresAt != nil && !time.Now().Before(*entry.ExpiresAt) {
		if err := r.Delete(ctx, key); err != nil {
			return nil, err
		}
		return nil, store.ErrNotFound
	}
	return entry.Value, nil
}

func (r *KVRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := models.KVEntry{Key: key, Value: value}
	if ttl > 0 {
		exp := time.Now().Add(ttl)
		entry.ExpiresAt = &exp
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&entry)
	if result.Error != nil {
		return fmt.Errorf("failed to set %s: %w", key, result.Error)
	}
	return nil
}

func (r *KVRepository) Delete(ctx context.Context, key string) error {
	result := r.db.WithContext(ctx).Delete(&models.KVEntry{}, "key = ?", key)
	if result.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", key, result.Error)
	}
	return nil
}

func (r *KVRepository) DeletePrefix(ctx context.Context, prefix string) error {
	result := r.db.WithContext(ctx).Delete(&models.KVEntry{}, "key LIKE ?", likePrefix(prefix))
	if result.Error != nil {
		return fmt.Errorf("failed to delete prefix %s: %w", prefix, result.Error)
	}
	return nil
}

// likePrefix escapes LIKE wildcards; "_" appears in every cache key
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}

// PurgeExpired removes expired rows that were never read again
func (r *KVRepository) PurgeExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.KVEntry{}, "expires_at IS NOT NULL AND expires_at <= ?", time.Now())
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge expired entries: %w", result.Error)
	}
	return result.RowsAffected, nil
}
