package models

import "time"

// KVEntry is one row of the postgres-backed key-value store
type KVEntry struct {
	Key       string     `gorm:"column:key;primaryKey"`
	Value     []byte     `gorm:"column:value"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (KVEntry) TableName() string {
	return "kv_entry"
}
