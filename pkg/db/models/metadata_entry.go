package models

import "time"

// MetadataEntry is a JSON document stored under a well-known key, such as the
// distributor OAuth token record.
type MetadataEntry struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
