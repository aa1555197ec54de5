package models

import (
	"time"
)

// CacheEntry backs the database cache store. ExpiresAt is the TTL deadline;
// a zero value marks the entry as non-expiring.
type CacheEntry struct {
	Key       string    `gorm:"primaryKey;size:256"`
	Value     []byte    `gorm:"type:blob"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
