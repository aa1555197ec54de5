package cache

import (
	"context"
	"time"
)

// Store represents a shared cache interface used across the application.
//
// Implementations are expected to be safe for concurrent use and to treat
// deletion of missing keys as a no-op.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
	// DeleteByPrefix removes every key sharing the supplied prefix. Used for
	// namespace-wide evictions where the exact key set is not tracked.
	DeleteByPrefix(ctx context.Context, prefix string) error
}
