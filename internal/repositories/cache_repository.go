package repositories

import (
	"context"
	"time"
)

// CacheRepository is a read-through JSON cache. It is never the source of
// truth for balances; a miss or failure only costs a trip to the store.
type CacheRepository interface {
	// Get unmarshals the cached value into dest, or returns ErrCacheMiss.
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
