package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fxdash/dashboard/internal/model"
)

// CachedStore wraps a primary Store with a Redis read-through cache.
// Writes go to the primary store and then refresh the cache; reads
// check Redis first then fall back to the primary.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	key     string
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store. name is
// the document name used in the cache key.
func NewCachedStore(primary Store, rdb *redis.Client, name string, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		key:     datasetKey(name),
		ttl:     ttl,
	}
}

// --- Read-through (check cache first) ---

func (s *CachedStore) Load(ctx context.Context) (*model.Dataset, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if err == nil {
		if ds, err := decode(data); err == nil {
			return ds, nil
		}
		// Unreadable entry: drop it and fall through to the primary.
		s.rdb.Del(ctx, s.key)
	}

	// Cache miss: read from primary.
	ds, err := s.primary.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.cache(ctx, ds)
	return ds, nil
}

// --- Write-through (write to primary, refresh cache) ---

func (s *CachedStore) Save(ctx context.Context, ds *model.Dataset) error {
	if err := s.primary.Save(ctx, ds); err != nil {
		return err
	}
	s.cache(ctx, ds)
	return nil
}

// --- Cache helpers ---

func (s *CachedStore) cache(ctx context.Context, ds *model.Dataset) {
	data, err := encode(ds)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		// The primary already holds the document; a stale cache only
		// lives until the TTL expires.
		slog.Warn("cache dataset failed", "key", s.key, "error", err)
	}
}

func datasetKey(name string) string { return fmt.Sprintf("dataset:%s", name) }
