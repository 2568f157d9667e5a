package curriculum

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/p-n-ai/pai-quest/internal/platform/cache"
)

// ByteCache is the subset of cache.Cache used by CachedRepository. Get must
// return cache.ErrMiss for an absent key.
type ByteCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedRepository is a read-through cache in front of another Repository.
// Only single-module lookups are cached; cache failures fall back to the
// underlying repository.
type CachedRepository struct {
	next  Repository
	cache ByteCache
	ttl   time.Duration
}

// NewCachedRepository wraps next with a module cache.
func NewCachedRepository(next Repository, c ByteCache, ttl time.Duration) *CachedRepository {
	return &CachedRepository{next: next, cache: c, ttl: ttl}
}

func moduleKey(id string) string {
	return "module:" + id
}

func (r *CachedRepository) GetModule(ctx context.Context, id string) (Module, error) {
	key := moduleKey(id)

	data, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		var m Module
		if err := json.Unmarshal(data, &m); err == nil {
			return m, nil
		}
		slog.Warn("discarding corrupt cached module", "module_id", id)
	case !errors.Is(err, cache.ErrMiss):
		slog.Warn("catalog cache unavailable", "module_id", id, "error", err)
	}

	m, err := r.next.GetModule(ctx, id)
	if err != nil {
		return Module{}, err
	}

	if data, err := json.Marshal(m); err == nil {
		if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
			slog.Warn("failed to cache module", "module_id", id, "error", err)
		}
	}
	return m, nil
}

func (r *CachedRepository) ListModules(ctx context.Context) ([]Module, error) {
	return r.next.ListModules(ctx)
}
