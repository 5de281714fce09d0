package community

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/terraincognita07/biolog/internal/models"
)

type Source interface {
	Lookup(ctx context.Context, keyword string) (models.CommunitySignal, error)
}

type cachedSignal struct {
	signal    models.CommunitySignal
	fetchedAt time.Time
}

// CachedSource keeps successful non-synthetic lookups for ttl. Demo fallbacks
// are not cached so a recovered upstream is picked up on the next call.
type CachedSource struct {
	source  Source
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]cachedSignal
}

func NewCachedSource(source Source, ttl time.Duration) *CachedSource {
	return &CachedSource{
		source:  source,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedSignal),
	}
}

func (cache *CachedSource) Lookup(ctx context.Context, keyword string) (models.CommunitySignal, error) {
	key := cacheKey(keyword)
	if cache.ttl > 0 {
		cache.mu.RLock()
		entry, ok := cache.entries[key]
		cache.mu.RUnlock()
		if ok && cache.now().Sub(entry.fetchedAt) < cache.ttl {
			return entry.signal, nil
		}
	}
	return cache.Refresh(ctx, keyword)
}

// Refresh bypasses the cache and stores the fresh result.
func (cache *CachedSource) Refresh(ctx context.Context, keyword string) (models.CommunitySignal, error) {
	signal, err := cache.source.Lookup(ctx, keyword)
	if err != nil {
		return models.CommunitySignal{}, err
	}

	key := cacheKey(keyword)
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if signal.IsSynthetic() || cache.ttl <= 0 {
		delete(cache.entries, key)
		return signal, nil
	}
	cache.entries[key] = cachedSignal{signal: signal, fetchedAt: cache.now()}
	return signal, nil
}

func cacheKey(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}
