package cache

import (
	"context"
	"time"
)

// GetOrLoad implements the read-through path for one cache key: return the
// cached payload on a hit, otherwise run load, store the result with ttl and
// return it. Concurrent misses of the same key are collapsed with the
// store's singleflight group so the document store is queried once.
//
// bypass skips both the cache read and the cache write for this call only
// (used for refresh=true requests and for personalized responses, which must
// never be served from or written to the shared cache). A disabled store is
// the same as bypass: no collapsing either, every caller runs its own load.
func GetOrLoad[T any](ctx context.Context, s *Store, key string, ttl time.Duration, bypass bool, load func(ctx context.Context) (T, error)) (T, error) {
	if bypass || !s.enabled() {
		return load(ctx)
	}

	var cached T
	if s.Get(ctx, key, &cached) {
		return cached, nil
	}

	v, err, _ := s.loads.Do(key, func() (any, error) {
		return load(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}

	result := v.(T)
	s.Set(ctx, key, result, ttl)
	return result, nil
}
