package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odelu/catalog/pkg/cache"
)

func TestGetOrLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("miss loads and caches", func(t *testing.T) {
		t.Parallel()

		store := cache.New(cache.NewMemory())
		var calls atomic.Int64

		load := func(context.Context) (payload, error) {
			calls.Add(1)
			return payload{Name: "fresh"}, nil
		}

		got, err := cache.GetOrLoad(ctx, store, "rt:miss", time.Minute, false, load)
		require.NoError(t, err)
		require.Equal(t, "fresh", got.Name)

		got, err = cache.GetOrLoad(ctx, store, "rt:miss", time.Minute, false, load)
		require.NoError(t, err)
		require.Equal(t, "fresh", got.Name)
		require.EqualValues(t, 1, calls.Load())
	})

	t.Run("bypass skips read and write", func(t *testing.T) {
		t.Parallel()

		backend := cache.NewMemory()
		store := cache.New(backend)

		store.Set(ctx, "rt:bypass", payload{Name: "stale"}, time.Minute)

		got, err := cache.GetOrLoad(ctx, store, "rt:bypass", time.Minute, true, func(context.Context) (payload, error) {
			return payload{Name: "fresh"}, nil
		})
		require.NoError(t, err)
		require.Equal(t, "fresh", got.Name)

		// The stale entry is untouched and the fresh one was not written.
		var cached payload
		require.True(t, store.Get(ctx, "rt:bypass", &cached))
		require.Equal(t, "stale", cached.Name)
	})

	t.Run("load errors pass through and nothing is cached", func(t *testing.T) {
		t.Parallel()

		backend := cache.NewMemory()
		store := cache.New(backend)
		boom := errors.New("store down")

		_, err := cache.GetOrLoad(ctx, store, "rt:err", time.Minute, false, func(context.Context) (payload, error) {
			return payload{}, boom
		})
		require.ErrorIs(t, err, boom)
		require.Empty(t, backend.Keys())
	})

	t.Run("concurrent misses collapse to one load", func(t *testing.T) {
		t.Parallel()

		store := cache.New(cache.NewMemory())
		var calls atomic.Int64
		release := make(chan struct{})

		load := func(context.Context) (payload, error) {
			calls.Add(1)
			<-release
			return payload{Name: "once"}, nil
		}

		var wg sync.WaitGroup
		results := make([]payload, 50)
		for i := range results {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				got, err := cache.GetOrLoad(ctx, store, "rt:flight", time.Minute, false, load)
				require.NoError(t, err)
				results[i] = got
			}()
		}

		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		require.EqualValues(t, 1, calls.Load())
		for _, got := range results {
			require.Equal(t, "once", got.Name)
		}
	})

	t.Run("disabled store runs every concurrent load", func(t *testing.T) {
		t.Parallel()

		store := cache.New(cache.NewMemory(),
			cache.WithEnabledFunc(func() bool { return false }))
		var calls atomic.Int64
		release := make(chan struct{})

		load := func(context.Context) (payload, error) {
			calls.Add(1)
			<-release
			return payload{Name: "direct"}, nil
		}

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got, err := cache.GetOrLoad(ctx, store, "rt:disabled", time.Minute, false, load)
				require.NoError(t, err)
				require.Equal(t, "direct", got.Name)
			}()
		}

		// All 50 loads must be in flight at once: none may piggyback on
		// another's result when the cache is off.
		require.Eventually(t, func() bool {
			return calls.Load() == 50
		}, time.Second, time.Millisecond)
		close(release)
		wg.Wait()
	})

	t.Run("flights are scoped per store", func(t *testing.T) {
		t.Parallel()

		one := cache.New(cache.NewMemory())
		two := cache.New(cache.NewMemory())
		release := make(chan struct{})
		started := make(chan struct{})

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := cache.GetOrLoad(ctx, one, "rt:shared-key", time.Minute, false, func(context.Context) (payload, error) {
				close(started)
				<-release
				return payload{Name: "one"}, nil
			})
			require.NoError(t, err)
			require.Equal(t, "one", got.Name)
		}()
		<-started

		// While store one's load is still in flight, the same key on store
		// two must run its own load rather than receive one's result.
		got, err := cache.GetOrLoad(ctx, two, "rt:shared-key", time.Minute, false, func(context.Context) (payload, error) {
			return payload{Name: "two"}, nil
		})
		require.NoError(t, err)
		require.Equal(t, "two", got.Name)

		close(release)
		wg.Wait()
	})

	t.Run("expired entry reloads", func(t *testing.T) {
		t.Parallel()

		store := cache.New(cache.NewMemory())
		var calls atomic.Int64

		load := func(context.Context) (payload, error) {
			calls.Add(1)
			return payload{Name: "v"}, nil
		}

		_, err := cache.GetOrLoad(ctx, store, "rt:ttl", 10*time.Millisecond, false, load)
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			_, err := cache.GetOrLoad(ctx, store, "rt:ttl", 10*time.Millisecond, false, load)
			return err == nil && calls.Load() >= 2
		}, time.Second, 10*time.Millisecond)
	})
}
