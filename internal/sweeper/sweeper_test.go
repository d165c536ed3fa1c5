package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odelu/catalog/pkg/cache"
	"github.com/odelu/catalog/pkg/logger"
)

func seededStore(t *testing.T) (*cache.Memory, *cache.Store) {
	t.Helper()

	backend := cache.NewMemory()
	store := cache.New(backend)
	ctx := context.Background()

	store.Set(ctx, "comments:movie:m1:none:20:0", "page", time.Minute)
	store.Set(ctx, "comment:c1", "one", time.Minute)
	store.Set(ctx, "comment_tree:c1", "tree", time.Minute)
	store.Set(ctx, "user_comments:u1:20:0", "mine", time.Minute)
	store.Set(ctx, "movies:detail:m1", "movie", time.Minute)
	store.Set(ctx, "user:u1:watchlist", "list", time.Minute)
	return backend, store
}

func TestSweepPurgesCommentFamiliesOnly(t *testing.T) {
	t.Parallel()

	backend, store := seededStore(t)
	s := New(store, logger.NewNope(), time.Minute)

	s.sweep(context.Background())

	require.ElementsMatch(t, []string{
		"movies:detail:m1",
		"user:u1:watchlist",
	}, backend.Keys())
}

func TestIntervalDerivesFromCommentTTL(t *testing.T) {
	t.Parallel()

	s := New(cache.New(cache.NewMemory()), logger.NewNope(), time.Minute)
	require.Equal(t, time.Minute+graceInterval, s.interval)
}

func TestRunSweepsUntilCancelled(t *testing.T) {
	t.Parallel()

	backend, store := seededStore(t)
	s := &Sweeper{cache: store, log: logger.NewNope(), interval: 5 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return len(backend.Keys()) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}

func TestRunStopsBeforeFirstSweep(t *testing.T) {
	t.Parallel()

	backend, store := seededStore(t)
	s := New(store, logger.NewNope(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
	require.Len(t, backend.Keys(), 6)
}
