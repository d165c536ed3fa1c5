package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odelu/catalog/pkg/cache"
)

func TestMemoryExpiry(t *testing.T) {
	t.Parallel()

	m := cache.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 20*time.Millisecond))

	data, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), data)

	require.Eventually(t, func() bool {
		_, err := m.Get(ctx, "k")
		return err != nil
	}, time.Second, 10*time.Millisecond)

	_, err = m.Get(ctx, "k")
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestMemoryDeleteByPattern(t *testing.T) {
	t.Parallel()

	m := cache.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "user:1:watchlist", []byte("a"), time.Minute))
	require.NoError(t, m.Set(ctx, "user:1:watch_history", []byte("b"), time.Minute))
	require.NoError(t, m.Set(ctx, "user:10:watchlist", []byte("c"), time.Minute))

	require.NoError(t, m.DeleteByPattern(ctx, "user:1:*"))
	require.ElementsMatch(t, []string{"user:10:watchlist"}, m.Keys())

	// A pattern without a wildcard deletes the exact key only.
	require.NoError(t, m.DeleteByPattern(ctx, "user:10:watchlist"))
	require.Empty(t, m.Keys())
}

func TestMemoryClose(t *testing.T) {
	t.Parallel()

	m := cache.NewMemory()
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	err := m.Set(context.Background(), "k", []byte("v"), time.Minute)
	require.ErrorIs(t, err, cache.ErrClosed)
}
