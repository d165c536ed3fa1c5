package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odelu/catalog/pkg/cache"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// failingBackend errors on every operation, standing in for a dead Redis.
type failingBackend struct{}

func (failingBackend) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}
func (failingBackend) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}
func (failingBackend) Delete(context.Context, ...string) error {
	return errors.New("connection refused")
}
func (failingBackend) DeleteByPattern(context.Context, string) error {
	return errors.New("connection refused")
}
func (failingBackend) Close() error { return nil }

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := cache.New(cache.NewMemory())
	ctx := context.Background()

	store.Set(ctx, "k", payload{Name: "a", Count: 3}, time.Minute)

	var got payload
	require.True(t, store.Get(ctx, "k", &got))
	require.Equal(t, payload{Name: "a", Count: 3}, got)
}

func TestStoreDefaultTTL(t *testing.T) {
	t.Parallel()

	store := cache.New(cache.NewMemory(), cache.WithDefaultTTL(time.Minute))
	ctx := context.Background()

	// Without the default a zero TTL would expire the entry immediately.
	store.Set(ctx, "k", payload{Name: "a"}, 0)

	var got payload
	require.True(t, store.Get(ctx, "k", &got))
	require.Equal(t, "a", got.Name)
}

func TestStoreMissOnUnknownKey(t *testing.T) {
	t.Parallel()

	store := cache.New(cache.NewMemory())

	var got payload
	require.False(t, store.Get(context.Background(), "nope", &got))
}

func TestStoreDisabled(t *testing.T) {
	t.Parallel()

	backend := cache.NewMemory()
	enabled := true
	store := cache.New(backend, cache.WithEnabledFunc(func() bool { return enabled }))
	ctx := context.Background()

	store.Set(ctx, "k", payload{Name: "a"}, time.Minute)

	enabled = false
	var got payload
	require.False(t, store.Get(ctx, "k", &got), "disabled store must miss even on present keys")
	store.Set(ctx, "k2", payload{}, time.Minute)
	require.NotContains(t, backend.Keys(), "k2")

	enabled = true
	require.True(t, store.Get(ctx, "k", &got))
}

func TestStoreSwallowsBackendErrors(t *testing.T) {
	t.Parallel()

	store := cache.New(failingBackend{})
	ctx := context.Background()

	var got payload
	require.False(t, store.Get(ctx, "k", &got))
	require.NotPanics(t, func() {
		store.Set(ctx, "k", payload{}, time.Minute)
		store.Delete(ctx, "k")
		store.DeleteByPattern(ctx, "k:*")
	})
}

func TestStoreDeleteByPattern(t *testing.T) {
	t.Parallel()

	backend := cache.NewMemory()
	store := cache.New(backend)
	ctx := context.Background()

	store.Set(ctx, "comments:movie:1:a", payload{}, time.Minute)
	store.Set(ctx, "comments:movie:1:b", payload{}, time.Minute)
	store.Set(ctx, "comments:show:1:a", payload{}, time.Minute)

	store.DeleteByPattern(ctx, "comments:movie:1:*")
	require.ElementsMatch(t, []string{"comments:show:1:a"}, backend.Keys())

	// Purging an already-empty family is a no-op, not an error.
	require.NotPanics(t, func() {
		store.DeleteByPattern(ctx, "comments:movie:1:*")
	})
	require.ElementsMatch(t, []string{"comments:show:1:a"}, backend.Keys())
}

func TestStoreUndecodablePayloadIsAMiss(t *testing.T) {
	t.Parallel()

	backend := cache.NewMemory()
	store := cache.New(backend)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "k", []byte("{not json"), time.Minute))

	var got payload
	require.False(t, store.Get(ctx, "k", &got))
}
