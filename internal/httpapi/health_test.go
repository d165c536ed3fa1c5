package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odelu/catalog/pkg/cache"
	"github.com/odelu/catalog/pkg/logger"
)

func healthServer(storeErr, cacheErr error, enabled bool) *Server {
	return New(Deps{
		Log:       logger.NewNope(),
		Cache:     cache.New(cache.NewMemory(), cache.WithEnabledFunc(func() bool { return enabled })),
		StorePing: func(context.Context) error { return storeErr },
		CachePing: func(context.Context) error { return cacheErr },
	})
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	t.Run("healthy store reports ok", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		healthServer(nil, nil, true).Router().ServeHTTP(rec,
			httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"ok"`)
	})

	t.Run("store failure degrades without leaking the error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("dial tcp 10.1.2.3:27017: connection refused")
		rec := httptest.NewRecorder()
		healthServer(boom, nil, true).Router().ServeHTTP(rec,
			httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Contains(t, rec.Body.String(), `"degraded"`)
		require.NotContains(t, rec.Body.String(), "10.1.2.3")
		require.NotContains(t, rec.Body.String(), "dial tcp")
	})
}

func TestHandleCacheHealth(t *testing.T) {
	t.Parallel()

	t.Run("healthy backend reports ok", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		healthServer(nil, nil, true).Router().ServeHTTP(rec,
			httptest.NewRequest(http.MethodGet, "/health/cache", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"enabled":true`)
	})

	t.Run("failed ping degrades", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		healthServer(nil, errors.New("redis: healthcheck failed"), true).Router().ServeHTTP(rec,
			httptest.NewRequest(http.MethodGet, "/health/cache", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Contains(t, rec.Body.String(), `"degraded"`)
	})

	t.Run("disabled cache skips the ping", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		healthServer(nil, errors.New("would fail"), false).Router().ServeHTTP(rec,
			httptest.NewRequest(http.MethodGet, "/health/cache", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"enabled":false`)
	})
}
