package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadTTLs(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")

	t.Run("bare integers are seconds", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "7200")
		t.Setenv("COMMENT_CACHE_TTL", "60")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 2*time.Hour, cfg.CacheTTL)
		require.Equal(t, time.Minute, cfg.CommentCacheTTL)
	})

	t.Run("duration strings work too", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "30m")
		t.Setenv("COMMENT_CACHE_TTL", "90s")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 30*time.Minute, cfg.CacheTTL)
		require.Equal(t, 90*time.Second, cfg.CommentCacheTTL)
	})

	t.Run("unset keys keep the defaults", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "")
		t.Setenv("COMMENT_CACHE_TTL", "")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, time.Hour, cfg.CacheTTL)
		require.Equal(t, time.Minute, cfg.CommentCacheTTL)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		t.Setenv("COMMENT_CACHE_TTL", "soon")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "comment_cache_ttl")
	})
}
