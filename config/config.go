package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config holds all runtime settings for the catalog API.
// Values come from environment variables layered over the defaults below.
type Config struct {
	Port string `koanf:"port"`

	// Document store.
	MongoURI     string `koanf:"mongodb_uri"`
	DatabaseName string `koanf:"database_name"`
	MaxPoolSize  uint64 `koanf:"mongodb_max_pool_size"`
	MinPoolSize  uint64 `koanf:"mongodb_min_pool_size"`

	// Cache backend. The TTLs are parsed by hand in Load so that bare
	// integer env values keep working as second counts.
	RedisURL        string        `koanf:"redis_url"`
	CacheEnabled    bool          `koanf:"cache_enabled"`
	CacheTTL        time.Duration `koanf:"-"`
	CommentCacheTTL time.Duration `koanf:"-"`

	// Auth (token verification only; issuance lives elsewhere).
	JWTSecret string `koanf:"jwt_secret_key"`

	// Observability.
	SentryDSN   string `koanf:"sentry_dsn"`
	Environment string `koanf:"environment"`
}

// ErrMissingMongoURI is returned by Load when no document store address is configured.
var ErrMissingMongoURI = errors.New("config: MONGODB_URI is required")

func defaults() *Config {
	return &Config{
		Port:            "8000",
		MongoURI:        "mongodb://localhost:27017",
		DatabaseName:    "odelu",
		MaxPoolSize:     100,
		MinPoolSize:     10,
		RedisURL:        "redis://localhost:6379",
		CacheEnabled:    true,
		CacheTTL:        time.Hour,
		CommentCacheTTL: time.Minute,
		Environment:     "production",
	}
}

// Load reads configuration from the environment layered over defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, err
	}

	// Environment variables map 1:1 to the flat koanf keys above:
	// CACHE_TTL -> cache_ttl, MONGODB_URI -> mongodb_uri, etc.
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// The TTL keys never go through Unmarshal: its duration hook rejects
	// bare integers, and deployments configure these as plain second
	// counts ("COMMENT_CACHE_TTL=60") alongside duration strings ("30m").
	d := defaults()
	var err error
	if cfg.CacheTTL, err = ttlValue(k, "cache_ttl", d.CacheTTL); err != nil {
		return nil, err
	}
	if cfg.CommentCacheTTL, err = ttlValue(k, "comment_cache_ttl", d.CommentCacheTTL); err != nil {
		return nil, err
	}

	if cfg.MongoURI == "" {
		return nil, ErrMissingMongoURI
	}

	return cfg, nil
}

// ttlValue reads a TTL that is either a Go duration string or a bare
// integer second count.
func ttlValue(k *koanf.Koanf, key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(k.String(key))
	if raw == "" {
		return fallback, nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("config: %s: cannot parse %q as a duration or seconds", key, raw)
	}
	return time.Duration(secs) * time.Second, nil
}
