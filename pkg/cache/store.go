package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/odelu/catalog/pkg/logger"
)

// Store is the cache adapter consumed by the service layer. It never
// surfaces backend failures: a failed read is a miss, a failed write or
// purge is a logged no-op. The enabled switch is consulted on every call so
// it can be flipped at runtime (and per-instance in tests).
//
// Each Store carries its own singleflight group, so read-through flights
// are never shared between stores with different backends or switches.
type Store struct {
	backend    Backend
	enabled    func() bool
	log        *slog.Logger
	timeout    time.Duration
	defaultTTL time.Duration
	loads      singleflight.Group
}

// Option configures a Store.
type Option func(*Store)

// WithEnabledFunc installs the switch consulted before every operation.
// When it reports false, Get always misses and mutations are no-ops.
// Default: always enabled.
func WithEnabledFunc(fn func() bool) Option {
	return func(s *Store) {
		if fn != nil {
			s.enabled = fn
		}
	}
}

// WithLogger sets the logger for degraded-operation warnings.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithOperationTimeout bounds each backend call. A timed-out operation is
// treated as a miss/no-op. Default: 500ms.
func WithOperationTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithDefaultTTL sets the expiry applied when Set is called without a
// positive TTL. Default: 1h.
func WithDefaultTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.defaultTTL = d
		}
	}
}

// New creates a Store over the given backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:    backend,
		enabled:    func() bool { return true },
		log:        logger.NewNope(),
		timeout:    500 * time.Millisecond,
		defaultTTL: time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports the current state of the cache switch.
func (s *Store) Enabled() bool {
	return s.enabled()
}

// Get loads the entry for key into dest and reports whether it was found.
// Disabled cache, missing key, backend error and undecodable payload all
// report a miss.
func (s *Store) Get(ctx context.Context, key string, dest any) bool {
	if !s.enabled() {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.WarnContext(ctx, "cache get failed", "key", key, "error", err)
		}
		return false
	}

	if err := unmarshal(data, dest); err != nil {
		s.log.WarnContext(ctx, "cache entry undecodable", "key", key, "error", err)
		return false
	}
	return true
}

// Set serializes value and stores it under key with the given TTL. A zero
// or negative TTL falls back to the store's default. Failures are logged
// and swallowed; a failed cache write must never fail the surrounding
// request.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if !s.enabled() {
		return
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	data, err := marshal(value)
	if err != nil {
		s.log.WarnContext(ctx, "cache set failed", "key", key, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.backend.Set(ctx, key, data, ttl); err != nil {
		s.log.WarnContext(ctx, "cache set failed", "key", key, "error", err)
	}
}

// Delete removes the given keys, swallowing errors.
func (s *Store) Delete(ctx context.Context, keys ...string) {
	if !s.enabled() || len(keys) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.backend.Delete(ctx, keys...); err != nil {
		s.log.WarnContext(ctx, "cache delete failed", "keys", keys, "error", err)
	}
}

// DeleteByPattern purges every key matching each pattern. A pattern that
// matches nothing is a no-op. Errors are logged and swallowed: cache
// inconsistency self-heals via TTL, so purge failures never propagate to
// the write they follow.
func (s *Store) DeleteByPattern(ctx context.Context, patterns ...string) {
	if !s.enabled() {
		return
	}

	for _, pattern := range patterns {
		func() {
			opCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			if err := s.backend.DeleteByPattern(opCtx, pattern); err != nil {
				s.log.WarnContext(ctx, "cache purge failed", "pattern", pattern, "error", err)
			}
		}()
	}
}
