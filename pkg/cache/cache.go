package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
)

// Sentinel errors for cache operations.
var (
	// ErrNotFound is returned by backends when a key does not exist or has expired.
	ErrNotFound = errors.New("cache: entry not found")

	// ErrClosed is returned when an operation is attempted on a closed backend.
	ErrClosed = errors.New("cache: closed")

	// ErrMarshal is returned when payload serialization fails.
	ErrMarshal = errors.New("cache: failed to marshal value")

	// ErrUnmarshal is returned when payload deserialization fails.
	ErrUnmarshal = errors.New("cache: failed to unmarshal value")
)

// Backend is the raw key-value surface the Store degrades gracefully over.
// Implementations must be safe for concurrent use.
//
// Patterns passed to DeleteByPattern are either exact keys or a key prefix
// followed by a trailing "*". A pattern matching no keys is a no-op, not an
// error.
type Backend interface {
	// Get returns the stored bytes for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores data under key expiring after ttl.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the given keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// DeleteByPattern removes every key matching pattern in one batch.
	DeleteByPattern(ctx context.Context, pattern string) error

	// Close releases backend resources.
	Close() error
}

func marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func unmarshal(data []byte, dest any) error {
	if err := json.Unmarshal(data, dest); err != nil {
		return errors.Join(ErrUnmarshal, err)
	}
	return nil
}
