// Package cache provides the pluggable byte cache used for registry
// metadata. Backends share one interface so the engine never knows whether
// it is talking to the filesystem, process memory, Redis, or nothing.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with per-entry TTLs.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. The second result reports whether the
	// key was present and unexpired; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero or less means the entry
	// never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}
