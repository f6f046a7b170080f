// Package cache provides the key/value layer used in front of expensive
// reads. Implementations never surface errors: a failed read is a miss and
// a failed write is a no-op, so the cache can only ever be an optimization.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	// Get returns the cached value and true on a hit.
	Get(ctx context.Context, key string) (string, bool)
	// Set stores value under key for ttl. Best effort.
	Set(ctx context.Context, key, value string, ttl time.Duration)
}

// Noop is the cache used when no backend is configured. Every read is a
// permanent miss.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) Get(context.Context, string) (string, bool) { return "", false }

func (Noop) Set(context.Context, string, string, time.Duration) {}
