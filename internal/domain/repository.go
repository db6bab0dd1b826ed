package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching encoded responses.
// Get returns ErrCacheMiss for absent or expired keys.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Sink receives one diagnostic line. Implementations must be safe for concurrent use.
type Sink func(line string)

// Discard is a Sink that drops every line.
func Discard(string) {}
