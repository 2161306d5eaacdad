// Package cache provides a small keyed loader cache used to memoize
// expensive node inputs such as remote sample datasets.
package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// LoadFunc produces the value for a key on a cache miss.
type LoadFunc[T any] func(ctx context.Context, key string) (T, error)

// Loader memoizes LoadFunc results per key with a TTL. Concurrent callers
// for the same key wait for a single load.
type Loader[T any] struct {
	store *gocache.Cache
	load  LoadFunc[T]
	mu    sync.Mutex
}

// NewLoader builds a Loader whose entries expire after ttl. A zero ttl
// keeps entries forever.
func NewLoader[T any](ttl time.Duration, load LoadFunc[T]) *Loader[T] {
	expiration := ttl
	if expiration == 0 {
		expiration = gocache.NoExpiration
	}

	return &Loader[T]{
		store: gocache.New(expiration, 10*time.Minute),
		load:  load,
	}
}

// Get returns the cached value for key, loading and storing it on a miss.
// Load errors are not cached, so a later call retries.
func (l *Loader[T]) Get(ctx context.Context, key string) (T, error) {
	if cached, ok := l.store.Get(key); ok {
		return cached.(T), nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if cached, ok := l.store.Get(key); ok {
		return cached.(T), nil
	}

	value, err := l.load(ctx, key)
	if err != nil {
		var zero T

		return zero, err
	}

	l.store.SetDefault(key, value)

	return value, nil
}

// Flush drops every cached entry.
func (l *Loader[T]) Flush() {
	l.store.Flush()
}
