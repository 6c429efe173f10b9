package cache

import (
	"context"
	"time"
)

// Result is the typed view of a Snapshot.
type Result[T any] struct {
	Data      T
	IsLoading bool
	IsError   bool
	Err       error
	UpdatedAt time.Time
}

// Collection binds a cache key to a typed fetch function.
type Collection[T any] struct {
	cache *Cache
	key   string
	fetch func(context.Context) (T, error)
}

func NewCollection[T any](c *Cache, key string, fetch func(context.Context) (T, error)) *Collection[T] {
	return &Collection[T]{cache: c, key: key, fetch: fetch}
}

func (c *Collection[T]) Key() string {
	return c.key
}

// Use reads the collection, fetching when needed.
func (c *Collection[T]) Use(ctx context.Context) Result[T] {
	return toResult[T](c.cache.Get(ctx, c.key, c.fetchAny))
}

// Peek returns what is cached right now.
func (c *Collection[T]) Peek() Result[T] {
	return toResult[T](c.cache.Peek(c.key))
}

// Refetch ignores the cached value and reads again.
func (c *Collection[T]) Refetch(ctx context.Context) Result[T] {
	return toResult[T](c.cache.Refetch(ctx, c.key, c.fetchAny))
}

func (c *Collection[T]) Invalidate() {
	c.cache.Invalidate(c.key)
}

func (c *Collection[T]) fetchAny(ctx context.Context) (interface{}, error) {
	return c.fetch(ctx)
}

func toResult[T any](s Snapshot) Result[T] {
	r := Result[T]{
		IsLoading: s.State == Loading || s.State == Idle,
		IsError:   s.State == Errored,
		Err:       s.Err,
		UpdatedAt: s.UpdatedAt,
	}
	if v, ok := s.Data.(T); ok {
		r.Data = v
	}
	if s.State == Loading && s.Err != nil {
		// the caller gave up waiting
		r.IsError = true
	}
	return r
}
