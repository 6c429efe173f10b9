// Package cache keeps the last fetched value of each remote collection and
// shares one in-flight request between concurrent readers of the same key.
package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/constructsync/dashboard/internal/errors"
	"github.com/constructsync/dashboard/internal/logger"
)

type State int

const (
	Idle State = iota
	Loading
	Ready
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Errored:
		return "errored"
	}
	return "unknown"
}

// Snapshot is the observable state of one key.
type Snapshot struct {
	Key       string
	State     State
	Data      interface{}
	Err       error
	UpdatedAt time.Time
}

type FetchFunc func(ctx context.Context) (interface{}, error)

type entry struct {
	state       State
	data        interface{}
	err         error
	fetchedAt   time.Time
	loaded      bool
	invalidated bool
	generation  uint64
	// loadingGen is the generation of the most recently started fetch
	loadingGen uint64
}

type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group

	staleAfter time.Duration
	retries    int
	retryWait  time.Duration
	now        func() time.Time
}

type Option func(*Cache)

// WithStaleAfter sets how long a Ready value is served before a new read refetches it.
func WithStaleAfter(d time.Duration) Option {
	return func(c *Cache) { c.staleAfter = d }
}

// WithRetries sets how many times a key's first load is retried, and the pause between tries.
func WithRetries(count int, wait time.Duration) Option {
	return func(c *Cache) {
		c.retries = count
		c.retryWait = wait
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(opts ...Option) *Cache {
	c := &Cache{
		entries:    make(map[string]*entry),
		staleAfter: 5 * time.Minute,
		retries:    3,
		retryWait:  time.Second,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key, fetching it when the key is idle,
// errored, invalidated or older than the staleness window. Concurrent callers
// share a single fetch. A read after Invalidate never joins a fetch that
// started before it.
func (c *Cache) Get(ctx context.Context, key string, fetch FetchFunc) Snapshot {
	c.mu.Lock()
	e := c.entry(key)
	if e.state == Ready && !e.invalidated && c.now().Sub(e.fetchedAt) < c.staleAfter {
		snap := c.snapshot(key, e)
		c.mu.Unlock()
		return snap
	}
	e.state = Loading
	generation := e.generation
	e.loadingGen = generation
	c.mu.Unlock()

	// the fetch outlives any single reader; each reader only stops waiting
	loadCtx := context.WithoutCancel(ctx)
	flight := key + "#" + strconv.FormatUint(generation, 10)
	ch := c.group.DoChan(flight, func() (interface{}, error) {
		c.load(loadCtx, key, generation, fetch)
		return nil, nil
	})

	select {
	case <-ch:
		c.mu.Lock()
		superseded := e.state == Loading && e.loadingGen != generation
		c.mu.Unlock()
		if superseded {
			return c.Get(ctx, key, fetch)
		}
	case <-ctx.Done():
		c.mu.Lock()
		defer c.mu.Unlock()
		snap := c.snapshot(key, c.entry(key))
		if snap.State == Loading {
			snap.Err = ctx.Err()
		}
		return snap
	}

	return c.Peek(key)
}

func (c *Cache) load(ctx context.Context, key string, generation uint64, fetch FetchFunc) {
	log := logger.WithContext(ctx).WithField("key", key)

	c.mu.Lock()
	firstLoad := !c.entry(key).loaded
	c.mu.Unlock()

	var data interface{}
	op := func() error {
		v, err := fetch(ctx)
		if err != nil {
			if !apperrors.IsRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		data = v
		return nil
	}

	var err error
	if firstLoad && c.retries > 0 {
		policy := backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryWait), uint64(c.retries)),
			ctx,
		)
		err = backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
			log.Debugf("Retrying first load in %s: %v", wait, err)
		})
	} else {
		err = op()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(key)
	if generation < e.loadingGen {
		// a fetch started after an invalidation owns the entry now
		log.Debug("Discarding superseded fetch")
		return
	}
	if err != nil {
		log.Warnf("Collection fetch failed: %v", err)
		e.state = Errored
		e.err = err
		return
	}

	e.state = Ready
	e.data = data
	e.err = nil
	e.fetchedAt = c.now()
	e.loaded = true
	// an invalidation that arrived mid-flight still forces the next read to refetch
	e.invalidated = e.generation != generation
	log.Debug("Collection fetched")
}

// Peek returns the current snapshot for key without fetching.
func (c *Cache) Peek(key string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot(key, c.entry(key))
}

// Invalidate forces the next read of each key to refetch.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		e := c.entry(key)
		e.invalidated = true
		e.generation++
	}
}

// Refetch invalidates key and reads it again.
func (c *Cache) Refetch(ctx context.Context, key string, fetch FetchFunc) Snapshot {
	c.Invalidate(key)
	return c.Get(ctx, key, fetch)
}

// Mutate runs a mutation and, only when it succeeds, invalidates keys.
func (c *Cache) Mutate(ctx context.Context, mutation func(context.Context) error, keys ...string) error {
	if err := mutation(ctx); err != nil {
		return err
	}
	c.Invalidate(keys...)
	return nil
}

func (c *Cache) entry(key string) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{state: Idle}
		c.entries[key] = e
	}
	return e
}

func (c *Cache) snapshot(key string, e *entry) Snapshot {
	return Snapshot{
		Key:       key,
		State:     e.state,
		Data:      e.data,
		Err:       e.err,
		UpdatedAt: e.fetchedAt,
	}
}
