package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/constructsync/dashboard/internal/errors"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(clock *fakeClock) *Cache {
	return New(
		WithStaleAfter(5*time.Minute),
		WithRetries(3, time.Millisecond),
		WithClock(clock.Now),
	)
}

func countingFetch(calls *int32, value interface{}) FetchFunc {
	return func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(calls, 1)
		return value, nil
	}
}

func TestGet_ConcurrentReadersShareOneFetch(t *testing.T) {
	c := newTestCache(&fakeClock{now: time.Now()})

	var calls int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []string{"job-1"}, nil
	}

	var wg sync.WaitGroup
	results := make([]Snapshot, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Get(context.Background(), "jobs", fetch)
		}(i)
	}

	// let both readers reach the in-flight call before it resolves
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, Ready, r.State)
		assert.Equal(t, []string{"job-1"}, r.Data)
	}
}

func TestGet_ServesCachedValueWithinWindow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	c := newTestCache(clock)

	var calls int32
	fetch := countingFetch(&calls, 1)

	c.Get(context.Background(), "jobs", fetch)
	clock.Advance(4 * time.Minute)
	snap := c.Get(context.Background(), "jobs", fetch)

	assert.Equal(t, int32(1), calls)
	assert.Equal(t, Ready, snap.State)

	clock.Advance(2 * time.Minute)
	c.Get(context.Background(), "jobs", fetch)
	assert.Equal(t, int32(2), calls)
}

func TestInvalidate_ForcesRefetch(t *testing.T) {
	c := newTestCache(&fakeClock{now: time.Now()})

	var calls int32
	fetch := countingFetch(&calls, "v")

	c.Get(context.Background(), "teams", fetch)
	c.Invalidate("teams")
	c.Get(context.Background(), "teams", fetch)
	c.Get(context.Background(), "teams", fetch)

	assert.Equal(t, int32(2), calls)
}

func TestMutate_InvalidatesOnlyOnSuccess(t *testing.T) {
	c := newTestCache(&fakeClock{now: time.Now()})
	ctx := context.Background()

	var calls int32
	fetch := countingFetch(&calls, "v")
	c.Get(ctx, "variations", fetch)

	err := c.Mutate(ctx, func(context.Context) error { return errors.New("boom") }, "variations")
	assert.EqualError(t, err, "boom")
	c.Get(ctx, "variations", fetch)
	assert.Equal(t, int32(1), calls)

	require.NoError(t, c.Mutate(ctx, func(context.Context) error { return nil }, "variations"))
	c.Get(ctx, "variations", fetch)
	assert.Equal(t, int32(2), calls)
}

func TestGet_RetriesFirstLoad(t *testing.T) {
	c := newTestCache(&fakeClock{now: time.Now()})

	var calls int32
	fetch := func(ctx context.Context) (interface{}, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return nil, &apperrors.NetworkError{Err: errors.New("offline")}
		}
		return "ok", nil
	}

	snap := c.Get(context.Background(), "workers", fetch)
	assert.Equal(t, Ready, snap.State)
	assert.Equal(t, "ok", snap.Data)
	assert.Equal(t, int32(3), calls)
}

func TestGet_GivesUpAfterRetryCount(t *testing.T) {
	c := newTestCache(&fakeClock{now: time.Now()})

	var calls int32
	fetch := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return nil, &apperrors.RequestError{Status: 503, Message: "maintenance"}
	}

	snap := c.Get(context.Background(), "workers", fetch)
	assert.Equal(t, Errored, snap.State)
	assert.Equal(t, int32(4), calls)
	assert.Equal(t, "maintenance", apperrors.UserMessage(snap.Err))
}

func TestGet_DoesNotRetryClientErrors(t *testing.T) {
	c := newTestCache(&fakeClock{now: time.Now()})

	var calls int32
	fetch := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return nil, &apperrors.RequestError{Status: 401, Message: "Not authenticated"}
	}

	snap := c.Get(context.Background(), "jobs", fetch)
	assert.Equal(t, Errored, snap.State)
	assert.Equal(t, int32(1), calls)
}

func TestRefetch_AfterLoadIsNotRetried(t *testing.T) {
	c := newTestCache(&fakeClock{now: time.Now()})
	ctx := context.Background()

	var calls int32
	fail := false
	fetch := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		if fail {
			return nil, &apperrors.NetworkError{Err: errors.New("offline")}
		}
		return "first", nil
	}

	c.Get(ctx, "jobs", fetch)
	fail = true
	snap := c.Refetch(ctx, "jobs", fetch)

	assert.Equal(t, int32(2), calls)
	assert.Equal(t, Errored, snap.State)
	assert.Equal(t, "first", snap.Data, "last good value is kept")
}

func TestInvalidateDuringFetch_RefetchesNextRead(t *testing.T) {
	c := newTestCache(&fakeClock{now: time.Now()})
	ctx := context.Background()

	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(ctx context.Context) (interface{}, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
		}
		return "v", nil
	}

	done := make(chan struct{})
	go func() {
		c.Get(ctx, "jobs", fetch)
		close(done)
	}()

	<-started
	c.Invalidate("jobs")
	close(release)
	<-done

	c.Get(ctx, "jobs", fetch)
	assert.Equal(t, int32(2), calls)
}

func TestGet_AfterInvalidateDoesNotJoinOlderFetch(t *testing.T) {
	c := newTestCache(&fakeClock{now: time.Now()})
	ctx := context.Background()

	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(ctx context.Context) (interface{}, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
			return "with-42", nil
		}
		return "without-42", nil
	}

	first := make(chan Snapshot, 1)
	go func() {
		first <- c.Get(ctx, "variations", fetch)
	}()

	<-started
	c.Invalidate("variations")
	second := c.Get(ctx, "variations", fetch)
	close(release)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, Ready, second.State)
	assert.Equal(t, "without-42", second.Data)

	snap := <-first
	assert.Equal(t, "without-42", snap.Data, "the older reader ends on the newer value")
	assert.Equal(t, "without-42", c.Peek("variations").Data)

	c.Get(ctx, "variations", fetch)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "the superseded fetch leaves no invalidation behind")
}

func TestGet_CancelledReaderDoesNotFailOthers(t *testing.T) {
	c := newTestCache(&fakeClock{now: time.Now()})

	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		close(started)
		select {
		case <-release:
			return "jobs", nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	firstDone := make(chan Snapshot, 1)
	go func() {
		firstDone <- c.Get(ctx, "jobs", fetch)
	}()
	<-started

	secondDone := make(chan Snapshot, 1)
	go func() {
		secondDone <- c.Get(context.Background(), "jobs", fetch)
	}()

	cancel()
	first := <-firstDone
	assert.ErrorIs(t, first.Err, context.Canceled)

	close(release)
	second := <-secondDone
	assert.Equal(t, Ready, second.State)
	assert.Equal(t, "jobs", second.Data)
	assert.NoError(t, second.Err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPeek_IdleKey(t *testing.T) {
	c := New()
	snap := c.Peek("never-read")
	assert.Equal(t, Idle, snap.State)
	assert.Nil(t, snap.Data)
}

func TestGet_CallerContextCancelled(t *testing.T) {
	c := newTestCache(&fakeClock{now: time.Now()})

	release := make(chan struct{})
	defer close(release)
	fetch := func(ctx context.Context) (interface{}, error) {
		<-release
		return "late", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	snap := c.Get(ctx, "jobs", fetch)
	assert.Equal(t, Loading, snap.State)
	assert.ErrorIs(t, snap.Err, context.Canceled)
}

func TestCollection_TypedResults(t *testing.T) {
	c := newTestCache(&fakeClock{now: time.Now()})
	workers := NewCollection(c, "workers", func(ctx context.Context) ([]string, error) {
		return []string{}, nil
	})

	before := workers.Peek()
	assert.True(t, before.IsLoading)
	assert.False(t, before.IsError)

	after := workers.Use(context.Background())
	assert.False(t, after.IsLoading)
	assert.False(t, after.IsError)
	assert.NotNil(t, after.Data)
	assert.Empty(t, after.Data)
	assert.Equal(t, "workers", workers.Key())
}
