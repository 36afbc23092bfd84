package versioncache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFetcher struct {
	calls   atomic.Int32
	version atomic.Value
	err     atomic.Value
	delay   time.Duration
}

func newFetcher(version string) *countingFetcher {
	f := &countingFetcher{}
	f.version.Store(version)
	f.err.Store(errBox{})
	return f
}

type errBox struct{ err error }

func (f *countingFetcher) LatestVersion(context.Context, string) (string, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if e := f.err.Load().(errBox).err; e != nil {
		return "", e
	}
	return f.version.Load().(string), nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestResolveCachesWithinTTL(t *testing.T) {
	f := newFetcher("v1")
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := New(f, time.Minute, zerolog.Nop())
	c.now = clock.Now
	ctx := context.Background()

	v, err := c.Resolve(ctx, "o/m")
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	f.version.Store("v2")
	v, _ = c.Resolve(ctx, "o/m")
	assert.Equal(t, "v1", v)
	assert.Equal(t, int32(1), f.calls.Load())

	clock.Advance(2 * time.Minute)
	v, _ = c.Resolve(ctx, "o/m")
	assert.Equal(t, "v2", v)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestInvalidate(t *testing.T) {
	f := newFetcher("v1")
	c := New(f, time.Hour, zerolog.Nop())
	ctx := context.Background()

	_, err := c.Resolve(ctx, "o/m")
	require.NoError(t, err)
	f.version.Store("v2")
	c.Invalidate("o/m")

	v, err := c.Resolve(ctx, "o/m")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
}

func TestZeroTTLAlwaysFetches(t *testing.T) {
	f := newFetcher("v1")
	c := New(f, 0, zerolog.Nop())

	for i := 0; i < 3; i++ {
		_, err := c.Resolve(context.Background(), "o/m")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), f.calls.Load())
}

func TestStaleServedOnError(t *testing.T) {
	f := newFetcher("v1")
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := New(f, time.Minute, zerolog.Nop())
	c.now = clock.Now

	_, err := c.Resolve(context.Background(), "o/m")
	require.NoError(t, err)

	clock.Advance(time.Hour)
	f.err.Store(errBox{err: errors.New("upstream down")})
	v, err := c.Resolve(context.Background(), "o/m")
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	_, err = c.Resolve(context.Background(), "o/other")
	assert.Error(t, err)
}

func TestConcurrentResolveCollapses(t *testing.T) {
	f := newFetcher("v1")
	f.delay = 20 * time.Millisecond
	c := New(f, time.Minute, zerolog.Nop())

	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Resolve(context.Background(), "o/m")
			if err == nil {
				results[i] = v
			}
		}(i)
	}
	wg.Wait()

	for _, v := range results {
		assert.Equal(t, "v1", v)
	}
	assert.LessOrEqual(t, f.calls.Load(), int32(2))
}

func TestConcurrentReadersDuringRefresh(t *testing.T) {
	f := newFetcher("v0")
	c := New(f, time.Nanosecond, zerolog.Nop())

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			f.version.Store(fmt.Sprintf("v%d", i))
			c.Invalidate("o/m")
		}
	}()

	for i := 0; i < 200; i++ {
		v, err := c.Resolve(context.Background(), "o/m")
		require.NoError(t, err)
		assert.Regexp(t, `^v\d+$`, v)
	}
	close(stop)
	wg.Wait()
}

// gatedFetcher blocks each lookup until release is closed and fails the way
// an HTTP call does when its context is gone.
type gatedFetcher struct {
	calls   atomic.Int32
	version atomic.Value
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedFetcher(version string) *gatedFetcher {
	f := &gatedFetcher{started: make(chan struct{}), release: make(chan struct{})}
	f.version.Store(version)
	return f
}

func (f *gatedFetcher) LatestVersion(ctx context.Context, _ string) (string, error) {
	f.calls.Add(1)
	f.once.Do(func() { close(f.started) })
	<-f.release
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.version.Load().(string), nil
}

func TestSharedLookupSurvivesFirstCallerCancel(t *testing.T) {
	f := newGatedFetcher("v1")
	c := New(f, time.Minute, zerolog.Nop())

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.Resolve(ctxA, "o/m")
		errA <- err
	}()
	<-f.started

	type result struct {
		version string
		err     error
	}
	resB := make(chan result, 1)
	go func() {
		v, err := c.Resolve(context.Background(), "o/m")
		resB <- result{v, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(f.release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, "v1", b.version)

	v, err := c.Resolve(context.Background(), "o/m")
	require.NoError(t, err)
	assert.Equal(t, "v1", v)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestInvalidateDuringLookupDiscardsResult(t *testing.T) {
	f := newGatedFetcher("v-old")
	c := New(f, time.Hour, zerolog.Nop())

	done := make(chan string, 1)
	go func() {
		v, _ := c.Resolve(context.Background(), "o/m")
		done <- v
	}()
	<-f.started

	c.Invalidate("o/m")
	close(f.release)
	assert.Equal(t, "v-old", <-done)

	f.version.Store("v-new")
	v, err := c.Resolve(context.Background(), "o/m")
	require.NoError(t, err)
	assert.Equal(t, "v-new", v)
	assert.Equal(t, int32(2), f.calls.Load())
}
