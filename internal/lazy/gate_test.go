package lazy

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_LoadsOnceAndRuns(t *testing.T) {
	var loads atomic.Int32
	g := NewGate("style", func(context.Context) (string, error) {
		loads.Add(1)
		return "osm", nil
	})
	assert.Equal(t, NotLoaded, g.State())

	var got string
	require.NoError(t, g.Do(context.Background(), func(v string) error {
		got = v
		return nil
	}))
	assert.Equal(t, "osm", got)
	assert.Equal(t, Ready, g.State())

	require.NoError(t, g.Do(context.Background(), func(string) error { return nil }))
	assert.Equal(t, int32(1), loads.Load())

	v, ok := g.Value()
	assert.True(t, ok)
	assert.Equal(t, "osm", v)
}

func TestGate_QueueDrainsInOrder(t *testing.T) {
	release := make(chan struct{})
	g := NewGate("style", func(context.Context) (int, error) {
		<-release
		return 7, nil
	})

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup

	for i := range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = g.Do(context.Background(), func(int) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}()
		// Wait for the op to be queued before submitting the next.
		require.Eventually(t, func() bool {
			g.mu.Lock()
			defer g.mu.Unlock()
			return len(g.queue) == i+1
		}, time.Second, time.Millisecond)
	}
	assert.Equal(t, Loading, g.State())

	close(release)
	wg.Wait()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
	assert.Equal(t, Ready, g.State())
}

func TestGate_FailureResetsAndNotifiesQueue(t *testing.T) {
	var attempts atomic.Int32
	release := make(chan struct{})
	g := NewGate("style", func(context.Context) (string, error) {
		if attempts.Add(1) == 1 {
			<-release
			return "", errors.New("tile server down")
		}
		return "ok", nil
	})

	errs := make(chan error, 2)
	var ran atomic.Int32
	for range 2 {
		go func() {
			errs <- g.Do(context.Background(), func(string) error {
				ran.Add(1)
				return nil
			})
		}()
	}
	require.Eventually(t, func() bool {
		g.mu.Lock()
		defer g.mu.Unlock()
		return len(g.queue) == 2
	}, time.Second, time.Millisecond)
	close(release)

	for range 2 {
		err := <-errs
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tile server down")
	}
	assert.Equal(t, int32(0), ran.Load())
	assert.Equal(t, NotLoaded, g.State())

	// The next operation retries the load.
	require.NoError(t, g.Do(context.Background(), func(v string) error {
		assert.Equal(t, "ok", v)
		return nil
	}))
	assert.Equal(t, int32(2), attempts.Load())
}

func TestGate_OpErrorIsReturned(t *testing.T) {
	g := NewGate("n", func(context.Context) (int, error) { return 1, nil })
	err := g.Do(context.Background(), func(int) error { return errors.New("render failed") })
	assert.EqualError(t, err, "render failed")
}

func TestGate_CanceledWhileQueued(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	g := NewGate("n", func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := g.Do(ctx, func(int) error {
		t.Error("op must not run after cancellation")
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "not_loaded", NotLoaded.String())
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "ready", Ready.String())
}
