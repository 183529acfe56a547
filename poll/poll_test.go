package poll

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryRunsImmediatelyAndRepeats(t *testing.T) {
	var n atomic.Int32
	task := Every(context.Background(), 5*time.Millisecond, func(context.Context) { n.Add(1) })
	require.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, time.Millisecond)
	task.Stop()

	after := n.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, n.Load(), "no runs after Stop")
}

func TestDeferredSkipsFirstRun(t *testing.T) {
	var n atomic.Int32
	task := Every(context.Background(), time.Hour, func(context.Context) { n.Add(1) }, Deferred())
	time.Sleep(10 * time.Millisecond)
	task.Stop()
	assert.Equal(t, int32(0), n.Load())
}

func TestContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	task := Every(ctx, time.Millisecond, func(context.Context) {})
	cancel()
	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not stop after cancel")
	}
	task.Stop() // idempotent
}

func TestNonPositiveIntervalFallsBack(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		var n atomic.Int32
		var task *Task
		require.NotPanics(t, func() {
			task = Every(context.Background(), interval, func(context.Context) { n.Add(1) })
		})
		require.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, time.Millisecond)
		time.Sleep(10 * time.Millisecond)
		task.Stop()
		assert.Equal(t, int32(1), n.Load(), "interval %v must not spin", interval)
	}
}
