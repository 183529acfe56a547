// Package poll runs a function on a fixed interval for as long as a view is
// alive.
package poll

import (
	"context"
	"sync"
	"time"
)

// Task is a running poll loop.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Option configures Every.
type Option func(*config)

type config struct {
	immediate bool
}

// Deferred skips the immediate first run; fn first runs after one interval.
func Deferred() Option { return func(c *config) { c.immediate = false } }

// DefaultInterval replaces a non-positive interval passed to Every.
const DefaultInterval = time.Minute

// Every calls fn right away and then every interval until ctx is done or Stop
// is called. Runs never overlap: a slow fn delays the next tick.
func Every(ctx context.Context, interval time.Duration, fn func(context.Context), opts ...Option) *Task {
	if interval <= 0 {
		interval = DefaultInterval
	}
	cfg := config{immediate: true}
	for _, o := range opts {
		o(&cfg)
	}
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		if cfg.immediate {
			fn(ctx)
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}
				fn(ctx)
			}
		}
	}()
	return t
}

// Stop ends the loop and waits for an in-progress run to return.
func (t *Task) Stop() {
	t.once.Do(t.cancel)
	<-t.done
}

// Done is closed once the loop has exited.
func (t *Task) Done() <-chan struct{} { return t.done }
