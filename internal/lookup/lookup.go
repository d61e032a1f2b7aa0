// Package lookup provides the debounced, cancellation-aware request runner
// behind search-as-you-type and other network-bound lookups. Each trigger
// restarts a quiet period; when it elapses the query runs, and only the
// newest generation may deliver its result. Stale responses are dropped
// silently, never surfaced as errors.
package lookup

import (
	"context"
	"sync"
	"time"
)

type Result[T any] struct {
	Query string
	Value T
	Err   error
}

type Debounced[T any] struct {
	mu      sync.Mutex
	quiet   time.Duration
	run     func(ctx context.Context, query string) (T, error)
	deliver func(Result[T])
	gen     uint64
	timer   *time.Timer
	cancel  context.CancelFunc
}

// New builds a debounced runner. run executes the lookup; deliver receives
// the result of the winning generation on the goroutine that ran it.
func New[T any](quiet time.Duration, run func(ctx context.Context, query string) (T, error), deliver func(Result[T])) *Debounced[T] {
	return &Debounced[T]{
		quiet:   quiet,
		run:     run,
		deliver: deliver,
	}
}

// Trigger schedules query after the quiet period, superseding any pending or
// in-flight lookup. The newest trigger always wins regardless of arrival
// order of responses.
func (d *Debounced[T]) Trigger(ctx context.Context, query string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}

	d.timer = time.AfterFunc(d.quiet, func() {
		d.fire(ctx, gen, query)
	})
}

func (d *Debounced[T]) fire(parent context.Context, gen uint64, query string) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(parent)
	d.cancel = cancel
	d.mu.Unlock()

	value, err := d.run(ctx, query)

	d.mu.Lock()
	stale := gen != d.gen
	d.mu.Unlock()
	if stale || ctx.Err() != nil {
		return
	}
	d.deliver(Result[T]{Query: query, Value: value, Err: err})
}

// Cancel drops any pending or in-flight lookup without delivering.
func (d *Debounced[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
