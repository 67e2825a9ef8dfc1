package evolution

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
)

// Snapshot is an immutable view of a committed population. Individuals are
// deep copies owned by the snapshot.
type Snapshot[T any] struct {
	Generation    int
	State         State
	Population    []T
	Fitness       []float64
	Diversity     []float64
	History       History
	NoImprovement int
}

// Best returns the index of the fittest individual, or -1.
func (s *Snapshot[T]) Best() int {
	best := -1
	for i, f := range s.Fitness {
		if math.IsNaN(f) {
			continue
		}
		if best < 0 || f > s.Fitness[best] {
			best = i
		}
	}
	return best
}

// Runner drives an engine on a background goroutine and publishes a new
// Snapshot after initialization and after every epoch. Readers never touch
// the engine's own individuals.
type Runner[T any] struct {
	engine *Engine[T]
	latest atomic.Pointer[Snapshot[T]]

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	err    error
}

// NewRunner wraps an engine. The engine must not be used directly afterwards.
func NewRunner[T any](engine *Engine[T]) *Runner[T] {
	return &Runner[T]{engine: engine, done: make(chan struct{})}
}

// Start launches the background loop. It runs until the engine terminates,
// an epoch fails, or ctx is cancelled.
func (r *Runner[T]) Start(ctx context.Context) {
	r.once.Do(func() {
		ctx, r.cancel = context.WithCancel(ctx)
		go r.loop(ctx)
	})
}

func (r *Runner[T]) loop(ctx context.Context) {
	defer close(r.done)
	e := r.engine

	if e.State() == Uninitialized {
		if r.err = e.Start(); r.err != nil {
			return
		}
	}
	if r.err = e.Initialize(ctx); r.err != nil {
		return
	}
	r.publish()

	for !e.Terminated() {
		if err := e.Epoch(ctx); err != nil {
			r.err = err
			return
		}
		r.publish()
	}
	r.publish()
}

func (r *Runner[T]) publish() {
	e := r.engine
	pop := make([]T, len(e.population))
	for i, x := range e.population {
		pop[i] = e.ops.Clone(x)
	}
	r.latest.Store(&Snapshot[T]{
		Generation:    e.generation,
		State:         e.state,
		Population:    pop,
		Fitness:       e.Fitness(),
		Diversity:     e.Diversity(),
		History:       e.History(),
		NoImprovement: e.noImprovement,
	})
}

// Latest returns the most recent snapshot, or nil before initialization
// completes.
func (r *Runner[T]) Latest() *Snapshot[T] {
	return r.latest.Load()
}

// Done is closed when the background loop exits.
func (r *Runner[T]) Done() <-chan struct{} {
	return r.done
}

// Stop requests cancellation and waits for the loop to exit.
func (r *Runner[T]) Stop() error {
	if r.cancel != nil {
		r.cancel()
	}
	return r.Wait()
}

// Wait blocks until the loop exits and returns its error. Cancellation is
// not reported as an error.
func (r *Runner[T]) Wait() error {
	if r.cancel == nil {
		return nil
	}
	<-r.done
	if errors.Is(r.err, context.Canceled) {
		return nil
	}
	return r.err
}
