// Package lazy defers an expensive load until the first operation needs it.
package lazy

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// State of a Gate.
type State int

const (
	NotLoaded State = iota
	Loading
	Ready
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "not_loaded"
	}
}

// Loader produces the gated value.
type Loader[T any] func(ctx context.Context) (T, error)

type pending[T any] struct {
	ctx  context.Context
	op   func(T) error
	done chan error
}

// Gate runs operations against a lazily loaded value. Operations submitted
// before the value is ready are queued and run in submission order once the
// load succeeds. A failed load resets the gate so the next operation retries,
// and every queued operation receives the load error.
type Gate[T any] struct {
	name string
	load Loader[T]

	mu    sync.Mutex
	state State
	value T
	queue []*pending[T]
}

// NewGate creates a Gate in the NotLoaded state.
func NewGate[T any](name string, load Loader[T]) *Gate[T] {
	return &Gate[T]{name: name, load: load}
}

// State returns the current state.
func (g *Gate[T]) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Value returns the loaded value once the gate is Ready.
func (g *Gate[T]) Value() (T, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value, g.state == Ready
}

// Do runs op with the loaded value, triggering the load when needed, and
// returns op's error or the load error. If ctx ends while op is queued, Do
// returns ctx.Err() and op is skipped.
func (g *Gate[T]) Do(ctx context.Context, op func(T) error) error {
	g.mu.Lock()
	if g.state == Ready {
		v := g.value
		g.mu.Unlock()
		return op(v)
	}

	p := &pending[T]{ctx: ctx, op: op, done: make(chan error, 1)}
	g.queue = append(g.queue, p)
	if g.state == NotLoaded {
		g.state = Loading
		go g.run(context.WithoutCancel(ctx))
	}
	g.mu.Unlock()

	select {
	case err := <-p.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Gate[T]) run(ctx context.Context) {
	log := zap.L().With(zap.String("gate", g.name))
	log.Debug("lazy: loading")

	v, err := g.load(ctx)
	if err != nil {
		err = eris.Wrapf(err, "lazy: load %s", g.name)
		g.mu.Lock()
		queued := g.queue
		g.queue = nil
		g.state = NotLoaded
		g.mu.Unlock()

		log.Warn("lazy: load failed", zap.Error(err), zap.Int("queued", len(queued)))
		for _, p := range queued {
			p.done <- err
		}
		return
	}

	// Drain until the queue stays empty, then flip to Ready, so operations
	// submitted during the drain still run after earlier ones.
	for {
		g.mu.Lock()
		queued := g.queue
		g.queue = nil
		if len(queued) == 0 {
			g.value = v
			g.state = Ready
			g.mu.Unlock()
			log.Debug("lazy: ready")
			return
		}
		g.mu.Unlock()

		for _, p := range queued {
			if p.ctx.Err() != nil {
				continue
			}
			p.done <- p.op(v)
		}
	}
}
