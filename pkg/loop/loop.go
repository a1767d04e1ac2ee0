// Package loop serializes work on a vdom engine.
//
// A Loop is the engine's Scheduler: component notifications signal it, and
// Run turns each signal into one Update pass. Event handlers and other
// callbacks that touch component state are queued with Dispatch so they run
// on the same goroutine as the passes.
package loop

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/reconcile/pkg/vdom"
)

var (
	// ErrQueueFull is returned by Dispatch when the queue is at capacity.
	ErrQueueFull = errors.New("loop: dispatch queue full")

	// ErrStopped is returned by Dispatch after Run has returned.
	ErrStopped = errors.New("loop: stopped")
)

// DefaultQueueSize is the dispatch queue capacity used when Config leaves it
// unset.
const DefaultQueueSize = 256

// Config configures a Loop.
type Config struct {
	// QueueSize is the dispatch queue capacity.
	QueueSize int

	// Logger receives dispatch panics and pass failures.
	Logger *slog.Logger
}

// Loop runs dispatched callbacks and render passes on one goroutine.
type Loop struct {
	renderCh   chan struct{}
	dispatchCh chan func()
	logger     *slog.Logger

	mu      sync.Mutex
	stopped bool

	passes atomic.Int64
}

// New creates a Loop.
func New(cfg Config) *Loop {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Loop{
		renderCh:   make(chan struct{}, 1),
		dispatchCh: make(chan func(), cfg.QueueSize),
		logger:     cfg.Logger.With("component", "loop"),
	}
}

// RequestRender implements vdom.Scheduler. Requests made before the pending
// one is consumed are coalesced.
func (l *Loop) RequestRender() {
	select {
	case l.renderCh <- struct{}{}:
	default:
		// Already scheduled
	}
}

// Dispatch queues fn to run on the loop goroutine. It is safe to call from
// any goroutine. A callback accepted with a nil error always runs, even when
// Run is returning.
func (l *Loop) Dispatch(fn func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return ErrStopped
	}
	select {
	case l.dispatchCh <- fn:
		return nil
	default:
		l.logger.Warn("dispatch queue full, dropping callback")
		return ErrQueueFull
	}
}

// Passes returns the number of update passes Run has performed.
func (l *Loop) Passes() int64 {
	return l.passes.Load()
}

// Run processes dispatched callbacks and render requests against e until
// ctx is done or a pass fails. It returns the pass error, or nil when ctx
// ended the loop. Callbacks still queued when it stops run before it
// returns, without a further pass.
func (l *Loop) Run(ctx context.Context, e *vdom.Engine) error {
	defer l.stop()

	for {
		select {
		case fn := <-l.dispatchCh:
			l.execute(fn)
			// Render right away instead of waiting for the signal queued by
			// notifications fired inside fn.
			if e.Dirty() {
				l.drainRender()
				if err := l.update(ctx, e); err != nil {
					return err
				}
			}

		case <-l.renderCh:
			if err := l.update(ctx, e); err != nil {
				return err
			}

		case <-ctx.Done():
			return nil
		}
	}
}

func (l *Loop) stop() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()

	for {
		select {
		case fn := <-l.dispatchCh:
			l.execute(fn)
		default:
			return
		}
	}
}

func (l *Loop) update(ctx context.Context, e *vdom.Engine) error {
	l.passes.Add(1)
	if err := e.Update(ctx); err != nil {
		l.logger.Error("update pass failed", "error", err)
		return err
	}
	return nil
}

func (l *Loop) drainRender() {
	select {
	case <-l.renderCh:
	default:
	}
}

// execute runs fn, recovering panics so one bad handler cannot stop the
// loop.
func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("dispatch panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

var _ vdom.Scheduler = (*Loop)(nil)
