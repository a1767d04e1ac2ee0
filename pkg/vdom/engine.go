package vdom

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vango-dev/reconcile/pkg/vdom"

// Pass kinds reported to observers and traces.
const (
	PassRender  = "render"
	PassUpdate  = "update"
	PassUnmount = "unmount"
)

// Observer is notified after every pass.
type Observer interface {
	PassCompleted(kind string, duration time.Duration, stats PassStats, err error)
}

// Engine keeps one render root in sync with a node tree. Passes are
// synchronous and must not overlap; the engine never starts a pass on its
// own. Component notifiers may be called from any goroutine.
type Engine struct {
	target    Target
	root      Handle
	scheduler Scheduler
	logger    *slog.Logger
	tracer    trace.Tracer
	observers []Observer

	mu     sync.Mutex
	slots  map[uint64]*slot
	nextID uint64

	rendering atomic.Bool
	current   Node
	err       error
}

// Option configures an Engine.
type Option func(*Engine)

// WithScheduler sets the scheduler asked for a pass when a component
// notifies.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.scheduler = s }
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer sets the tracer used for pass spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithObserver registers an observer for completed passes. Observers are
// called in registration order.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// New creates an engine rendering into root on target.
func New(target Target, root Handle, opts ...Option) *Engine {
	e := &Engine{
		target: target,
		root:   root,
		logger: slog.Default().With("component", "vdom"),
		tracer: otel.Tracer(tracerName),
		slots:  make(map[uint64]*slot),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render reconciles node against the committed tree and commits it.
func (e *Engine) Render(ctx context.Context, node Node) error {
	return e.run(ctx, PassRender, func(p *pass) {
		patchNode(p, e.root, nil, node, e.current)
		e.current = node
	})
}

// Update walks the committed tree and re-renders dirty components only.
func (e *Engine) Update(ctx context.Context) error {
	return e.run(ctx, PassUpdate, func(p *pass) {
		if e.current != nil {
			e.current.refresh(p, e.root, nil)
		}
	})
}

// Unmount removes the committed tree from the target and destroys every
// component in it.
func (e *Engine) Unmount(ctx context.Context) error {
	return e.run(ctx, PassUnmount, func(p *pass) {
		if e.current != nil {
			e.current.remove(p, e.root)
			e.current = nil
		}
	})
}

// Current returns the committed tree.
func (e *Engine) Current() Node {
	return e.current
}

// Dirty reports whether any mounted component is waiting for a re-render.
func (e *Engine) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range e.slots {
		if s.dirty.Load() {
			return true
		}
	}
	return false
}

// ComponentCount returns the number of mounted components.
func (e *Engine) ComponentCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.slots)
}

// Err returns the error that aborted a previous pass. Once set, every
// later pass fails with it: the target no longer matches the tree.
func (e *Engine) Err() error {
	return e.err
}

func (e *Engine) run(ctx context.Context, kind string, fn func(p *pass)) (err error) {
	invariant(e.rendering.CompareAndSwap(false, true), "E004", "%s pass", kind)
	defer e.rendering.Store(false)

	if e.err != nil {
		return e.err
	}

	_, span := e.tracer.Start(ctx, "vdom."+kind)
	defer span.End()

	start := time.Now()
	p := &pass{e: e, t: e.target}
	err = func() (err error) {
		defer recoverTarget(&err)
		fn(p)
		return nil
	}()
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.Int("vdom.mutations", p.stats.Mutations()),
		attribute.Int("vdom.moves", p.stats.Moved),
		attribute.Int("vdom.components.updated", p.stats.ComponentsUpdated),
	)
	if err != nil {
		e.err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Error("pass aborted", "kind", kind, "error", err)
	} else {
		e.logger.Debug("pass complete",
			"kind", kind,
			"duration", elapsed,
			"mutations", p.stats.Mutations(),
			"components_updated", p.stats.ComponentsUpdated,
		)
	}
	for _, o := range e.observers {
		o.PassCompleted(kind, elapsed, p.stats, err)
	}
	return err
}

func (e *Engine) allocSlot(typ reflect.Type) *slot {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	s := &slot{id: e.nextID, typ: typ}
	e.slots[s.id] = s
	return s
}

func (e *Engine) freeSlot(id uint64) {
	e.mu.Lock()
	delete(e.slots, id)
	e.mu.Unlock()
}

// notifier returns the callback handed to a component instance. It captures
// the slot id only; notifications for destroyed components are dropped.
func (e *Engine) notifier(id uint64) Notifier {
	return func() { e.notify(id) }
}

func (e *Engine) notify(id uint64) {
	e.mu.Lock()
	s := e.slots[id]
	e.mu.Unlock()
	if s == nil {
		return
	}
	if s.dirty.CompareAndSwap(false, true) && e.scheduler != nil {
		e.scheduler.RequestRender()
	}
}
