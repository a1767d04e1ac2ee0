package vdom

import (
	"reflect"
	"sync/atomic"
)

// Instance is a mounted component: anything that can render to a Node.
type Instance interface {
	Render() Node
}

// Creator is implemented by instances that want the created hook.
type Creator interface{ Created() }

// Mounter is implemented by instances that want the mounted hook.
type Mounter interface{ Mounted() }

// Updater is implemented by instances that want the updated hook.
type Updater interface{ Updated() }

// Destroyer is implemented by instances that want the destroyed hook.
type Destroyer interface{ Destroyed() }

// PropsReceiver is implemented by instances that accept props of type P.
// Instances that do not implement it treat every props value as equal.
type PropsReceiver[P any] interface {
	// PropsEqual reports whether props match the instance's current props.
	PropsEqual(props P) bool

	// UpdateProps stores new props. The engine marks the component dirty
	// afterwards.
	UpdateProps(props P)
}

// ComponentNode is a lazily instantiated component. Its identity is the
// concrete instance type: a previous component of the same type at the same
// position is reused, any other is destroyed and replaced.
type ComponentNode struct {
	typ     reflect.Type
	props   any
	create  func(notify Notifier) Instance
	receive func(inst Instance) bool

	slot *slot
}

// Comp creates a component node. create is called at most once per mounted
// component, on its first render. The props-update entry point closes over
// P, so no type assertion on props is needed when the instance is reused.
func Comp[C Instance, P any](create func(props P, notify Notifier) C, props P) *ComponentNode {
	return &ComponentNode{
		typ:   reflect.TypeFor[C](),
		props: props,
		create: func(notify Notifier) Instance {
			return create(props, notify)
		},
		receive: func(inst Instance) bool {
			r, ok := inst.(PropsReceiver[P])
			if !ok || r.PropsEqual(props) {
				return false
			}
			r.UpdateProps(props)
			return true
		},
	}
}

// Type returns the component identity tag.
func (c *ComponentNode) Type() reflect.Type { return c.typ }

// Props returns the props the node was constructed with.
func (c *ComponentNode) Props() any { return c.props }

// Instance returns the mounted instance, or nil before the first render and
// after removal.
func (c *ComponentNode) Instance() Instance {
	if c.slot == nil {
		return nil
	}
	return c.slot.instance
}

// Rendered returns the cached output of the last render.
func (c *ComponentNode) Rendered() Node {
	if c.slot == nil {
		return nil
	}
	return c.slot.rendered
}

// Kind implements Node.
func (c *ComponentNode) Kind() Kind { return KindComponent }

// Handle returns the handle of the rendered subtree.
func (c *ComponentNode) Handle() Handle {
	if c.slot == nil || c.slot.rendered == nil {
		return nil
	}
	return c.slot.rendered.Handle()
}

// slot is the engine-owned state of one mounted component. Notifiers refer
// to it only by id.
type slot struct {
	id       uint64
	typ      reflect.Type
	instance Instance
	rendered Node
	dirty    atomic.Bool
}

func (c *ComponentNode) patch(p *pass, parent, next Handle, prev Node) {
	if prev != nil {
		old := prev.(*ComponentNode)
		if old.typ == c.typ {
			invariant(old.slot != nil, "E002", "component %s", c.typ)
			c.slot, old.slot = old.slot, nil
			if c.receive != nil && c.receive(c.slot.instance) {
				c.slot.dirty.Store(true)
			}
			c.update(p, parent, next)
			return
		}
		old.remove(p, parent)
	}
	c.mount(p, parent, next)
}

// mount creates the instance, renders it and attaches the output.
func (c *ComponentNode) mount(p *pass, parent, next Handle) {
	invariant(c.slot == nil, "E003", "component %s", c.typ)
	s := p.e.allocSlot(c.typ)
	c.slot = s
	s.instance = c.create(p.e.notifier(s.id))
	if h, ok := s.instance.(Creator); ok {
		h.Created()
	}

	tree := s.instance.Render()
	patchNode(p, parent, next, tree, nil)
	s.rendered = tree
	p.stats.ComponentsCreated++
	p.e.logger.Debug("component mounted", "type", c.typ.String(), "id", s.id)

	if h, ok := s.instance.(Mounter); ok {
		h.Mounted()
	}
}

// update re-renders the component if it is dirty; otherwise it walks the
// cached output so dirty descendants are still reached.
func (c *ComponentNode) update(p *pass, parent, next Handle) {
	s := c.slot
	if !s.dirty.CompareAndSwap(true, false) {
		if s.rendered != nil {
			s.rendered.refresh(p, parent, next)
		}
		return
	}

	tree := s.instance.Render()
	patchNode(p, parent, next, tree, s.rendered)
	s.rendered = tree
	p.stats.ComponentsUpdated++

	if h, ok := s.instance.(Updater); ok {
		h.Updated()
	}
}

func (c *ComponentNode) refresh(p *pass, parent, next Handle) {
	invariant(c.slot != nil, "E002", "component %s", c.typ)
	c.update(p, parent, next)
}

func (c *ComponentNode) remove(p *pass, parent Handle) {
	invariant(c.slot != nil, "E002", "remove component %s", c.typ)
	s := c.slot
	if s.rendered != nil {
		s.rendered.remove(p, parent)
	}
	if h, ok := s.instance.(Destroyer); ok {
		h.Destroyed()
	}
	p.e.freeSlot(s.id)
	p.stats.ComponentsDestroyed++
	p.e.logger.Debug("component destroyed", "type", c.typ.String(), "id", s.id)

	s.rendered = nil
	s.instance = nil
	c.slot = nil
}

func (c *ComponentNode) moveToEnd(p *pass, parent Handle) {
	if c.slot != nil && c.slot.rendered != nil {
		c.slot.rendered.moveToEnd(p, parent)
	}
}

func (c *ComponentNode) moveBefore(p *pass, parent, sibling Handle) {
	if c.slot != nil && c.slot.rendered != nil {
		c.slot.rendered.moveBefore(p, parent, sibling)
	}
}
