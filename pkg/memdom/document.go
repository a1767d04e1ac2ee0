package memdom

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vango-dev/reconcile/pkg/vdom"
)

var (
	// ErrUnknownHandle is returned for handles the document did not create.
	ErrUnknownHandle = errors.New("memdom: unknown handle")

	// ErrNotChild is returned when a node is not a child of the given parent.
	ErrNotChild = errors.New("memdom: not a child of parent")

	// ErrNotElement is returned when an element operation targets a text node.
	ErrNotElement = errors.New("memdom: not an element")

	// ErrEmptyTag is returned by CreateElement for an empty tag.
	ErrEmptyTag = errors.New("memdom: empty tag")
)

// Document is an in-memory render target. It records every mutation and can
// dispatch events to registered listeners. A Document is safe for
// concurrent use; listeners run without the document lock held.
type Document struct {
	mu       sync.Mutex
	root     *Node
	nodes    map[int]*Node
	nextID   int
	seq      uint64
	log      []Mutation
	failures map[vdom.Op]error
	watchers []func(Mutation)
}

// New creates an empty document with a root element of the given tag.
func New(rootTag string) *Document {
	root := &Node{id: 0, tag: rootTag}
	return &Document{
		root:  root,
		nodes: map[int]*Node{0: root},
	}
}

// Root returns the root node. Pass it to vdom.New as the render root.
func (d *Document) Root() *Node { return d.root }

// FailOn makes every later call of op return err. A nil err clears it.
func (d *Document) FailOn(op vdom.Op, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.failures, op)
		return
	}
	if d.failures == nil {
		d.failures = make(map[vdom.Op]error)
	}
	d.failures[op] = err
}

// Watch registers fn to receive every mutation as it is applied. fn is
// called with the document lock held and must not call back into d.
func (d *Document) Watch(fn func(Mutation)) {
	d.mu.Lock()
	d.watchers = append(d.watchers, fn)
	d.mu.Unlock()
}

// Mutations returns the mutation log.
func (d *Document) Mutations() []Mutation {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Mutation(nil), d.log...)
}

// ResetLog clears the mutation log and returns the cleared entries.
func (d *Document) ResetLog() []Mutation {
	d.mu.Lock()
	defer d.mu.Unlock()
	log := d.log
	d.log = nil
	return log
}

// Seq returns the sequence number of the last applied mutation.
func (d *Document) Seq() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq
}

// Snapshot returns the HTML of the document together with the sequence
// number of the last mutation it reflects.
func (d *Document) Snapshot() (string, uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.renderLocked(HTMLOptions{}), d.seq
}

// Lookup returns the live node with the given id.
func (d *Document) Lookup(id int) (*Node, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.nodes[id]
	return n, ok
}

// Count returns the number of nodes attached under the root.
func (d *Document) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	count := -1
	d.root.walk(func(*Node) { count++ })
	return count
}

// ListenerCount returns the number of listeners attached to nodes under the
// root.
func (d *Document) ListenerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	count := 0
	d.root.walk(func(n *Node) { count += len(n.listeners) })
	return count
}

// Dispatch calls every listener registered on node for ev.Type, in
// registration order, and returns how many ran.
func (d *Document) Dispatch(node *Node, ev vdom.Event) int {
	d.mu.Lock()
	var fns []vdom.Listener
	for _, l := range node.listeners {
		if l.event == ev.Type {
			fns = append(fns, l.fn)
		}
	}
	d.mu.Unlock()

	ev.Target = node
	for _, fn := range fns {
		fn(ev)
	}
	return len(fns)
}

// DispatchID dispatches ev to the node with the given id.
func (d *Document) DispatchID(id int, ev vdom.Event) (int, error) {
	n, ok := d.Lookup(id)
	if !ok {
		return 0, fmt.Errorf("%w: #%d", ErrUnknownHandle, id)
	}
	return d.Dispatch(n, ev), nil
}

// Find returns the first node under the root, in document order, for which
// match returns true.
func (d *Document) Find(match func(*Node) bool) *Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	var found *Node
	d.root.walk(func(n *Node) {
		if found == nil && n != d.root && match(n) {
			found = n
		}
	})
	return found
}

// FindTag returns the first element with the given tag.
func (d *Document) FindTag(tag string) *Node {
	return d.Find(func(n *Node) bool { return n.tag == tag })
}

// record numbers m, appends it to the log and notifies watchers. Callers
// hold d.mu.
func (d *Document) record(m Mutation) {
	d.seq++
	m.Seq = d.seq
	d.log = append(d.log, m)
	for _, w := range d.watchers {
		w(m)
	}
}

// fail returns the injected failure for op. Callers hold d.mu.
func (d *Document) fail(op vdom.Op) error {
	if err := d.failures[op]; err != nil {
		return fmt.Errorf("memdom: %s: %w", op, err)
	}
	return nil
}

// node resolves a handle. Callers hold d.mu.
func (d *Document) node(h vdom.Handle) (*Node, error) {
	n, ok := h.(*Node)
	if !ok || n == nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownHandle, h)
	}
	if live, ok := d.nodes[n.id]; !ok || live != n {
		return nil, fmt.Errorf("%w: #%d", ErrUnknownHandle, n.id)
	}
	return n, nil
}

func (d *Document) element(h vdom.Handle) (*Node, error) {
	n, err := d.node(h)
	if err != nil {
		return nil, err
	}
	if n.IsText() {
		return nil, fmt.Errorf("%w: #%d", ErrNotElement, n.id)
	}
	return n, nil
}

func (d *Document) newNode(tag, text string) *Node {
	d.nextID++
	n := &Node{id: d.nextID, tag: tag, text: text}
	d.nodes[n.id] = n
	return n
}

// CreateElement implements vdom.Target.
func (d *Document) CreateElement(tag string) (vdom.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail(vdom.OpCreateElement); err != nil {
		return nil, err
	}
	if tag == "" {
		return nil, ErrEmptyTag
	}
	n := d.newNode(tag, "")
	d.record(Mutation{Op: vdom.OpCreateElement.String(), Node: n.id, Tag: tag})
	return n, nil
}

// CreateText implements vdom.Target.
func (d *Document) CreateText(content string) (vdom.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail(vdom.OpCreateText); err != nil {
		return nil, err
	}
	n := d.newNode("", content)
	d.record(Mutation{Op: vdom.OpCreateText.String(), Node: n.id, Text: content})
	return n, nil
}

// SetText implements vdom.Target.
func (d *Document) SetText(h vdom.Handle, content string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail(vdom.OpSetText); err != nil {
		return err
	}
	n, err := d.node(h)
	if err != nil {
		return err
	}
	if !n.IsText() {
		return fmt.Errorf("memdom: SetText on element #%d", n.id)
	}
	n.text = content
	d.record(Mutation{Op: vdom.OpSetText.String(), Node: n.id, Text: content})
	return nil
}

// SetAttribute implements vdom.Target.
func (d *Document) SetAttribute(h vdom.Handle, key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail(vdom.OpSetAttr); err != nil {
		return err
	}
	n, err := d.element(h)
	if err != nil {
		return err
	}
	n.setAttr(key, value)
	d.record(Mutation{Op: vdom.OpSetAttr.String(), Node: n.id, Key: key, Value: value})
	return nil
}

// RemoveAttribute implements vdom.Target.
func (d *Document) RemoveAttribute(h vdom.Handle, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail(vdom.OpRemoveAttr); err != nil {
		return err
	}
	n, err := d.element(h)
	if err != nil {
		return err
	}
	n.removeAttr(key)
	d.record(Mutation{Op: vdom.OpRemoveAttr.String(), Node: n.id, Key: key})
	return nil
}

// InsertBefore implements vdom.Target. node is detached from its current
// parent first.
func (d *Document) InsertBefore(parent, node, sibling vdom.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail(vdom.OpInsertBefore); err != nil {
		return err
	}
	p, err := d.element(parent)
	if err != nil {
		return err
	}
	n, err := d.node(node)
	if err != nil {
		return err
	}
	s, err := d.node(sibling)
	if err != nil {
		return err
	}
	if s.parent != p {
		return fmt.Errorf("%w: sibling #%d of #%d", ErrNotChild, s.id, p.id)
	}
	if n == s {
		return nil
	}
	n.detach()
	i := p.indexOf(s)
	p.children = append(p.children, nil)
	copy(p.children[i+1:], p.children[i:])
	p.children[i] = n
	n.parent = p
	d.record(Mutation{Op: vdom.OpInsertBefore.String(), Node: n.id, Parent: p.id, Sibling: s.id})
	return nil
}

// AppendChild implements vdom.Target. node is detached from its current
// parent first.
func (d *Document) AppendChild(parent, node vdom.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail(vdom.OpAppendChild); err != nil {
		return err
	}
	p, err := d.element(parent)
	if err != nil {
		return err
	}
	n, err := d.node(node)
	if err != nil {
		return err
	}
	n.detach()
	p.children = append(p.children, n)
	n.parent = p
	d.record(Mutation{Op: vdom.OpAppendChild.String(), Node: n.id, Parent: p.id})
	return nil
}

// RemoveChild implements vdom.Target. The removed node is released and its
// handle becomes unknown.
func (d *Document) RemoveChild(parent, node vdom.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail(vdom.OpRemoveChild); err != nil {
		return err
	}
	p, err := d.element(parent)
	if err != nil {
		return err
	}
	n, err := d.node(node)
	if err != nil {
		return err
	}
	if n.parent != p {
		return fmt.Errorf("%w: #%d of #%d", ErrNotChild, n.id, p.id)
	}
	n.detach()
	delete(d.nodes, n.id)
	d.record(Mutation{Op: vdom.OpRemoveChild.String(), Node: n.id, Parent: p.id})
	return nil
}

// AddEventListener implements vdom.Target.
func (d *Document) AddEventListener(h vdom.Handle, event string, fn vdom.Listener) (vdom.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail(vdom.OpAddListener); err != nil {
		return nil, err
	}
	n, err := d.element(h)
	if err != nil {
		return nil, err
	}
	d.nextID++
	l := &Listener{id: d.nextID, event: event, fn: fn}
	n.listeners = append(n.listeners, l)
	d.record(Mutation{Op: vdom.OpAddListener.String(), Node: n.id, Event: event, Listener: l.id})
	return l, nil
}

// RemoveEventListener implements vdom.Target.
func (d *Document) RemoveEventListener(h vdom.Handle, event string, listener vdom.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail(vdom.OpRemoveListener); err != nil {
		return err
	}
	n, err := d.element(h)
	if err != nil {
		return err
	}
	l, ok := listener.(*Listener)
	if !ok {
		return fmt.Errorf("%w: listener %v", ErrUnknownHandle, listener)
	}
	for i, cur := range n.listeners {
		if cur == l && cur.event == event {
			n.listeners = append(n.listeners[:i], n.listeners[i+1:]...)
			d.record(Mutation{Op: vdom.OpRemoveListener.String(), Node: n.id, Event: event, Listener: l.id})
			return nil
		}
	}
	return fmt.Errorf("%w: listener %d on #%d", ErrUnknownHandle, l.id, n.id)
}

var _ vdom.Target = (*Document)(nil)
