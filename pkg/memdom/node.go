package memdom

import "github.com/vango-dev/reconcile/pkg/vdom"

// Node is an element or text node owned by a Document. *Node values are the
// handles the document hands to the engine.
type Node struct {
	id   int
	tag  string // "" for text nodes
	text string

	attrKeys []string
	attrs    map[string]string

	parent    *Node
	children  []*Node
	listeners []*Listener
}

// Listener is a registered event callback. *Listener values are the
// listener handles returned by AddEventListener.
type Listener struct {
	id    int
	event string
	fn    vdom.Listener
}

// ID returns the document-unique node id.
func (n *Node) ID() int { return n.id }

// Tag returns the element tag, or "" for text nodes.
func (n *Node) Tag() string { return n.tag }

// IsText reports whether n is a text node.
func (n *Node) IsText() bool { return n.tag == "" }

// Text returns the content of a text node.
func (n *Node) Text() string { return n.text }

// Attr returns the value of attribute key.
func (n *Node) Attr(key string) (string, bool) {
	v, ok := n.attrs[key]
	return v, ok
}

// AttrKeys returns attribute keys in insertion order.
func (n *Node) AttrKeys() []string { return append([]string(nil), n.attrKeys...) }

// Parent returns the parent node, or nil when detached.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child nodes in order.
func (n *Node) Children() []*Node { return append([]*Node(nil), n.children...) }

// ListenerCount returns the number of listeners for event, or for all events
// when event is "".
func (n *Node) ListenerCount(event string) int {
	if event == "" {
		return len(n.listeners)
	}
	count := 0
	for _, l := range n.listeners {
		if l.event == event {
			count++
		}
	}
	return count
}

func (n *Node) setAttr(key, value string) {
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	if _, exists := n.attrs[key]; !exists {
		n.attrKeys = append(n.attrKeys, key)
	}
	n.attrs[key] = value
}

func (n *Node) removeAttr(key string) {
	if _, ok := n.attrs[key]; !ok {
		return
	}
	delete(n.attrs, key)
	for i, k := range n.attrKeys {
		if k == key {
			n.attrKeys = append(n.attrKeys[:i], n.attrKeys[i+1:]...)
			return
		}
	}
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// detach removes n from its current parent, if any.
func (n *Node) detach() {
	if n.parent == nil {
		return
	}
	p := n.parent
	if i := p.indexOf(n); i >= 0 {
		p.children = append(p.children[:i], p.children[i+1:]...)
	}
	n.parent = nil
}

// walk calls fn for n and every descendant in document order.
func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}
