package vdom

// Kind is the node type discriminator.
type Kind uint8

const (
	KindText      Kind = iota // Plain text node
	KindElement               // <div>, <button>, etc.
	KindList                  // Keyed children without a wrapper
	KindComponent             // Nested component
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindElement:
		return "Element"
	case KindList:
		return "List"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// Node is the tree unit: one of *TextNode, *ElementNode, *ListNode or
// *ComponentNode. The set is closed.
//
// Nodes are built as plain values each render; patching a new node against
// the previous node at the same position moves the render-target attachment
// from the previous node to the new one.
type Node interface {
	// Kind reports which variant the node is.
	Kind() Kind

	// Handle returns the render-target node backing this node, or nil when
	// the node is not attached. Lists report their first attached child.
	Handle() Handle

	patch(p *pass, parent, next Handle, prev Node)
	refresh(p *pass, parent, next Handle)
	remove(p *pass, parent Handle)
	moveToEnd(p *pass, parent Handle)
	moveBefore(p *pass, parent, sibling Handle)
}

// patchNode reconciles n against prev under parent. New nodes are inserted
// before next, or appended when next is nil.
//
// A previous node is only reused when it is the same variant; otherwise it
// is removed and n is created as if there were no previous node.
func patchNode(p *pass, parent, next Handle, n, prev Node) {
	switch {
	case n == nil:
		if prev != nil {
			prev.remove(p, parent)
		}
	case prev == nil:
		n.patch(p, parent, next, nil)
	case n == prev:
		n.refresh(p, parent, next)
	case n.Kind() != prev.Kind():
		prev.remove(p, parent)
		n.patch(p, parent, next, nil)
	default:
		n.patch(p, parent, next, prev)
	}
}

// move re-inserts n before sibling, or at the end of parent when sibling is
// nil.
func move(p *pass, parent, sibling Handle, n Node) {
	if sibling == nil {
		n.moveToEnd(p, parent)
		return
	}
	n.moveBefore(p, parent, sibling)
}
