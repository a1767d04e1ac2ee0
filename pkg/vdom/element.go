package vdom

import "strings"

// ElementNode is a tagged element with an optional class, ordered
// attributes, at most one child and a list of event handlers. Multiple
// children are expressed by a *ListNode child.
type ElementNode struct {
	tag         string
	class       string
	attrs       *Attributes
	child       Node
	selfClosing bool
	events      []EventHandler

	listeners []Handle
	handle    Handle
}

// NewElement creates an element. attrs and child may be nil; an empty class
// means no class attribute. A "class" entry in attrs is appended to class
// so the element owns the class attribute alone.
func NewElement(tag, class string, attrs *Attributes, child Node, selfClosing bool) *ElementNode {
	if v, ok := attrs.Get("class"); ok {
		rest := &Attributes{}
		attrs.Each(func(key, value string) {
			if key != "class" {
				rest.Set(key, value)
			}
		})
		attrs = rest
		if v != "" {
			class = strings.TrimSpace(class + " " + v)
		}
	}
	if attrs != nil && attrs.Len() == 0 {
		attrs = nil
	}
	return &ElementNode{
		tag:         tag,
		class:       class,
		attrs:       attrs,
		child:       child,
		selfClosing: selfClosing,
	}
}

// SetEvents replaces the element's event handlers. It must be called before
// the element is patched.
func (el *ElementNode) SetEvents(events ...EventHandler) *ElementNode {
	el.events = events
	return el
}

// Tag returns the element tag name.
func (el *ElementNode) Tag() string { return el.tag }

// ClassName returns the class string, or "" when the element has none.
func (el *ElementNode) ClassName() string { return el.class }

// Attrs returns the attribute map, or nil when the element has none.
func (el *ElementNode) Attrs() *Attributes { return el.attrs }

// Child returns the single child node, or nil.
func (el *ElementNode) Child() Node { return el.child }

// SelfClosing reports whether the element renders without a closing tag.
func (el *ElementNode) SelfClosing() bool { return el.selfClosing }

// Events returns the element's event handlers.
func (el *ElementNode) Events() []EventHandler { return el.events }

// Kind implements Node.
func (el *ElementNode) Kind() Kind { return KindElement }

// Handle implements Node.
func (el *ElementNode) Handle() Handle { return el.handle }

func (el *ElementNode) patch(p *pass, parent, next Handle, prev Node) {
	if prev == nil {
		el.create(p, parent, next)
		return
	}

	old := prev.(*ElementNode)
	if old.tag != el.tag {
		old.remove(p, parent)
		el.create(p, parent, next)
		return
	}

	invariant(old.handle != nil, "E001", "element <%s>", old.tag)
	h := old.handle
	el.handle, old.handle = h, nil

	if el.class != old.class {
		if el.class == "" {
			p.removeAttr(h, "class")
		} else {
			p.setAttr(h, "class", el.class)
		}
	}
	patchAttrs(p, h, el.attrs, old.attrs)
	patchNode(p, h, nil, el.child, old.child)
	old.detachEvents(p, h)
	el.attachEvents(p)
}

// create materializes the element and its subtree, then attaches it to
// parent so children exist before the element becomes visible.
func (el *ElementNode) create(p *pass, parent, next Handle) {
	h := p.createElement(el.tag)
	el.handle = h
	if el.class != "" {
		p.setAttr(h, "class", el.class)
	}
	patchAttrs(p, h, el.attrs, nil)
	patchNode(p, h, nil, el.child, nil)
	el.attachEvents(p)
	p.insert(parent, h, next)
}

func (el *ElementNode) refresh(p *pass, _, _ Handle) {
	if el.child != nil {
		el.child.refresh(p, el.handle, nil)
	}
}

// remove tears down listeners first, then the child subtree, then the
// element itself.
func (el *ElementNode) remove(p *pass, parent Handle) {
	invariant(el.handle != nil, "E001", "remove element <%s>", el.tag)
	el.detachEvents(p, el.handle)
	if el.child != nil {
		el.child.remove(p, el.handle)
	}
	p.removeChild(parent, el.handle)
	el.handle = nil
}

func (el *ElementNode) moveToEnd(p *pass, parent Handle) {
	invariant(el.handle != nil, "E001", "move element <%s>", el.tag)
	p.move(parent, el.handle, nil)
}

func (el *ElementNode) moveBefore(p *pass, parent, sibling Handle) {
	invariant(el.handle != nil, "E001", "move element <%s>", el.tag)
	p.move(parent, el.handle, sibling)
}
