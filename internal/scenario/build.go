package scenario

import (
	"log/slog"
	"reflect"
	"strconv"

	"github.com/vango-dev/reconcile/pkg/vdom"
)

// Builder turns scenario nodes into vdom trees.
type Builder struct {
	// OnEvent is called when a listener declared with "on" fires.
	OnEvent func(n *Node, ev vdom.Event)

	// Logger receives component lifecycle records at debug level.
	Logger *slog.Logger
}

// Step builds the tree of s. It returns nil for a step without a tree.
func (b *Builder) Step(s *Step) vdom.Node {
	if s.Tree == nil {
		return nil
	}
	return b.Build(s.Tree)
}

// Build converts n into a fresh vdom node.
func (b *Builder) Build(n *Node) vdom.Node {
	switch {
	case n.Text != nil:
		return vdom.Text(*n.Text)
	case n.Tag != "":
		return b.element(n)
	case n.Component != "":
		return vdom.Comp(newSection, sectionProps{name: n.Component, children: n.Children, b: b})
	default:
		return b.list(n.List)
	}
}

func (b *Builder) element(n *Node) *vdom.ElementNode {
	args := make([]any, 0, len(n.Attrs)+len(n.On)+3)
	if n.Class != "" {
		args = append(args, vdom.Class(n.Class))
	}
	for _, item := range n.Attrs {
		args = append(args, vdom.Attr{Key: item.Key.(string), Value: item.Value})
	}
	for _, event := range n.On {
		args = append(args, vdom.On(event, b.listener(n)))
	}
	if n.SelfClosing {
		args = append(args, vdom.SelfClosing)
	}
	if child := b.children(n.Children); child != nil {
		args = append(args, child)
	}
	return vdom.El(n.Tag, args...)
}

func (b *Builder) listener(n *Node) vdom.Listener {
	return func(ev vdom.Event) {
		if b.OnEvent != nil {
			b.OnEvent(n, ev)
		}
	}
}

// children returns the single child of an element or component. Several
// children, or any keyed child, make a list.
func (b *Builder) children(nodes []*Node) vdom.Node {
	switch {
	case len(nodes) == 0:
		return nil
	case len(nodes) == 1 && nodes[0].Key == "":
		return b.Build(nodes[0])
	default:
		return b.list(nodes)
	}
}

func (b *Builder) list(nodes []*Node) *vdom.ListNode {
	items := make([]vdom.KeyedNode, len(nodes))
	for i, n := range nodes {
		key := n.Key
		if key == "" {
			key = strconv.Itoa(i)
		}
		items[i] = vdom.Item(key, b.Build(n))
	}
	return vdom.Keyed(items...)
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

type sectionProps struct {
	name     string
	children []*Node
	b        *Builder
}

// section is the component behind "component" nodes. It re-renders only
// when its name or subtree differ from the previous step.
type section struct {
	props   sectionProps
	renders int
}

func newSection(props sectionProps, _ vdom.Notifier) *section {
	return &section{props: props}
}

func (s *section) Render() vdom.Node {
	s.renders++
	return s.props.b.children(s.props.children)
}

func (s *section) PropsEqual(p sectionProps) bool {
	return p.name == s.props.name && reflect.DeepEqual(p.children, s.props.children)
}

func (s *section) UpdateProps(p sectionProps) { s.props = p }

func (s *section) Created() {
	s.props.b.logger().Debug("component created", "name", s.props.name)
}

func (s *section) Destroyed() {
	s.props.b.logger().Debug("component destroyed", "name", s.props.name, "renders", s.renders)
}
