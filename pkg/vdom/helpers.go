package vdom

import "fmt"

// Text creates a text node.
func Text(content string) *TextNode {
	return &TextNode{content: content}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *TextNode {
	return Text(fmt.Sprintf(format, args...))
}

// Fragment groups children without a wrapper element. Arguments can be nil,
// Node, []Node or string; children are keyed by position.
func Fragment(children ...any) *ListNode {
	nodes := make([]Node, 0, len(children))
	for _, child := range children {
		switch v := child.(type) {
		case nil:
			continue
		case Node:
			if !isNilNode(v) {
				nodes = append(nodes, v)
			}
		case []Node:
			for _, c := range v {
				if !isNilNode(c) {
					nodes = append(nodes, c)
				}
			}
		case string:
			nodes = append(nodes, Text(v))
		}
	}
	return List(nodes...)
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node Node) Node {
	if condition {
		return node
	}
	return nil
}

// IfElse returns the first node if condition is true, the second otherwise.
func IfElse(condition bool, ifTrue, ifFalse Node) Node {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// When is like If but with lazy evaluation.
// The function is only called if condition is true.
func When(condition bool, fn func() Node) Node {
	if condition {
		return fn()
	}
	return nil
}

// Unless is the inverse of If.
func Unless(condition bool, node Node) Node {
	if !condition {
		return node
	}
	return nil
}

// Range maps a slice to a keyed list. key must return a distinct key per
// item; fn may return nil to skip an item.
func Range[T any](items []T, key func(item T) string, fn func(item T, index int) Node) *ListNode {
	result := make([]KeyedNode, 0, len(items))
	for i, item := range items {
		if node := fn(item, i); !isNilNode(node) {
			result = append(result, Item(key(item), node))
		}
	}
	return Keyed(result...)
}

// Repeat creates a positional list of n nodes using the given function.
func Repeat(n int, fn func(i int) Node) *ListNode {
	result := make([]Node, 0, max(n, 0))
	for i := 0; i < n; i++ {
		if node := fn(i); !isNilNode(node) {
			result = append(result, node)
		}
	}
	return List(result...)
}
