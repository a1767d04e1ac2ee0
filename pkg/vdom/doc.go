// Package vdom reconciles a declarative node tree against a mutable render
// target.
//
// Each render produces a fresh tree of plain values. The Engine patches the
// new tree against the previously committed one and issues the minimal set
// of target mutations; the target nodes themselves move from the old tree to
// the new one, so unchanged subtrees are never recreated.
//
// # Core Types
//
// Node is a closed union of *TextNode, *ElementNode, *ListNode and
// *ComponentNode. Lists hold keyed children rendered as siblings with no
// wrapper; keys decide which previous child a new child reuses. Components
// are instantiated lazily, keep state across renders and are re-rendered
// only after they notify the engine.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1("Title"),
//	    Keyed(Item("a", Li("A")), Item("b", Li("B"))),
//	    OnClick(handler),
//	)
//
// # Passes
//
// Render patches a new root tree; Update re-renders dirty components in the
// committed tree; Unmount removes everything. Passes are synchronous and
// never overlap. A target failure aborts the pass and leaves the engine
// unusable, since the target no longer matches the committed tree.
package vdom
