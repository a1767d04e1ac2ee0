package vtest

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/reconcile/pkg/memdom"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// Harness drives an engine bound to a fresh memdom document.
type Harness struct {
	t      testing.TB
	doc    *memdom.Document
	engine *vdom.Engine
	stats  vdom.PassStats
}

// New creates a harness rendering into a <body> root. opts are passed to
// the engine after the harness's own observer.
//
// Example:
//
//	h := vtest.New(t, vdom.WithLogger(logger))
func New(t testing.TB, opts ...vdom.Option) *Harness {
	t.Helper()
	h := &Harness{t: t, doc: memdom.New("body")}
	opts = append([]vdom.Option{vdom.WithObserver(h)}, opts...)
	h.engine = vdom.New(h.doc, h.doc.Root(), opts...)
	return h
}

// PassCompleted records the stats of the latest pass.
func (h *Harness) PassCompleted(_ string, _ time.Duration, stats vdom.PassStats, _ error) {
	h.stats = stats
}

// Doc returns the document the harness renders into.
func (h *Harness) Doc() *memdom.Document { return h.doc }

// Engine returns the engine under test.
func (h *Harness) Engine() *vdom.Engine { return h.engine }

// Stats returns the counters of the most recent pass.
func (h *Harness) Stats() vdom.PassStats { return h.stats }

// HTML returns the compact HTML of the root's children.
func (h *Harness) HTML() string { return h.doc.HTML() }

// Render runs a render pass and fails the test on error.
func (h *Harness) Render(node vdom.Node) *Harness {
	h.t.Helper()
	if err := h.TryRender(node); err != nil {
		h.t.Fatalf("Render() error = %v", err)
	}
	return h
}

// TryRender runs a render pass and returns its error.
func (h *Harness) TryRender(node vdom.Node) error {
	h.doc.ResetLog()
	return h.engine.Render(context.Background(), node)
}

// Update re-renders dirty components and fails the test on error.
func (h *Harness) Update() *Harness {
	h.t.Helper()
	h.doc.ResetLog()
	if err := h.engine.Update(context.Background()); err != nil {
		h.t.Fatalf("Update() error = %v", err)
	}
	return h
}

// Unmount tears the tree down and fails the test if anything is left in
// the document.
func (h *Harness) Unmount() {
	h.t.Helper()
	h.doc.ResetLog()
	if err := h.engine.Unmount(context.Background()); err != nil {
		h.t.Fatalf("Unmount() error = %v", err)
	}
	if n := h.doc.Count(); n != 0 {
		h.t.Errorf("Count() = %d after unmount, want 0", n)
	}
	if n := h.doc.ListenerCount(); n != 0 {
		h.t.Errorf("ListenerCount() = %d after unmount, want 0", n)
	}
}

// FailOn makes the document reject op with err. A nil err clears it.
func (h *Harness) FailOn(op vdom.Op, err error) { h.doc.FailOn(op, err) }

// Find returns the first element with the given tag, failing the test when
// there is none.
func (h *Harness) Find(tag string) *memdom.Node {
	h.t.Helper()
	n := h.doc.FindTag(tag)
	if n == nil {
		h.t.Fatalf("no <%s> element in:\n%s", tag, truncate(h.HTML(), 500))
	}
	return n
}

// Fire dispatches an event of the given type to the first element with
// tag and fails the test if no listener ran.
func (h *Harness) Fire(tag, event, value string) {
	h.t.Helper()
	n := h.Find(tag)
	if n == nil {
		return
	}
	if h.doc.Dispatch(n, vdom.Event{Type: event, Value: value}) == 0 {
		h.t.Errorf("no %s listener on <%s>", event, tag)
	}
}

// Click fires a click event on the first element with tag.
func (h *Harness) Click(tag string) {
	h.t.Helper()
	h.Fire(tag, "click", "")
}

// Ops returns the operation names applied since the last pass started.
func (h *Harness) Ops() []string {
	muts := h.doc.Mutations()
	ops := make([]string, len(muts))
	for i, m := range muts {
		ops[i] = m.Op
	}
	return ops
}

// ExpectHTML asserts that the document renders exactly to want.
func (h *Harness) ExpectHTML(want string) {
	h.t.Helper()
	if got := h.HTML(); got != want {
		h.t.Errorf("HTML() = %q, want %q", got, want)
	}
}

// ExpectContains asserts that the rendered output contains expected.
//
// Example:
//
//	h.ExpectContains("Welcome")
func (h *Harness) ExpectContains(expected string) {
	h.t.Helper()
	html := h.HTML()
	if !strings.Contains(html, expected) {
		h.t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that the rendered output does not contain
// unexpected.
func (h *Harness) ExpectNotContains(unexpected string) {
	h.t.Helper()
	html := h.HTML()
	if strings.Contains(html, unexpected) {
		h.t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that the document contains an element with tag.
func (h *Harness) ExpectElement(tag string) {
	h.t.Helper()
	if h.doc.FindTag(tag) == nil {
		h.t.Errorf("expected rendered output to contain <%s> element, got:\n%s", tag, truncate(h.HTML(), 500))
	}
}

// ExpectAttribute asserts that some element carries attr with value.
//
// Example:
//
//	h.ExpectAttribute("class", "btn-primary")
func (h *Harness) ExpectAttribute(attr, value string) {
	h.t.Helper()
	found := h.doc.Find(func(n *memdom.Node) bool {
		v, ok := n.Attr(attr)
		return ok && v == value
	})
	if found == nil {
		h.t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(h.HTML(), 500))
	}
}

// ExpectOps asserts that the last pass applied exactly the given
// operations, in order.
//
// Example:
//
//	h.ExpectOps("SetText")
func (h *Harness) ExpectOps(want ...string) {
	h.t.Helper()
	if got := h.Ops(); !slices.Equal(got, want) {
		h.t.Errorf("ops = %v, want %v", got, want)
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
