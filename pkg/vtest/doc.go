// Package vtest provides testing helpers for code built on the vdom engine.
//
// A Harness pairs an engine with an in-memory document and fails the test
// on any pass error, so component tests read as a sequence of renders and
// assertions.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := vtest.New(t)
//	    h.Render(vdom.Comp(NewCounter, CounterProps{Label: "Clicks"}))
//	    h.ExpectContains("Clicks: 0")
//
//	    h.Click("button")
//	    h.Update()
//	    h.ExpectContains("Clicks: 1")
//	    h.ExpectOps("SetText", "RemoveListener", "AddListener")
//	}
//
// # Pass Assertions
//
// Every Render, Update and Unmount clears the mutation log first, so
// ExpectOps and Stats describe the most recent pass only:
//
//	h.Render(list(b, a))
//	if got := h.Stats().Moved; got != 2 {
//	    t.Errorf("Moved = %d, want 2", got)
//	}
//
// # Failure Injection
//
// FailOn makes the document reject an operation, for testing how callers
// handle a poisoned engine:
//
//	h.FailOn(vdom.OpCreateElement, errBoom)
//	err := h.TryRender(vdom.Div())
package vtest
