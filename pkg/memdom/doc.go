// Package memdom is an in-memory render target for the vdom engine.
//
// A Document implements vdom.Target over a plain node tree, records every
// mutation it applies and renders deterministic HTML snapshots. It backs the
// replay and serve commands and the engine tests.
//
//	doc := memdom.New("body")
//	engine := vdom.New(doc, doc.Root())
//	_ = engine.Render(ctx, vdom.Div(vdom.Class("card"), "hello"))
//	doc.HTML() // <div class="card">hello</div>
//
// Failures can be injected per operation with FailOn to exercise error
// paths in code that drives a target.
package memdom
