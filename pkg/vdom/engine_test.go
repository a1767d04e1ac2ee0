package vdom_test

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/memdom"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

func newEngine(t *testing.T, opts ...vdom.Option) (*vdom.Engine, *memdom.Document) {
	t.Helper()
	doc := memdom.New("body")
	return vdom.New(doc, doc.Root(), opts...), doc
}

func mustRender(t *testing.T, e *vdom.Engine, n vdom.Node) {
	t.Helper()
	if err := e.Render(context.Background(), n); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
}

func mustUpdate(t *testing.T, e *vdom.Engine) {
	t.Helper()
	if err := e.Update(context.Background()); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
}

// ops returns the operation names logged since the last call.
func ops(doc *memdom.Document) []string {
	var out []string
	for _, m := range doc.ResetLog() {
		out = append(out, m.Op)
	}
	return out
}

func countOps(doc *memdom.Document, op string) int {
	n := 0
	for _, m := range doc.Mutations() {
		if m.Op == op {
			n++
		}
	}
	return n
}

func TestRenderCreatesTree(t *testing.T) {
	e, doc := newEngine(t)
	mustRender(t, e, vdom.Div(vdom.Class("card"), vdom.ID("main"),
		vdom.H1("Title"),
		vdom.P(vdom.Text("Body")),
		vdom.Input(vdom.Type("text"), vdom.Disabled(true)),
	))

	want := `<div class="card" id="main"><h1>Title</h1><p>Body</p><input type="text" disabled></div>`
	if got := doc.HTML(); got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
}

func TestRenderIdenticalTreeIsNoop(t *testing.T) {
	e, doc := newEngine(t)
	build := func() vdom.Node {
		return vdom.Div(vdom.Class("a"), vdom.Ul(vdom.Keyed(
			vdom.Item("1", vdom.Li("one")),
			vdom.Item("2", vdom.Li("two")),
		)))
	}
	mustRender(t, e, build())
	ops(doc)

	mustRender(t, e, build())
	if got := ops(doc); len(got) != 0 {
		t.Errorf("mutations = %v, want none", got)
	}
}

func TestRenderTextUpdate(t *testing.T) {
	e, doc := newEngine(t)
	mustRender(t, e, vdom.P("before"))
	p := doc.FindTag("p")
	ops(doc)

	mustRender(t, e, vdom.P("after"))
	if got := ops(doc); len(got) != 1 || got[0] != "SetText" {
		t.Errorf("mutations = %v, want [SetText]", got)
	}
	if doc.FindTag("p") != p {
		t.Error("element was recreated, want reused")
	}
	if got, want := doc.HTML(), "<p>after</p>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
}

func TestRenderAttributePatch(t *testing.T) {
	tests := []struct {
		name string
		prev *vdom.ElementNode
		next *vdom.ElementNode
		want string
		muts []string
	}{
		{
			name: "change value",
			prev: vdom.Div(vdom.ID("a")),
			next: vdom.Div(vdom.ID("b")),
			want: `<div id="b"></div>`,
			muts: []string{"SetAttr"},
		},
		{
			name: "add and remove",
			prev: vdom.Div(vdom.ID("a"), vdom.TitleAttr("t")),
			next: vdom.Div(vdom.ID("a"), vdom.Role("button")),
			want: `<div id="a" role="button"></div>`,
			muts: []string{"SetAttr", "RemoveAttr"},
		},
		{
			name: "remove class",
			prev: vdom.Div(vdom.Class("x")),
			next: vdom.Div(),
			want: `<div></div>`,
			muts: []string{"RemoveAttr"},
		},
		{
			name: "boolean false removes",
			prev: vdom.Button(vdom.Disabled(true)),
			next: vdom.Button(vdom.Disabled(false)),
			want: `<button></button>`,
			muts: []string{"RemoveAttr"},
		},
		{
			name: "class change",
			prev: vdom.Div(vdom.Class("x")),
			next: vdom.Div(vdom.Class("x", "y")),
			want: `<div class="x y"></div>`,
			muts: []string{"SetAttr"},
		},
		{
			name: "class moved into attrs",
			prev: vdom.NewElement("div", "x", nil, nil, false),
			next: vdom.NewElement("div", "", vdom.NewAttributes(vdom.Attr{Key: "class", Value: "x y"}), nil, false),
			want: `<div class="x y"></div>`,
			muts: []string{"SetAttr"},
		},
		{
			name: "class attr unchanged",
			prev: vdom.NewElement("div", "x", nil, nil, false),
			next: vdom.NewElement("div", "", vdom.NewAttributes(vdom.Attr{Key: "class", Value: "x"}), nil, false),
			want: `<div class="x"></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, doc := newEngine(t)
			mustRender(t, e, tt.prev)
			ops(doc)
			mustRender(t, e, tt.next)

			got := ops(doc)
			if len(got) != len(tt.muts) {
				t.Fatalf("mutations = %v, want %v", got, tt.muts)
			}
			for i := range got {
				if got[i] != tt.muts[i] {
					t.Errorf("mutations[%d] = %s, want %s", i, got[i], tt.muts[i])
				}
			}
			if html := doc.HTML(); html != tt.want {
				t.Errorf("HTML() = %q, want %q", html, tt.want)
			}
		})
	}
}

func TestRenderReplacesOnTagOrKindChange(t *testing.T) {
	tests := []struct {
		name string
		prev vdom.Node
		next vdom.Node
		want string
	}{
		{"tag change", vdom.Div(vdom.P("x")), vdom.Div(vdom.Span("x")), "<div><span>x</span></div>"},
		{"text to element", vdom.Div("x"), vdom.Div(vdom.Em("x")), "<div><em>x</em></div>"},
		{"element to list", vdom.Div(vdom.P("x")), vdom.Div(vdom.P("a"), vdom.P("b")), "<div><p>a</p><p>b</p></div>"},
		{"child removed", vdom.Div(vdom.P("x")), vdom.Div(), "<div></div>"},
		{"child added", vdom.Div(), vdom.Div(vdom.P("x")), "<div><p>x</p></div>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, doc := newEngine(t)
			mustRender(t, e, tt.prev)
			mustRender(t, e, tt.next)
			if got := doc.HTML(); got != tt.want {
				t.Errorf("HTML() = %q, want %q", got, tt.want)
			}
			if got := doc.Count(); got != countNodes(tt.next) {
				t.Errorf("Count() = %d, want %d (no residual nodes)", got, countNodes(tt.next))
			}
		})
	}
}

// countNodes counts the target nodes a tree of elements and text produces.
func countNodes(n vdom.Node) int {
	switch v := n.(type) {
	case *vdom.TextNode:
		return 1
	case *vdom.ElementNode:
		if v.Child() == nil {
			return 1
		}
		return 1 + countNodes(v.Child())
	case *vdom.ListNode:
		total := 0
		v.Each(func(_ string, c vdom.Node) { total += countNodes(c) })
		return total
	}
	return 0
}

func TestRenderSameNodeRefreshes(t *testing.T) {
	e, doc := newEngine(t)
	tree := vdom.Div(vdom.P("x"))
	mustRender(t, e, tree)
	ops(doc)

	mustRender(t, e, tree)
	if got := ops(doc); len(got) != 0 {
		t.Errorf("mutations = %v, want none", got)
	}
	if e.Current() != vdom.Node(tree) {
		t.Error("Current() is not the rendered tree")
	}
}

func TestUnmount(t *testing.T) {
	e, doc := newEngine(t)
	mustRender(t, e, vdom.Div(
		vdom.Button(vdom.OnClick(func(vdom.Event) {}), "go"),
		vdom.Comp(newCounter, counterProps{Label: "c"}),
	))
	if e.ComponentCount() != 1 {
		t.Fatalf("ComponentCount() = %d, want 1", e.ComponentCount())
	}

	if err := e.Unmount(context.Background()); err != nil {
		t.Fatalf("Unmount() error = %v", err)
	}
	if doc.Count() != 0 {
		t.Errorf("Count() = %d, want 0", doc.Count())
	}
	if doc.ListenerCount() != 0 {
		t.Errorf("ListenerCount() = %d, want 0", doc.ListenerCount())
	}
	if e.ComponentCount() != 0 {
		t.Errorf("ComponentCount() = %d, want 0", e.ComponentCount())
	}
	if e.Current() != nil {
		t.Errorf("Current() = %v, want nil", e.Current())
	}

	// Rendering after unmount starts from scratch.
	mustRender(t, e, vdom.P("again"))
	if got, want := doc.HTML(), "<p>again</p>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
}

func TestTargetErrorAbortsPass(t *testing.T) {
	e, doc := newEngine(t)
	mustRender(t, e, vdom.Div("ok"))

	boom := stderrors.New("boom")
	doc.FailOn(vdom.OpCreateElement, boom)
	err := e.Render(context.Background(), vdom.Div(vdom.P("x")))
	if err == nil {
		t.Fatal("Render() error = nil, want error")
	}
	if got := errors.Code(err); got != "E101" {
		t.Errorf("Code(err) = %q, want E101", got)
	}
	var te *vdom.TargetError
	if !stderrors.As(err, &te) {
		t.Fatalf("err = %v, want *TargetError in chain", err)
	}
	if te.Op != vdom.OpCreateElement {
		t.Errorf("TargetError.Op = %v, want %v", te.Op, vdom.OpCreateElement)
	}
	if !stderrors.Is(err, boom) {
		t.Errorf("errors.Is(err, boom) = false, want true")
	}

	// The engine stays failed even after the target recovers.
	doc.FailOn(vdom.OpCreateElement, nil)
	if err2 := e.Render(context.Background(), vdom.Div("ok")); err2 != err {
		t.Errorf("Render() after failure = %v, want %v", err2, err)
	}
	if e.Err() != err {
		t.Errorf("Err() = %v, want %v", e.Err(), err)
	}
}

type reentrant struct {
	engine *vdom.Engine
}

func (r *reentrant) Render() vdom.Node {
	_ = r.engine.Update(context.Background())
	return vdom.Text("unreachable")
}

func TestReentrantPassPanics(t *testing.T) {
	e, _ := newEngine(t)
	defer func() {
		r := recover()
		ie, ok := r.(*vdom.InvariantError)
		if !ok {
			t.Fatalf("recover() = %v, want *InvariantError", r)
		}
		if ie.Code != "E004" || errors.Code(ie) != "E004" {
			t.Errorf("Code = %q, want E004", ie.Code)
		}
	}()

	_ = e.Render(context.Background(), vdom.Comp(func(_ struct{}, _ vdom.Notifier) *reentrant {
		return &reentrant{engine: e}
	}, struct{}{}))
	t.Fatal("Render() returned, want panic")
}

type recordingObserver struct {
	kinds []string
	stats []vdom.PassStats
	errs  []error
}

func (o *recordingObserver) PassCompleted(kind string, _ time.Duration, stats vdom.PassStats, err error) {
	o.kinds = append(o.kinds, kind)
	o.stats = append(o.stats, stats)
	o.errs = append(o.errs, err)
}

func TestObserverReceivesStats(t *testing.T) {
	obs := &recordingObserver{}
	e, _ := newEngine(t, vdom.WithObserver(obs))

	mustRender(t, e, vdom.Ul(vdom.Li("a"), vdom.Li("b")))
	mustUpdate(t, e)
	if err := e.Unmount(context.Background()); err != nil {
		t.Fatalf("Unmount() error = %v", err)
	}

	wantKinds := []string{vdom.PassRender, vdom.PassUpdate, vdom.PassUnmount}
	if len(obs.kinds) != len(wantKinds) {
		t.Fatalf("kinds = %v, want %v", obs.kinds, wantKinds)
	}
	for i, k := range wantKinds {
		if obs.kinds[i] != k {
			t.Errorf("kinds[%d] = %s, want %s", i, obs.kinds[i], k)
		}
	}

	render := obs.stats[0]
	if render.Created != 5 {
		t.Errorf("render Created = %d, want 5", render.Created)
	}
	if render.Inserted != 5 {
		t.Errorf("render Inserted = %d, want 5", render.Inserted)
	}
	if obs.stats[1].Mutations() != 0 {
		t.Errorf("update Mutations() = %d, want 0", obs.stats[1].Mutations())
	}
	if obs.stats[2].Removed != 5 {
		t.Errorf("unmount Removed = %d, want 5", obs.stats[2].Removed)
	}
}

func TestSchedulerCoalescesNotifications(t *testing.T) {
	var requests atomic.Int32
	e, _ := newEngine(t, vdom.WithScheduler(vdom.SchedulerFunc(func() { requests.Add(1) })))

	node := vdom.Comp(newCounter, counterProps{Label: "n"})
	mustRender(t, e, node)
	c := node.Instance().(*counter)

	c.notify()
	c.notify()
	c.notify()
	if got := requests.Load(); got != 1 {
		t.Errorf("RequestRender calls = %d, want 1", got)
	}
	if !e.Dirty() {
		t.Error("Dirty() = false, want true")
	}

	mustUpdate(t, e)
	if e.Dirty() {
		t.Error("Dirty() after Update = true, want false")
	}
	c.notify()
	if got := requests.Load(); got != 2 {
		t.Errorf("RequestRender calls = %d, want 2", got)
	}
}
