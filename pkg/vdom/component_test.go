package vdom_test

import (
	"context"
	"strings"
	"testing"

	"github.com/vango-dev/reconcile/pkg/vdom"
)

type counterProps struct {
	Label string
	Log   *[]string
}

// counter is a stateful component: a button showing how often it was
// clicked.
type counter struct {
	props   counterProps
	count   int
	renders int
	notify  vdom.Notifier
}

func newCounter(p counterProps, notify vdom.Notifier) *counter {
	return &counter{props: p, notify: notify}
}

func (c *counter) Render() vdom.Node {
	c.renders++
	return vdom.Button(
		vdom.OnClick(func(vdom.Event) {
			c.count++
			c.notify()
		}),
		vdom.Textf("%s: %d", c.props.Label, c.count),
	)
}

func (c *counter) PropsEqual(p counterProps) bool { return p.Label == c.props.Label }
func (c *counter) UpdateProps(p counterProps)     { c.props = p }

func (c *counter) log(event string) {
	if c.props.Log != nil {
		*c.props.Log = append(*c.props.Log, c.props.Label+":"+event)
	}
}

func (c *counter) Created()   { c.log("created") }
func (c *counter) Mounted()   { c.log("mounted") }
func (c *counter) Updated()   { c.log("updated") }
func (c *counter) Destroyed() { c.log("destroyed") }

// label is a stateless component with no hooks and no props receiver.
type label struct{ text string }

func newLabel(text string, _ vdom.Notifier) *label { return &label{text: text} }

func (l *label) Render() vdom.Node { return vdom.Span(l.text) }

// pair renders two siblings without a wrapper.
type pair struct{ a, b string }

func newPair(p [2]string, _ vdom.Notifier) *pair { return &pair{a: p[0], b: p[1]} }

func (p *pair) Render() vdom.Node { return vdom.Fragment(vdom.Li(p.a), vdom.Li(p.b)) }

func TestComponentLifecycle(t *testing.T) {
	var log []string
	e, doc := newEngine(t)

	node := vdom.Comp(newCounter, counterProps{Label: "a", Log: &log})
	mustRender(t, e, vdom.Div(node))
	if got, want := doc.HTML(), "<div><button>a: 0</button></div>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}

	btn := doc.FindTag("button")
	doc.Dispatch(btn, vdom.Event{Type: "click"})
	if !e.Dirty() {
		t.Fatal("Dirty() = false after notify, want true")
	}
	mustUpdate(t, e)
	if got, want := doc.HTML(), "<div><button>a: 1</button></div>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
	if doc.FindTag("button") != btn {
		t.Error("button recreated on re-render, want reused")
	}

	if err := e.Unmount(context.Background()); err != nil {
		t.Fatalf("Unmount() error = %v", err)
	}

	want := []string{"a:created", "a:mounted", "a:updated", "a:destroyed"}
	if strings.Join(log, ",") != strings.Join(want, ",") {
		t.Errorf("hooks = %v, want %v", log, want)
	}
}

func TestComponentInstanceReusedAcrossRenders(t *testing.T) {
	e, _ := newEngine(t)

	first := vdom.Comp(newCounter, counterProps{Label: "a"})
	mustRender(t, e, vdom.Div(first))
	inst := first.Instance().(*counter)

	second := vdom.Comp(newCounter, counterProps{Label: "a"})
	mustRender(t, e, vdom.Div(second))

	if second.Instance() != inst {
		t.Error("instance replaced, want reused")
	}
	if first.Instance() != nil {
		t.Error("previous node still holds the instance")
	}
	if inst.renders != 1 {
		t.Errorf("renders = %d, want 1 (equal props do not re-render)", inst.renders)
	}
}

func TestComponentPropsChangeRerenders(t *testing.T) {
	e, doc := newEngine(t)
	mustRender(t, e, vdom.Div(vdom.Comp(newCounter, counterProps{Label: "a"})))

	node := vdom.Comp(newCounter, counterProps{Label: "b"})
	mustRender(t, e, vdom.Div(node))
	if got, want := doc.HTML(), "<div><button>b: 0</button></div>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
	if r := node.Instance().(*counter).renders; r != 2 {
		t.Errorf("renders = %d, want 2", r)
	}
	if e.Dirty() {
		t.Error("Dirty() = true after render, want false")
	}
}

func TestComponentWithoutPropsReceiverKeepsProps(t *testing.T) {
	e, doc := newEngine(t)
	mustRender(t, e, vdom.Comp(newLabel, "one"))
	mustRender(t, e, vdom.Comp(newLabel, "two"))

	// label does not accept props updates, so the first props stick.
	if got, want := doc.HTML(), "<span>one</span>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
}

func TestComponentTypeChangeReplaces(t *testing.T) {
	var log []string
	e, doc := newEngine(t)
	mustRender(t, e, vdom.Div(vdom.Comp(newCounter, counterProps{Label: "a", Log: &log})))
	mustRender(t, e, vdom.Div(vdom.Comp(newLabel, "x")))

	if got, want := doc.HTML(), "<div><span>x</span></div>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
	if log[len(log)-1] != "a:destroyed" {
		t.Errorf("last hook = %q, want a:destroyed", log[len(log)-1])
	}
	if e.ComponentCount() != 1 {
		t.Errorf("ComponentCount() = %d, want 1", e.ComponentCount())
	}
}

func TestNotifyAfterDestroyIsNoop(t *testing.T) {
	requests := 0
	e, _ := newEngine(t, vdom.WithScheduler(vdom.SchedulerFunc(func() { requests++ })))

	node := vdom.Comp(newCounter, counterProps{Label: "a"})
	mustRender(t, e, vdom.Div(node))
	notify := node.Instance().(*counter).notify

	mustRender(t, e, vdom.Div())
	notify()
	if requests != 0 {
		t.Errorf("RequestRender calls = %d, want 0", requests)
	}
	if e.Dirty() {
		t.Error("Dirty() = true, want false")
	}
}

func TestUpdateOnlyRerendersDirtyComponents(t *testing.T) {
	e, doc := newEngine(t)
	a := vdom.Comp(newCounter, counterProps{Label: "a"})
	b := vdom.Comp(newCounter, counterProps{Label: "b"})
	mustRender(t, e, vdom.Div(a, b))

	ca, cb := a.Instance().(*counter), b.Instance().(*counter)
	ca.count = 5
	ca.notify()
	doc.ResetLog()

	mustUpdate(t, e)
	if ca.renders != 2 || cb.renders != 1 {
		t.Errorf("renders = (%d, %d), want (2, 1)", ca.renders, cb.renders)
	}
	if got, want := doc.HTML(), "<div><button>a: 5</button><button>b: 0</button></div>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
	// Text update plus the re-attached click listener.
	if got := ops(doc); len(got) != 3 {
		t.Errorf("mutations = %v, want [SetText RemoveListener AddListener]", got)
	}
}

// parent renders a child counter whose label comes from parent state.
type parent struct {
	label   string
	log     *[]string
	renders int
	updates int
	notify  vdom.Notifier
}

func newParent(log *[]string, notify vdom.Notifier) *parent {
	return &parent{label: "x", log: log, notify: notify}
}

func (p *parent) Render() vdom.Node {
	p.renders++
	return vdom.Section(vdom.Comp(newCounter, counterProps{Label: p.label, Log: p.log}))
}

func (p *parent) Updated() { p.updates++ }

func TestNestedComponentUpdates(t *testing.T) {
	var log []string
	e, doc := newEngine(t)
	root := vdom.Comp(newParent, &log)
	mustRender(t, e, root)
	par := root.Instance().(*parent)

	// Dirty child under a clean parent is reached without re-rendering the
	// parent.
	log = nil
	child := doc.FindTag("button")
	doc.Dispatch(child, vdom.Event{Type: "click"})
	mustUpdate(t, e)
	if got, want := doc.HTML(), "<section><button>x: 1</button></section>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
	if par.renders != 1 || par.updates != 0 {
		t.Errorf("parent renders, updates = %d, %d, want 1, 0", par.renders, par.updates)
	}
	if strings.Join(log, ",") != "x:updated" {
		t.Errorf("child hooks = %v, want [x:updated]", log)
	}

	// Parent re-render pushes new props into the existing child.
	log = nil
	par.label = "y"
	par.notify()
	mustUpdate(t, e)
	if got, want := doc.HTML(), "<section><button>y: 1</button></section>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
	if par.renders != 2 || par.updates != 1 {
		t.Errorf("parent renders, updates = %d, %d, want 2, 1", par.renders, par.updates)
	}
	if strings.Join(log, ",") != "y:updated" {
		t.Errorf("child hooks = %v, want [y:updated]", log)
	}
	if e.ComponentCount() != 2 {
		t.Errorf("ComponentCount() = %d, want 2", e.ComponentCount())
	}
}

func TestComponentsMoveWithKeyedList(t *testing.T) {
	e, doc := newEngine(t)
	build := func(order ...string) vdom.Node {
		items := make([]vdom.KeyedNode, 0, len(order))
		for _, k := range order {
			if k == "p" {
				items = append(items, vdom.Item(k, vdom.Comp(newPair, [2]string{"p1", "p2"})))
				continue
			}
			items = append(items, vdom.Item(k, vdom.Li(vdom.Comp(newCounter, counterProps{Label: k}))))
		}
		return vdom.Ul(vdom.Keyed(items...))
	}

	mustRender(t, e, build("a", "p", "b"))
	btnA := doc.FindTag("button")
	doc.Dispatch(btnA, vdom.Event{Type: "click"})
	mustUpdate(t, e)

	mustRender(t, e, build("b", "a", "p"))
	want := "<ul><li><button>b: 0</button></li><li><button>a: 1</button></li><li>p1</li><li>p2</li></ul>"
	if got := doc.HTML(); got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}

	mustRender(t, e, build("p", "b"))
	want = "<ul><li>p1</li><li>p2</li><li><button>b: 0</button></li></ul>"
	if got := doc.HTML(); got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
	if e.ComponentCount() != 2 {
		t.Errorf("ComponentCount() = %d, want 2", e.ComponentCount())
	}
}

func TestEventHandlerReplacedOnRender(t *testing.T) {
	e, doc := newEngine(t)
	var got []string
	build := func(name string) vdom.Node {
		return vdom.Button(vdom.OnClick(func(vdom.Event) { got = append(got, name) }), "go")
	}

	mustRender(t, e, build("first"))
	mustRender(t, e, build("second"))
	btn := doc.FindTag("button")
	doc.Dispatch(btn, vdom.Event{Type: "click"})

	if len(got) != 1 || got[0] != "second" {
		t.Errorf("handlers run = %v, want [second]", got)
	}
	if btn.ListenerCount("click") != 1 {
		t.Errorf("ListenerCount(click) = %d, want 1", btn.ListenerCount("click"))
	}

	mustRender(t, e, vdom.Button("go"))
	if btn.ListenerCount("") != 0 {
		t.Errorf("ListenerCount() = %d, want 0", btn.ListenerCount(""))
	}
}
