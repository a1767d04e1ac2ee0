package vdom_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/vango-dev/reconcile/pkg/memdom"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// keyedItems builds <li>key</li> children keyed by each character of keys.
func keyedItems(keys string) *vdom.ListNode {
	items := make([]vdom.KeyedNode, 0, len(keys))
	for _, k := range keys {
		items = append(items, vdom.Item(string(k), vdom.Li(string(k))))
	}
	return vdom.Keyed(items...)
}

func listHTML(keys string) string {
	var b strings.Builder
	b.WriteString("<ul>")
	for _, k := range keys {
		fmt.Fprintf(&b, "<li>%c</li>", k)
	}
	b.WriteString("</ul>")
	return b.String()
}

// liByText maps each <li> text to its target node.
func liByText(doc *memdom.Document) map[string]*memdom.Node {
	out := make(map[string]*memdom.Node)
	ul := doc.FindTag("ul")
	for _, li := range ul.Children() {
		out[li.Children()[0].Text()] = li
	}
	return out
}

func TestKeyedListReconcile(t *testing.T) {
	tests := []struct {
		name string
		prev string
		next string
	}{
		{"unchanged", "abc", "abc"},
		{"append", "abc", "abcd"},
		{"prepend", "abc", "xabc"},
		{"insert middle", "abc", "abxc"},
		{"remove first", "abc", "bc"},
		{"remove middle", "abc", "ac"},
		{"remove all", "abc", ""},
		{"from empty", "", "abc"},
		{"reverse", "abcd", "dcba"},
		{"rotate left", "abcd", "bcda"},
		{"rotate right", "abcd", "dabc"},
		{"swap ends", "abcde", "ebcda"},
		{"swap neighbours", "abc", "acb"},
		{"move and insert", "abc", "cbya"},
		{"move insert remove", "abcde", "xeczb"},
		{"replace all", "abc", "xyz"},
		{"interleave", "ace", "abcde"},
		{"shuffle with removals", "abcdefgh", "hfdbxg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, doc := newEngine(t)
			mustRender(t, e, vdom.Ul(keyedItems(tt.prev)))
			before := liByText(doc)
			doc.ResetLog()

			mustRender(t, e, vdom.Ul(keyedItems(tt.next)))
			if got, want := doc.HTML(), listHTML(tt.next); got != want {
				t.Fatalf("HTML() = %q, want %q", got, want)
			}

			after := liByText(doc)
			created := 0
			for key, n := range after {
				if old, ok := before[key]; ok && old != n {
					t.Errorf("key %q was recreated, want reused", key)
				}
				if _, ok := before[key]; !ok {
					created++
				}
			}
			// Each new item creates an <li> and its text.
			if got := countOps(doc, "CreateElement"); got != created {
				t.Errorf("CreateElement count = %d, want %d", got, created)
			}
			if got, want := doc.Count(), 1+2*len(tt.next); got != want {
				t.Errorf("Count() = %d, want %d", got, want)
			}
		})
	}
}

func TestKeyedStaleItemReleasesListeners(t *testing.T) {
	e, doc := newEngine(t)
	build := func(keys ...string) vdom.Node {
		items := make([]vdom.KeyedNode, 0, len(keys))
		for _, k := range keys {
			items = append(items, vdom.Item(k, vdom.Li(vdom.OnClick(func(vdom.Event) {}), k)))
		}
		return vdom.Ul(vdom.Keyed(items...))
	}

	mustRender(t, e, build("a", "b"))
	b := liByText(doc)["b"]
	doc.ResetLog()

	mustRender(t, e, build("a"))
	removedListeners, removedNodes := 0, 0
	for _, m := range doc.Mutations() {
		if m.Node != b.ID() {
			continue
		}
		switch m.Op {
		case "RemoveListener":
			removedListeners++
		case "RemoveChild":
			removedNodes++
		}
	}
	if removedListeners != 1 || removedNodes != 1 {
		t.Errorf("stale item removals = %d listeners, %d nodes, want 1, 1", removedListeners, removedNodes)
	}
	if b.Parent() != nil || b.ListenerCount("") != 0 {
		t.Errorf("stale item still attached: parent %v, %d listeners", b.Parent(), b.ListenerCount(""))
	}
	if n := doc.ListenerCount(); n != 1 {
		t.Errorf("ListenerCount() = %d, want 1", n)
	}
}

func TestKeyedListStableItemNotMoved(t *testing.T) {
	e, doc := newEngine(t)
	mustRender(t, e, vdom.Ul(keyedItems("abc")))
	a := liByText(doc)["a"]
	doc.ResetLog()

	mustRender(t, e, vdom.Ul(keyedItems("acb")))
	for _, m := range doc.Mutations() {
		if m.Node == a.ID() {
			t.Errorf("mutation %v touches stable item a", m)
		}
	}
}

func TestKeyedListNoMovesWithoutReorder(t *testing.T) {
	e, doc := newEngine(t)
	mustRender(t, e, vdom.Ul(keyedItems("abcd")))
	doc.ResetLog()

	mustRender(t, e, vdom.Ul(keyedItems("axbd")))
	// x inserted, c removed, nothing else touched.
	if got := countOps(doc, "InsertBefore") + countOps(doc, "AppendChild"); got != 2 {
		t.Errorf("insertions = %d, want 2 (li and its text)", got)
	}
	if got := countOps(doc, "RemoveChild"); got != 2 {
		t.Errorf("removals = %d, want 2 (text and li)", got)
	}
}

func TestListBetweenSiblings(t *testing.T) {
	e, doc := newEngine(t)
	build := func(keys string) vdom.Node {
		return vdom.Div(
			vdom.H1("head"),
			keyedItems(keys),
			vdom.P("foot"),
		)
	}
	mustRender(t, e, build("ab"))
	mustRender(t, e, build("cba"))

	want := "<div><h1>head</h1><li>c</li><li>b</li><li>a</li><p>foot</p></div>"
	if got := doc.HTML(); got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}

	mustRender(t, e, build(""))
	if got, want := doc.HTML(), "<div><h1>head</h1><p>foot</p></div>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}

	mustRender(t, e, build("xy"))
	want = "<div><h1>head</h1><li>x</li><li>y</li><p>foot</p></div>"
	if got := doc.HTML(); got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
}

func TestNestedListsReorder(t *testing.T) {
	group := func(name, keys string) vdom.KeyedNode {
		return vdom.Item(name, keyedItems(keys))
	}
	e, doc := newEngine(t)

	mustRender(t, e, vdom.Ul(vdom.Keyed(group("g1", "ab"), group("g2", "cd"), group("g3", "ef"))))
	mustRender(t, e, vdom.Ul(vdom.Keyed(group("g3", "fe"), group("g1", "axb"), group("g2", "d"))))

	if got, want := doc.HTML(), listHTML("feaxbd"); got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}

	mustRender(t, e, vdom.Ul(vdom.Keyed(group("g2", "dc"), group("g4", "z"), group("g3", ""))))
	if got, want := doc.HTML(), listHTML("dcz"); got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
	if got, want := doc.Count(), 1+2*3; got != want {
		t.Errorf("Count() = %d, want %d", got, want)
	}
}

func TestListChildKindChange(t *testing.T) {
	e, doc := newEngine(t)
	mustRender(t, e, vdom.Ul(vdom.Keyed(
		vdom.Item("a", vdom.Li("a")),
		vdom.Item("b", vdom.Text("b")),
		vdom.Item("c", vdom.Li("c")),
	)))
	mustRender(t, e, vdom.Ul(vdom.Keyed(
		vdom.Item("c", vdom.Li("c")),
		vdom.Item("b", vdom.Li("b")),
		vdom.Item("a", vdom.Text("a")),
	)))

	if got, want := doc.HTML(), "<ul><li>c</li><li>b</li>a</ul>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
}

func TestPositionalListTruncate(t *testing.T) {
	e, doc := newEngine(t)
	mustRender(t, e, vdom.Ul(vdom.Li("1"), vdom.Li("2"), vdom.Li("3")))
	mustRender(t, e, vdom.Ul(vdom.Li("1"), vdom.Li("2")))

	if got, want := doc.HTML(), "<ul><li>1</li><li>2</li></ul>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
}
