package metrics

import "github.com/vango-dev/reconcile/pkg/vdom"

// Instrument wraps t so every call is counted by operation and failures
// are counted separately.
func (c *Collector) Instrument(t vdom.Target) vdom.Target {
	return &instrumented{next: t, c: c}
}

type instrumented struct {
	next vdom.Target
	c    *Collector
}

func (t *instrumented) observe(op vdom.Op, err error) error {
	label := op.String()
	t.c.targetCalls.WithLabelValues(label).Inc()
	if err != nil {
		t.c.targetErrors.WithLabelValues(label).Inc()
	}
	return err
}

func (t *instrumented) CreateElement(tag string) (vdom.Handle, error) {
	h, err := t.next.CreateElement(tag)
	return h, t.observe(vdom.OpCreateElement, err)
}

func (t *instrumented) CreateText(content string) (vdom.Handle, error) {
	h, err := t.next.CreateText(content)
	return h, t.observe(vdom.OpCreateText, err)
}

func (t *instrumented) SetText(node vdom.Handle, content string) error {
	return t.observe(vdom.OpSetText, t.next.SetText(node, content))
}

func (t *instrumented) SetAttribute(node vdom.Handle, key, value string) error {
	return t.observe(vdom.OpSetAttr, t.next.SetAttribute(node, key, value))
}

func (t *instrumented) RemoveAttribute(node vdom.Handle, key string) error {
	return t.observe(vdom.OpRemoveAttr, t.next.RemoveAttribute(node, key))
}

func (t *instrumented) InsertBefore(parent, node, sibling vdom.Handle) error {
	return t.observe(vdom.OpInsertBefore, t.next.InsertBefore(parent, node, sibling))
}

func (t *instrumented) AppendChild(parent, node vdom.Handle) error {
	return t.observe(vdom.OpAppendChild, t.next.AppendChild(parent, node))
}

func (t *instrumented) RemoveChild(parent, node vdom.Handle) error {
	return t.observe(vdom.OpRemoveChild, t.next.RemoveChild(parent, node))
}

func (t *instrumented) AddEventListener(node vdom.Handle, event string, fn vdom.Listener) (vdom.Handle, error) {
	h, err := t.next.AddEventListener(node, event, fn)
	return h, t.observe(vdom.OpAddListener, err)
}

func (t *instrumented) RemoveEventListener(node vdom.Handle, event string, listener vdom.Handle) error {
	return t.observe(vdom.OpRemoveListener, t.next.RemoveEventListener(node, event, listener))
}
