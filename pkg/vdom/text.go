package vdom

// TextNode is an immutable string rendered as a target text node.
type TextNode struct {
	content string
	handle  Handle
}

// Content returns the text payload.
func (t *TextNode) Content() string { return t.content }

// Kind implements Node.
func (t *TextNode) Kind() Kind { return KindText }

// Handle implements Node.
func (t *TextNode) Handle() Handle { return t.handle }

func (t *TextNode) patch(p *pass, parent, next Handle, prev Node) {
	if prev == nil {
		t.handle = p.createText(t.content)
		p.insert(parent, t.handle, next)
		return
	}

	old := prev.(*TextNode)
	invariant(old.handle != nil, "E001", "text %q", old.content)
	if old.content != t.content {
		p.setText(old.handle, t.content)
	}
	t.handle, old.handle = old.handle, nil
}

func (t *TextNode) refresh(*pass, Handle, Handle) {}

func (t *TextNode) remove(p *pass, parent Handle) {
	invariant(t.handle != nil, "E001", "remove text %q", t.content)
	p.removeChild(parent, t.handle)
	t.handle = nil
}

func (t *TextNode) moveToEnd(p *pass, parent Handle) {
	invariant(t.handle != nil, "E001", "move text %q", t.content)
	p.move(parent, t.handle, nil)
}

func (t *TextNode) moveBefore(p *pass, parent, sibling Handle) {
	invariant(t.handle != nil, "E001", "move text %q", t.content)
	p.move(parent, t.handle, sibling)
}
