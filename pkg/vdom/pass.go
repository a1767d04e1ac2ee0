package vdom

// PassStats counts the work done by one render pass.
type PassStats struct {
	Created          int // Text and element nodes created
	Inserted         int // Fresh nodes attached to a parent
	Removed          int // Nodes detached from a parent
	Moved            int // Existing nodes re-inserted at a new position
	TextUpdates      int
	AttrUpdates      int // Attribute sets and removals
	ListenersAdded   int
	ListenersRemoved int

	ComponentsCreated   int
	ComponentsUpdated   int // Dirty components re-rendered
	ComponentsDestroyed int
}

// Mutations returns the number of render-target calls made during the pass.
func (s PassStats) Mutations() int {
	return s.Created + s.Inserted + s.Removed + s.Moved + s.TextUpdates +
		s.AttrUpdates + s.ListenersAdded + s.ListenersRemoved
}

// pass is the state of one synchronous traversal. Every target call goes
// through it so failures abort the traversal and work is counted.
type pass struct {
	e     *Engine
	t     Target
	stats PassStats
}

func (p *pass) createElement(tag string) Handle {
	h, err := p.t.CreateElement(tag)
	check(OpCreateElement, err)
	p.stats.Created++
	return h
}

func (p *pass) createText(content string) Handle {
	h, err := p.t.CreateText(content)
	check(OpCreateText, err)
	p.stats.Created++
	return h
}

func (p *pass) setText(node Handle, content string) {
	check(OpSetText, p.t.SetText(node, content))
	p.stats.TextUpdates++
}

func (p *pass) setAttr(node Handle, key, value string) {
	check(OpSetAttr, p.t.SetAttribute(node, key, value))
	p.stats.AttrUpdates++
}

func (p *pass) removeAttr(node Handle, key string) {
	check(OpRemoveAttr, p.t.RemoveAttribute(node, key))
	p.stats.AttrUpdates++
}

// place puts node into parent before sibling, or at the end when sibling is
// nil.
func (p *pass) place(parent, node, sibling Handle) {
	if sibling == nil {
		check(OpAppendChild, p.t.AppendChild(parent, node))
		return
	}
	check(OpInsertBefore, p.t.InsertBefore(parent, node, sibling))
}

func (p *pass) insert(parent, node, sibling Handle) {
	p.place(parent, node, sibling)
	p.stats.Inserted++
}

func (p *pass) move(parent, node, sibling Handle) {
	p.place(parent, node, sibling)
	p.stats.Moved++
}

func (p *pass) removeChild(parent, node Handle) {
	check(OpRemoveChild, p.t.RemoveChild(parent, node))
	p.stats.Removed++
}

func (p *pass) addListener(node Handle, event string, fn Listener) Handle {
	h, err := p.t.AddEventListener(node, event, fn)
	check(OpAddListener, err)
	p.stats.ListenersAdded++
	return h
}

func (p *pass) removeListener(node Handle, event string, listener Handle) {
	check(OpRemoveListener, p.t.RemoveEventListener(node, event, listener))
	p.stats.ListenersRemoved++
}
