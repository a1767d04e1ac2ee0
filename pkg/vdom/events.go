package vdom

// EventHandler binds a listener to a target event type.
type EventHandler struct {
	Event   string // "click", "input", etc.
	Handler Listener
}

// On creates an EventHandler for an arbitrary event type.
func On(event string, handler Listener) EventHandler {
	return EventHandler{Event: event, Handler: handler}
}

// Mouse events

// OnClick handles click events.
func OnClick(handler Listener) EventHandler { return On("click", handler) }

// OnDblClick handles double-click events.
func OnDblClick(handler Listener) EventHandler { return On("dblclick", handler) }

// OnMouseDown handles mousedown events.
func OnMouseDown(handler Listener) EventHandler { return On("mousedown", handler) }

// OnMouseUp handles mouseup events.
func OnMouseUp(handler Listener) EventHandler { return On("mouseup", handler) }

// OnMouseEnter handles mouseenter events.
func OnMouseEnter(handler Listener) EventHandler { return On("mouseenter", handler) }

// OnMouseLeave handles mouseleave events.
func OnMouseLeave(handler Listener) EventHandler { return On("mouseleave", handler) }

// Keyboard events

// OnKeyDown handles keydown events.
func OnKeyDown(handler Listener) EventHandler { return On("keydown", handler) }

// OnKeyUp handles keyup events.
func OnKeyUp(handler Listener) EventHandler { return On("keyup", handler) }

// Form events

// OnInput handles input events (fired when value changes).
func OnInput(handler Listener) EventHandler { return On("input", handler) }

// OnChange handles change events (fired when value is committed).
func OnChange(handler Listener) EventHandler { return On("change", handler) }

// OnSubmit handles form submit events.
func OnSubmit(handler Listener) EventHandler { return On("submit", handler) }

// OnFocus handles focus events.
func OnFocus(handler Listener) EventHandler { return On("focus", handler) }

// OnBlur handles blur events.
func OnBlur(handler Listener) EventHandler { return On("blur", handler) }

// attachEvents registers every handler of el on the target and records the
// listener handles for later removal.
func (el *ElementNode) attachEvents(p *pass) {
	if len(el.events) == 0 {
		return
	}
	el.listeners = make([]Handle, len(el.events))
	for i, ev := range el.events {
		el.listeners[i] = p.addListener(el.handle, ev.Event, ev.Handler)
	}
}

// detachEvents releases every listener attached by attachEvents. Listeners
// are closures with no equality, so patching always detaches and reattaches.
func (el *ElementNode) detachEvents(p *pass, node Handle) {
	for i, l := range el.listeners {
		p.removeListener(node, el.events[i].Event, l)
	}
	el.listeners = nil
}
