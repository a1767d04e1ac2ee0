package vdom

// Op identifies a primitive render-target mutation.
type Op uint8

const (
	OpCreateElement  Op = 0x01 // Create a detached element
	OpCreateText     Op = 0x02 // Create a detached text node
	OpSetText        Op = 0x03 // Update text content
	OpSetAttr        Op = 0x04 // Set/update attribute
	OpRemoveAttr     Op = 0x05 // Remove attribute
	OpInsertBefore   Op = 0x06 // Insert node before a sibling
	OpAppendChild    Op = 0x07 // Append node to parent
	OpRemoveChild    Op = 0x08 // Detach node from parent
	OpAddListener    Op = 0x09 // Attach event listener
	OpRemoveListener Op = 0x0A // Detach event listener
)

// String returns the string representation of the Op.
func (op Op) String() string {
	switch op {
	case OpCreateElement:
		return "CreateElement"
	case OpCreateText:
		return "CreateText"
	case OpSetText:
		return "SetText"
	case OpSetAttr:
		return "SetAttr"
	case OpRemoveAttr:
		return "RemoveAttr"
	case OpInsertBefore:
		return "InsertBefore"
	case OpAppendChild:
		return "AppendChild"
	case OpRemoveChild:
		return "RemoveChild"
	case OpAddListener:
		return "AddListener"
	case OpRemoveListener:
		return "RemoveListener"
	default:
		return "Unknown"
	}
}

// Handle is an opaque reference to a node (or listener) materialized by a
// Target. Handles must be comparable; the engine only stores them and hands
// them back to the Target that produced them.
type Handle any

// Event is passed to event listeners by the render target.
type Event struct {
	Type   string // "click", "input", ...
	Target Handle // Node the listener is attached to
	Value  string // Current value for form events
	Data   map[string]any
}

// Listener is an event callback registered on a render target.
type Listener func(Event)

// Target is the live rendering surface kept in sync with the node tree.
// Every method may fail; a failure aborts the current pass.
type Target interface {
	CreateElement(tag string) (Handle, error)
	CreateText(content string) (Handle, error)
	SetText(node Handle, content string) error
	SetAttribute(node Handle, key, value string) error
	RemoveAttribute(node Handle, key string) error

	// InsertBefore inserts (or moves) node into parent right before sibling.
	InsertBefore(parent, node, sibling Handle) error

	// AppendChild inserts (or moves) node at the end of parent.
	AppendChild(parent, node Handle) error
	RemoveChild(parent, node Handle) error

	AddEventListener(node Handle, event string, fn Listener) (Handle, error)
	RemoveEventListener(node Handle, event string, listener Handle) error
}

// Scheduler is the external collaborator asked to run a future render pass.
// Implementations coalesce repeated requests.
type Scheduler interface {
	RequestRender()
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func()

// RequestRender calls f.
func (f SchedulerFunc) RequestRender() { f() }

// Notifier is handed to a component instance at creation. Calling it marks
// the component dirty and asks the scheduler for a render pass.
type Notifier func()
