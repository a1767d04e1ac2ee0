package remote

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/vango-dev/reconcile/pkg/memdom"
)

// FrameType identifies a frame.
type FrameType string

const (
	// FrameSnapshot carries the full document HTML. Sent once per connection.
	FrameSnapshot FrameType = "snapshot"

	// FrameMutations carries the mutations applied by one or more passes.
	FrameMutations FrameType = "mutations"

	// FrameEvent is sent by clients to fire an event on a node.
	FrameEvent FrameType = "event"

	// FrameError reports a rejected client frame.
	FrameError FrameType = "error"
)

// Frame is the unit exchanged over the websocket, encoded with msgpack in
// binary messages.
type Frame struct {
	Type FrameType `msgpack:"type"`

	// Seq is the sequence number of the last mutation the frame reflects.
	Seq uint64 `msgpack:"seq,omitempty"`

	HTML      string            `msgpack:"html,omitempty"`
	Mutations []memdom.Mutation `msgpack:"mutations,omitempty"`

	// Event frames
	Node  int    `msgpack:"node,omitempty"`
	Event string `msgpack:"event,omitempty"`
	Value string `msgpack:"value,omitempty"`

	Error string `msgpack:"error,omitempty"`
}

// Encode encodes the frame.
func (f *Frame) Encode() ([]byte, error) {
	return msgpack.Marshal(f)
}

// DecodeFrame decodes a frame and checks its type.
func DecodeFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("remote: decode frame: %w", err)
	}
	switch f.Type {
	case FrameSnapshot, FrameMutations, FrameEvent, FrameError:
		return &f, nil
	default:
		return nil, fmt.Errorf("remote: unknown frame type %q", f.Type)
	}
}
