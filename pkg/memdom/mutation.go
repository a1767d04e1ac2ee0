package memdom

import (
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Mutation is one recorded target call. Seq numbers mutations of one
// document from 1. Node ids refer to Node.ID; zero means "none" except for
// Parent, where the document root is id 0.
type Mutation struct {
	Seq      uint64 `msgpack:"seq" json:"seq"`
	Op       string `msgpack:"op" json:"op"`
	Node     int    `msgpack:"node,omitempty" json:"node,omitempty"`
	Parent   int    `msgpack:"parent,omitempty" json:"parent,omitempty"`
	Sibling  int    `msgpack:"sibling,omitempty" json:"sibling,omitempty"`
	Tag      string `msgpack:"tag,omitempty" json:"tag,omitempty"`
	Text     string `msgpack:"text,omitempty" json:"text,omitempty"`
	Key      string `msgpack:"key,omitempty" json:"key,omitempty"`
	Value    string `msgpack:"value,omitempty" json:"value,omitempty"`
	Event    string `msgpack:"event,omitempty" json:"event,omitempty"`
	Listener int    `msgpack:"listener,omitempty" json:"listener,omitempty"`
}

// String renders the mutation as a single log line.
func (m Mutation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-14s #%d", m.Op, m.Node)
	switch m.Op {
	case "CreateElement":
		fmt.Fprintf(&b, " <%s>", m.Tag)
	case "CreateText", "SetText":
		fmt.Fprintf(&b, " %q", m.Text)
	case "SetAttr":
		fmt.Fprintf(&b, " %s=%q", m.Key, m.Value)
	case "RemoveAttr":
		fmt.Fprintf(&b, " %s", m.Key)
	case "InsertBefore":
		fmt.Fprintf(&b, " into #%d before #%d", m.Parent, m.Sibling)
	case "AppendChild", "RemoveChild":
		fmt.Fprintf(&b, " parent #%d", m.Parent)
	case "AddListener", "RemoveListener":
		fmt.Fprintf(&b, " %s (listener %d)", m.Event, m.Listener)
	}
	return b.String()
}

// EncodeMutations encodes a mutation batch with msgpack.
func EncodeMutations(muts []Mutation) ([]byte, error) {
	return msgpack.Marshal(muts)
}

// DecodeMutations decodes a batch produced by EncodeMutations.
func DecodeMutations(data []byte) ([]Mutation, error) {
	var muts []Mutation
	if err := msgpack.Unmarshal(data, &muts); err != nil {
		return nil, err
	}
	return muts, nil
}
