// Package scenario loads YAML files describing a sequence of trees.
//
// A scenario is rendered one step at a time: every step's tree is patched
// against the previous step's tree, so a scenario reads as a script of
// reconciliation cases.
//
//	name: reorder
//	steps:
//	  - name: initial
//	    tree:
//	      tag: ul
//	      children:
//	        - {key: a, tag: li, children: [{text: A}]}
//	        - {key: b, tag: li, children: [{text: B}]}
//	  - name: swapped
//	    tree:
//	      tag: ul
//	      children:
//	        - {key: b, tag: li, children: [{text: B}]}
//	        - {key: a, tag: li, children: [{text: A}]}
//
// Each node sets exactly one of text, tag, list or component. A step without
// a tree clears the render root.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/vango-dev/reconcile/internal/errors"
)

// Scenario is a named sequence of steps.
type Scenario struct {
	Name        string  `yaml:"name,omitempty"`
	Description string  `yaml:"description,omitempty"`
	Steps       []*Step `yaml:"steps"`

	path string
}

// Step is one tree to reconcile.
type Step struct {
	Name string `yaml:"name,omitempty"`
	Tree *Node  `yaml:"tree,omitempty"`
}

// Node describes one tree node.
type Node struct {
	// Key is the node's key in its parent list. Unkeyed children get their
	// position as key.
	Key string `yaml:"key,omitempty"`

	// Text makes a text node.
	Text *string `yaml:"text,omitempty"`

	// Tag makes an element. Children of an element are wrapped in a list
	// when there is more than one.
	Tag         string        `yaml:"tag,omitempty"`
	Class       string        `yaml:"class,omitempty"`
	Attrs       yaml.MapSlice `yaml:"attrs,omitempty"`
	On          []string      `yaml:"on,omitempty"`
	SelfClosing bool          `yaml:"selfClosing,omitempty"`
	Children    []*Node       `yaml:"children,omitempty"`

	// List makes a list node without a wrapper element.
	List []*Node `yaml:"list,omitempty"`

	// Component makes a component rendering Children. Components are
	// reused across steps and re-render only when their subtree changes.
	Component string `yaml:"component,omitempty"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E300").Wrap(err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, err
	}
	s.path = path
	if s.Name == "" {
		s.Name = filepath.Base(path)
	}
	return s, nil
}

// Parse decodes and validates a scenario. Unknown fields are rejected.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.UnmarshalWithOptions(data, &s, yaml.Strict()); err != nil {
		return nil, errors.New("E300").
			WithDetail(yaml.FormatError(err, false, true))
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Path returns the file the scenario was loaded from.
func (s *Scenario) Path() string { return s.path }

// Validate checks every step's tree.
func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return errors.New("E302").WithDetail(s.Name)
	}
	for i, step := range s.Steps {
		if step == nil {
			return errors.New("E301").WithDetailf("steps[%d] is empty", i)
		}
		if step.Name == "" {
			step.Name = fmt.Sprintf("step %d", i+1)
		}
		if step.Tree == nil {
			continue
		}
		if err := step.Tree.validate(fmt.Sprintf("steps[%d].tree", i)); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) validate(path string) error {
	if n == nil {
		return errors.New("E301").WithDetailf("%s is empty", path)
	}

	set := 0
	if n.Text != nil {
		set++
	}
	if n.Tag != "" {
		set++
	}
	if n.List != nil {
		set++
	}
	if n.Component != "" {
		set++
	}
	if set != 1 {
		return errors.New("E301").WithDetailf("%s sets %d of text, tag, list, component", path, set)
	}

	if n.Tag == "" && (n.Class != "" || len(n.Attrs) > 0 || len(n.On) > 0 || n.SelfClosing) {
		return errors.New("E301").WithDetailf("%s: class, attrs, on and selfClosing need a tag", path)
	}
	if (n.Text != nil || n.List != nil) && len(n.Children) > 0 {
		return errors.New("E301").WithDetailf("%s: only elements and components have children", path)
	}
	for i, item := range n.Attrs {
		if _, ok := item.Key.(string); !ok {
			return errors.New("E301").WithDetailf("%s.attrs[%d]: key %v is not a string", path, i, item.Key)
		}
	}

	for i, c := range n.Children {
		if err := c.validate(fmt.Sprintf("%s.children[%d]", path, i)); err != nil {
			return err
		}
	}
	for i, c := range n.List {
		if err := c.validate(fmt.Sprintf("%s.list[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}
