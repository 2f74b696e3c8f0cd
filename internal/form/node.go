package form

import (
	"fmt"
	"slices"
)

// Node is one field in a form tree.
//
// The variant body is fixed by the field type at construction: only sections
// have children, only dropdown and radio fields have options, only number and
// slider fields have bounds. Nodes are never modified after construction;
// Tree operations build replacement nodes instead.
type Node struct {
	id         string
	typ        FieldType
	label      string
	parentID   string
	rules      Rules
	conditions []Condition
	body       body
}

type body interface {
	variant() string
}

type leafBody struct{}

type choiceBody struct {
	options []string
}

type sectionBody struct {
	children Tree
}

type boundedBody struct {
	bounds Bounds
}

func (leafBody) variant() string    { return "leaf" }
func (choiceBody) variant() string  { return "choice" }
func (sectionBody) variant() string { return "section" }
func (boundedBody) variant() string { return "bounded" }

// Bounds holds the numeric range of number and slider fields.
// A zero Bounds means unconstrained.
type Bounds struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// IsZero reports whether no bounds are set.
func (b Bounds) IsZero() bool {
	return b == Bounds{}
}

// DefaultSliderBounds is the range a new slider starts with.
var DefaultSliderBounds = Bounds{Min: 0, Max: 100, Step: 1}

// DefaultSectionLabel is the label of a newly created section.
const DefaultSectionLabel = "New Section"

// NewNode creates a field of the given type with a generated id.
func NewNode(typ FieldType, parentID string) (*Node, error) {
	return NewNodeWithID(NewID(), typ, parentID)
}

// NewNodeWithID creates a field of the given type with defaults applied.
func NewNodeWithID(id string, typ FieldType, parentID string) (*Node, error) {
	if _, err := ParseType(string(typ)); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidStructure)
	}

	n := &Node{
		id:         id,
		typ:        typ,
		parentID:   parentID,
		rules:      DefaultRules(),
		conditions: []Condition{},
		body:       newBody(typ),
	}
	if typ == Section {
		n.label = DefaultSectionLabel
	}
	return n, nil
}

func newBody(typ FieldType) body {
	switch {
	case typ.IsContainer():
		return sectionBody{children: Tree{}}
	case typ.HasOptions():
		return choiceBody{options: []string{}}
	case typ == Slider:
		return boundedBody{bounds: DefaultSliderBounds}
	case typ.HasBounds():
		return boundedBody{}
	default:
		return leafBody{}
	}
}

// ID returns the field id.
func (n *Node) ID() string { return n.id }

// Type returns the field type.
func (n *Node) Type() FieldType { return n.typ }

// Label returns the display label.
func (n *Node) Label() string { return n.label }

// ParentID returns the id of the containing section, or "" at the root.
func (n *Node) ParentID() string { return n.parentID }

// Rules returns the validation rules.
func (n *Node) Rules() Rules { return n.rules }

// Conditions returns a copy of the display conditions.
func (n *Node) Conditions() []Condition {
	return slices.Clone(n.conditions)
}

// Options returns a copy of the option list, and false for types without options.
func (n *Node) Options() ([]string, bool) {
	c, ok := n.body.(choiceBody)
	if !ok {
		return nil, false
	}
	return slices.Clone(c.options), true
}

// Children returns the child fields, and false for types that are not sections.
func (n *Node) Children() (Tree, bool) {
	s, ok := n.body.(sectionBody)
	if !ok {
		return nil, false
	}
	return slices.Clone(s.children), true
}

// Bounds returns the numeric range, and false for types without bounds.
func (n *Node) Bounds() (Bounds, bool) {
	b, ok := n.body.(boundedBody)
	if !ok {
		return Bounds{}, false
	}
	return b.bounds, true
}

// IsSection reports whether the node owns children.
func (n *Node) IsSection() bool {
	_, ok := n.body.(sectionBody)
	return ok
}

// children returns the child list without copying. Callers must not modify it.
func (n *Node) children() Tree {
	if s, ok := n.body.(sectionBody); ok {
		return s.children
	}
	return nil
}

// clone returns a shallow copy that can be modified before it is published.
func (n *Node) clone() *Node {
	c := *n
	return &c
}

func (n *Node) withChildren(children Tree) *Node {
	c := n.clone()
	c.body = sectionBody{children: children}
	return c
}

func (n *Node) withParent(parentID string) *Node {
	if n.parentID == parentID {
		return n
	}
	c := n.clone()
	c.parentID = parentID
	return c
}

// Equal reports whether two nodes, and their subtrees, hold the same data.
func (n *Node) Equal(o *Node) bool {
	if n == o {
		return true
	}
	if n == nil || o == nil {
		return false
	}
	if n.id != o.id || n.typ != o.typ || n.label != o.label || n.parentID != o.parentID {
		return false
	}
	if !n.rules.Equal(o.rules) || !slices.Equal(n.conditions, o.conditions) {
		return false
	}

	switch b := n.body.(type) {
	case choiceBody:
		ob, ok := o.body.(choiceBody)
		return ok && slices.Equal(b.options, ob.options)
	case sectionBody:
		ob, ok := o.body.(sectionBody)
		return ok && b.children.Equal(ob.children)
	case boundedBody:
		ob, ok := o.body.(boundedBody)
		return ok && b.bounds == ob.bounds
	default:
		return n.body.variant() == o.body.variant()
	}
}
