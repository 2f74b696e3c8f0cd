package form

import (
	"encoding/json"
	"fmt"
)

// nodeJSON is the persisted shape of a Node.
// Options, children and bounds are written only for the types that have them.
type nodeJSON struct {
	ID          string      `json:"id"`
	Type        FieldType   `json:"type"`
	Label       string      `json:"label"`
	Validations *Rules      `json:"validations"`
	Options     *[]string   `json:"options,omitempty"`
	Conditions  []Condition `json:"conditions"`
	Children    *Tree       `json:"children,omitempty"`
	ParentID    *string     `json:"parentId"`
	Min         *float64    `json:"min,omitempty"`
	Max         *float64    `json:"max,omitempty"`
	Step        *float64    `json:"step,omitempty"`
}

// MarshalJSON writes the node in the persisted form-structure shape.
func (n *Node) MarshalJSON() ([]byte, error) {
	rules := n.rules
	w := nodeJSON{
		ID:          n.id,
		Type:        n.typ,
		Label:       n.label,
		Validations: &rules,
		Conditions:  n.conditions,
	}
	if w.Conditions == nil {
		w.Conditions = []Condition{}
	}
	if n.parentID != "" {
		parent := n.parentID
		w.ParentID = &parent
	}

	switch b := n.body.(type) {
	case choiceBody:
		opts := b.options
		if opts == nil {
			opts = []string{}
		}
		w.Options = &opts
	case sectionBody:
		kids := b.children
		if kids == nil {
			kids = Tree{}
		}
		w.Children = &kids
	case boundedBody:
		// Sliders always carry their range, otherwise a cleared range would
		// come back as DefaultSliderBounds.
		if n.typ == Slider || !b.bounds.IsZero() {
			w.Min, w.Max, w.Step = &b.bounds.Min, &b.bounds.Max, &b.bounds.Step
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads a node and checks that it has the shape its type requires.
// Children take their parentId from the section they are stored in.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w nodeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStructure, err)
	}
	if w.ID == "" {
		return fmt.Errorf("%w: field without id", ErrInvalidStructure)
	}
	typ, err := ParseType(string(w.Type))
	if err != nil {
		return fmt.Errorf("%w: field %s: %v", ErrInvalidStructure, w.ID, err)
	}
	if w.Children != nil && !typ.IsContainer() {
		return fmt.Errorf("%w: %s field %s has children", ErrInvalidStructure, typ, w.ID)
	}
	if w.Options != nil && !typ.HasOptions() {
		return fmt.Errorf("%w: %s field %s has options", ErrInvalidStructure, typ, w.ID)
	}

	out := Node{
		id:         w.ID,
		typ:        typ,
		label:      w.Label,
		rules:      DefaultRules(),
		conditions: w.Conditions,
		body:       newBody(typ),
	}
	if w.Validations != nil {
		out.rules = *w.Validations
	}
	if out.conditions == nil {
		out.conditions = []Condition{}
	}
	if w.ParentID != nil {
		out.parentID = *w.ParentID
	}

	switch {
	case typ.IsContainer():
		kids := Tree{}
		if w.Children != nil {
			for _, c := range *w.Children {
				if c == nil {
					return fmt.Errorf("%w: null child in %s", ErrInvalidStructure, w.ID)
				}
				kids = append(kids, c.withParent(w.ID))
			}
		}
		out.body = sectionBody{children: kids}
	case typ.HasOptions():
		opts := []string{}
		if w.Options != nil {
			opts = append(opts, *w.Options...)
		}
		out.body = choiceBody{options: opts}
	case typ.HasBounds():
		b := out.body.(boundedBody).bounds
		if w.Min != nil {
			b.Min = *w.Min
		}
		if w.Max != nil {
			b.Max = *w.Max
		}
		if w.Step != nil {
			b.Step = *w.Step
		}
		out.body = boundedBody{bounds: b}
	}

	*n = out
	return nil
}

// UnmarshalJSON reads a list of root fields and verifies the tree.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var nodes []*Node
	if err := json.Unmarshal(data, &nodes); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStructure, err)
	}
	out := make(Tree, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			return fmt.Errorf("%w: null field", ErrInvalidStructure)
		}
		out = append(out, n.withParent(""))
	}
	if err := out.Check(); err != nil {
		return err
	}
	*t = out
	return nil
}
