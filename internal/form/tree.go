package form

import (
	"errors"
	"fmt"
	"slices"
)

// Tree is the ordered list of root fields of a form.
//
// Every operation returns a new Tree and never modifies the receiver. Only the
// nodes on the path from the root to the edited node are rebuilt; untouched
// subtrees are shared with the previous tree. On error the receiver is
// returned unchanged, so callers may keep the result either way.
type Tree []*Node

// errUnchanged short-circuits an edit that turned out to be a no-op.
var errUnchanged = errors.New("unchanged")

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Find returns the field with the given id, searching depth-first.
func (t Tree) Find(id string) (*Node, bool) {
	for _, n := range t {
		if n.id == id {
			return n, true
		}
		if found, ok := n.children().Find(id); ok {
			return found, true
		}
	}
	return nil, false
}

// Walk calls fn for every field in depth-first order. Root fields have depth 0.
func (t Tree) Walk(fn func(n *Node, depth int)) {
	t.walk(fn, 0)
}

func (t Tree) walk(fn func(n *Node, depth int), depth int) {
	for _, n := range t {
		fn(n, depth)
		n.children().walk(fn, depth+1)
	}
}

// Count returns the number of fields in the tree, sections included.
func (t Tree) Count() int {
	count := 0
	t.Walk(func(*Node, int) { count++ })
	return count
}

// Equal reports whether two trees hold the same fields in the same order.
func (t Tree) Equal(o Tree) bool {
	return slices.EqualFunc(t, o, func(a, b *Node) bool { return a.Equal(b) })
}

// Check verifies that ids are present and unique and that every parentId
// matches the section the field sits in.
func (t Tree) Check() error {
	seen := make(map[string]bool)
	var check func(fields Tree, parentID string) error
	check = func(fields Tree, parentID string) error {
		for _, n := range fields {
			if n == nil {
				return fmt.Errorf("%w: nil field", ErrInvalidStructure)
			}
			if n.id == "" {
				return fmt.Errorf("%w: field without id", ErrInvalidStructure)
			}
			if seen[n.id] {
				return fmt.Errorf("%w: duplicate id %s", ErrInvalidStructure, n.id)
			}
			seen[n.id] = true
			if n.parentID != parentID {
				return fmt.Errorf("%w: field %s has parentId %q, sits in %q", ErrInvalidStructure, n.id, n.parentID, parentID)
			}
			if err := check(n.children(), n.id); err != nil {
				return err
			}
		}
		return nil
	}
	return check(t, "")
}

func (t Tree) index(id string) int {
	return slices.IndexFunc(t, func(n *Node) bool { return n.id == id })
}

// replace rebuilds the path from the root to the field with the given id,
// substituting the result of fn. A nil result removes the field.
func (t Tree) replace(id string, fn func(*Node) (*Node, error)) (Tree, bool, error) {
	for i, n := range t {
		if n.id == id {
			r, err := fn(n)
			if err != nil {
				return t, true, err
			}
			out := make(Tree, 0, len(t))
			out = append(out, t[:i]...)
			if r != nil {
				out = append(out, r)
			}
			return append(out, t[i+1:]...), true, nil
		}

		sub, found, err := n.children().replace(id, fn)
		if err != nil {
			return t, true, err
		}
		if found {
			out := slices.Clone(t)
			out[i] = n.withChildren(sub)
			return out, true, nil
		}
	}
	return t, false, nil
}

// update applies fn to the field with the given id.
func (t Tree) update(id string, fn func(*Node) (*Node, error)) (Tree, error) {
	out, found, err := t.replace(id, fn)
	if errors.Is(err, errUnchanged) {
		return t, nil
	}
	if err != nil {
		return t, err
	}
	if !found {
		return t, notFound(id)
	}
	return out, nil
}

// siblings returns the child list addressed by parentID ("" is the root).
func (t Tree) siblings(parentID string) (Tree, error) {
	if parentID == "" {
		return t, nil
	}
	p, ok := t.Find(parentID)
	if !ok {
		return nil, notFound(parentID)
	}
	if !p.IsSection() {
		return nil, fmt.Errorf("%w: %s", ErrNotContainer, parentID)
	}
	return p.children(), nil
}

// withSiblings replaces the child list addressed by parentID with the result of fn.
func (t Tree) withSiblings(parentID string, fn func(Tree) (Tree, error)) (Tree, error) {
	if parentID == "" {
		out, err := fn(t)
		if errors.Is(err, errUnchanged) {
			return t, nil
		}
		if err != nil {
			return t, err
		}
		return out, nil
	}
	return t.update(parentID, func(p *Node) (*Node, error) {
		if !p.IsSection() {
			return nil, fmt.Errorf("%w: %s", ErrNotContainer, parentID)
		}
		kids, err := fn(p.children())
		if err != nil {
			return nil, err
		}
		return p.withChildren(kids), nil
	})
}

// AddField creates a field of the given type and appends it to the root
// (parentID "") or to the children of the addressed section.
func (t Tree) AddField(typ FieldType, parentID string) (Tree, *Node, error) {
	n, err := NewNode(typ, parentID)
	if err != nil {
		return t, nil, err
	}
	out, err := t.Insert(n, parentID)
	if err != nil {
		return t, nil, err
	}
	added, _ := out.Find(n.id)
	return out, added, nil
}

// Insert appends an already constructed field under parentID.
// The field's parentId is set to parentID.
func (t Tree) Insert(n *Node, parentID string) (Tree, error) {
	if n == nil {
		return t, fmt.Errorf("%w: nil field", ErrInvalidStructure)
	}
	if _, exists := t.Find(n.id); exists {
		return t, fmt.Errorf("%w: duplicate id %s", ErrInvalidStructure, n.id)
	}
	placed := n.withParent(parentID)
	return t.withSiblings(parentID, func(s Tree) (Tree, error) {
		return append(slices.Clone(s), placed), nil
	})
}

// RemoveField deletes the field with the given id, and its subtree if it is a section.
func (t Tree) RemoveField(id string) (Tree, error) {
	return t.update(id, func(*Node) (*Node, error) {
		return nil, nil
	})
}

// MoveFieldUp swaps a field with its predecessor in the sibling list of parentID.
// The first field stays where it is.
func (t Tree) MoveFieldUp(id, parentID string) (Tree, error) {
	return t.withSiblings(parentID, func(s Tree) (Tree, error) {
		i := s.index(id)
		if i < 0 {
			return nil, notFound(id)
		}
		if i == 0 {
			return nil, errUnchanged
		}
		out := slices.Clone(s)
		out[i-1], out[i] = out[i], out[i-1]
		return out, nil
	})
}

// MoveFieldDown swaps a field with its successor in the sibling list of parentID.
// The last field stays where it is.
func (t Tree) MoveFieldDown(id, parentID string) (Tree, error) {
	return t.withSiblings(parentID, func(s Tree) (Tree, error) {
		i := s.index(id)
		if i < 0 {
			return nil, notFound(id)
		}
		if i == len(s)-1 {
			return nil, errUnchanged
		}
		out := slices.Clone(s)
		out[i], out[i+1] = out[i+1], out[i]
		return out, nil
	})
}

// MoveField relocates a field from the sibling list of fromParentID to the
// position right after afterID in the sibling list of toParentID. An empty
// afterID places the field first. Moving a field after itself does nothing,
// and a section cannot be moved into its own subtree.
func (t Tree) MoveField(id, fromParentID, toParentID, afterID string) (Tree, error) {
	if id == afterID {
		return t, nil
	}

	src, err := t.siblings(fromParentID)
	if err != nil {
		return t, err
	}
	i := src.index(id)
	if i < 0 {
		return t, notFound(id)
	}
	node := src[i]

	if toParentID == id {
		return t, fmt.Errorf("%w: %s into itself", ErrCycle, id)
	}
	if _, inside := node.children().Find(toParentID); inside {
		return t, fmt.Errorf("%w: %s into descendant %s", ErrCycle, id, toParentID)
	}

	dst, err := t.siblings(toParentID)
	if err != nil {
		return t, err
	}
	if afterID != "" && dst.index(afterID) < 0 {
		return t, notFound(afterID)
	}

	removed, err := t.withSiblings(fromParentID, func(s Tree) (Tree, error) {
		return slices.Delete(slices.Clone(s), i, i+1), nil
	})
	if err != nil {
		return t, err
	}

	moved := node.withParent(toParentID)
	out, err := removed.withSiblings(toParentID, func(s Tree) (Tree, error) {
		pos := 0
		if afterID != "" {
			pos = s.index(afterID) + 1
		}
		return slices.Insert(slices.Clone(s), pos, moved), nil
	})
	if err != nil {
		return t, err
	}
	return out, nil
}

// Patch lists attribute changes for UpdateField. Nil fields are left as they are.
type Patch struct {
	Label      *string
	Rules      *Rules
	Options    []string
	Conditions []Condition
	Bounds     *Bounds
}

// UpdateField merges the patch into the field with the given id.
func (t Tree) UpdateField(id string, p Patch) (Tree, error) {
	return t.update(id, func(n *Node) (*Node, error) {
		return p.apply(n)
	})
}

func (p Patch) apply(n *Node) (*Node, error) {
	c := n.clone()
	if p.Label != nil {
		c.label = *p.Label
	}
	if p.Rules != nil {
		c.rules = *p.Rules
	}
	if p.Conditions != nil {
		c.conditions = slices.Clone(p.Conditions)
	}
	if p.Options != nil {
		if _, ok := n.body.(choiceBody); !ok {
			return nil, fmt.Errorf("%w: options on %s", ErrNotApplicable, n.typ)
		}
		c.body = choiceBody{options: slices.Clone(p.Options)}
	}
	if p.Bounds != nil {
		if _, ok := n.body.(boundedBody); !ok {
			return nil, fmt.Errorf("%w: bounds on %s", ErrNotApplicable, n.typ)
		}
		c.body = boundedBody{bounds: *p.Bounds}
	}
	return c, nil
}

// SetLabel changes the label of a field.
func (t Tree) SetLabel(id, label string) (Tree, error) {
	return t.UpdateField(id, Patch{Label: &label})
}

// SetRule sets one validation rule, keeping the others.
func (t Tree) SetRule(id, rule string, value any) (Tree, error) {
	return t.update(id, func(n *Node) (*Node, error) {
		c := n.clone()
		c.rules = n.rules.With(rule, value)
		return c, nil
	})
}

// RemoveRule drops one validation rule.
func (t Tree) RemoveRule(id, rule string) (Tree, error) {
	return t.update(id, func(n *Node) (*Node, error) {
		if _, ok := n.rules.Get(rule); !ok {
			return nil, errUnchanged
		}
		c := n.clone()
		c.rules = n.rules.Without(rule)
		return c, nil
	})
}

// editOptions applies fn to the option list of a dropdown or radio field.
func (t Tree) editOptions(id string, fn func([]string) ([]string, error)) (Tree, error) {
	return t.update(id, func(n *Node) (*Node, error) {
		b, ok := n.body.(choiceBody)
		if !ok {
			return nil, fmt.Errorf("%w: options on %s", ErrNotApplicable, n.typ)
		}
		opts, err := fn(slices.Clone(b.options))
		if err != nil {
			return nil, err
		}
		c := n.clone()
		c.body = choiceBody{options: opts}
		return c, nil
	})
}

// AddOption appends an option named "Option N" to a dropdown or radio field.
func (t Tree) AddOption(id string) (Tree, error) {
	return t.editOptions(id, func(opts []string) ([]string, error) {
		return append(opts, fmt.Sprintf("Option %d", len(opts)+1)), nil
	})
}

// SetOption renames the option at index.
func (t Tree) SetOption(id string, index int, value string) (Tree, error) {
	return t.editOptions(id, func(opts []string) ([]string, error) {
		if index < 0 || index >= len(opts) {
			return nil, fmt.Errorf("%w: option %d of %s", ErrNotFound, index, id)
		}
		opts[index] = value
		return opts, nil
	})
}

// RemoveOption deletes the option at index.
func (t Tree) RemoveOption(id string, index int) (Tree, error) {
	return t.editOptions(id, func(opts []string) ([]string, error) {
		if index < 0 || index >= len(opts) {
			return nil, fmt.Errorf("%w: option %d of %s", ErrNotFound, index, id)
		}
		return slices.Delete(opts, index, index+1), nil
	})
}

func (t Tree) editConditions(id string, fn func([]Condition) ([]Condition, error)) (Tree, error) {
	return t.update(id, func(n *Node) (*Node, error) {
		conds, err := fn(slices.Clone(n.conditions))
		if err != nil {
			return nil, err
		}
		c := n.clone()
		c.conditions = conds
		return c, nil
	})
}

// AddCondition appends a blank condition to a field.
func (t Tree) AddCondition(id string) (Tree, error) {
	return t.editConditions(id, func(conds []Condition) ([]Condition, error) {
		return append(conds, NewCondition()), nil
	})
}

// SetCondition replaces the condition at index.
func (t Tree) SetCondition(id string, index int, cond Condition) (Tree, error) {
	return t.editConditions(id, func(conds []Condition) ([]Condition, error) {
		if index < 0 || index >= len(conds) {
			return nil, fmt.Errorf("%w: condition %d of %s", ErrNotFound, index, id)
		}
		conds[index] = cond
		return conds, nil
	})
}

// RemoveCondition deletes the condition at index.
func (t Tree) RemoveCondition(id string, index int) (Tree, error) {
	return t.editConditions(id, func(conds []Condition) ([]Condition, error) {
		if index < 0 || index >= len(conds) {
			return nil, fmt.Errorf("%w: condition %d of %s", ErrNotFound, index, id)
		}
		return slices.Delete(conds, index, index+1), nil
	})
}

// ConditionTargets returns the fields a condition on id may refer to:
// every input field except id itself.
func (t Tree) ConditionTargets(id string) []*Node {
	var targets []*Node
	t.Walk(func(n *Node, _ int) {
		if n.id != id && !n.IsSection() {
			targets = append(targets, n)
		}
	})
	return targets
}
