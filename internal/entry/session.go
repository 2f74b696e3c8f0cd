// Package entry holds the values a user types into a form and the
// validation messages produced for them.
package entry

import (
	"maps"
	"slices"
	"sync"

	"github.com/qureshisamad/Dynamic-Form-Maker/internal/form"
	. "github.com/qureshisamad/Dynamic-Form-Maker/internal/logging"
)

// Session tracks entered values and per-field errors for one tree.
// Safe for concurrent use.
type Session struct {
	mu     sync.RWMutex
	tree   form.Tree
	values map[string]any
	errors map[string][]string
}

// New starts an empty session over tree.
func New(tree form.Tree) *Session {
	return &Session{
		tree:   tree,
		values: map[string]any{},
		errors: map[string][]string{},
	}
}

// Tree returns the tree values are validated against.
func (s *Session) Tree() form.Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree
}

// SetTree switches to a different form and clears all values and errors.
func (s *Session) SetTree(tree form.Tree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = tree
	s.values = map[string]any{}
	s.errors = map[string][]string{}
}

// UpdateTree follows an edit of the current form. Values are kept; errors
// for fields that no longer exist are dropped.
func (s *Session) UpdateTree(tree form.Tree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = tree
	for id := range s.errors {
		if _, ok := tree.Find(id); !ok {
			delete(s.errors, id)
		}
	}
}

// SetValue records value for id and validates it against the field's rules.
// The messages stored for the field are returned; an empty slice means valid.
// Ids that are not fields (such as a phone field's country code key) are
// stored without validation and return nil.
func (s *Session) SetValue(id string, value any) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[id] = value

	n, ok := s.tree.Find(id)
	if !ok {
		if !s.isPhoneCode(id) {
			L_trace("entry: value for unknown field", "id", id)
		}
		return nil
	}

	msgs := form.Validate(n, value)
	s.errors[id] = msgs
	L_trace("entry: validated", "id", id, "errors", len(msgs))
	return slices.Clone(msgs)
}

// Value returns the value stored for id.
func (s *Session) Value(id string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[id]
	return v, ok
}

// Values returns a copy of all stored values.
func (s *Session) Values() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

// Errors returns the messages stored for id. Nil means the field has not
// been validated yet.
func (s *Session) Errors(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.errors[id])
}

// AllErrors returns the fields that currently have at least one message.
func (s *Session) AllErrors() map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string][]string{}
	for id, msgs := range s.errors {
		if len(msgs) > 0 {
			out[id] = slices.Clone(msgs)
		}
	}
	return out
}

// Reset clears all values and errors.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = map[string]any{}
	s.errors = map[string][]string{}
	L_debug("entry: reset")
}

// Lookup resolves condition targets against the stored values.
func (s *Session) Lookup() form.Lookup {
	return func(id string) (any, bool) {
		return s.Value(id)
	}
}

// Visible reports whether the field id is shown given the current values.
// Unknown ids are not visible.
func (s *Session) Visible(id string) bool {
	n, ok := s.Tree().Find(id)
	if !ok {
		return false
	}
	return form.Visible(n, s.Lookup())
}

// VisibleTree returns the tree with hidden fields removed.
func (s *Session) VisibleTree() form.Tree {
	return s.Tree().VisibleTree(s.Lookup())
}

// ValidateAll validates every visible non-section field against its stored
// value and reports whether all of them passed.
func (s *Session) ValidateAll() bool {
	visible := s.VisibleTree()

	s.mu.Lock()
	defer s.mu.Unlock()

	ok := true
	visible.Walk(func(n *form.Node, _ int) {
		if n.IsSection() {
			return
		}
		msgs := form.Validate(n, s.values[n.ID()])
		s.errors[n.ID()] = msgs
		if len(msgs) > 0 {
			ok = false
		}
	})
	L_debug("entry: validated all", "ok", ok)
	return ok
}

// isPhoneCode reports whether id is the dial code companion of a phone field.
func (s *Session) isPhoneCode(id string) bool {
	found := false
	s.tree.Walk(func(n *form.Node, _ int) {
		if n.Type() == form.Phone && form.PhoneCodeKey(n.ID()) == id {
			found = true
		}
	})
	return found
}
