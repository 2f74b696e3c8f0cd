// Package editor ties the field tree being edited to the saved-form library
// and the data-entry session previewing it.
package editor

import (
	"fmt"

	"github.com/qureshisamad/Dynamic-Form-Maker/internal/entry"
	"github.com/qureshisamad/Dynamic-Form-Maker/internal/form"
	. "github.com/qureshisamad/Dynamic-Form-Maker/internal/logging"
	"github.com/qureshisamad/Dynamic-Form-Maker/internal/store"
)

// Editor owns the form currently being edited.
type Editor struct {
	library *store.Library
	tree    form.Tree
	name    string
	entry   *entry.Session
	newID   form.IDFunc
	dirty   bool
}

// Option configures an Editor.
type Option func(*Editor)

// WithIDFunc sets the generator for ids of added fields.
func WithIDFunc(fn form.IDFunc) Option {
	return func(e *Editor) {
		e.newID = fn
	}
}

// New creates an editor with an empty, unnamed form.
func New(library *store.Library, opts ...Option) *Editor {
	e := &Editor{
		library: library,
		tree:    form.Tree{},
		entry:   entry.New(form.Tree{}),
		newID:   form.NewID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tree returns the form being edited.
func (e *Editor) Tree() form.Tree { return e.tree }

// Name returns the form name used by Save.
func (e *Editor) Name() string { return e.name }

// SetName renames the form being edited.
func (e *Editor) SetName(name string) {
	if name != e.name {
		e.name = name
		e.dirty = true
	}
}

// Entry returns the data-entry session previewing the form.
func (e *Editor) Entry() *entry.Session { return e.entry }

// Library returns the saved-form library.
func (e *Editor) Library() *store.Library { return e.library }

// Dirty reports whether the form changed since it was opened or saved.
func (e *Editor) Dirty() bool { return e.dirty }

// Find returns the field with the given id.
func (e *Editor) Find(id string) (*form.Node, bool) {
	return e.tree.Find(id)
}

// apply runs a tree edit and keeps the entry session in step. Values already
// entered survive structural edits.
func (e *Editor) apply(op string, fn func(form.Tree) (form.Tree, error)) error {
	next, err := fn(e.tree)
	if err != nil {
		L_debug("editor: edit rejected", "op", op, "error", err)
		return err
	}
	e.tree = next
	e.entry.UpdateTree(next)
	e.dirty = true
	L_trace("editor: applied", "op", op, "fields", next.Count())
	return nil
}

// AddField appends a new field of typ to the root or to section parentID.
func (e *Editor) AddField(typ form.FieldType, parentID string) (*form.Node, error) {
	n, err := form.NewNodeWithID(e.newID(), typ, parentID)
	if err != nil {
		return nil, err
	}
	err = e.apply("add", func(t form.Tree) (form.Tree, error) {
		return t.Insert(n, parentID)
	})
	if err != nil {
		return nil, err
	}
	added, _ := e.tree.Find(n.ID())
	return added, nil
}

// RemoveField deletes a field and its subtree.
func (e *Editor) RemoveField(id string) error {
	if _, ok := e.tree.Find(id); !ok {
		return fmt.Errorf("%w: %s", form.ErrNotFound, id)
	}
	return e.apply("remove", func(t form.Tree) (form.Tree, error) {
		return t.RemoveField(id)
	})
}

// MoveUp moves a field one place earlier among its siblings.
func (e *Editor) MoveUp(id string) error {
	parent, err := e.parentOf(id)
	if err != nil {
		return err
	}
	return e.apply("up", func(t form.Tree) (form.Tree, error) {
		return t.MoveFieldUp(id, parent)
	})
}

// MoveDown moves a field one place later among its siblings.
func (e *Editor) MoveDown(id string) error {
	parent, err := e.parentOf(id)
	if err != nil {
		return err
	}
	return e.apply("down", func(t form.Tree) (form.Tree, error) {
		return t.MoveFieldDown(id, parent)
	})
}

// Move relocates a field into toParentID (root when empty), after afterID
// or first when afterID is empty.
func (e *Editor) Move(id, toParentID, afterID string) error {
	parent, err := e.parentOf(id)
	if err != nil {
		return err
	}
	return e.apply("move", func(t form.Tree) (form.Tree, error) {
		return t.MoveField(id, parent, toParentID, afterID)
	})
}

func (e *Editor) parentOf(id string) (string, error) {
	n, ok := e.tree.Find(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", form.ErrNotFound, id)
	}
	return n.ParentID(), nil
}

// UpdateField merges p into a field.
func (e *Editor) UpdateField(id string, p form.Patch) error {
	return e.apply("update", func(t form.Tree) (form.Tree, error) {
		return t.UpdateField(id, p)
	})
}

func (e *Editor) SetLabel(id, label string) error {
	return e.apply("label", func(t form.Tree) (form.Tree, error) {
		return t.SetLabel(id, label)
	})
}

func (e *Editor) SetRule(id, rule string, value any) error {
	return e.apply("rule", func(t form.Tree) (form.Tree, error) {
		return t.SetRule(id, rule, value)
	})
}

func (e *Editor) RemoveRule(id, rule string) error {
	return e.apply("unrule", func(t form.Tree) (form.Tree, error) {
		return t.RemoveRule(id, rule)
	})
}

func (e *Editor) AddOption(id string) error {
	return e.apply("option", func(t form.Tree) (form.Tree, error) {
		return t.AddOption(id)
	})
}

func (e *Editor) SetOption(id string, index int, value string) error {
	return e.apply("option", func(t form.Tree) (form.Tree, error) {
		return t.SetOption(id, index, value)
	})
}

func (e *Editor) RemoveOption(id string, index int) error {
	return e.apply("option", func(t form.Tree) (form.Tree, error) {
		return t.RemoveOption(id, index)
	})
}

func (e *Editor) AddCondition(id string) error {
	return e.apply("condition", func(t form.Tree) (form.Tree, error) {
		return t.AddCondition(id)
	})
}

func (e *Editor) SetCondition(id string, index int, cond form.Condition) error {
	return e.apply("condition", func(t form.Tree) (form.Tree, error) {
		return t.SetCondition(id, index, cond)
	})
}

func (e *Editor) RemoveCondition(id string, index int) error {
	return e.apply("condition", func(t form.Tree) (form.Tree, error) {
		return t.RemoveCondition(id, index)
	})
}

// ConditionTargets lists the fields a condition on id may refer to.
func (e *Editor) ConditionTargets(id string) []*form.Node {
	return e.tree.ConditionTargets(id)
}

// NewForm discards the current form and starts an empty, unnamed one.
func (e *Editor) NewForm() {
	e.load("", form.Tree{})
	L_debug("editor: new form")
}

// Open loads the saved form called name.
func (e *Editor) Open(name string) error {
	def, ok := e.library.Get(name)
	if !ok {
		return fmt.Errorf("%w: form %q", form.ErrNotFound, name)
	}
	e.load(def.Name, def.Structure)
	L_info("editor: opened form", "name", name)
	return nil
}

// OpenIndex loads the saved form at index in the library.
func (e *Editor) OpenIndex(index int) error {
	def, err := e.library.At(index)
	if err != nil {
		return err
	}
	e.load(def.Name, def.Structure)
	L_info("editor: opened form", "name", def.Name, "index", index)
	return nil
}

func (e *Editor) load(name string, tree form.Tree) {
	e.name = name
	e.tree = tree
	e.entry.SetTree(tree)
	e.dirty = false
}

// Save stores the form under its name.
func (e *Editor) Save() (store.Definition, error) {
	def, err := e.library.Save(e.name, e.tree)
	if err != nil {
		return store.Definition{}, err
	}
	e.dirty = false
	return def, nil
}

// SaveAs renames the form and stores it.
func (e *Editor) SaveAs(name string) (store.Definition, error) {
	if name == "" {
		return store.Definition{}, store.ErrNameRequired
	}
	e.name = name
	return e.Save()
}

// Delete removes the saved form at index. The form being edited is kept.
func (e *Editor) Delete(index int) error {
	return e.library.Delete(index)
}

// Close releases the library.
func (e *Editor) Close() error {
	if e.dirty {
		L_warn("editor: closing with unsaved changes", "name", e.name)
	}
	return e.library.Close()
}
