package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/qureshisamad/Dynamic-Form-Maker/internal/form"
	. "github.com/qureshisamad/Dynamic-Form-Maker/internal/logging"
)

// Library is the collection of saved form definitions kept in a Backend.
// Every change rewrites the whole collection with a single Write.
type Library struct {
	mu      sync.Mutex
	backend Backend
	defs    []Definition
	now     func() time.Time
}

// Option configures a Library.
type Option func(*Library)

// WithClock sets the time source used to stamp saved definitions.
func WithClock(now func() time.Time) Option {
	return func(l *Library) {
		l.now = now
	}
}

// NewLibrary creates a library over backend. Call Load to read saved forms.
func NewLibrary(backend Backend, opts ...Option) *Library {
	l := &Library{
		backend: backend,
		defs:    []Definition{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the saved forms from the backend and returns them.
//
// Nothing stored, or a backend that cannot be read, yields an empty list.
// A document that is not a list of definitions is discarded and the store
// cleared. Individual definitions with an invalid structure are dropped and
// the remaining collection written back.
func (l *Library) Load() []Definition {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.defs = []Definition{}

	data, err := l.backend.Read()
	if err != nil {
		L_warn("store: failed to read saved forms", "error", err)
		return l.snapshot()
	}
	if data == nil {
		L_debug("store: no saved forms")
		return l.snapshot()
	}

	var records []json.RawMessage
	err = json.Unmarshal(data, &records)
	if err == nil && records == nil {
		err = errors.New("document is null")
	}
	if err != nil {
		L_error("store: saved forms corrupt, resetting", "error", fmt.Errorf("%w: %v", form.ErrInvalidStructure, err))
		if err := l.backend.Clear(); err != nil {
			L_warn("store: failed to clear corrupt store", "error", err)
		}
		return l.snapshot()
	}

	dropped := 0
	for i, raw := range records {
		var def Definition
		if err := json.Unmarshal(raw, &def); err != nil {
			L_warn("store: discarding invalid form", "index", i, "error", err)
			dropped++
			continue
		}
		l.defs = append(l.defs, def)
	}

	if dropped > 0 {
		if err := l.writeLocked(l.defs); err != nil {
			L_warn("store: failed to rewrite cleaned store", "error", err)
		}
	}

	L_info("store: loaded forms", "count", len(l.defs), "discarded", dropped)
	return l.snapshot()
}

// Definitions returns the loaded definitions.
func (l *Library) Definitions() []Definition {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

// List returns a summary per saved form, in stored order.
func (l *Library) List() []Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Summary, 0, len(l.defs))
	for i, d := range l.defs {
		out = append(out, Summary{
			Index:      i,
			Name:       d.Name,
			SavedAt:    d.SavedAt,
			FieldCount: d.Structure.Count(),
		})
	}
	return out
}

// Get returns the definition with the given name.
func (l *Library) Get(name string) (Definition, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(name)
	if i < 0 {
		return Definition{}, false
	}
	return l.defs[i], true
}

// At returns the definition at index.
func (l *Library) At(index int) (Definition, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.defs) {
		return Definition{}, fmt.Errorf("%w: form %d", form.ErrNotFound, index)
	}
	return l.defs[index], nil
}

// Save stores tree under name, replacing an existing definition with the
// same name in place or appending a new one.
func (l *Library) Save(name string, tree form.Tree) (Definition, error) {
	if name == "" {
		return Definition{}, ErrNameRequired
	}
	if tree == nil {
		tree = form.Tree{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	def := Definition{Name: name, Structure: tree, SavedAt: l.now().UTC()}

	next := slices.Clone(l.defs)
	if i := l.indexLocked(name); i >= 0 {
		next[i] = def
	} else {
		next = append(next, def)
	}

	if err := l.writeLocked(next); err != nil {
		return Definition{}, err
	}
	l.defs = next

	L_info("store: saved form", "name", name, "fields", tree.Count())
	return def, nil
}

// Delete removes the definition at index.
func (l *Library) Delete(index int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deleteLocked(index)
}

// DeleteByName removes the definition with the given name.
func (l *Library) DeleteByName(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(name)
	if i < 0 {
		return fmt.Errorf("%w: form %q", form.ErrNotFound, name)
	}
	return l.deleteLocked(i)
}

func (l *Library) deleteLocked(index int) error {
	if index < 0 || index >= len(l.defs) {
		return fmt.Errorf("%w: form %d", form.ErrNotFound, index)
	}

	next := slices.Delete(slices.Clone(l.defs), index, index+1)
	if err := l.writeLocked(next); err != nil {
		return err
	}
	name := l.defs[index].Name
	l.defs = next

	L_info("store: deleted form", "name", name)
	return nil
}

// Close releases the backend.
func (l *Library) Close() error {
	return l.backend.Close()
}

func (l *Library) indexLocked(name string) int {
	return slices.IndexFunc(l.defs, func(d Definition) bool { return d.Name == name })
}

func (l *Library) writeLocked(defs []Definition) error {
	data, err := json.MarshalIndent(defs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal forms: %w", err)
	}
	if err := l.backend.Write(data); err != nil {
		L_error("store: failed to write saved forms", "error", err)
		return fmt.Errorf("failed to write forms: %w", err)
	}
	return nil
}

func (l *Library) snapshot() []Definition {
	return slices.Clone(l.defs)
}
