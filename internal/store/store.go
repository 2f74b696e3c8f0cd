// Package store persists named form definitions.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/qureshisamad/Dynamic-Form-Maker/internal/config"
	"github.com/qureshisamad/Dynamic-Form-Maker/internal/form"
)

// StorageKey names the single entry holding all saved forms.
const StorageKey = "savedForms"

// ErrNameRequired is returned when saving a definition without a name.
var ErrNameRequired = errors.New("form name required")

// Backend is the durable slot holding the encoded collection of definitions.
// Implementations: FileBackend (default), SQLiteBackend, MemoryBackend.
type Backend interface {
	// Read returns the stored document, or nil if nothing is stored.
	Read() ([]byte, error)
	// Write replaces the stored document in one atomic step.
	Write(data []byte) error
	// Clear removes the stored document.
	Clear() error
	Close() error
}

// Definition is a named snapshot of a field tree.
type Definition struct {
	Name      string    `json:"name"`
	Structure form.Tree `json:"structure"`
	SavedAt   time.Time `json:"savedAt"`
}

// UnmarshalJSON also accepts the older "date" key for savedAt.
func (d *Definition) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name      string          `json:"name"`
		Structure json.RawMessage `json:"structure"`
		SavedAt   *time.Time      `json:"savedAt"`
		Date      *time.Time      `json:"date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", form.ErrInvalidStructure, err)
	}
	if raw.Name == "" {
		return fmt.Errorf("%w: definition without name", form.ErrInvalidStructure)
	}

	tree := form.Tree{}
	if len(raw.Structure) > 0 && string(raw.Structure) != "null" {
		if err := json.Unmarshal(raw.Structure, &tree); err != nil {
			return fmt.Errorf("form %q: %w", raw.Name, err)
		}
	}

	out := Definition{Name: raw.Name, Structure: tree}
	switch {
	case raw.SavedAt != nil:
		out.SavedAt = *raw.SavedAt
	case raw.Date != nil:
		out.SavedAt = *raw.Date
	}
	*d = out
	return nil
}

// Summary is a lightweight description of a saved form for listing.
type Summary struct {
	Index      int
	Name       string
	SavedAt    time.Time
	FieldCount int
}

// Open creates the backend selected by cfg.
func Open(cfg config.StoreConfig) (Backend, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return NewSQLiteBackend(cfg.Path)
	case config.BackendMemory:
		return NewMemoryBackend(), nil
	case config.BackendFile, "":
		return NewFileBackend(cfg.Path, cfg.Backups), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
