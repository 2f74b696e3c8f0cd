package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/qureshisamad/Dynamic-Form-Maker/internal/form"
	. "github.com/qureshisamad/Dynamic-Form-Maker/internal/logging"
	"github.com/qureshisamad/Dynamic-Form-Maker/internal/paths"
)

// FileBackend keeps the saved forms in a single JSON file. Every write
// replaces the file atomically and, when keep > 0, first shifts the previous
// version into forms.json.bak, forms.json.bak.1 and so on.
type FileBackend struct {
	path string
	keep int
}

// Backup is one kept previous version of the store file.
type Backup struct {
	Index   int
	Path    string
	ModTime time.Time
	Size    int64
	Forms   int // -1 if the backup does not hold a valid form list
}

// NewFileBackend creates a file backend at path keeping up to keep
// previous versions.
func NewFileBackend(path string, keep int) *FileBackend {
	return &FileBackend{path: path, keep: keep}
}

// Path returns the backing file.
func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Read() ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", b.path, err)
	}
	return data, nil
}

func (b *FileBackend) Write(data []byte) error {
	if err := b.rotate(); err != nil {
		// A failed backup never blocks the save itself
		L_warn("store: backup failed", "path", b.path, "error", err)
	}
	if err := replaceFile(b.path, data); err != nil {
		return err
	}
	L_trace("store: wrote forms", "path", b.path, "bytes", len(data))
	return nil
}

func (b *FileBackend) Clear() error {
	if err := os.Remove(b.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", b.path, err)
	}
	L_debug("store: cleared", "path", b.path)
	return nil
}

func (b *FileBackend) Close() error {
	return nil
}

// Backups lists the kept previous versions, newest first.
func (b *FileBackend) Backups() []Backup {
	var out []Backup
	for i := 0; ; i++ {
		p := b.backupPath(i)
		info, err := os.Stat(p)
		if err != nil {
			break
		}
		bk := Backup{Index: i, Path: p, ModTime: info.ModTime(), Size: info.Size(), Forms: -1}
		if data, err := os.ReadFile(p); err == nil {
			if defs, err := decodeForms(data); err == nil {
				bk.Forms = len(defs)
			}
		}
		out = append(out, bk)
	}
	return out
}

// Restore replaces the store file with the backup at index. The backup must
// decode as a list of valid definitions; the current file is kept as the
// newest backup.
func (b *FileBackend) Restore(index int) error {
	p := b.backupPath(index)
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: backup %d", form.ErrNotFound, index)
	}
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}

	defs, err := decodeForms(data)
	if err != nil {
		return fmt.Errorf("backup %d rejected: %w", index, err)
	}

	if err := b.rotate(); err != nil {
		return fmt.Errorf("failed to back up current forms: %w", err)
	}
	if err := replaceFile(b.path, data); err != nil {
		return err
	}
	L_info("store: restored backup", "index", index, "forms", len(defs))
	return nil
}

func (b *FileBackend) backupPath(i int) string {
	if i == 0 {
		return b.path + ".bak"
	}
	return fmt.Sprintf("%s.bak.%d", b.path, i)
}

// rotate shifts existing backups down one slot, dropping the oldest, and
// copies the current store file into slot 0.
func (b *FileBackend) rotate() error {
	if b.keep <= 0 {
		return nil
	}
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := os.Remove(b.backupPath(b.keep - 1)); err != nil && !os.IsNotExist(err) {
		return err
	}
	for i := b.keep - 2; i >= 0; i-- {
		if err := os.Rename(b.backupPath(i), b.backupPath(i+1)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return replaceFile(b.backupPath(0), data)
}

// decodeForms parses a stored document strictly: any invalid definition
// fails the whole document.
func decodeForms(data []byte) ([]Definition, error) {
	var defs []Definition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("invalid form list: %w", err)
	}
	if defs == nil {
		return nil, errors.New("invalid form list: document is null")
	}
	return defs, nil
}

// replaceFile writes data to a temp file next to path and renames it over
// path, so readers never see a partial store.
func replaceFile(path string, data []byte) error {
	if err := paths.EnsureParentDir(path); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".forms-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
