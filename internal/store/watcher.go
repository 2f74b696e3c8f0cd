package store

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	. "github.com/qureshisamad/Dynamic-Form-Maker/internal/logging"
)

// Watcher reloads a Library when its backing file changes on disk.
type Watcher struct {
	path     string
	library  *Library
	watcher  *fsnotify.Watcher
	onChange func([]Definition)
	mu       sync.Mutex
	stopCh   chan struct{}
	running  bool
}

// NewWatcher creates a watcher for the file at path. onChange receives the
// reloaded definitions and may be nil.
func NewWatcher(path string, library *Library, onChange func([]Definition)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		path:     path,
		library:  library,
		watcher:  fw,
		onChange: onChange,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins watching.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	// Atomic writes replace the file, so watch the directory
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	L_info("watcher: started", "file", filepath.Base(w.path), "dir", dir)
	go w.loop(ctx)
	return nil
}

// Stop stops watching.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	close(w.stopCh)
	w.watcher.Close()
	w.running = false
	L_debug("watcher: stopped")
}

func (w *Watcher) loop(ctx context.Context) {
	target := filepath.Base(w.path)

	for {
		select {
		case <-ctx.Done():
			L_debug("watcher: context cancelled")
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}

			L_trace("watcher: file changed", "file", target, "op", event.Op.String())
			defs := w.library.Load()
			if w.onChange != nil {
				w.onChange(defs)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			L_warn("watcher: error", "error", err)
		}
	}
}
