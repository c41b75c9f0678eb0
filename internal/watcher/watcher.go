// Package watcher watches a vault directory and feeds document events to a
// lifecycle handler.
//
// It can be used standalone via `atm watch` or embedded in the LSP server.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/atmark-dev/atmark/internal/lifecycle"
	"github.com/atmark-dev/atmark/internal/vault"
)

// Watcher monitors a vault directory for changes and emits lifecycle events.
type Watcher struct {
	vault   *vault.Vault
	handler lifecycle.Handler

	// Configuration
	debounceDelay time.Duration
	debug         bool

	// Internal state
	fsWatcher *fsnotify.Watcher
	pending   map[string]pendingChange
	mu        sync.Mutex

	// Callbacks
	onEvent func(ev lifecycle.Event, err error)
}

type pendingChange struct {
	kind        lifecycle.EventKind
	scheduledAt time.Time
}

// Config holds configuration options for the Watcher.
type Config struct {
	Vault         *vault.Vault
	Handler       lifecycle.Handler
	DebounceDelay time.Duration // Default: 100ms
	Debug         bool
	OnEvent       func(ev lifecycle.Event, err error) // Optional callback
}

// New creates a new Watcher with the given configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.Vault == nil {
		return nil, fmt.Errorf("vault is required")
	}
	if cfg.Handler == nil {
		return nil, fmt.Errorf("handler is required")
	}

	debounce := cfg.DebounceDelay
	if debounce == 0 {
		debounce = 100 * time.Millisecond
	}

	return &Watcher{
		vault:         cfg.Vault,
		handler:       cfg.Handler,
		debounceDelay: debounce,
		debug:         cfg.Debug,
		pending:       make(map[string]pendingChange),
		onEvent:       cfg.OnEvent,
	}, nil
}

// Start begins watching the vault for file changes.
// It blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	var err error
	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.fsWatcher.Close()

	if err := w.addWatchRecursive(w.vault.Root()); err != nil {
		return fmt.Errorf("failed to watch vault: %w", err)
	}

	w.logDebug("Watching vault: %s", w.vault.Root())

	// Start debounce processor
	go w.processDebounced(ctx)

	// Event loop
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleFSEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logDebug("Watcher error: %v", err)
		}
	}
}

// handleFSEvent processes a single filesystem event.
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	if !strings.HasSuffix(path, ".md") {
		// Watch newly created directories.
		if event.Op&fsnotify.Create != 0 {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				_ = w.addWatchRecursive(path)
			}
		}
		return
	}

	docID := w.vault.DocumentIDFromPath(path)
	if docID == "" {
		return
	}

	w.logDebug("Event: %s %s", event.Op, path)

	switch {
	case event.Op&fsnotify.Create != 0:
		w.scheduleChange(docID, lifecycle.Created)
	case event.Op&fsnotify.Write != 0:
		w.scheduleChange(docID, lifecycle.Modified)
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		// Renames surface as a remove of the old path plus a create of the
		// new one; true renames go through the lifecycle adapter directly.
		w.emit(lifecycle.Event{Kind: lifecycle.Deleted, ID: docID})
	}
}

// scheduleChange adds a document to the pending queue with debouncing.
// A Created kind is sticky: a write right after a create still reports the
// document as created.
func (w *Watcher) scheduleChange(docID string, kind lifecycle.EventKind) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if prev, ok := w.pending[docID]; ok && prev.kind == lifecycle.Created {
		kind = lifecycle.Created
	}
	w.pending[docID] = pendingChange{kind: kind, scheduledAt: time.Now()}
}

// processDebounced flushes pending changes after the debounce delay.
func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processPending()
		}
	}
}

// processPending emits events for documents past the debounce delay.
func (w *Watcher) processPending() {
	w.mu.Lock()
	now := time.Now()
	ready := make([]lifecycle.Event, 0)

	for docID, change := range w.pending {
		if now.Sub(change.scheduledAt) >= w.debounceDelay {
			ready = append(ready, lifecycle.Event{Kind: change.kind, ID: docID})
			delete(w.pending, docID)
		}
	}
	w.mu.Unlock()

	for _, ev := range ready {
		w.emit(ev)
	}
}

func (w *Watcher) emit(ev lifecycle.Event) {
	err := w.handler.HandleEvent(ev)
	if w.onEvent != nil {
		w.onEvent(ev, err)
	}
	if err != nil {
		w.logDebug("Failed to handle %s %s: %v", ev.Kind, ev.ID, err)
	} else {
		w.logDebug("Handled: %s %s", ev.Kind, ev.ID)
	}
}

// addWatchRecursive adds a directory and all subdirectories to the watcher.
func (w *Watcher) addWatchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if info.IsDir() {
			if w.shouldIgnoreDir(path) {
				return filepath.SkipDir
			}
			if err := w.fsWatcher.Add(path); err != nil {
				w.logDebug("Failed to watch %s: %v", path, err)
			}
		}
		return nil
	})
}

// shouldIgnoreDir returns true if the directory should not be watched.
func (w *Watcher) shouldIgnoreDir(path string) bool {
	base := filepath.Base(path)
	return base == vault.StateDir || base == ".git" || base == ".trash" || base == "node_modules"
}

// logDebug logs a debug message if debug mode is enabled.
func (w *Watcher) logDebug(format string, args ...interface{}) {
	if w.debug {
		fmt.Fprintf(os.Stderr, "[atmark-watcher] "+format+"\n", args...)
	}
}
