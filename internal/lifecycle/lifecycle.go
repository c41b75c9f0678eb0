// Package lifecycle translates document events into index and sync work.
//
// Event sources (the filesystem watcher, the LSP server, CLI commands) feed
// typed events to an Adapter instead of talking to the index directly, so
// the reaction to a change is the same no matter where it was observed.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/atmark-dev/atmark/internal/index"
	"github.com/atmark-dev/atmark/internal/scheduler"
	"github.com/atmark-dev/atmark/internal/vault"
)

// EventKind classifies a document event.
type EventKind int

const (
	Created EventKind = iota
	Modified
	Deleted
	Renamed
)

func (k EventKind) String() string {
	switch k {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	case Renamed:
		return "renamed"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is a single document lifecycle event. OldID is set for Renamed.
type Event struct {
	Kind  EventKind
	ID    string
	OldID string
}

// Handler consumes document events.
type Handler interface {
	HandleEvent(ev Event) error
}

// UpdateDelay is how long edits are allowed to settle before a scheduled
// metadata sync runs.
const UpdateDelay = time.Second

// Adapter drives the mention index and the update scheduler from document
// events.
type Adapter struct {
	vault *vault.Vault
	index *index.Index
	sched *scheduler.Scheduler

	// AutoUpdate enables the scheduled frontmatter sync on change events.
	AutoUpdate bool

	// Delay overrides UpdateDelay when positive (used in tests).
	Delay time.Duration

	// Logf receives debug messages. Nil disables logging.
	Logf func(format string, args ...any)
}

// NewAdapter creates an Adapter. sched may be nil when auto-update is off.
func NewAdapter(v *vault.Vault, ix *index.Index, sched *scheduler.Scheduler) *Adapter {
	return &Adapter{vault: v, index: ix, sched: sched}
}

// HandleEvent applies one event to the index and, when enabled, schedules a
// metadata sync. Read failures abort without touching the index.
func (a *Adapter) HandleEvent(ev Event) error {
	switch ev.Kind {
	case Created, Modified:
		return a.handleChange(ev)
	case Deleted:
		a.logDebug("document deleted: %s", ev.ID)
		return a.index.Remove(ev.ID)
	case Renamed:
		a.logDebug("document renamed: %s -> %s", ev.OldID, ev.ID)
		return a.index.Rename(ev.OldID, ev.ID)
	}
	return fmt.Errorf("unknown event kind %d", ev.Kind)
}

func (a *Adapter) handleChange(ev Event) error {
	if a.sched != nil && a.sched.InProgress(ev.ID) {
		// The change is our own sync write; reacting would loop.
		a.logDebug("skipping self-triggered %s event for %s", ev.Kind, ev.ID)
		return nil
	}

	content, err := a.vault.Read(ev.ID)
	if err != nil {
		return fmt.Errorf("handle %s event: %w", ev.Kind, err)
	}

	if err := a.index.Rescan(ev.ID, content); err != nil {
		return err
	}
	a.logDebug("rescanned %s (%s)", ev.ID, ev.Kind)

	if a.AutoUpdate && a.sched != nil {
		delay := a.Delay
		if delay <= 0 {
			delay = UpdateDelay
		}
		a.sched.Schedule(ev.ID, a.index.DocumentTexts(ev.ID), delay)
	}
	return nil
}

func (a *Adapter) logDebug(format string, args ...any) {
	if a.Logf != nil {
		a.Logf(format, args...)
	}
}
