// Package scheduler debounces and retries per-document frontmatter syncs.
//
// Each document moves through Idle -> Pending -> InProgress and back. A new
// Schedule call while Pending supersedes the old payload (last write wins);
// while InProgress the in-progress marker suppresses self-triggered change
// events and a superseding update is re-armed afterwards.
package scheduler

import (
	"sort"
	"sync"
	"time"
)

// SyncFunc performs the actual metadata sync for one document.
type SyncFunc func(docID string, mentionTexts []string) (wrote bool, err error)

// Config holds scheduler construction options.
type Config struct {
	Sync SyncFunc

	// BaseRetryDelay is multiplied by the attempt number for linear
	// backoff. Default: 500ms.
	BaseRetryDelay time.Duration

	// MaxAttempts bounds retries per enqueue. Default: 3.
	MaxAttempts int

	// OnFailure receives the terminal error after retries are exhausted.
	OnFailure func(docID string, err error)

	// Logf receives debug messages. Nil disables logging.
	Logf func(format string, args ...any)
}

// Scheduler coalesces update requests per document and drives the sync
// with bounded retries.
type Scheduler struct {
	mu         sync.Mutex
	sync       SyncFunc
	pending    map[string]*pendingUpdate
	inProgress map[string]struct{}

	baseRetryDelay time.Duration
	maxAttempts    int
	onFailure      func(docID string, err error)
	logf           func(format string, args ...any)
}

type pendingUpdate struct {
	texts      []string
	enqueuedAt time.Time
	timer      *time.Timer
	attempt    int
}

// Status is a snapshot of scheduler state.
type Status struct {
	// Pending is the number of debounce-waiting updates.
	Pending int
	// InFlight is the number of syncs currently running.
	InFlight int
	// Queued lists the documents with a pending update, sorted.
	Queued []string
}

// New creates a Scheduler.
func New(cfg Config) *Scheduler {
	base := cfg.BaseRetryDelay
	if base == 0 {
		base = 500 * time.Millisecond
	}
	attempts := cfg.MaxAttempts
	if attempts == 0 {
		attempts = 3
	}
	return &Scheduler{
		sync:           cfg.Sync,
		pending:        make(map[string]*pendingUpdate),
		inProgress:     make(map[string]struct{}),
		baseRetryDelay: base,
		maxAttempts:    attempts,
		onFailure:      cfg.OnFailure,
		logf:           cfg.Logf,
	}
}

// Schedule enqueues an update for a document after the delay. An update
// already pending for the document is superseded: its timer is stopped and
// only the new payload will be written.
func (s *Scheduler) Schedule(docID string, mentionTexts []string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduleLocked(docID, mentionTexts, delay, 0)
}

// scheduleLocked arms (or re-arms) the timer for a document. Caller holds mu.
func (s *Scheduler) scheduleLocked(docID string, texts []string, delay time.Duration, attempt int) {
	if prev, ok := s.pending[docID]; ok {
		prev.timer.Stop()
		s.logDebug("superseding pending update for %s", docID)
	}

	p := &pendingUpdate{
		texts:      texts,
		enqueuedAt: time.Now(),
		attempt:    attempt,
	}
	enqueuedAt := p.enqueuedAt
	p.timer = time.AfterFunc(delay, func() {
		s.fire(docID, enqueuedAt)
	})
	s.pending[docID] = p
}

// fire runs when a debounce timer elapses. A pending update whose enqueue
// timestamp no longer matches has been superseded and is ignored.
func (s *Scheduler) fire(docID string, enqueuedAt time.Time) {
	s.mu.Lock()
	p, ok := s.pending[docID]
	if !ok || !p.enqueuedAt.Equal(enqueuedAt) {
		s.mu.Unlock()
		return
	}
	delete(s.pending, docID)

	if _, busy := s.inProgress[docID]; busy {
		// A sync for this document is still running; try again shortly
		// with the same payload.
		s.scheduleLocked(docID, p.texts, s.baseRetryDelay, p.attempt)
		s.mu.Unlock()
		return
	}

	s.inProgress[docID] = struct{}{}
	s.mu.Unlock()

	s.run(docID, p)
}

// run invokes the sync outside the lock. The in-progress marker is released
// on every path, success or failure.
func (s *Scheduler) run(docID string, p *pendingUpdate) {
	var (
		wrote bool
		err   error
	)
	func() {
		defer func() {
			s.mu.Lock()
			delete(s.inProgress, docID)
			s.mu.Unlock()
		}()
		wrote, err = s.sync(docID, p.texts)
	}()

	if err == nil {
		if wrote {
			s.logDebug("synced %s", docID)
		} else {
			s.logDebug("sync of %s was a no-op", docID)
		}
		return
	}

	attempt := p.attempt + 1
	if attempt < s.maxAttempts {
		backoff := s.baseRetryDelay * time.Duration(attempt)
		s.logDebug("sync of %s failed (attempt %d/%d), retrying in %v: %v",
			docID, attempt, s.maxAttempts, backoff, err)

		s.mu.Lock()
		// A fresh Schedule call during the sync wins over the retry.
		if _, exists := s.pending[docID]; !exists {
			s.scheduleLocked(docID, p.texts, backoff, attempt)
		}
		s.mu.Unlock()
		return
	}

	s.logDebug("sync of %s failed after %d attempts: %v", docID, attempt, err)
	if s.onFailure != nil {
		s.onFailure(docID, err)
	}
}

// InProgress reports whether a sync for the document is currently running.
// The lifecycle adapter uses this to suppress the modify event produced by
// the sync's own write.
func (s *Scheduler) InProgress(docID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inProgress[docID]
	return ok
}

// CancelAll stops all pending timers and clears in-progress markers.
// Syncs that already started run to completion; they are idempotent, so no
// join happens at shutdown.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for docID, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, docID)
	}
	for docID := range s.inProgress {
		delete(s.inProgress, docID)
	}
}

// Status returns a snapshot of the scheduler state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Pending:  len(s.pending),
		InFlight: len(s.inProgress),
	}
	for docID := range s.pending {
		st.Queued = append(st.Queued, docID)
	}
	sort.Strings(st.Queued)
	return st
}

func (s *Scheduler) logDebug(format string, args ...any) {
	if s.logf != nil {
		s.logf(format, args...)
	}
}
