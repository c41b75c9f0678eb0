package scheduler

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

// recorder collects sync invocations and signals each one on a channel.
type recorder struct {
	mu    sync.Mutex
	calls [][]string
	done  chan struct{}
	err   error
}

func newRecorder(buffer int) *recorder {
	return &recorder{done: make(chan struct{}, buffer)}
}

func (r *recorder) sync(docID string, texts []string) (bool, error) {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string{docID}, texts...))
	err := r.err
	r.mu.Unlock()
	r.done <- struct{}{}
	return err == nil, err
}

func (r *recorder) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for sync invocation")
	}
}

func TestDebounceCoalesces(t *testing.T) {
	rec := newRecorder(4)
	s := New(Config{Sync: rec.sync})

	s.Schedule("a.md", []string{"@first"}, 50*time.Millisecond)
	s.Schedule("a.md", []string{"@second"}, 50*time.Millisecond)

	waitFor(t, rec.done)
	// Give a superseded timer a chance to misfire before asserting.
	time.Sleep(100 * time.Millisecond)

	if got := rec.callCount(); got != 1 {
		t.Fatalf("sync ran %d times, want 1", got)
	}
	want := []string{"a.md", "@second"}
	if !reflect.DeepEqual(rec.calls[0], want) {
		t.Errorf("sync payload = %v, want %v", rec.calls[0], want)
	}
}

func TestDifferentDocumentsDoNotCoalesce(t *testing.T) {
	rec := newRecorder(4)
	s := New(Config{Sync: rec.sync})

	s.Schedule("a.md", []string{"@x"}, 10*time.Millisecond)
	s.Schedule("b.md", []string{"@y"}, 10*time.Millisecond)

	waitFor(t, rec.done)
	waitFor(t, rec.done)

	if got := rec.callCount(); got != 2 {
		t.Errorf("sync ran %d times, want 2", got)
	}
}

func TestRetryThenFailureNotice(t *testing.T) {
	rec := newRecorder(8)
	rec.err = errors.New("disk full")

	var failMu sync.Mutex
	var failures []string
	s := New(Config{
		Sync:           rec.sync,
		BaseRetryDelay: 5 * time.Millisecond,
		MaxAttempts:    3,
		OnFailure: func(docID string, err error) {
			failMu.Lock()
			failures = append(failures, docID)
			failMu.Unlock()
		},
	})

	s.Schedule("a.md", []string{"@x"}, time.Millisecond)

	for i := 0; i < 3; i++ {
		waitFor(t, rec.done)
	}
	// No fourth attempt after exhaustion.
	time.Sleep(100 * time.Millisecond)
	if got := rec.callCount(); got != 3 {
		t.Errorf("sync ran %d times, want exactly 3 attempts", got)
	}

	failMu.Lock()
	defer failMu.Unlock()
	if !reflect.DeepEqual(failures, []string{"a.md"}) {
		t.Errorf("failure notices = %v, want one for a.md", failures)
	}
}

func TestInProgressMarker(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	finished := make(chan struct{})

	s := New(Config{Sync: func(docID string, texts []string) (bool, error) {
		close(started)
		<-release
		return true, nil
	}})
	go func() {
		s.Schedule("a.md", nil, time.Millisecond)
	}()

	<-started
	if !s.InProgress("a.md") {
		t.Error("InProgress = false while sync is running")
	}
	if s.InProgress("b.md") {
		t.Error("InProgress = true for an unrelated document")
	}

	close(release)
	go func() {
		for s.InProgress("a.md") {
			time.Sleep(time.Millisecond)
		}
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("in-progress marker was never released")
	}
}

func TestCancelAll(t *testing.T) {
	rec := newRecorder(4)
	s := New(Config{Sync: rec.sync})

	s.Schedule("a.md", []string{"@x"}, 50*time.Millisecond)
	s.Schedule("b.md", []string{"@y"}, 50*time.Millisecond)
	s.CancelAll()

	time.Sleep(150 * time.Millisecond)
	if got := rec.callCount(); got != 0 {
		t.Errorf("sync ran %d times after CancelAll, want 0", got)
	}
	if st := s.Status(); st.Pending != 0 || st.InFlight != 0 {
		t.Errorf("Status after CancelAll = %+v", st)
	}
}

func TestStatus(t *testing.T) {
	rec := newRecorder(4)
	s := New(Config{Sync: rec.sync})

	s.Schedule("b.md", nil, time.Hour)
	s.Schedule("a.md", nil, time.Hour)

	st := s.Status()
	if st.Pending != 2 || st.InFlight != 0 {
		t.Errorf("Status = %+v, want 2 pending", st)
	}
	if !reflect.DeepEqual(st.Queued, []string{"a.md", "b.md"}) {
		t.Errorf("Queued = %v, want sorted doc IDs", st.Queued)
	}

	s.CancelAll()
}
