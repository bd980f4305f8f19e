package snapshot

import (
	"sync"
	"time"
)

// Tracker holds the single mutable capture-session record. One orchestration
// writes it; any number of observers read it. Writes keyed by a stale session
// ID are dropped, so a finished session can never clobber its successor.
//
// Terminal states (completed, error) are retained until the next session
// begins or Clear is called, so a late observer can still read the outcome.
type Tracker struct {
	mu        sync.Mutex
	current   *SessionState
	observers []Observer
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Subscribe registers an observer for session updates. Observers are called
// synchronously after each write; absence of observers is not an error.
func (t *Tracker) Subscribe(fn Observer) {
	t.mu.Lock()
	t.observers = append(t.observers, fn)
	t.mu.Unlock()
}

// Begin installs a fresh record for the given session, overwriting whatever
// session came before.
func (t *Tracker) Begin(id string) {
	t.write(SessionState{
		ID:        id,
		Phase:     PhasePreparing,
		Message:   "starting capture",
		Progress:  -1,
		UpdatedAt: time.Now(),
	}, true)
}

// Update overwrites the current record unconditionally (no merge) and
// notifies observers. Writes from a session that is not current are ignored.
// Progress is 0-100, or -1 when the phase has no meaningful percentage.
func (t *Tracker) Update(id string, phase Phase, message string, progress int) {
	t.write(SessionState{
		ID:        id,
		Phase:     phase,
		Message:   message,
		Progress:  progress,
		UpdatedAt: time.Now(),
	}, false)
}

// Query returns a snapshot of the current session record, or false when no
// session has run since the last Clear.
func (t *Tracker) Query() (SessionState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return SessionState{}, false
	}
	return *t.current, true
}

// Clear drops the record if it still belongs to the given session.
func (t *Tracker) Clear(id string) {
	t.mu.Lock()
	if t.current != nil && t.current.ID == id {
		t.current = nil
	}
	t.mu.Unlock()
}

func (t *Tracker) write(state SessionState, begin bool) {
	t.mu.Lock()
	if !begin && (t.current == nil || t.current.ID != state.ID) {
		t.mu.Unlock()
		return
	}
	t.current = &state
	obs := make([]Observer, len(t.observers))
	copy(obs, t.observers)
	t.mu.Unlock()

	for _, fn := range obs {
		fn(state)
	}
}
