// Package history keeps a bounded, linear undo/redo log of diagram source snapshots.
//
// The log is a single sequence of entries plus a cursor. Pushing while the cursor
// is behind the newest entry discards everything after the cursor, and pushing
// past the capacity evicts the oldest entry.
package history

import (
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/domain"
)

// DefaultCapacity is the maximum number of entries kept per project.
const DefaultCapacity = 50

// Stack is safe for concurrent use.
type Stack struct {
	mu sync.Mutex

	entries  []domain.HistoryEntry
	cursor   int
	capacity int
	now      func() time.Time
}

// NewStack creates an empty stack. A non-positive capacity uses DefaultCapacity.
func NewStack(capacity int) *Stack {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Stack{
		capacity: capacity,
		now:      time.Now,
	}
}

// WithClock replaces the timestamp source. Used by tests.
func (s *Stack) WithClock(now func() time.Time) *Stack {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// Push records a new snapshot and moves the cursor onto it.
func (s *Stack) Push(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) > 0 && s.cursor < len(s.entries)-1 {
		s.entries = s.entries[:s.cursor+1]
	}

	s.entries = append(s.entries, domain.HistoryEntry{
		SourceText: text,
		Timestamp:  s.now(),
	})

	if len(s.entries) > s.capacity {
		excess := len(s.entries) - s.capacity
		s.entries = append([]domain.HistoryEntry(nil), s.entries[excess:]...)
	}
	s.cursor = len(s.entries) - 1
}

// Undo steps the cursor back and returns the entry it lands on.
func (s *Stack) Undo() (domain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 || s.cursor == 0 {
		return domain.HistoryEntry{}, domain.ErrNoOp
	}
	s.cursor--
	return s.entries[s.cursor], nil
}

// Redo steps the cursor forward and returns the entry it lands on.
func (s *Stack) Redo() (domain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 || s.cursor >= len(s.entries)-1 {
		return domain.HistoryEntry{}, domain.ErrNoOp
	}
	s.cursor++
	return s.entries[s.cursor], nil
}

// Reset replaces the log with a single entry holding seed.
func (s *Stack) Reset(seed string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = []domain.HistoryEntry{{SourceText: seed, Timestamp: s.now()}}
	s.cursor = 0
}

// Restore jumps the cursor directly to index.
func (s *Stack) Restore(index int) (domain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.entries) {
		return domain.HistoryEntry{}, domain.ErrOutOfRange
	}
	s.cursor = index
	return s.entries[index], nil
}

// Current returns the entry under the cursor.
func (s *Stack) Current() (domain.HistoryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return domain.HistoryEntry{}, false
	}
	return s.entries[s.cursor], true
}

// Entries returns a copy of the log, oldest first.
func (s *Stack) Entries() []domain.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.HistoryEntry(nil), s.entries...)
}

func (s *Stack) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries) > 0 && s.cursor > 0
}

func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries) > 0 && s.cursor < len(s.entries)-1
}
