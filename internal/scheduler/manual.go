package scheduler

import (
	"sort"
	"sync"
	"time"

	"github.com/sourdin/jobsieve/internal/interfaces"
)

// ManualScheduler is a virtual-clock scheduler for tests. Callbacks fire
// synchronously from Advance, so delay policy can be asserted without
// sleeping.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	nextID  int
	pending []*manualEntry
}

type manualEntry struct {
	id        int
	due       time.Duration
	fn        func()
	cancelled bool
	sched     *ManualScheduler
}

func (e *manualEntry) Cancel() {
	e.sched.mu.Lock()
	defer e.sched.mu.Unlock()
	e.cancelled = true
}

// NewManualScheduler creates a virtual-clock scheduler starting at zero
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// ScheduleAfter registers fn to fire when the virtual clock advances past d
func (s *ManualScheduler) ScheduleAfter(d time.Duration, fn func()) interfaces.CancelToken {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	entry := &manualEntry{
		id:    s.nextID,
		due:   s.now + d,
		fn:    fn,
		sched: s,
	}
	s.pending = append(s.pending, entry)
	return entry
}

// Advance moves the virtual clock forward, firing due callbacks in order.
// Callbacks scheduled while firing are honored within the same advance when
// they fall due before the target time.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		entry := s.popDue(target)
		if entry == nil {
			break
		}
		entry.fn()
	}

	s.mu.Lock()
	s.now = target
	s.mu.Unlock()
}

// popDue removes and returns the earliest non-cancelled entry due at or
// before target, advancing the clock to its due time
func (s *ManualScheduler) popDue(target time.Duration) *manualEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	sort.SliceStable(s.pending, func(i, j int) bool {
		return s.pending[i].due < s.pending[j].due
	})

	for i, entry := range s.pending {
		if entry.cancelled {
			continue
		}
		if entry.due > target {
			break
		}
		s.pending = append(s.pending[:i], s.pending[i+1:]...)
		if entry.due > s.now {
			s.now = entry.due
		}
		return entry
	}

	// Drop cancelled entries opportunistically
	kept := s.pending[:0]
	for _, entry := range s.pending {
		if !entry.cancelled {
			kept = append(kept, entry)
		}
	}
	s.pending = kept

	return nil
}

// PendingCount returns the number of scheduled, non-cancelled callbacks
func (s *ManualScheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, entry := range s.pending {
		if !entry.cancelled {
			count++
		}
	}
	return count
}
