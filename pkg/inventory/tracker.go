package inventory

import (
	"sync"
	"sync/atomic"
)

// Tracker publishes the latest completed report to concurrent readers.
// Refreshes are ordered by when they started, not when they finished: a
// slow refresh that began before the currently published one finishes into
// the void instead of clobbering newer data.
type Tracker struct {
	seq atomic.Uint64

	mu     sync.RWMutex
	ticket uint64
	last   *Report
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Begin returns a ticket for a refresh that is about to start. Tickets
// increase monotonically.
func (t *Tracker) Begin() uint64 {
	return t.seq.Add(1)
}

// Record publishes report as the outcome of the refresh identified by
// ticket. It reports whether the report was accepted; reports from
// refreshes older than the published one are discarded.
func (t *Tracker) Record(ticket uint64, report *Report) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ticket <= t.ticket {
		return false
	}
	t.ticket = ticket
	t.last = report
	return true
}

// Latest returns the most recently published report, or nil before the
// first refresh completes.
func (t *Tracker) Latest() *Report {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}
