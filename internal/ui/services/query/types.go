package query

import (
	"time"

	"searchdeck/internal/domain"
	"searchdeck/internal/ui/services/results"
)

// DefaultDebounce is the quiescence delay between the last keystroke and the commit
const DefaultDebounce = 180 * time.Millisecond

// Resolver is the part of the result cache the synchronizer drives
type Resolver interface {
	Resolve(key domain.RequestKey) (results.Snapshot, *results.Call)
}

// Recents records submitted queries
type Recents interface {
	Add(q string)
}

// Submission is what a submit or re-resolve produced. Call is nil on a cache hit.
type Submission struct {
	Key      domain.RequestKey
	Snapshot results.Snapshot
	Call     *results.Call
}

// Handle identifies one scheduled debounce commit. The zero Handle is never pending.
type Handle uint64

// Debouncer tracks the single pending commit. It owns no timer; the caller arranges for
// Fire to be called with the handle after Delay, which keeps time under test control.
type Debouncer struct {
	delay   time.Duration
	next    Handle
	pending Handle
}

// NewDebouncer returns a debouncer with the given delay
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay}
}

// Delay returns the quiescence delay
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Schedule cancels any pending commit and returns the handle for a new one
func (d *Debouncer) Schedule() Handle {
	d.next++
	d.pending = d.next
	return d.pending
}

// Cancel drops the pending commit, if any
func (d *Debouncer) Cancel() {
	d.pending = 0
}

// Pending returns the pending handle
func (d *Debouncer) Pending() (Handle, bool) {
	return d.pending, d.pending != 0
}

// Fire reports whether h is still the pending commit and clears it if so
func (d *Debouncer) Fire(h Handle) bool {
	if h == 0 || h != d.pending {
		return false
	}
	d.pending = 0
	return true
}
