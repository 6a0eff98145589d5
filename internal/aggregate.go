package internal

import "sync"

// Aggregate is the running total shared by scan workers (writers) and the
// reporter (reader). The total only grows; complete flips to true once.
//
// The lock is never held across I/O: the three methods are the whole surface.
type Aggregate struct {
	mu       sync.RWMutex
	total    uint64
	complete bool
}

// FoldIn adds one worker's local count.
func (a *Aggregate) FoldIn(delta uint64) {
	a.mu.Lock()
	a.total += delta
	a.mu.Unlock()
}

// Snapshot returns a consistent view of total and completion.
// When complete is true, total is final.
func (a *Aggregate) Snapshot() (total uint64, complete bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.total, a.complete
}

// MarkComplete signals that no further folds will happen.
// It must only be called after every worker has returned.
func (a *Aggregate) MarkComplete() {
	a.mu.Lock()
	a.complete = true
	a.mu.Unlock()
}
