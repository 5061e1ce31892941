package anomaly

import "sync"

// Tracker is the append-only anomaly log shared by all pipeline stages.
// Entries keep insertion order and are never deduplicated or mutated.
//
// Stages run sequentially today, but the localizer and the activity
// classifier have no dependency on each other and may be parallelized
// later, so Record takes a lock rather than relying on that ordering.
type Tracker struct {
	mu      sync.Mutex
	entries []Anomaly
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Record appends one anomaly. It never fails.
func (t *Tracker) Record(a Anomaly) {
	t.mu.Lock()
	t.entries = append(t.entries, a)
	t.mu.Unlock()
}

// CountsByKind returns the number of recorded anomalies per kind.
func (t *Tracker) CountsByKind() map[Kind]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	counts := make(map[Kind]int)
	for _, a := range t.entries {
		counts[a.Kind]++
	}
	return counts
}

// All returns the recorded anomalies in insertion order.
func (t *Tracker) All() []Anomaly {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Anomaly, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the total number of recorded anomalies.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
