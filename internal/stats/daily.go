package stats

// This file contains helpers around daily stats. It complements stats.go.

// ResetDaily clears every recorded day.
// Intended for tests and dev convenience.
func (t *Tracker) ResetDaily() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.days {
		delete(t.days, k)
	}
}

// Prune drops days other than the current one.
func (t *Tracker) Prune() {
	key := dateKey(t.now())
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.days {
		if k != key {
			delete(t.days, k)
		}
	}
}
