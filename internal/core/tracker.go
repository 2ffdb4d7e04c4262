package core

import (
	"sort"
	"strings"
	"time"
)

// AlertTracker enforces the at-most-one-notification-per-cooldown contract
// for candidate identities. It is owned by the scan orchestrator and mutated
// only from the cycle-driving goroutine; no internal locking is needed.
//
// The working set is bounded two ways: entries older than the horizon are
// purged once per cycle, and when the set grows past capacity the oldest
// entries are evicted down to the target size.
type AlertTracker struct {
	records  map[string]time.Time // identity -> last notified
	capacity int
	target   int
	cooldown time.Duration
	horizon  time.Duration
	now      func() time.Time // swapped out by tests for deterministic time
}

// NewAlertTracker creates a tracker with the given working-set bounds.
// target must be smaller than capacity; cooldown and horizon are the
// re-notification window and the purge age.
func NewAlertTracker(capacity, target int, cooldown, horizon time.Duration) *AlertTracker {
	if target >= capacity {
		target = capacity * 4 / 5
	}
	return &AlertTracker{
		records:  make(map[string]time.Time),
		capacity: capacity,
		target:   target,
		cooldown: cooldown,
		horizon:  horizon,
		now:      time.Now,
	}
}

// Admit reports whether a notification may fire for the identity right now.
// It returns false without side effects while the identity is inside its
// cooldown window; otherwise it records the current time as the identity's
// last notification and returns true.
func (t *AlertTracker) Admit(identity string) bool {
	now := t.now()
	if last, ok := t.records[identity]; ok {
		if now.Sub(last) < t.cooldown {
			return false
		}
	}
	t.records[identity] = now
	if len(t.records) > t.capacity {
		t.evict()
	}
	return true
}

// Suppressed reports whether the identity is currently inside its cooldown
// window. Unlike Admit it never mutates the tracker, so the orchestrator can
// use it to skip evaluating candidates that could not be admitted anyway.
func (t *AlertTracker) Suppressed(identity string) bool {
	last, ok := t.records[identity]
	if !ok {
		return false
	}
	return t.now().Sub(last) < t.cooldown
}

// Purge drops all records older than the horizon and returns how many were
// removed. Called once per scan cycle.
func (t *AlertTracker) Purge() int {
	now := t.now()
	removed := 0
	for id, last := range t.records {
		if now.Sub(last) >= t.horizon {
			delete(t.records, id)
			removed++
		}
	}
	return removed
}

// Len returns the current size of the working set.
func (t *AlertTracker) Len() int {
	return len(t.records)
}

// CountKind returns how many tracked identities belong to the given kind.
func (t *AlertTracker) CountKind(kind Kind) int {
	prefix := string(kind) + "_"
	n := 0
	for id := range t.records {
		if strings.HasPrefix(id, prefix) {
			n++
		}
	}
	return n
}

// evict removes the oldest records until the set is back at the target size.
func (t *AlertTracker) evict() {
	type entry struct {
		id   string
		last time.Time
	}
	entries := make([]entry, 0, len(t.records))
	for id, last := range t.records {
		entries = append(entries, entry{id, last})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].last.Before(entries[j].last)
	})
	for i := 0; len(t.records) > t.target && i < len(entries); i++ {
		delete(t.records, entries[i].id)
	}
}
