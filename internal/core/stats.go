package core

import (
	"sync"
	"time"
)

// ScanStats holds the lifetime counters for the scan pipeline. The
// orchestrator is the only writer; the Telegram command poller and the
// status API read snapshots concurrently, so access goes through a mutex.
type ScanStats struct {
	mu             sync.Mutex
	cyclesRun      int64
	evaluated      int64
	mintAlerts     int64
	buyAlerts      int64
	trackedCount   int
	lastCycleStart time.Time
	startedAt      time.Time
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	CyclesRun      int64
	Evaluated      int64
	MintAlerts     int64
	BuyAlerts      int64
	TrackedCount   int
	LastCycleStart time.Time
	StartedAt      time.Time
}

// NewScanStats creates a stats holder with the start time recorded.
func NewScanStats() *ScanStats {
	return &ScanStats{startedAt: time.Now()}
}

// RecordCycle marks the start of a scan cycle.
func (s *ScanStats) RecordCycle(start time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cyclesRun++
	s.lastCycleStart = start
}

// RecordEvaluated adds to the count of candidates run through the evaluator.
func (s *ScanStats) RecordEvaluated(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evaluated += int64(n)
}

// RecordAlert increments the per-kind alert counter.
func (s *ScanStats) RecordAlert(kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case KindMint:
		s.mintAlerts++
	case KindBuy:
		s.buyAlerts++
	}
}

// SetTracked records the current size of the dedup working set.
func (s *ScanStats) SetTracked(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trackedCount = n
}

// Snapshot returns a consistent copy of all counters.
func (s *ScanStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsSnapshot{
		CyclesRun:      s.cyclesRun,
		Evaluated:      s.evaluated,
		MintAlerts:     s.mintAlerts,
		BuyAlerts:      s.buyAlerts,
		TrackedCount:   s.trackedCount,
		LastCycleStart: s.lastCycleStart,
		StartedAt:      s.startedAt,
	}
}
