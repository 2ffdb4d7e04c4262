package scanner

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"token-scanner/internal/core"
)

// Evaluator scores a contract address. security.Evaluator satisfies this;
// tests substitute stubs.
type Evaluator interface {
	Evaluate(ctx context.Context, address string) *core.SecurityVerdict
}

// Notifier delivers one alert to the outbound channels. Delivery errors are
// logged, not fatal; a failed delivery still consumes the identity's
// cooldown slot.
type Notifier interface {
	Notify(ctx context.Context, alert *core.TokenAlert) error
}

// Options are the orchestrator's cadence and gating knobs.
type Options struct {
	ScanInterval time.Duration // sleep after a clean cycle
	RetryDelay   time.Duration // sleep after a failed cycle
	NotifyPause  time.Duration // gap between consecutive notifications
	MintMinScore float64       // security gate for mint candidates
	BuyMinScore  float64       // security gate for buy candidates
}

// gateScore returns the per-kind minimum security score.
func (o Options) gateScore(kind core.Kind) float64 {
	if kind == core.KindMint {
		return o.MintMinScore
	}
	return o.BuyMinScore
}

// Scanner drives the periodic scan cycle: fetch from every source, evaluate
// survivors, and hand admitted candidates to the notifier. It owns the
// tracker and stats; both are only written from the cycle goroutine.
type Scanner struct {
	sources   []Source
	evaluator Evaluator
	tracker   *core.AlertTracker
	notifier  Notifier
	stats     *core.ScanStats
	opts      Options
	now       func() time.Time
}

// NewScanner wires the pipeline together.
func NewScanner(sources []Source, evaluator Evaluator, tracker *core.AlertTracker, notifier Notifier, stats *core.ScanStats, opts Options) *Scanner {
	return &Scanner{
		sources:   sources,
		evaluator: evaluator,
		tracker:   tracker,
		notifier:  notifier,
		stats:     stats,
		opts:      opts,
		now:       time.Now,
	}
}

// Run executes scan cycles until the context is cancelled. The first cycle
// starts immediately; afterwards the scanner sleeps ScanInterval after a
// clean cycle or RetryDelay after a failed one.
func (s *Scanner) Run(ctx context.Context) {
	log.Println("🔄 Auto-scan loop started")

	for cycle := 1; ; cycle++ {
		if ctx.Err() != nil {
			log.Println("🛑 Scan loop stopped")
			return
		}

		log.Printf("🔍 [Scan #%d] Checking for new tokens...", cycle)
		delay := s.opts.ScanInterval
		if err := s.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				log.Println("🛑 Scan loop stopped")
				return
			}
			log.Printf("❌ [Scan #%d] Cycle failed: %v", cycle, err)
			delay = s.opts.RetryDelay
		} else {
			log.Printf("✅ [Scan #%d] Done. Next scan in %s", cycle, delay)
		}

		select {
		case <-ctx.Done():
			log.Println("🛑 Scan loop stopped")
			return
		case <-time.After(delay):
		}
	}
}

// RunCycle performs one complete sweep over freshly fetched data. It fails
// only when the context is cancelled or every source errored; individual
// source, check, and delivery failures degrade the cycle instead.
func (s *Scanner) RunCycle(ctx context.Context) error {
	start := s.now()

	candidates, failed := s.collect(ctx)
	if len(s.sources) > 0 && failed == len(s.sources) {
		return fmt.Errorf("all %d sources failed", failed)
	}

	evaluated := 0
	for i := range candidates {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c := &candidates[i]

		// Cooldown peek before spending provider calls on the evaluation.
		if s.tracker.Suppressed(c.Identity()) {
			continue
		}

		log.Printf("🆕 New %s: %s (%s)", strings.ToUpper(string(c.Kind)), c.Name, c.Address)
		verdict := s.evaluator.Evaluate(ctx, c.Address)
		evaluated++

		if verdict.Score < s.opts.gateScore(c.Kind) {
			log.Printf("❌ Rejected (low security): %s scored %.0f", c.Name, verdict.Score)
			continue
		}
		if !s.tracker.Admit(c.Identity()) {
			continue
		}

		alert := &core.TokenAlert{Candidate: c, Verdict: verdict, Timestamp: s.now()}
		if err := s.notifier.Notify(ctx, alert); err != nil {
			log.Printf("⚠️  Notify failed for %s: %v", c.Name, err)
		} else {
			s.stats.RecordAlert(c.Kind)
		}

		if s.opts.NotifyPause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.opts.NotifyPause):
			}
		}
	}

	if purged := s.tracker.Purge(); purged > 0 {
		log.Printf("🧹 Purged %d stale alert records", purged)
	}
	s.stats.RecordEvaluated(evaluated)
	s.stats.SetTracked(s.tracker.Len())
	s.stats.RecordCycle(start)
	return nil
}

// collect fetches from every source concurrently. Each source fails soft;
// the failed count lets the caller distinguish "quiet cycle" from "nothing
// reachable". Candidate order follows source registration order so
// notifications stay deterministic.
func (s *Scanner) collect(ctx context.Context) ([]core.Candidate, int) {
	results := make([][]core.Candidate, len(s.sources))
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			candidates, err := src.Fetch(ctx)
			if err != nil {
				log.Printf("⚠️  Source %s: %v", src.Name(), err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			results[i] = candidates
		}(i, src)
	}
	wg.Wait()

	var all []core.Candidate
	for _, r := range results {
		all = append(all, r...)
	}
	return all, failed
}
