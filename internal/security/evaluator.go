package security

import (
	"context"
	"sync"
	"time"

	"token-scanner/internal/core"
)

// CheckFunc probes one property of a contract address. Implementations map
// their own provider errors to CheckUnknown; they never panic.
type CheckFunc func(ctx context.Context, address string) core.CheckResult

// Check is one named security check with its own timeout budget.
type Check struct {
	Name    string
	Timeout time.Duration
	Run     CheckFunc
}

// Evaluator runs a fixed set of independent checks against a contract
// address and combines the outcomes into a single verdict.
type Evaluator struct {
	checks []Check
}

// NewEvaluator creates an evaluator over the given checks. Check order is
// preserved in the verdict.
func NewEvaluator(checks []Check) *Evaluator {
	return &Evaluator{checks: checks}
}

// Evaluate runs every check concurrently, each bounded by its own timeout,
// and waits for all of them to settle. It never fails: a check that errors
// or overruns its budget contributes an unknown result, degrading the score
// instead of aborting the scan.
func (e *Evaluator) Evaluate(ctx context.Context, address string) *core.SecurityVerdict {
	results := make([]core.CheckResult, len(e.checks))
	var wg sync.WaitGroup

	for i, check := range e.checks {
		wg.Add(1)
		go func(i int, check Check) {
			defer wg.Done()
			results[i] = runCheck(ctx, check, address)
		}(i, check)
	}
	wg.Wait()

	return core.NewVerdict(results)
}

// runCheck executes one check under its timeout. The result channel is
// buffered so a check that finishes after the deadline does not leak a
// blocked goroutine.
func runCheck(ctx context.Context, check Check, address string) core.CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, check.Timeout)
	defer cancel()

	done := make(chan core.CheckResult, 1)
	go func() {
		done <- check.Run(checkCtx, address)
	}()

	select {
	case result := <-done:
		return result
	case <-checkCtx.Done():
		return core.CheckResult{
			Name:    check.Name,
			Status:  core.CheckUnknown,
			Message: "⚠️ Check timeout",
		}
	}
}
