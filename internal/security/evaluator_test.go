package security

import (
	"context"
	"testing"
	"time"

	"token-scanner/internal/core"
)

func stubCheck(name string, status core.CheckStatus, msg string) Check {
	return Check{
		Name:    name,
		Timeout: time.Second,
		Run: func(ctx context.Context, address string) core.CheckResult {
			return core.CheckResult{Name: name, Status: status, Message: msg}
		},
	}
}

func TestEvaluateAllPass(t *testing.T) {
	e := NewEvaluator([]Check{
		stubCheck("honeypot", core.CheckPassed, "✅ Tax: 0.0/0.0%"),
		stubCheck("liquidity", core.CheckPassed, "✅ Liq: $20,000"),
	})

	v := e.Evaluate(context.Background(), "0xabc")

	if v.Passed != 2 {
		t.Errorf("Expected 2 passed, got %d", v.Passed)
	}
	if v.Attempted != 2 {
		t.Errorf("Expected 2 attempted, got %d", v.Attempted)
	}
	if v.Score != 100 {
		t.Errorf("Expected score 100, got %f", v.Score)
	}
	if v.Risk != core.RiskLow {
		t.Errorf("Expected LOW risk, got %s", v.Risk)
	}
	if v.Recommendation != core.RecommendSafe {
		t.Errorf("Expected SAFE, got %s", v.Recommendation)
	}
}

func TestEvaluateUnknownExcludedFromScore(t *testing.T) {
	// A timed-out check contributes nothing; the failed one drives the score.
	e := NewEvaluator([]Check{
		stubCheck("honeypot", core.CheckUnknown, "⚠️ Check timeout"),
		stubCheck("liquidity", core.CheckFailed, "⚠️ Low liq: $3,000"),
	})

	v := e.Evaluate(context.Background(), "0xabc")

	if v.Passed != 0 {
		t.Errorf("Expected 0 passed, got %d", v.Passed)
	}
	if v.Attempted != 1 {
		t.Errorf("Expected 1 attempted, got %d", v.Attempted)
	}
	if v.Score != 0 {
		t.Errorf("Expected score 0, got %f", v.Score)
	}
	if v.Risk != core.RiskHigh {
		t.Errorf("Expected HIGH risk, got %s", v.Risk)
	}
}

func TestEvaluateTimeoutYieldsUnknown(t *testing.T) {
	slow := Check{
		Name:    "holders",
		Timeout: 10 * time.Millisecond,
		Run: func(ctx context.Context, address string) core.CheckResult {
			// Ignores its context on purpose; the evaluator must not wait.
			time.Sleep(300 * time.Millisecond)
			return core.CheckResult{Name: "holders", Status: core.CheckPassed, Message: "✅ 10+ holders"}
		},
	}
	e := NewEvaluator([]Check{
		slow,
		stubCheck("verification", core.CheckPassed, "✅ Contract Verified"),
	})

	start := time.Now()
	v := e.Evaluate(context.Background(), "0xabc")
	elapsed := time.Since(start)

	if elapsed > 200*time.Millisecond {
		t.Errorf("Expected evaluation bounded by check timeout, took %v", elapsed)
	}
	if v.Checks[0].Status != core.CheckUnknown {
		t.Errorf("Expected unknown for timed-out check, got %v", v.Checks[0].Status)
	}
	if v.Checks[0].Message != "⚠️ Check timeout" {
		t.Errorf("Unexpected timeout message: %s", v.Checks[0].Message)
	}
	if v.Passed != 1 || v.Attempted != 1 {
		t.Errorf("Expected 1/1 from the fast check, got %d/%d", v.Passed, v.Attempted)
	}
	if v.Score != 100 {
		t.Errorf("Expected score 100, got %f", v.Score)
	}
}

func TestEvaluatePreservesCheckOrder(t *testing.T) {
	names := []string{"verification", "honeypot", "liquidity", "holders"}
	checks := make([]Check, 0, len(names))
	for i, name := range names {
		delay := time.Duration(len(names)-i) * 5 * time.Millisecond
		n := name
		checks = append(checks, Check{
			Name:    n,
			Timeout: time.Second,
			Run: func(ctx context.Context, address string) core.CheckResult {
				time.Sleep(delay) // later checks finish first
				return core.CheckResult{Name: n, Status: core.CheckPassed, Message: "ok"}
			},
		})
	}

	v := NewEvaluator(checks).Evaluate(context.Background(), "0xabc")

	if len(v.Checks) != len(names) {
		t.Fatalf("Expected %d results, got %d", len(names), len(v.Checks))
	}
	for i, name := range names {
		if v.Checks[i].Name != name {
			t.Errorf("Expected check %d to be %s, got %s", i, name, v.Checks[i].Name)
		}
	}
}
