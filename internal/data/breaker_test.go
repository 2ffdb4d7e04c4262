package data

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker"
)

func TestSourceBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	breaker := NewSourceBreaker("test-source")
	boom := errors.New("connection refused")

	for i := 0; i < 3; i++ {
		_, err := breaker.Execute(func() (interface{}, error) {
			return nil, boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("Expected the fetch error on attempt %d, got %v", i+1, err)
		}
	}

	if breaker.State() != gobreaker.StateOpen {
		t.Errorf("Expected open state after 3 consecutive failures, got %v", breaker.State())
	}

	// While open, the wrapped function is never invoked.
	invoked := false
	_, err := breaker.Execute(func() (interface{}, error) {
		invoked = true
		return nil, nil
	})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Expected ErrOpenState while open, got %v", err)
	}
	if invoked {
		t.Error("Expected the fetch to be short-circuited while open")
	}
}

func TestSourceBreakerStaysClosedOnSuccess(t *testing.T) {
	breaker := NewSourceBreaker("test-source")

	for i := 0; i < 10; i++ {
		out, err := breaker.Execute(func() (interface{}, error) {
			return 42, nil
		})
		if err != nil {
			t.Fatalf("Expected success on attempt %d, got %v", i+1, err)
		}
		if out.(int) != 42 {
			t.Fatalf("Expected passthrough result, got %v", out)
		}
	}

	if breaker.State() != gobreaker.StateClosed {
		t.Errorf("Expected closed state after successes, got %v", breaker.State())
	}
}

func TestSourceBreakerFailureResetBySuccess(t *testing.T) {
	breaker := NewSourceBreaker("test-source")
	boom := errors.New("timeout")

	// Two failures, then a success: the consecutive counter resets.
	for i := 0; i < 2; i++ {
		_, _ = breaker.Execute(func() (interface{}, error) { return nil, boom })
	}
	if _, err := breaker.Execute(func() (interface{}, error) { return "ok", nil }); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	// Two more failures must not trip it (3 consecutive are required).
	for i := 0; i < 2; i++ {
		_, _ = breaker.Execute(func() (interface{}, error) { return nil, boom })
	}
	if breaker.State() != gobreaker.StateClosed {
		t.Errorf("Expected closed state after interleaved success, got %v", breaker.State())
	}
}
