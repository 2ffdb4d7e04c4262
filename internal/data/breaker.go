package data

import (
	"log"
	"time"

	"github.com/sony/gobreaker"
)

// NewSourceBreaker returns a circuit breaker for a source-fetch path. It
// trips after 3 consecutive failures (or a >5% failure rate across at least
// 20 requests in the rolling window) and probes again after 60 seconds.
// While open, fetches fail immediately and the cycle proceeds with the
// other sources.
func NewSourceBreaker(name string) *gobreaker.CircuitBreaker {
	st := gobreaker.Settings{Name: name}
	st.Interval = 60 * time.Second
	st.Timeout = 60 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		if counts.ConsecutiveFailures >= 3 {
			return true
		}
		total := counts.Requests
		if total < 20 {
			return false
		}
		return float64(counts.TotalFailures)/float64(total) > 0.05
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Printf("⚡ Breaker %s: %s -> %s", name, from.String(), to.String())
	}
	return gobreaker.NewCircuitBreaker(st)
}
