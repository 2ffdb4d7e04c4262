package data

import (
	"context"
	"testing"
	"time"
)

func TestHostLimiterAllowWithinBurst(t *testing.T) {
	limiter := NewHostLimiter(1, 3)

	allowed := 0
	for i := 0; i < 5; i++ {
		if limiter.Allow("https://api.dexscreener.com/latest/dex/search/?q=base") {
			allowed++
		}
	}
	if allowed != 3 {
		t.Errorf("Expected 3 requests inside the burst, got %d", allowed)
	}
}

func TestHostLimiterHostsAreIndependent(t *testing.T) {
	limiter := NewHostLimiter(1, 1)

	if !limiter.Allow("https://api.dexscreener.com/latest/dex/tokens/0xabc") {
		t.Error("Expected first dexscreener request to be allowed")
	}
	if limiter.Allow("https://api.dexscreener.com/latest/dex/tokens/0xdef") {
		t.Error("Expected second dexscreener request to be throttled")
	}
	// A different host has its own bucket.
	if !limiter.Allow("https://api.honeypot.is/v2/IsHoneypot?address=0xabc") {
		t.Error("Expected honeypot request to be allowed")
	}
}

func TestHostLimiterSetHostRate(t *testing.T) {
	limiter := NewHostLimiter(1, 1)
	limiter.SetHostRate("api.basescan.org", 100, 5)

	allowed := 0
	for i := 0; i < 5; i++ {
		if limiter.Allow("https://api.basescan.org/api?module=contract") {
			allowed++
		}
	}
	if allowed != 5 {
		t.Errorf("Expected 5 requests after the per-host override, got %d", allowed)
	}
}

func TestHostLimiterWaitCancelled(t *testing.T) {
	limiter := NewHostLimiter(0.001, 1)

	// Drain the single token so the next Wait has to block.
	if !limiter.Allow("https://www.x402scan.com/api/resources") {
		t.Fatal("Expected the first request to be allowed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, "https://www.x402scan.com/api/resources"); err == nil {
		t.Error("Expected Wait to fail once the context expired")
	}
}

func TestHostLimiterBadURL(t *testing.T) {
	limiter := NewHostLimiter(5, 5)

	if limiter.Allow("://not-a-url") {
		t.Error("Expected unparseable URL to be rejected")
	}
	if err := limiter.Wait(context.Background(), "://not-a-url"); err == nil {
		t.Error("Expected Wait to surface the parse error")
	}
}
