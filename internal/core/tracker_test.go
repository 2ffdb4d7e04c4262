package core

import (
	"fmt"
	"testing"
	"time"
)

func TestAlertTracker_CooldownWindow(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	current := base

	tracker := NewAlertTracker(500, 400, time.Hour, 24*time.Hour)
	tracker.now = func() time.Time { return current }

	identity := "buy_0xabc0000000000000000000000000000000000001"

	// First admit at t=0 should pass and record the time
	if !tracker.Admit(identity) {
		t.Error("Expected first Admit to return true")
	}
	if got := tracker.records[identity]; !got.Equal(base) {
		t.Errorf("Expected lastNotified %v, got %v", base, got)
	}

	// Second admit at t=1800s (30min into a 1h cooldown) must be suppressed
	// and must not touch the recorded time
	current = base.Add(1800 * time.Second)
	if tracker.Admit(identity) {
		t.Error("Expected Admit inside cooldown to return false")
	}
	if got := tracker.records[identity]; !got.Equal(base) {
		t.Errorf("Expected lastNotified unchanged at %v, got %v", base, got)
	}

	// At t=3700s the window has elapsed; admit again and update the record
	current = base.Add(3700 * time.Second)
	if !tracker.Admit(identity) {
		t.Error("Expected Admit after cooldown to return true")
	}
	if got := tracker.records[identity]; !got.Equal(current) {
		t.Errorf("Expected lastNotified updated to %v, got %v", current, got)
	}
}

func TestAlertTracker_KindsTrackedIndependently(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tracker := NewAlertTracker(500, 400, time.Hour, 24*time.Hour)
	tracker.now = func() time.Time { return base }

	addr := "0xabc0000000000000000000000000000000000002"
	mint := Candidate{Kind: KindMint, Address: addr}
	buy := Candidate{Kind: KindBuy, Address: addr}

	if !tracker.Admit(mint.Identity()) {
		t.Error("Expected mint identity to be admitted")
	}
	// Same address, different kind: not suppressed by the mint record
	if !tracker.Admit(buy.Identity()) {
		t.Error("Expected buy identity for the same address to be admitted")
	}
	if tracker.Len() != 2 {
		t.Errorf("Expected 2 tracked identities, got %d", tracker.Len())
	}
	if tracker.CountKind(KindMint) != 1 {
		t.Errorf("Expected 1 mint identity, got %d", tracker.CountKind(KindMint))
	}
	if tracker.CountKind(KindBuy) != 1 {
		t.Errorf("Expected 1 buy identity, got %d", tracker.CountKind(KindBuy))
	}
}

func TestAlertTracker_Suppressed(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	current := base
	tracker := NewAlertTracker(500, 400, time.Hour, 24*time.Hour)
	tracker.now = func() time.Time { return current }

	identity := "mint_0xabc0000000000000000000000000000000000003"

	if tracker.Suppressed(identity) {
		t.Error("Expected unknown identity to not be suppressed")
	}
	tracker.Admit(identity)
	if !tracker.Suppressed(identity) {
		t.Error("Expected identity to be suppressed right after admit")
	}
	// Suppressed is a pure read: the record must still admit after cooldown
	current = base.Add(2 * time.Hour)
	if tracker.Suppressed(identity) {
		t.Error("Expected identity to leave cooldown after 2h")
	}
	if !tracker.Admit(identity) {
		t.Error("Expected Admit to return true after cooldown elapsed")
	}
}

func TestAlertTracker_CapacityEviction(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	current := base
	tracker := NewAlertTracker(5, 3, time.Minute, 24*time.Hour)
	tracker.now = func() time.Time { return current }

	// Insert 6 identities with strictly increasing timestamps; crossing the
	// capacity of 5 must evict the oldest down to the target of 3
	for i := 0; i < 6; i++ {
		current = base.Add(time.Duration(i) * time.Hour)
		tracker.Admit(fmt.Sprintf("buy_0x%040d", i))
	}

	if tracker.Len() != 3 {
		t.Errorf("Expected working set of 3 after eviction, got %d", tracker.Len())
	}
	// The newest three entries survive
	for i := 3; i < 6; i++ {
		id := fmt.Sprintf("buy_0x%040d", i)
		if _, ok := tracker.records[id]; !ok {
			t.Errorf("Expected %s to survive eviction", id)
		}
	}
	// The oldest three do not
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("buy_0x%040d", i)
		if _, ok := tracker.records[id]; ok {
			t.Errorf("Expected %s to be evicted", id)
		}
	}
}

func TestAlertTracker_PurgeHorizon(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	current := base
	tracker := NewAlertTracker(500, 400, time.Minute, 24*time.Hour)
	tracker.now = func() time.Time { return current }

	tracker.Admit("mint_0xold0000000000000000000000000000000000001")
	current = base.Add(23 * time.Hour)
	tracker.Admit("mint_0xnew0000000000000000000000000000000000002")

	// At t=24h the first record hits the horizon, the second does not
	current = base.Add(24 * time.Hour)
	removed := tracker.Purge()
	if removed != 1 {
		t.Errorf("Expected 1 purged record, got %d", removed)
	}
	if tracker.Len() != 1 {
		t.Errorf("Expected 1 remaining record, got %d", tracker.Len())
	}
	if _, ok := tracker.records["mint_0xnew0000000000000000000000000000000000002"]; !ok {
		t.Error("Expected the recent record to survive the purge")
	}
}
