package scanner

import (
	"reflect"
	"testing"
	"time"

	"token-scanner/internal/core"
	"token-scanner/internal/data/dexscreener"
	"token-scanner/internal/data/x402scan"
)

func testFilters() Filters {
	return Filters{
		ChainSlug:       "base",
		MinLiquidityUSD: 10000,
		MinVolume24h:    5000,
		PumpThreshold:   20,
		McapMin:         100,
		McapMax:         1000000,
		NewLaunchWindow: 24 * time.Hour,
		MaxPairsPerScan: 20,
		MaxCandidates:   5,
	}
}

func marketPair(addr string, mcap, liq, vol, change float64, createdAt time.Time) dexscreener.Pair {
	var p dexscreener.Pair
	p.ChainID = "base"
	p.BaseToken.Address = addr
	p.BaseToken.Name = "Test Token"
	p.BaseToken.Symbol = "TEST"
	p.PriceUSD = "0.001"
	p.MarketCap = mcap
	p.Liquidity.USD = liq
	p.Volume.H24 = vol
	p.PriceChange.H24 = change
	if !createdAt.IsZero() {
		p.PairCreatedAt = createdAt.UnixMilli()
	}
	p.URL = "https://dexscreener.com/base/" + addr
	return p
}

func TestFilterMarketPairsNewLaunch(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	// Fresh pool, modest volume and momentum: the new-launch rule must win
	// even though the microcap band also matches.
	pair := marketPair("0xAAA111", 40000, 12000, 6000, 5, now)
	out := FilterMarketPairs([]dexscreener.Pair{pair}, now, testFilters())

	if len(out) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(out))
	}
	c := out[0]
	if c.Tag != TagNewLaunch {
		t.Errorf("Expected tag %s, got %s", TagNewLaunch, c.Tag)
	}
	if c.Kind != core.KindBuy {
		t.Errorf("Expected kind buy, got %s", c.Kind)
	}
	if c.Address != "0xaaa111" {
		t.Errorf("Expected lowercased address, got %s", c.Address)
	}
	if c.Potential != "100-1000x" {
		t.Errorf("Expected potential 100-1000x for 40k cap, got %s", c.Potential)
	}
	if c.Source != "dexscreener" {
		t.Errorf("Expected source dexscreener, got %s", c.Source)
	}
}

func TestFilterMarketPairsRulePriority(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	old := now.Add(-48 * time.Hour)
	f := testFilters()

	// Test 1: microcap band with volume, old pool
	out := FilterMarketPairs([]dexscreener.Pair{marketPair("0x1", 500000, 15000, 9000, 3, old)}, now, f)
	if len(out) != 1 || out[0].Tag != TagMicrocap {
		t.Errorf("Expected microcap, got %+v", out)
	}
	if out[0].Potential != "10-100x" {
		t.Errorf("Expected potential 10-100x for 500k cap, got %s", out[0].Potential)
	}

	// Test 2: microcap band with momentum but thin volume still qualifies
	out = FilterMarketPairs([]dexscreener.Pair{marketPair("0x2", 500000, 15000, 1000, 35, old)}, now, f)
	if len(out) != 1 || out[0].Tag != TagMicrocap {
		t.Errorf("Expected microcap via momentum, got %+v", out)
	}

	// Test 3: momentum outside the band falls through to pumping
	out = FilterMarketPairs([]dexscreener.Pair{marketPair("0x3", 5000000, 15000, 9000, 35, old)}, now, f)
	if len(out) != 1 || out[0].Tag != TagPumping {
		t.Errorf("Expected pumping, got %+v", out)
	}

	// Test 4: nothing matches for a quiet old mid-cap
	out = FilterMarketPairs([]dexscreener.Pair{marketPair("0x4", 5000000, 15000, 1000, 3, old)}, now, f)
	if len(out) != 0 {
		t.Errorf("Expected rejection, got %+v", out)
	}

	// Test 5: liquidity floor gates every rule, even a fresh launch
	out = FilterMarketPairs([]dexscreener.Pair{marketPair("0x5", 40000, 8000, 9000, 35, now)}, now, f)
	if len(out) != 0 {
		t.Errorf("Expected rejection below liquidity floor, got %+v", out)
	}
}

func TestFilterMarketPairsNeverEmitsEmptyAddress(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	pair := marketPair("", 40000, 12000, 6000, 5, now)
	pair2 := marketPair("   ", 40000, 12000, 6000, 5, now)

	out := FilterMarketPairs([]dexscreener.Pair{pair, pair2}, now, testFilters())
	if len(out) != 0 {
		t.Errorf("Expected no candidates without address, got %d", len(out))
	}
}

func TestFilterMarketPairsChainRestriction(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	pair := marketPair("0xabc", 40000, 12000, 6000, 5, now)
	pair.ChainID = "solana"

	out := FilterMarketPairs([]dexscreener.Pair{pair}, now, testFilters())
	if len(out) != 0 {
		t.Errorf("Expected off-chain pair dropped, got %d", len(out))
	}
}

func TestFilterMarketPairsScanCap(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	f := testFilters()
	f.MaxPairsPerScan = 1

	pairs := []dexscreener.Pair{
		marketPair("0x1", 40000, 12000, 6000, 5, now),
		marketPair("0x2", 40000, 12000, 6000, 5, now),
	}
	out := FilterMarketPairs(pairs, now, f)
	if len(out) != 1 {
		t.Fatalf("Expected scan cap to limit to 1, got %d", len(out))
	}
	if out[0].Address != "0x1" {
		t.Errorf("Expected first pair kept, got %s", out[0].Address)
	}
}

func TestFilterMarketPairsOrderingAndCap(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	f := testFilters()
	f.MaxCandidates = 3

	pairs := []dexscreener.Pair{
		marketPair("0xold", 40000, 12000, 6000, 5, now.Add(-20*time.Hour)),
		marketPair("0xmid", 40000, 12000, 6000, 5, now.Add(-10*time.Hour)),
		marketPair("0xbig", 90000, 12000, 6000, 5, now.Add(-1*time.Hour)),
		marketPair("0xsmall", 30000, 12000, 6000, 5, now.Add(-1*time.Hour)),
	}
	out := FilterMarketPairs(pairs, now, f)

	if len(out) != 3 {
		t.Fatalf("Expected 3 candidates after cap, got %d", len(out))
	}
	// Newest first; equal creation times ordered by ascending market cap.
	if out[0].Address != "0xsmall" {
		t.Errorf("Expected 0xsmall first, got %s", out[0].Address)
	}
	if out[1].Address != "0xbig" {
		t.Errorf("Expected 0xbig second, got %s", out[1].Address)
	}
	if out[2].Address != "0xmid" {
		t.Errorf("Expected 0xmid third, got %s", out[2].Address)
	}
}

func TestFilterMarketPairsIdempotent(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	pairs := []dexscreener.Pair{
		marketPair("0x1", 40000, 12000, 6000, 5, now.Add(-2*time.Hour)),
		marketPair("0x2", 900000, 15000, 9000, 30, now.Add(-40*time.Hour)),
		marketPair("0x3", 5000000, 15000, 1000, 50, now.Add(-40*time.Hour)),
	}

	first := FilterMarketPairs(pairs, now, testFilters())
	second := FilterMarketPairs(pairs, now, testFilters())

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical output on identical input:\n%+v\nvs\n%+v", first, second)
	}
}

func TestNormalizeMintResources(t *testing.T) {
	resources := []x402scan.Resource{
		{
			Name:      "x420 Token",
			Symbol:    "x420",
			Contract:  "0xABCDEF1234567890ABCDEF1234567890ABCDEF12",
			MintURL:   "https://www.x420.dev/api/puff",
			PriceUSDC: 1,
			Server:    "x420.dev",
		},
		{Name: "No Contract", Symbol: "NC"},
	}

	out := NormalizeMintResources(resources)
	if len(out) != 1 {
		t.Fatalf("Expected 1 mint candidate, got %d", len(out))
	}
	c := out[0]
	if c.Kind != core.KindMint {
		t.Errorf("Expected kind mint, got %s", c.Kind)
	}
	if c.Address != "0xabcdef1234567890abcdef1234567890abcdef12" {
		t.Errorf("Expected lowercased address, got %s", c.Address)
	}
	if c.MintURL != "https://www.x420.dev/api/puff" {
		t.Errorf("Unexpected mint URL: %s", c.MintURL)
	}
	if c.MintPriceUSDC != 1 {
		t.Errorf("Expected mint price 1, got %f", c.MintPriceUSDC)
	}
	if c.Server != "x420.dev" {
		t.Errorf("Unexpected server: %s", c.Server)
	}
	if c.Identity() != "mint_0xabcdef1234567890abcdef1234567890abcdef12" {
		t.Errorf("Unexpected identity: %s", c.Identity())
	}
}
