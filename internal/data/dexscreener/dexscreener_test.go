package dexscreener

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPairsResponseDecode(t *testing.T) {
	raw := `{
		"schemaVersion": "1.0.0",
		"pairs": [
			{
				"chainId": "base",
				"dexId": "uniswap",
				"url": "https://dexscreener.com/base/0xabc",
				"pairAddress": "0xAbC1230000000000000000000000000000000000",
				"baseToken": {
					"address": "0x1111111111111111111111111111111111111111",
					"name": "Test Gem",
					"symbol": "GEM"
				},
				"priceUsd": "0.00012345",
				"liquidity": {"usd": 25000.5},
				"volume": {"h24": 18000},
				"priceChange": {"h24": 42.7},
				"marketCap": 150000,
				"pairCreatedAt": 1724300000000
			},
			{
				"chainId": "solana",
				"dexId": "raydium",
				"url": "https://dexscreener.com/solana/xyz",
				"baseToken": {
					"address": "So11111111111111111111111111111111111111112",
					"name": "Other",
					"symbol": "OTH"
				},
				"priceUsd": "1.5"
			}
		]
	}`

	var parsed pairsResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(parsed.Pairs) != 2 {
		t.Fatalf("Expected 2 pairs, got %d", len(parsed.Pairs))
	}

	p := parsed.Pairs[0]
	if p.ChainID != "base" {
		t.Errorf("Expected chainId base, got %s", p.ChainID)
	}
	if p.BaseToken.Address != "0x1111111111111111111111111111111111111111" {
		t.Errorf("Unexpected base token address: %s", p.BaseToken.Address)
	}
	if p.BaseToken.Symbol != "GEM" {
		t.Errorf("Expected symbol GEM, got %s", p.BaseToken.Symbol)
	}
	if p.Price() != 0.00012345 {
		t.Errorf("Expected price 0.00012345, got %f", p.Price())
	}
	if p.Liquidity.USD != 25000.5 {
		t.Errorf("Expected liquidity 25000.5, got %f", p.Liquidity.USD)
	}
	if p.Volume.H24 != 18000 {
		t.Errorf("Expected volume 18000, got %f", p.Volume.H24)
	}
	if p.PriceChange.H24 != 42.7 {
		t.Errorf("Expected price change 42.7, got %f", p.PriceChange.H24)
	}
	if p.MarketCap != 150000 {
		t.Errorf("Expected market cap 150000, got %f", p.MarketCap)
	}

	created := p.CreatedAt()
	want := time.UnixMilli(1724300000000)
	if !created.Equal(want) {
		t.Errorf("Expected created at %v, got %v", want, created)
	}

	// Second pair omits most optional fields.
	q := parsed.Pairs[1]
	if q.Liquidity.USD != 0 {
		t.Errorf("Expected zero liquidity for sparse pair, got %f", q.Liquidity.USD)
	}
	if q.MarketCap != 0 {
		t.Errorf("Expected zero market cap for sparse pair, got %f", q.MarketCap)
	}
	if !q.CreatedAt().IsZero() {
		t.Errorf("Expected zero creation time for sparse pair, got %v", q.CreatedAt())
	}
	if q.Price() != 1.5 {
		t.Errorf("Expected price 1.5, got %f", q.Price())
	}
}

func TestPairPriceUnparseable(t *testing.T) {
	p := Pair{PriceUSD: ""}
	if p.Price() != 0 {
		t.Errorf("Expected 0 for empty priceUsd, got %f", p.Price())
	}

	p.PriceUSD = "not-a-number"
	if p.Price() != 0 {
		t.Errorf("Expected 0 for junk priceUsd, got %f", p.Price())
	}
}

func TestPairsResponseNullPairs(t *testing.T) {
	// The tokens endpoint returns {"pairs": null} for unknown addresses.
	var parsed pairsResponse
	if err := json.Unmarshal([]byte(`{"schemaVersion":"1.0.0","pairs":null}`), &parsed); err != nil {
		t.Fatalf("Failed to decode null pairs: %v", err)
	}
	if len(parsed.Pairs) != 0 {
		t.Errorf("Expected no pairs, got %d", len(parsed.Pairs))
	}
}
