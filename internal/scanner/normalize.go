package scanner

import (
	"sort"
	"strings"
	"time"

	"token-scanner/internal/core"
	"token-scanner/internal/data/dexscreener"
	"token-scanner/internal/data/x402scan"
)

// Market cap below this gets the aggressive multiplier label.
const potentialPivotUSD = 100000

// Admission rule tags, highest priority first.
const (
	TagNewLaunch = "new-launch"
	TagMicrocap  = "microcap"
	TagPumping   = "pumping"
)

// Filters are the admission thresholds for market candidates. All functions
// in this file are pure: same input, same thresholds, same clock value in,
// same candidates out.
type Filters struct {
	ChainSlug       string        // DexScreener chain identifier, e.g. "base"
	MinLiquidityUSD float64       // floor for every admission rule
	MinVolume24h    float64       // microcap volume floor
	PumpThreshold   float64       // 24h price change (%) counted as momentum
	McapMin         float64       // microcap band, inclusive
	McapMax         float64
	NewLaunchWindow time.Duration // pool age ceiling for the new-launch rule
	MaxPairsPerScan int           // raw pairs examined per cycle
	MaxCandidates   int           // admitted candidates kept per cycle
}

// FilterMarketPairs converts raw DexScreener pairs into admitted buy
// candidates: restricts to the configured chain, caps the number of pairs
// examined, drops pairs without a contract address, applies the admission
// rules, then orders survivors newest-first (ties by ascending market cap)
// and keeps the top MaxCandidates.
func FilterMarketPairs(pairs []dexscreener.Pair, now time.Time, f Filters) []core.Candidate {
	if f.MaxPairsPerScan > 0 && len(pairs) > f.MaxPairsPerScan {
		pairs = pairs[:f.MaxPairsPerScan]
	}

	var admitted []core.Candidate
	for _, pair := range pairs {
		if pair.ChainID != f.ChainSlug {
			continue
		}
		candidate, ok := normalizePair(pair, now, f)
		if !ok {
			continue
		}
		admitted = append(admitted, candidate)
	}

	sort.SliceStable(admitted, func(i, j int) bool {
		if !admitted[i].PairCreatedAt.Equal(admitted[j].PairCreatedAt) {
			return admitted[i].PairCreatedAt.After(admitted[j].PairCreatedAt)
		}
		return admitted[i].MarketCap < admitted[j].MarketCap
	})

	if f.MaxCandidates > 0 && len(admitted) > f.MaxCandidates {
		admitted = admitted[:f.MaxCandidates]
	}
	return admitted
}

// normalizePair maps one pair into the common schema and applies the
// admission rules. Returns false for pairs without a usable contract
// address or matching no rule.
func normalizePair(pair dexscreener.Pair, now time.Time, f Filters) (core.Candidate, bool) {
	address := strings.ToLower(strings.TrimSpace(pair.BaseToken.Address))
	if address == "" {
		return core.Candidate{}, false
	}

	tag, ok := classify(pair, now, f)
	if !ok {
		return core.Candidate{}, false
	}

	name := pair.BaseToken.Name
	if name == "" {
		name = "Unknown"
	}
	symbol := pair.BaseToken.Symbol
	if symbol == "" {
		symbol = "???"
	}

	return core.Candidate{
		Kind:           core.KindBuy,
		Address:        address,
		Name:           name,
		Symbol:         symbol,
		Source:         "dexscreener",
		Tag:            tag,
		PriceUSD:       pair.Price(),
		MarketCap:      pair.MarketCap,
		LiquidityUSD:   pair.Liquidity.USD,
		Volume24h:      pair.Volume.H24,
		PriceChange24h: pair.PriceChange.H24,
		PairCreatedAt:  pair.CreatedAt(),
		URL:            pair.URL,
		Potential:      potentialLabel(pair.MarketCap),
	}, true
}

// classify returns the highest-priority admission tag the pair satisfies.
// Every rule requires the liquidity floor; beyond that:
//   - new-launch: pool created within the window
//   - microcap: market cap inside the band, plus volume or momentum
//   - pumping: momentum alone
func classify(pair dexscreener.Pair, now time.Time, f Filters) (string, bool) {
	if pair.Liquidity.USD <= f.MinLiquidityUSD {
		return "", false
	}

	created := pair.CreatedAt()
	if !created.IsZero() && now.Sub(created) <= f.NewLaunchWindow {
		return TagNewLaunch, true
	}
	if pair.MarketCap >= f.McapMin && pair.MarketCap <= f.McapMax &&
		(pair.Volume.H24 > f.MinVolume24h || pair.PriceChange.H24 > f.PumpThreshold) {
		return TagMicrocap, true
	}
	if pair.PriceChange.H24 > f.PumpThreshold {
		return TagPumping, true
	}
	return "", false
}

// potentialLabel buckets market cap into the speculative multiplier label.
func potentialLabel(mcap float64) string {
	if mcap < potentialPivotUSD {
		return "100-1000x"
	}
	return "10-100x"
}

// NormalizeMintResources converts x402scan listings into mint candidates.
// Entries without a contract address are dropped; market attributes stay
// zero since the listing carries none.
func NormalizeMintResources(resources []x402scan.Resource) []core.Candidate {
	var candidates []core.Candidate
	for _, r := range resources {
		address := strings.ToLower(strings.TrimSpace(r.Contract))
		if address == "" {
			continue
		}
		candidates = append(candidates, core.Candidate{
			Kind:          core.KindMint,
			Address:       address,
			Name:          r.Name,
			Symbol:        r.Symbol,
			Source:        "x402scan",
			URL:           r.MintURL,
			MintURL:       r.MintURL,
			MintPriceUSDC: r.PriceUSDC,
			Server:        r.Server,
		})
	}
	return candidates
}
