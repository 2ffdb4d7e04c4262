package security

import (
	"context"
	"fmt"
	"time"

	"token-scanner/internal/core"
	"token-scanner/internal/data/basescan"
	"token-scanner/internal/data/dexscreener"
	"token-scanner/internal/data/honeypot"
	"token-scanner/internal/utils"
)

// Thresholds are the tunable floors and ceilings the checks compare against.
type Thresholds struct {
	MinLiquidityUSD float64 // largest pool must hold at least this much
	MaxTaxPercent   float64 // buy or sell tax above this fails the token
	MinHolderCount  int     // fewer distinct holders than this fails
}

// DefaultChecks builds the four production checks in their fixed order:
// contract verification, honeypot/tax simulation, liquidity, holders.
// chainSlug restricts the liquidity check to pools on that chain.
func DefaultChecks(bs *basescan.Client, hp *honeypot.Client, dex *dexscreener.Client, chainSlug string, t Thresholds) []Check {
	return []Check{
		verificationCheck(bs),
		honeypotCheck(hp, t),
		liquidityCheck(dex, chainSlug, t),
		holdersCheck(bs, t),
	}
}

// verificationCheck passes when verified source code is published for the
// address. Without an API key the check is skipped entirely.
func verificationCheck(bs *basescan.Client) Check {
	return Check{
		Name:    "verification",
		Timeout: 10 * time.Second,
		Run: func(ctx context.Context, address string) core.CheckResult {
			if !bs.HasKey() {
				return core.CheckResult{Name: "verification", Status: core.CheckUnknown, Message: "⚠️ API key not set (skip)"}
			}
			verified, err := bs.IsVerified(ctx, address)
			if err != nil {
				return core.CheckResult{Name: "verification", Status: core.CheckUnknown, Message: "⚠️ Check skipped"}
			}
			if !verified {
				return core.CheckResult{Name: "verification", Status: core.CheckFailed, Message: "⚠️ NOT Verified"}
			}
			return core.CheckResult{Name: "verification", Status: core.CheckPassed, Message: "✅ Contract Verified"}
		},
	}
}

// honeypotCheck fails when a simulated sell is blocked or either tax exceeds
// the threshold.
func honeypotCheck(hp *honeypot.Client, t Thresholds) Check {
	return Check{
		Name:    "honeypot",
		Timeout: 15 * time.Second,
		Run: func(ctx context.Context, address string) core.CheckResult {
			report, err := hp.IsHoneypot(ctx, address)
			if err != nil {
				return core.CheckResult{Name: "honeypot", Status: core.CheckUnknown, Message: "⚠️ Check timeout"}
			}
			if report.HoneypotResult.IsHoneypot {
				return core.CheckResult{Name: "honeypot", Status: core.CheckFailed, Message: "🚨 HONEYPOT!"}
			}
			buy := report.SimulationResult.BuyTax
			sell := report.SimulationResult.SellTax
			if buy > t.MaxTaxPercent || sell > t.MaxTaxPercent {
				return core.CheckResult{
					Name:    "honeypot",
					Status:  core.CheckFailed,
					Message: fmt.Sprintf("⚠️ High Tax: %.1f/%.1f%%", buy, sell),
				}
			}
			return core.CheckResult{
				Name:    "honeypot",
				Status:  core.CheckPassed,
				Message: fmt.Sprintf("✅ Tax: %.1f/%.1f%%", buy, sell),
			}
		},
	}
}

// liquidityCheck fails when the token has no pool on the chain or the largest
// pool is below the floor.
func liquidityCheck(dex *dexscreener.Client, chainSlug string, t Thresholds) Check {
	return Check{
		Name:    "liquidity",
		Timeout: 10 * time.Second,
		Run: func(ctx context.Context, address string) core.CheckResult {
			pairs, err := dex.TokenPairs(ctx, address)
			if err != nil {
				return core.CheckResult{Name: "liquidity", Status: core.CheckUnknown, Message: "⚠️ Check failed"}
			}

			best := 0.0
			found := false
			for _, pair := range pairs {
				if pair.ChainID != chainSlug {
					continue
				}
				found = true
				if pair.Liquidity.USD > best {
					best = pair.Liquidity.USD
				}
			}
			if !found {
				return core.CheckResult{Name: "liquidity", Status: core.CheckFailed, Message: "❌ No pool"}
			}
			if best < t.MinLiquidityUSD {
				return core.CheckResult{
					Name:    "liquidity",
					Status:  core.CheckFailed,
					Message: fmt.Sprintf("⚠️ Low liq: $%s", utils.FormatUSD(best)),
				}
			}
			return core.CheckResult{
				Name:    "liquidity",
				Status:  core.CheckPassed,
				Message: fmt.Sprintf("✅ Liq: $%s", utils.FormatUSD(best)),
			}
		},
	}
}

// holdersCheck samples the first page of the holder list and fails when too
// few distinct holders come back. Skipped without an API key.
func holdersCheck(bs *basescan.Client, t Thresholds) Check {
	return Check{
		Name:    "holders",
		Timeout: 10 * time.Second,
		Run: func(ctx context.Context, address string) core.CheckResult {
			if !bs.HasKey() {
				return core.CheckResult{Name: "holders", Status: core.CheckUnknown, Message: "⚠️ API key not set (skip)"}
			}
			count, err := bs.HolderCount(ctx, address)
			if err != nil {
				return core.CheckResult{Name: "holders", Status: core.CheckUnknown, Message: "⚠️ Check skipped"}
			}
			if count < t.MinHolderCount {
				return core.CheckResult{Name: "holders", Status: core.CheckFailed, Message: fmt.Sprintf("⚠️ %d holders", count)}
			}
			return core.CheckResult{Name: "holders", Status: core.CheckPassed, Message: fmt.Sprintf("✅ %d+ holders", count)}
		},
	}
}
