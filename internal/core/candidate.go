package core

import (
	"fmt"
	"time"
)

// Kind categorizes how a candidate can be acted on.
type Kind string

const (
	KindMint Kind = "mint" // newly mintable token
	KindBuy  Kind = "buy"  // tradeable market opportunity
)

// Candidate is a token opportunity discovered by a source adapter during one
// scan cycle. Candidates are immutable after normalization and are discarded
// at the end of the cycle unless they trigger an alert.
type Candidate struct {
	Kind    Kind
	Address string // canonical lowercase 0x-hex contract address
	Name    string
	Symbol  string
	Source  string // adapter that produced it, e.g. "dexscreener"
	Tag     string // admission rule that matched: "new-launch", "microcap", "pumping"

	// Market attributes (zero when the source does not provide them)
	PriceUSD       float64
	MarketCap      float64
	LiquidityUSD   float64
	Volume24h      float64
	PriceChange24h float64
	PairCreatedAt  time.Time
	URL            string // provider deep link
	Potential      string // speculative multiplier bucket derived from market cap

	// Mint-specific attributes
	MintURL       string
	MintPriceUSDC float64
	Server        string
}

// Identity returns the dedup/rate-limit key for this candidate. Two
// candidates with the same address but different kinds are tracked
// independently.
func (c *Candidate) Identity() string {
	return string(c.Kind) + "_" + c.Address
}

// CheckStatus is the tri-state outcome of a single security check.
type CheckStatus int

const (
	CheckUnknown CheckStatus = iota // errored, timed out, or skipped
	CheckPassed
	CheckFailed
)

// CheckResult holds the outcome of one security check.
type CheckResult struct {
	Name    string
	Status  CheckStatus
	Message string
}

// Risk is the three-level ordinal risk tier of a verdict.
type Risk string

const (
	RiskLow    Risk = "LOW"
	RiskMedium Risk = "MEDIUM"
	RiskHigh   Risk = "HIGH"
)

// Recommendation tags for each risk tier.
const (
	RecommendSafe    = "SAFE"
	RecommendCaution = "CAUTION"
	RecommendRisky   = "RISKY"
)

// SecurityVerdict is the combined outcome of all security checks for one
// contract address at one point in time. It is recomputed every cycle and
// never cached.
type SecurityVerdict struct {
	Checks         []CheckResult
	Passed         int
	Attempted      int // checks with a definite pass/fail outcome
	Score          float64
	Risk           Risk
	Recommendation string
}

// NewVerdict derives a verdict from an ordered list of check results.
// A check that errored or timed out (CheckUnknown) contributes to neither
// Passed nor Attempted, so the score reflects only checks that actually
// reached a conclusion. Score = Passed/Attempted * 100, or 0 when no check
// concluded.
func NewVerdict(checks []CheckResult) *SecurityVerdict {
	v := &SecurityVerdict{Checks: checks}
	for _, c := range checks {
		switch c.Status {
		case CheckPassed:
			v.Passed++
			v.Attempted++
		case CheckFailed:
			v.Attempted++
		}
	}
	if v.Attempted > 0 {
		v.Score = float64(v.Passed) / float64(v.Attempted) * 100.0
	}

	switch {
	case v.Score >= 75:
		v.Risk = RiskLow
		v.Recommendation = RecommendSafe
	case v.Score >= 50:
		v.Risk = RiskMedium
		v.Recommendation = RecommendCaution
	default:
		v.Risk = RiskHigh
		v.Recommendation = RecommendRisky
	}
	return v
}

// Summary returns a short "passed/attempted" figure for logs.
func (v *SecurityVerdict) Summary() string {
	return fmt.Sprintf("%d/%d (%.0f%%)", v.Passed, v.Attempted, v.Score)
}

// TokenAlert is the structured notification payload handed to the notifier.
// Presentation formatting belongs to the messaging layer, not here.
type TokenAlert struct {
	Candidate *Candidate
	Verdict   *SecurityVerdict
	Timestamp time.Time
}
