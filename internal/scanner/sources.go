package scanner

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sony/gobreaker"

	"token-scanner/internal/core"
	"token-scanner/internal/data"
	"token-scanner/internal/data/dexscreener"
	"token-scanner/internal/data/x402scan"
	"token-scanner/internal/token"
)

// Source produces candidates from one upstream provider. Fetch errors are
// soft: the orchestrator logs them and treats the source as empty for the
// cycle.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]core.Candidate, error)
}

// MetadataResolver fills in missing token identity from the chain.
type MetadataResolver interface {
	Metadata(ctx context.Context, address string) (*token.Metadata, error)
}

// MintSource lists newly mintable tokens from x402scan.
type MintSource struct {
	client   *x402scan.Client
	resolver MetadataResolver // optional
	breaker  *gobreaker.CircuitBreaker
}

// NewMintSource creates the mint source. resolver may be nil; without it,
// listings missing a name or symbol pass through as-is.
func NewMintSource(client *x402scan.Client, resolver MetadataResolver) *MintSource {
	return &MintSource{
		client:   client,
		resolver: resolver,
		breaker:  data.NewSourceBreaker("x402scan"),
	}
}

func (s *MintSource) Name() string { return "x402scan" }

// Fetch pulls the latest mintable listings, normalizes them, and resolves
// missing metadata on-chain, fail-soft.
func (s *MintSource) Fetch(ctx context.Context) ([]core.Candidate, error) {
	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.client.LatestResources(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch mint listings: %w", err)
	}
	resources := out.([]x402scan.Resource)

	candidates := NormalizeMintResources(resources)
	for i := range candidates {
		c := &candidates[i]
		if (c.Name != "" && c.Symbol != "") || s.resolver == nil {
			continue
		}
		meta, err := s.resolver.Metadata(ctx, c.Address)
		if err != nil {
			log.Printf("⚠️  Metadata lookup failed for %s: %v", c.Address, err)
			continue
		}
		if c.Name == "" {
			c.Name = meta.Name
		}
		if c.Symbol == "" {
			c.Symbol = meta.Symbol
		}
	}
	return candidates, nil
}

// MarketSource scans DexScreener for trending pairs on the configured chain.
type MarketSource struct {
	client  *dexscreener.Client
	breaker *gobreaker.CircuitBreaker
	filters Filters
	now     func() time.Time
}

// NewMarketSource creates the market source. The chain slug in filters
// doubles as the search query.
func NewMarketSource(client *dexscreener.Client, filters Filters) *MarketSource {
	return &MarketSource{
		client:  client,
		breaker: data.NewSourceBreaker("dexscreener"),
		filters: filters,
		now:     time.Now,
	}
}

func (s *MarketSource) Name() string { return "dexscreener" }

// Fetch searches for pairs and runs them through the admission filters.
func (s *MarketSource) Fetch(ctx context.Context) ([]core.Candidate, error) {
	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.client.SearchPairs(ctx, s.filters.ChainSlug)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch market pairs: %w", err)
	}
	pairs := out.([]dexscreener.Pair)

	return FilterMarketPairs(pairs, s.now(), s.filters), nil
}
