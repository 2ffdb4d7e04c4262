package dexscreener

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"token-scanner/internal/data"
)

const apiBaseURL = "https://api.dexscreener.com"

// Client is a DexScreener API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *data.HostLimiter
}

// NewClient creates a new DexScreener client. The limiter paces outbound
// requests per host and may be nil to disable pacing.
func NewClient(limiter *data.HostLimiter) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    apiBaseURL,
		limiter:    limiter,
	}
}

// BaseToken identifies the traded token of a pair.
type BaseToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// Pair is a single trading pair from the DexScreener API.
// priceUsd arrives as a decimal string; everything else is numeric.
type Pair struct {
	ChainID     string    `json:"chainId"`
	DexID       string    `json:"dexId"`
	URL         string    `json:"url"`
	PairAddress string    `json:"pairAddress"`
	BaseToken   BaseToken `json:"baseToken"`
	PriceUSD    string    `json:"priceUsd"`
	Liquidity   struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	PriceChange struct {
		H24 float64 `json:"h24"`
	} `json:"priceChange"`
	MarketCap     float64 `json:"marketCap"`
	PairCreatedAt int64   `json:"pairCreatedAt"`
}

// Price returns the pair price in USD, or 0 when the field is missing or unparseable.
func (p *Pair) Price() float64 {
	v, err := strconv.ParseFloat(p.PriceUSD, 64)
	if err != nil {
		return 0
	}
	return v
}

// CreatedAt converts the millisecond pairCreatedAt field to a time.Time.
// Returns the zero time when the provider omitted the field.
func (p *Pair) CreatedAt() time.Time {
	if p.PairCreatedAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(p.PairCreatedAt)
}

type pairsResponse struct {
	SchemaVersion string `json:"schemaVersion"`
	Pairs         []Pair `json:"pairs"`
}

// SearchPairs calls GET /latest/dex/search/?q=<query> and returns the matching pairs.
func (c *Client) SearchPairs(ctx context.Context, query string) ([]Pair, error) {
	apiURL := fmt.Sprintf("%s/latest/dex/search/?q=%s", c.baseURL, url.QueryEscape(query))
	return c.fetchPairs(ctx, apiURL)
}

// TokenPairs calls GET /latest/dex/tokens/<address> and returns every pool
// trading the token across all chains.
func (c *Client) TokenPairs(ctx context.Context, address string) ([]Pair, error) {
	apiURL := fmt.Sprintf("%s/latest/dex/tokens/%s", c.baseURL, address)
	return c.fetchPairs(ctx, apiURL)
}

func (c *Client) fetchPairs(ctx context.Context, apiURL string) ([]Pair, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, apiURL); err != nil {
			return nil, fmt.Errorf("dexscreener: rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dexscreener: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dexscreener: request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("dexscreener: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dexscreener: HTTP %d: %s", resp.StatusCode, string(body))
	}

	var parsed pairsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("dexscreener: parse response: %w", err)
	}
	return parsed.Pairs, nil
}
