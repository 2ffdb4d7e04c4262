package honeypot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"token-scanner/internal/data"
)

const apiBaseURL = "https://api.honeypot.is"

// Client is a honeypot.is API client. The service simulates a buy and a sell
// against the token's pool and reports whether the sell is blocked.
type Client struct {
	httpClient *http.Client
	baseURL    string
	chainID    string
	limiter    *data.HostLimiter
}

// NewClient creates a new honeypot.is client for the given chain ID
// (e.g. "8453" for Base).
func NewClient(chainID string, limiter *data.HostLimiter) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    apiBaseURL,
		chainID:    chainID,
		limiter:    limiter,
	}
}

// Report is the subset of the IsHoneypot response the scanner acts on.
// Taxes are percentages (e.g. 5 means 5%).
type Report struct {
	HoneypotResult struct {
		IsHoneypot bool `json:"isHoneypot"`
	} `json:"honeypotResult"`
	SimulationResult struct {
		BuyTax  float64 `json:"buyTax"`
		SellTax float64 `json:"sellTax"`
	} `json:"simulationResult"`
}

// IsHoneypot calls GET /v2/IsHoneypot for the token and returns the simulation report.
func (c *Client) IsHoneypot(ctx context.Context, address string) (*Report, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("chainID", c.chainID)
	apiURL := fmt.Sprintf("%s/v2/IsHoneypot?%s", c.baseURL, params.Encode())

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, apiURL); err != nil {
			return nil, fmt.Errorf("honeypot: rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("honeypot: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("honeypot: request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("honeypot: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("honeypot: HTTP %d: %s", resp.StatusCode, string(body))
	}

	var report Report
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("honeypot: parse response: %w", err)
	}
	return &report, nil
}
