package x402scan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"token-scanner/internal/data"
)

const apiBaseURL = "https://www.x402scan.com"

// Client is an x402scan API client listing newly mintable tokens.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *data.HostLimiter
}

// NewClient creates a new x402scan client.
func NewClient(limiter *data.HostLimiter) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    apiBaseURL,
		limiter:    limiter,
	}
}

// Resource is one mintable-token listing.
type Resource struct {
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Contract  string  `json:"contract"`
	MintURL   string  `json:"mint_url"`
	PriceUSDC float64 `json:"price_usdc"`
	Server    string  `json:"server"`
}

// LatestResources calls GET /api/resources and returns the listed tokens.
func (c *Client) LatestResources(ctx context.Context) ([]Resource, error) {
	apiURL := c.baseURL + "/api/resources"

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, apiURL); err != nil {
			return nil, fmt.Errorf("x402scan: rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("x402scan: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("x402scan: request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("x402scan: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("x402scan: HTTP %d: %s", resp.StatusCode, string(body))
	}

	return decodeResources(body)
}

// The listing endpoint has shipped several envelope layouts. Decoding tries
// each known shape in order and takes the first that parses.
func decodeResources(body []byte) ([]Resource, error) {
	parsers := []func([]byte) ([]Resource, bool){
		parseResourcesEnvelope,
		parseItemsEnvelope,
		parseBareArray,
	}
	for _, parse := range parsers {
		if resources, ok := parse(body); ok {
			return resources, nil
		}
	}
	return nil, fmt.Errorf("x402scan: no known response shape matched")
}

// {"resources": [...]}
func parseResourcesEnvelope(body []byte) ([]Resource, bool) {
	var envelope struct {
		Resources []Resource `json:"resources"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Resources == nil {
		return nil, false
	}
	return envelope.Resources, true
}

// {"items": [...]}
func parseItemsEnvelope(body []byte) ([]Resource, bool) {
	var envelope struct {
		Items []Resource `json:"items"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Items == nil {
		return nil, false
	}
	return envelope.Items, true
}

// [...]
func parseBareArray(body []byte) ([]Resource, bool) {
	var resources []Resource
	if err := json.Unmarshal(body, &resources); err != nil {
		return nil, false
	}
	return resources, true
}
