package basescan

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

const apiBaseURL = "https://api.basescan.org/api"

// Page size for the holder list sample. Five distinct holders is the bar the
// holder check applies, so one small page is enough.
const holderSampleSize = 10

// Client is a Basescan (Etherscan-family) API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *data.HostLimiter
}

// NewClient creates a new Basescan client. An empty API key is allowed;
// callers should consult HasKey and skip endpoints that require one.
func NewClient(apiKey string, limiter *data.HostLimiter) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    apiBaseURL,
		apiKey:     apiKey,
		limiter:    limiter,
	}
}

// HasKey reports whether an API key is configured.
func (c *Client) HasKey() bool {
	return c.apiKey != ""
}

// IsVerified reports whether verified source code is published for the contract.
func (c *Client) IsVerified(ctx context.Context, address string) (bool, error) {
	params := url.Values{}
	params.Set("module", "contract")
	params.Set("action", "getsourcecode")
	params.Set("address", address)
	params.Set("apikey", c.apiKey)

	var result []struct {
		SourceCode string `json:"SourceCode"`
	}
	if err := c.call(ctx, params, &result); err != nil {
		return false, err
	}
	return len(result) > 0 && result[0].SourceCode != "", nil
}

// HolderCount returns the number of token holders found on the first page of
// the holder list, capped at holderSampleSize.
func (c *Client) HolderCount(ctx context.Context, address string) (int, error) {
	params := url.Values{}
	params.Set("module", "token")
	params.Set("action", "tokenholderlist")
	params.Set("contractaddress", address)
	params.Set("page", "1")
	params.Set("offset", fmt.Sprintf("%d", holderSampleSize))
	params.Set("apikey", c.apiKey)

	var result []struct {
		TokenHolderAddress  string `json:"TokenHolderAddress"`
		TokenHolderQuantity string `json:"TokenHolderQuantity"`
	}
	if err := c.call(ctx, params, &result); err != nil {
		return 0, err
	}
	return len(result), nil
}

// call performs one API request and decodes the standard Etherscan-family
// envelope. Status "0" responses carry an error string in result; those are
// surfaced as errors rather than decoded into out.
func (c *Client) call(ctx context.Context, params url.Values, out any) error {
	apiURL := c.baseURL + "?" + params.Encode()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, apiURL); err != nil {
			return fmt.Errorf("basescan: rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("basescan: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("basescan: request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("basescan: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("basescan: HTTP %d: %s", resp.StatusCode, string(body))
	}

	return decodeEnvelope(body, out)
}

// decodeEnvelope unpacks the {status, message, result} wrapper. Non-"1"
// status means result holds an error string (rate limit, bad key), not data.
func decodeEnvelope(body []byte, out any) error {
	var envelope struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Result  json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("basescan: parse response: %w", err)
	}
	if envelope.Status != "1" {
		return fmt.Errorf("basescan: API error: %s %s", envelope.Message, string(envelope.Result))
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("basescan: parse result: %w", err)
	}
	return nil
}
