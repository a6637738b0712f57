package navidrome

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPDoer describes the HTTP client used by the Navidrome service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client triggers Navidrome library scans over its REST API.
type Client struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
}

// New constructs a Navidrome client. Timeout bounds each request when the
// default HTTP client is used.
func New(baseURL, apiKey string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	apiKey = strings.TrimSpace(apiKey)
	if baseURL == "" {
		return nil, errors.New("navidrome base URL required")
	}
	if apiKey == "" {
		return nil, errors.New("navidrome api key required")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// NewWithHTTPClient constructs a client with an injected HTTP doer
// (primarily for tests).
func NewWithHTTPClient(baseURL, apiKey string, doer HTTPDoer) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		client:  doer,
	}
}

// StartScan asks the server to rescan the library.
func (c *Client) StartScan(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("navidrome client not configured")
	}
	scanURL := fmt.Sprintf("%s/api/scanner/scan", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, scanURL, nil)
	if err != nil {
		return fmt.Errorf("build navidrome scan request: %w", err)
	}
	req.Header.Set("X-ND-Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("start navidrome scan: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("navidrome scan returned %d", resp.StatusCode)
	}
	return nil
}
