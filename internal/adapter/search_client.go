// Package adapter holds clients for external providers used during
// enrichment: web search, geocoding, and outbound email.
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/tournament-scout/internal/errors"
	"github.com/tournament-scout/internal/retry"
)

// SearchClient queries a web search provider to discover official tournament
// websites. Results are candidates only; a human or the suggestion review
// flow decides what gets written to a tournament.
type SearchClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	retry   *retry.Config
}

// SearchResult is one organic result from the provider.
type SearchResult struct {
	Title string `json:"title"`
	URL   string `json:"link"`
}

type searchResponse struct {
	Results []SearchResult `json:"organic"`
	Error   string         `json:"error,omitempty"`
}

// NewSearchClient creates a search client for the given endpoint.
func NewSearchClient(apiKey, baseURL string, timeout time.Duration) *SearchClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SearchClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		retry:   retry.DefaultConfig(),
	}
}

// Search runs a query and returns up to limit organic results.
func (c *SearchClient) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if c.apiKey == "" {
		return nil, apperrors.NewProviderError("search", fmt.Errorf("search API key not configured"))
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("num", fmt.Sprintf("%d", limit))

	body, err := c.doRequest(ctx, c.baseURL+"/search?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperrors.NewProviderError("search", fmt.Errorf("failed to decode response: %w", err))
	}
	if resp.Error != "" {
		return nil, apperrors.NewProviderError("search", fmt.Errorf("provider error: %s", resp.Error))
	}

	if len(resp.Results) > limit {
		resp.Results = resp.Results[:limit]
	}
	return resp.Results, nil
}

func (c *SearchClient) doRequest(ctx context.Context, requestURL string) ([]byte, error) {
	var body []byte

	err := retry.WithBackoff(ctx, c.retry, func(ctx context.Context, attempt int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("X-API-KEY", c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to make request: %w", err)
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("HTTP error: %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return retry.Permanent(fmt.Errorf("HTTP error: %d - %s", resp.StatusCode, string(data)))
		}

		body = data
		return nil
	})
	if err != nil {
		return nil, apperrors.NewProviderError("search", err)
	}

	return body, nil
}
