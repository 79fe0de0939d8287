package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/tournament-scout/internal/errors"
	"github.com/tournament-scout/internal/retry"
)

// PlacesClient geocodes venue addresses through a places provider.
type PlacesClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	retry   *retry.Config
}

// Coordinates is a geocoding result.
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location Coordinates `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// NewPlacesClient creates a geocoding client for the given endpoint.
func NewPlacesClient(apiKey, baseURL string, timeout time.Duration) *PlacesClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &PlacesClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		retry:   retry.DefaultConfig(),
	}
}

// Geocode resolves a street address to coordinates. A ZERO_RESULTS answer is
// reported as a not-found error so callers can skip the venue without
// treating the provider as broken.
func (c *PlacesClient) Geocode(ctx context.Context, street, city, state, zip string) (*Coordinates, error) {
	if c.apiKey == "" {
		return nil, apperrors.NewProviderError("places", fmt.Errorf("places API key not configured"))
	}

	address := strings.Join([]string{street, city, state, zip}, ", ")

	params := url.Values{}
	params.Set("address", address)
	params.Set("key", c.apiKey)

	body, err := c.doRequest(ctx, c.baseURL+"/geocode/json?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp geocodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperrors.NewProviderError("places", fmt.Errorf("failed to decode response: %w", err))
	}

	switch resp.Status {
	case "OK":
		if len(resp.Results) == 0 {
			return nil, apperrors.NewProviderError("places", fmt.Errorf("status OK with empty results"))
		}
		loc := resp.Results[0].Geometry.Location
		return &loc, nil
	case "ZERO_RESULTS":
		return nil, apperrors.NewNotFoundError("geocode result", address)
	default:
		return nil, apperrors.NewProviderError("places", fmt.Errorf("provider status %s", resp.Status))
	}
}

func (c *PlacesClient) doRequest(ctx context.Context, requestURL string) ([]byte, error) {
	var body []byte

	err := retry.WithBackoff(ctx, c.retry, func(ctx context.Context, attempt int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

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
		return nil, apperrors.NewProviderError("places", err)
	}

	return body, nil
}
