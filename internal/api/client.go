package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"wxwarehouse/internal/metrics"
	"wxwarehouse/internal/models"
)

// Client is a client for the weather service API. The base URL and request
// timeout are fixed at construction.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewClient creates a new weather API client.
func NewClient(baseURL string, timeout time.Duration, userAgent string) *Client {
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

// Station fetches the metadata record for a single station.
func (c *Client) Station(ctx context.Context, stationID string) (*models.StationResponse, error) {
	var station models.StationResponse
	endpoint := fmt.Sprintf("%s/stations/%s", c.baseURL, url.PathEscape(stationID))
	if err := c.get(ctx, endpoint, "station", &station); err != nil {
		return nil, err
	}
	return &station, nil
}

// Observations fetches the raw observation features for a station within
// the [start, end] window. Bounds are sent as RFC3339 UTC timestamps.
func (c *Client) Observations(ctx context.Context, stationID string, start, end time.Time) ([]models.ObservationFeature, error) {
	var page models.ObservationsResponse
	if err := c.get(ctx, c.observationsURL(stationID, start, end), "observations", &page); err != nil {
		return nil, err
	}
	return page.Features, nil
}

// Builds the URL for an observation window request.
func (c *Client) observationsURL(stationID string, start, end time.Time) string {
	params := url.Values{}
	params.Set("start", start.UTC().Format(time.RFC3339))
	params.Set("end", end.UTC().Format(time.RFC3339))
	return fmt.Sprintf("%s/stations/%s/observations/?%s", c.baseURL, url.PathEscape(stationID), params.Encode())
}

func (c *Client) get(ctx context.Context, endpoint, kind string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.client.Do(req)
	metrics.RecordAPIRequest(kind, time.Since(requestStart), err)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", kind, err)
	}

	return nil
}

// Close releases idle connections held by the underlying HTTP client.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}
