// Package geocode implements the reverse-geocoding oracle backed by
// the OpenStreetMap Nominatim API, with an optional Redis response
// cache in front of it. Nominatim is best-effort and rate-limited
// (1 request/second usage policy), so the client carries its own
// limiter and callers must tolerate failure.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jansunwai/grievance-server/internal/validation"
)

const (
	defaultBaseURL   = "https://nominatim.openstreetmap.org"
	defaultUserAgent = "Digital-Grievance-Redressal/1.0"
)

// Client is a Nominatim reverse-geocoding client implementing
// validation.GeocodingOracle.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	logger     *zap.SugaredLogger
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the Nominatim endpoint (used for self-hosted
// instances and tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithUserAgent sets the User-Agent header required by the Nominatim
// usage policy.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRateLimit sets the requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// NewClient creates a Nominatim client with the given options.
func NewClient(logger *zap.SugaredLogger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		userAgent:  defaultUserAgent,
		limiter:    rate.NewLimiter(1, 1), // Nominatim usage policy
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// nominatimResponse is the subset of the /reverse JSON payload the
// oracle needs. Nominatim returns coordinates as strings.
type nominatimResponse struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// ReverseGeocode implements validation.GeocodingOracle.
func (c *Client) ReverseGeocode(ctx context.Context, coord validation.Coordinate) (*validation.GeocodedLocation, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("geocode: rate limit: %w", err)
	}

	params := url.Values{
		"format": {"json"},
		"lat":    {strconv.FormatFloat(coord.Latitude, 'f', -1, 64)},
		"lon":    {strconv.FormatFloat(coord.Longitude, 'f', -1, 64)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geocode: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode: nominatim returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("geocode: read body: %w", err)
	}

	var nr nominatimResponse
	if err := json.Unmarshal(body, &nr); err != nil {
		return nil, fmt.Errorf("geocode: parse response: %w", err)
	}
	if nr.Error != "" {
		return nil, fmt.Errorf("geocode: nominatim error: %s", nr.Error)
	}
	if nr.Lat == "" || nr.Lon == "" {
		return nil, fmt.Errorf("geocode: response missing coordinates")
	}

	lat, err := strconv.ParseFloat(nr.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode: malformed latitude %q: %w", nr.Lat, err)
	}
	lon, err := strconv.ParseFloat(nr.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode: malformed longitude %q: %w", nr.Lon, err)
	}

	return &validation.GeocodedLocation{
		DisplayAddress: nr.DisplayName,
		Coordinate:     validation.Coordinate{Latitude: lat, Longitude: lon},
	}, nil
}
