// Package sunapi fetches sunrise and sunset times for fixed coordinates.
package sunapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/septivank/petdoor-curfew-worker/internal/errs"
	"go.uber.org/zap"
)

// DefaultURL is the public sunrise-sunset.org endpoint
const DefaultURL = "https://api.sunrise-sunset.org/json"

// Coordinates locate the door
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// SunTimes holds the raw values as the source formats them, in UTC
type SunTimes struct {
	Status  string
	Sunrise string
	Sunset  string
}

type response struct {
	Results struct {
		Sunrise string `json:"sunrise"`
		Sunset  string `json:"sunset"`
	} `json:"results"`
	Status string `json:"status"`
}

// Client is a client for the sun-time source
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new sun-time client
func NewClient(endpoint string, timeout time.Duration, logger *zap.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch returns today's sun times at coords.
// Any failure is reported as errs.ErrUpstreamUnavailable.
func (c *Client) Fetch(ctx context.Context, coords Coordinates) (*SunTimes, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	params.Set("lng", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.Unavailable(c.endpoint, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("sun-time request",
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &errs.APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   c.endpoint,
			Message:    string(body),
			Kind:       errs.ErrUpstreamUnavailable,
		}
	}

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &errs.APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   c.endpoint,
			Message:    "decoding response",
			Kind:       errs.ErrUpstreamUnavailable,
			Err:        err,
		}
	}

	return &SunTimes{
		Status:  decoded.Status,
		Sunrise: decoded.Results.Sunrise,
		Sunset:  decoded.Results.Sunset,
	}, nil
}
