// Package opensky implements the live flight data source over the OpenSky
// Network REST API, together with the state-vector parser and the request
// rate limiter the API's usage policy requires.
package opensky

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/unklstewy/aero-scope/pkg/errs"
	"github.com/unklstewy/aero-scope/pkg/flight"
)

const (
	// DefaultBaseURL is the public OpenSky REST endpoint.
	DefaultBaseURL = "https://opensky-network.org/api"

	// requestTimeout aborts an in-flight request; the abort surfaces as a
	// retryable TimeoutError.
	requestTimeout = 10 * time.Second

	userAgent = "aero-scope/1.0"
)

// Client fetches live state vectors from the OpenSky Network API.
// It implements flight.Source.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API endpoint (useful for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client logger.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient creates an OpenSky API client. The request deadline is enforced
// per call through context cancellation, not a client-wide timeout.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// statesResponse mirrors the JSON shape returned by /states/all.
type statesResponse struct {
	Time   int64   `json:"time"`
	States [][]any `json:"states"`
}

// GetAllFlights retrieves the current state vectors for all aircraft.
func (c *Client) GetAllFlights(ctx context.Context) ([]flight.Record, error) {
	return c.fetch(ctx, c.baseURL+"/states/all")
}

// GetFlightsInBounds retrieves the state vectors inside a geographic box,
// scoped server-side through the lamin/lamax/lomin/lomax query parameters.
func (c *Client) GetFlightsInBounds(ctx context.Context, box flight.BoundingBox) ([]flight.Record, error) {
	url := fmt.Sprintf("%s/states/all?lamin=%v&lamax=%v&lomin=%v&lomax=%v",
		c.baseURL, box.MinLat, box.MaxLat, box.MinLon, box.MaxLon)
	return c.fetch(ctx, url)
}

// Close cleanly shuts down the client. There are no persistent connections
// beyond the idle pool.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]flight.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &errs.NetworkError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &errs.TimeoutError{URL: url, Timeout: requestTimeout, Err: err}
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &errs.NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &errs.RateLimitError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header),
			Message:    "OpenSky API rate limit exceeded",
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &errs.NetworkError{StatusCode: resp.StatusCode, URL: url}
	}

	var raw statesResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &errs.ParsingError{Message: "invalid response body from OpenSky API", Err: err}
	}

	// The API legitimately returns no states during low-traffic periods;
	// a missing array is an empty result, not an error.
	if raw.States == nil {
		return []flight.Record{}, nil
	}

	records, err := ParseStates(raw.States)
	if err != nil {
		return nil, err
	}

	c.log.Debug().Int("records", len(records)).Int64("time", raw.Time).Msg("fetched state vectors")
	return records, nil
}

// parseRetryAfter extracts the Retry-After header value. Supports both
// delay-seconds and HTTP-date formats; returns 0 when absent or invalid.
func parseRetryAfter(headers http.Header) time.Duration {
	retryAfter := headers.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if retryTime, err := http.ParseTime(retryAfter); err == nil {
		if d := time.Until(retryTime); d > 0 {
			return d
		}
	}

	return 0
}

// RetryableFetch reports whether a live-fetch failure is worth retrying:
// rate limits, timeouts and 5xx server responses qualify; validation and
// parsing failures never do.
func RetryableFetch(err error) bool {
	if _, ok := errs.AsRateLimit(err); ok {
		return true
	}
	if errs.Is[*errs.TimeoutError](err) {
		return true
	}
	var netErr *errs.NetworkError
	if errors.As(err, &netErr) {
		return netErr.StatusCode == 0 || netErr.StatusCode >= 500
	}
	return false
}
