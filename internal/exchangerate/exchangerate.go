// Package exchangerate is a client for the ExchangeRate-API v6 provider.
// It fetches latest rates, pair conversions and historical rates, and returns
// the provider body as a Payload without interpreting it.
package exchangerate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Endpoint names used when recording upstream calls.
const (
	EndpointLatest     = "latest"
	EndpointPair       = "pair"
	EndpointHistorical = "historical"
)

// Outcomes used when recording upstream calls.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// APIKeyHeader carries the provider credential on every request.
const APIKeyHeader = "apikey"

// DefaultTimeout bounds a single provider request when none is configured.
const DefaultTimeout = 10 * time.Second

// Client is the set of provider lookups the service depends on.
type Client interface {
	Latest(ctx context.Context, base string) (Payload, error)
	Pair(ctx context.Context, from, to string, amount float64) (Payload, error)
	Historical(ctx context.Context, date, base string) (Payload, error)
}

// Recorder observes provider calls. metrics.Metrics implements it.
type Recorder interface {
	ObserveUpstream(endpoint, outcome string, elapsed time.Duration)
}

// StatusError is returned when the provider answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%d %s for url: %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// ProviderClient talks to the provider over HTTP.
type ProviderClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	recorder   Recorder
}

// Option configures a ProviderClient.
type Option func(*ProviderClient)

// WithHTTPClient replaces the underlying http.Client. The client's own
// Timeout is kept as-is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *ProviderClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRecorder reports every provider call to r.
func WithRecorder(r Recorder) Option {
	return func(c *ProviderClient) {
		c.recorder = r
	}
}

// NewProviderClient creates a client for the provider rooted at baseURL.
// A non-positive timeout falls back to DefaultTimeout.
//
// Parameters:
//   - baseURL: Provider root, e.g. https://v6.exchangerate-api.com/v6
//   - apiKey: Credential sent in the apikey header
//   - timeout: Upper bound for each request, including reading the body
func NewProviderClient(baseURL, apiKey string, timeout time.Duration, opts ...Option) *ProviderClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &ProviderClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Latest fetches the current rates relative to base.
func (c *ProviderClient) Latest(ctx context.Context, base string) (Payload, error) {
	return c.query(ctx, EndpointLatest, c.endpoint("latest", base))
}

// Pair asks the provider to convert amount of from into to.
func (c *ProviderClient) Pair(ctx context.Context, from, to string, amount float64) (Payload, error) {
	return c.query(ctx, EndpointPair, c.endpoint("pair", from, to, FormatAmount(amount)))
}

// Historical fetches the rates relative to base on date (YYYY-MM-DD).
func (c *ProviderClient) Historical(ctx context.Context, date, base string) (Payload, error) {
	return c.query(ctx, EndpointHistorical, c.endpoint(date, base))
}

// FormatAmount renders amount the way it is placed in a pair URL: the
// shortest representation that round-trips, without an exponent.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// endpoint joins path segments onto the base URL, escaping each one.
func (c *ProviderClient) endpoint(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// query executes a GET against the provider and decodes the body.
// Network failures, non-2xx statuses and non-JSON bodies are all returned as errors.
func (c *ProviderClient) query(ctx context.Context, name, endpoint string) (Payload, error) {
	start := time.Now()
	payload, err := c.do(ctx, endpoint)
	if c.recorder != nil {
		outcome := OutcomeOK
		if err != nil {
			outcome = OutcomeError
		}
		c.recorder.ObserveUpstream(name, outcome, time.Since(start))
	}
	return payload, err
}

func (c *ProviderClient) do(ctx context.Context, endpoint string) (Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Payload{}, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(middleware.RequestIDHeader, requestID(ctx))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Payload{}, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Payload{}, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Payload{}, &StatusError{
			StatusCode: resp.StatusCode,
			URL:        redact(endpoint),
			Body:       strings.TrimSpace(string(body)),
		}
	}

	return ParsePayload(body)
}

// requestID reuses the inbound chi request id so provider calls can be
// correlated with the access log.
func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

// redact strips the query string from a URL before it ends up in an error.
func redact(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		return endpoint[:i]
	}
	return endpoint
}
