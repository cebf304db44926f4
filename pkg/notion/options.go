package notion

import (
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the public Notion API endpoint.
	DefaultBaseURL = "https://api.notion.com"
	// DefaultVersion is the Notion-Version header sent with every request.
	DefaultVersion = "2022-06-28"

	defaultRateLimit     = 3
	defaultBurst         = 3
	defaultRetryAttempts = 3
	defaultRetryInterval = 500 * time.Millisecond
	defaultPageSize      = 100
)

type options struct {
	baseURL       string
	version       string
	httpClient    *http.Client
	rps           float64
	burst         int
	retryAttempts int
	retryInterval time.Duration
}

func defaultOptions() *options {
	return &options{
		baseURL:       DefaultBaseURL,
		version:       DefaultVersion,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		rps:           defaultRateLimit,
		burst:         defaultBurst,
		retryAttempts: defaultRetryAttempts,
		retryInterval: defaultRetryInterval,
	}
}

// Option configures the Client.
type Option func(*options)

// WithBaseURL overrides the API endpoint. Used by tests.
func WithBaseURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.baseURL = u
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithVersion sets the Notion-Version header.
func WithVersion(v string) Option {
	return func(o *options) {
		if v != "" {
			o.version = v
		}
	}
}

// WithRateLimit sets the request rate in requests per second.
// A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		o.rps = rps
		if burst > 0 {
			o.burst = burst
		}
	}
}

// WithRetry sets the number of attempts per request and the base interval
// between them. The n-th retry waits n*interval unless the server sends
// Retry-After.
func WithRetry(attempts int, interval time.Duration) Option {
	return func(o *options) {
		if attempts > 0 {
			o.retryAttempts = attempts
		}
		if interval >= 0 {
			o.retryInterval = interval
		}
	}
}
