// -----------------------------------------------------------------------
// Rate-limited HTTP fetcher for offer pages
// -----------------------------------------------------------------------

package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP timeout
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default fetch rate (requests per second)
	DefaultRateLimit = 2

	// DefaultUserAgent identifies the fetcher to job boards
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

	maxBodySize = 4 << 20 // 4 MiB
)

// ExpiredError marks a page that responded with 404/410, meaning the offer
// was taken down by the job board
type ExpiredError struct {
	URL        string
	StatusCode int
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("offer page gone: %s returned %d", e.URL, e.StatusCode)
}

// Client fetches offer pages with a shared rate limit so job boards are
// not hammered during an enrichment pass
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	logger     arbor.ILogger
}

// Option configures the Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit sets a custom fetch rate
func WithRateLimit(requestsPerSecond int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithUserAgent sets a custom User-Agent header
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// NewClient creates a rate-limited page fetcher
func NewClient(logger arbor.ILogger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:   rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		userAgent: DefaultUserAgent,
		logger:    logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch retrieves the HTML body of a page. A 404 or 410 response returns
// an ExpiredError so the caller can mark the offer expired instead of
// treating it as a transient failure.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait cancelled: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return "", &ExpiredError{URL: url, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read body of %s: %w", url, err)
	}

	c.logger.Debug().
		Str("url", url).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("Fetched offer page")

	return string(body), nil
}
