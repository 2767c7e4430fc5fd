// Package feeds fetches team stats, injury reports and standings from
// upstream JSON endpoints. Every feed is rate limited, bounded by a timeout
// and cached; lookups fall back to the embedded reference data when the
// upstream has nothing to offer.
package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/hoopline/pkg/logger"
	"github.com/okian/hoopline/pkg/metrics"
)

const maxBodyBytes = 4 << 20

// Client performs rate-limited GET requests against one feed URL.
type Client struct {
	name       string
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        logger.Logger
}

// NewClient creates a client for the named feed. An empty url yields a
// client whose fetches fail with ErrDisabled.
func NewClient(name, url string, opts ...ClientOption) *Client {
	c := &Client{
		name:       name,
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(2), 2),
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the feed name used in logs and metrics.
func (c *Client) Name() string { return c.name }

// Enabled reports whether a URL is configured.
func (c *Client) Enabled() bool { return c.url != "" }

// FetchJSON GETs the feed and decodes the body into out.
func (c *Client) FetchJSON(ctx context.Context, out any) error {
	if !c.Enabled() {
		return fmt.Errorf("%w: %s", ErrDisabled, c.name)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %s rate limit wait: %v", ErrUpstream, c.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("%w: %s new request: %v", ErrUpstream, c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hoopline/1.0")

	start := time.Now()
	result := "error"
	defer func() {
		metrics.RecordFeedFetch(c.name, result, float64(time.Since(start).Microseconds())/1000)
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUpstream, c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return fmt.Errorf("%w: %s: status %d", ErrUpstream, c.name, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: %s decode: %v", ErrUpstream, c.name, err)
	}

	result = "ok"
	c.log.Debug(ctx, "feed fetched",
		logger.String("feed", c.name),
		logger.Int("status", resp.StatusCode),
		logger.Any("duration", time.Since(start)),
	)
	return nil
}
