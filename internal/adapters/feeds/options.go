package feeds

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/hoopline/pkg/logger"
)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout bounds every request. Non-positive values are ignored.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRate limits requests per second with a matching burst. Non-positive values are ignored.
func WithRate(perSec float64) ClientOption {
	return func(c *Client) {
		if perSec > 0 {
			burst := max(int(perSec), 1)
			c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
		}
	}
}

// WithHTTPClient replaces the transport, e.g. for tests.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithClientLogger sets the client logger.
func WithClientLogger(l logger.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// SourceOption configures a feed source.
type SourceOption func(*sourceSettings)

type sourceSettings struct {
	ttl     time.Duration
	backoff time.Duration
	log     logger.Logger
	now     func() time.Time
}

// DefaultFailureBackoff is how long a failed load is remembered before
// the upstream is tried again.
const DefaultFailureBackoff = 30 * time.Second

func newSourceSettings(defaultTTL time.Duration, opts []SourceOption) sourceSettings {
	s := sourceSettings{ttl: defaultTTL, backoff: DefaultFailureBackoff, log: logger.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithTTL sets how long a fetched payload is served before refetching.
func WithTTL(d time.Duration) SourceOption {
	return func(s *sourceSettings) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithFailureBackoff sets how long lookups serve the fallback after a failed
// load instead of retrying the upstream. Zero retries on every lookup.
func WithFailureBackoff(d time.Duration) SourceOption {
	return func(s *sourceSettings) {
		if d >= 0 {
			s.backoff = d
		}
	}
}

// WithLogger sets the source logger.
func WithLogger(l logger.Logger) SourceOption {
	return func(s *sourceSettings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) SourceOption {
	return func(s *sourceSettings) {
		if now != nil {
			s.now = now
		}
	}
}
