// Package fetch retrieves remote plain text logs on behalf of the web UI,
// which cannot read most CI log URLs directly because of CORS.
package fetch

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/akhuoa/console-formatter/pkg/errors"
	"github.com/akhuoa/console-formatter/pkg/logging"
)

// Defaults
const (
	DefaultTimeout   = 10 * time.Second
	DefaultLimit     = 10 << 20
	DefaultUserAgent = "console-formatter"
)

// Options configures a Client
type Options struct {
	// Timeout bounds the whole request, body included
	Timeout time.Duration
	// Limit is the largest body accepted, in bytes
	Limit int64
	// UserAgent is sent with every request
	UserAgent string
	// HTTPClient replaces the default transport, mainly for tests
	HTTPClient *http.Client
}

// Client fetches remote text
type Client struct {
	http      *http.Client
	timeout   time.Duration
	limit     int64
	userAgent string
}

// New creates a client. Zero options take the defaults.
func New(opts Options) *Client {
	c := &Client{
		http:      opts.HTTPClient,
		timeout:   opts.Timeout,
		limit:     opts.Limit,
		userAgent: opts.UserAgent,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.limit <= 0 {
		c.limit = DefaultLimit
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	return c
}

// Fetch returns the body of rawURL as text.
//
// Errors carry the codes MISSING_INPUT (empty URL), INVALID_INPUT (not an
// http or https URL), UPSTREAM_STATUS (non 2xx answer, status in the
// "status" detail), FETCH_TIMEOUT and NETWORK. A body larger than the limit
// is an INVALID_INPUT error.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	logger := logging.GetLogger("fetch")

	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", errors.New(errors.ErrMissingInput, "Missing url")
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", errors.Newf(errors.ErrInvalidInput, "not an http(s) url: %s", rawURL).
			WithDetail("url", rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInvalidInput, "failed to build request").WithDetail("url", rawURL)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/plain, */*")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", c.classify(ctx, err, rawURL)
	}
	defer func() { _ = resp.Body.Close() }()

	logger.Debug().
		Str("url", rawURL).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Upstream responded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Newf(errors.ErrUpstreamStatus, "Fetch failed: %d", resp.StatusCode).
			WithDetail("status", resp.StatusCode).
			WithDetail("url", rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.limit+1))
	if err != nil {
		return "", c.classify(ctx, err, rawURL)
	}
	if int64(len(body)) > c.limit {
		return "", errors.Newf(errors.ErrInvalidInput, "response larger than %d bytes", c.limit).
			WithDetail("url", rawURL).
			WithDetail("limit", c.limit)
	}
	return string(body), nil
}

// classify maps a transport error to a timeout or a network error
func (c *Client) classify(ctx context.Context, err error, rawURL string) error {
	var netErr net.Error
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(stderrors.As(err, &netErr) && netErr.Timeout()) {
		return errors.Wrap(err, errors.ErrFetchTimeout, fmt.Sprintf("no answer within %s", c.timeout)).
			WithDetail("url", rawURL)
	}
	return errors.Wrap(err, errors.ErrNetwork, "request failed").WithDetail("url", rawURL)
}
