// Package fetch implements the resilient page fetcher used by the static extraction path
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/depezo/sflix-api/internal/util"
)

const (
	DefaultMaxRetries = 3
	DefaultBackoff    = time.Second
	maxBodyBytes      = 16 << 20
)

// StatusError is returned when the site answers with a non-2xx status
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Client fetches pages with browser-like headers, a fresh user agent per
// attempt and linear backoff between attempts.
type Client struct {
	client     *http.Client
	origin     string
	maxRetries int
	backoff    time.Duration
	userAgents util.UserAgentSource
	sleep      func(ctx context.Context, d time.Duration) error
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the pooled client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithMaxRetries sets the total number of attempts per fetch
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoff sets the base delay; attempt N waits N times this value
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// WithUserAgents sets the user agent source
func WithUserAgents(src util.UserAgentSource) Option {
	return func(c *Client) { c.userAgents = src }
}

// WithSleep replaces the wait used between attempts
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = fn }
}

// New creates a fetch client for the site rooted at origin
func New(origin string, opts ...Option) *Client {
	c := &Client{
		client:     util.GetSharedClient(),
		origin:     origin,
		maxRetries: DefaultMaxRetries,
		backoff:    DefaultBackoff,
		userAgents: util.NewUserAgentPool(),
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Origin returns the site origin the client sends as referer
func (c *Client) Origin() string {
	return c.origin
}

// Fetch returns the body of url. Transport errors and non-2xx statuses are
// retried; the error of the last attempt is returned once the budget is spent.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		attempts = attempt
		body, err := c.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		util.Debug("fetch attempt failed", "url", url, "attempt", attempt, "error", err)

		if ctx.Err() != nil {
			break
		}
		if attempt < c.maxRetries {
			if err := c.sleep(ctx, c.backoff*time.Duration(attempt)); err != nil {
				break
			}
		}
	}
	return nil, errors.Wrapf(lastErr, "fetch %s failed after %d attempts", url, attempts)
}

// FetchDocument fetches url and parses it as HTML
func (c *Client) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse HTML")
	}
	return doc, nil
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	c.decorateRequest(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to make request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read body")
	}
	return body, nil
}

func (c *Client) decorateRequest(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgents.UserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Referer", c.origin)
	req.Header.Set("DNT", "1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
