// Package browser abstracts the headless browser used by the dynamic extraction path
package browser

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrNavigation wraps failures to load a page
	ErrNavigation = errors.New("navigation failed")
	// ErrEvaluation wraps failures of in-page scripts
	ErrEvaluation = errors.New("evaluation failed")
	// ErrWaitTimeout is returned when a polled condition never became true
	ErrWaitTimeout = errors.New("wait timed out")
	// ErrClosed is returned by a pool or launcher after Close
	ErrClosed = errors.New("browser closed")
)

// Element is a handle to one node of a live page
type Element interface {
	Click(ctx context.Context) error
	Text(ctx context.Context) (string, error)
	Attr(ctx context.Context, name string) (string, error)
}

// Page is one browser tab, used by exactly one operation at a time
type Page interface {
	// Navigate loads url and waits for the network to go idle, up to timeout
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// QueryOne returns the first match, or nil without error when nothing matches
	QueryOne(ctx context.Context, selector string) (Element, error)
	QueryAll(ctx context.Context, selector string) ([]Element, error)
	// Evaluate runs a function expression in the page and decodes its JSON result into out
	Evaluate(ctx context.Context, script string, out interface{}) error
	Content(ctx context.Context) (string, error)
	URL(ctx context.Context) string
	Close() error
}

// Launcher opens pages on a running browser
type Launcher interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Options configures a browser backend
type Options struct {
	Backend        string
	ExecutablePath string
	Headless       bool
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	BlockResources bool
	Args           []string
}

// blockedResourceTypes are aborted when Options.BlockResources is set
var blockedResourceTypes = map[string]bool{
	"image":      true,
	"stylesheet": true,
	"font":       true,
	"media":      true,
}

// DefaultArgs are the chromium flags used for container deployments
var DefaultArgs = []string{
	"--no-sandbox",
	"--disable-setuid-sandbox",
	"--disable-dev-shm-usage",
	"--disable-accelerated-2d-canvas",
	"--no-first-run",
	"--no-zygote",
	"--disable-gpu",
}

// NewLauncher returns the backend named by opts.Backend ("playwright" or "chromedp").
// Browsers start lazily on the first NewPage call.
func NewLauncher(opts Options) (Launcher, error) {
	if opts.ViewportWidth <= 0 || opts.ViewportHeight <= 0 {
		opts.ViewportWidth, opts.ViewportHeight = 1920, 1080
	}
	if len(opts.Args) == 0 {
		opts.Args = DefaultArgs
	}
	switch opts.Backend {
	case "", "playwright":
		return NewPlaywrightLauncher(opts), nil
	case "chromedp":
		return NewChromedpLauncher(opts), nil
	default:
		return nil, errors.Errorf("unknown browser backend %q", opts.Backend)
	}
}

// WaitForAny polls until one of selectors matches on page and returns it.
// ErrWaitTimeout is returned once timeout elapses without a match.
func WaitForAny(ctx context.Context, page Page, selectors []string, timeout, interval time.Duration) (string, error) {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	deadline := time.Now().Add(timeout)
	for {
		for _, sel := range selectors {
			el, err := page.QueryOne(ctx, sel)
			if err == nil && el != nil {
				return sel, nil
			}
		}
		if !time.Now().Before(deadline) {
			return "", ErrWaitTimeout
		}
		t := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return "", ctx.Err()
		case <-t.C:
		}
	}
}
