package browser

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/playwright-community/playwright-go"

	"github.com/depezo/sflix-api/internal/util"
)

// PlaywrightLauncher drives Chromium through playwright-go
type PlaywrightLauncher struct {
	opts Options

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	closed  bool
}

// NewPlaywrightLauncher returns a launcher that starts Chromium on first use
func NewPlaywrightLauncher(opts Options) *PlaywrightLauncher {
	return &PlaywrightLauncher{opts: opts}
}

func (l *PlaywrightLauncher) ensureBrowser() (playwright.Browser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrClosed
	}
	if l.browser != nil && l.browser.IsConnected() {
		return l.browser, nil
	}

	if l.pw == nil {
		pw, err := playwright.Run()
		if err != nil {
			return nil, errors.Wrap(err, "start playwright")
		}
		l.pw = pw
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.opts.Headless),
		Args:     l.opts.Args,
	}
	if l.opts.ExecutablePath != "" {
		launch.ExecutablePath = playwright.String(l.opts.ExecutablePath)
	}

	util.Debug("launching chromium", "backend", "playwright", "executable", l.opts.ExecutablePath)
	b, err := l.pw.Chromium.Launch(launch)
	if err != nil {
		return nil, errors.Wrap(err, "launch chromium")
	}
	l.browser = b
	return b, nil
}

// NewPage opens an isolated context with one page in it
func (l *PlaywrightLauncher) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := l.ensureBrowser()
	if err != nil {
		return nil, err
	}

	ctxOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: l.opts.ViewportWidth, Height: l.opts.ViewportHeight},
	}
	if l.opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(l.opts.UserAgent)
	}
	bctx, err := b.NewContext(ctxOpts)
	if err != nil {
		return nil, errors.Wrap(err, "new browser context")
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, errors.Wrap(err, "new page")
	}

	if l.opts.BlockResources {
		err = page.Route("**/*", func(route playwright.Route) {
			if blockedResourceTypes[route.Request().ResourceType()] {
				_ = route.Abort()
				return
			}
			_ = route.Continue()
		})
		if err != nil {
			util.Debug("resource blocking unavailable", "error", err)
		}
	}

	return &playwrightPage{ctx: bctx, page: page}, nil
}

// Close stops the browser and the playwright driver
func (l *PlaywrightLauncher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	var firstErr error
	if l.browser != nil {
		if err := l.browser.Close(); err != nil {
			firstErr = err
		}
		l.browser = nil
	}
	if l.pw != nil {
		if err := l.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
		l.pw = nil
	}
	return firstErr
}

type playwrightPage struct {
	ctx  playwright.BrowserContext
	page playwright.Page
}

func (p *playwrightPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return errors.Wrapf(ErrNavigation, "%s: %v", url, err)
	}
	return nil
}

func (p *playwrightPage) QueryOne(ctx context.Context, selector string) (Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h, err := p.page.QuerySelector(selector)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", selector)
	}
	if h == nil {
		return nil, nil
	}
	return &playwrightElement{h: h}, nil
}

func (p *playwrightPage) QueryAll(ctx context.Context, selector string) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	handles, err := p.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, errors.Wrapf(err, "query all %s", selector)
	}
	out := make([]Element, 0, len(handles))
	for _, h := range handles {
		out = append(out, &playwrightElement{h: h})
	}
	return out, nil
}

func (p *playwrightPage) Evaluate(ctx context.Context, script string, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := p.page.Evaluate(script)
	if err != nil {
		return errors.Wrapf(ErrEvaluation, "%v", err)
	}
	if out == nil {
		return nil
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return errors.Wrapf(ErrEvaluation, "encode result: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(ErrEvaluation, "decode result: %v", err)
	}
	return nil
}

func (p *playwrightPage) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	html, err := p.page.Content()
	return html, errors.Wrap(err, "read content")
}

func (p *playwrightPage) URL(context.Context) string {
	return p.page.URL()
}

func (p *playwrightPage) Close() error {
	err := p.page.Close()
	if cerr := p.ctx.Close(); err == nil {
		err = cerr
	}
	return err
}

type playwrightElement struct {
	h playwright.ElementHandle
}

func (e *playwrightElement) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.Wrap(e.h.Click(), "click")
}

func (e *playwrightElement) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	t, err := e.h.TextContent()
	return t, errors.Wrap(err, "text content")
}

func (e *playwrightElement) Attr(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, err := e.h.GetAttribute(name)
	return v, errors.Wrapf(err, "attribute %s", name)
}
