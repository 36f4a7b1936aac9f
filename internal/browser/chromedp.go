package browser

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"

	"github.com/depezo/sflix-api/internal/util"
)

// blockedURLPatterns approximate resource-type blocking for the CDP backend
var blockedURLPatterns = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp", "*.svg", "*.ico",
	"*.css", "*.woff", "*.woff2", "*.ttf", "*.otf",
	"*.mp4", "*.webm", "*.mp3",
}

// ChromedpLauncher drives Chrome over the DevTools protocol with chromedp.
// Each page is a new tab of one shared browser.
type ChromedpLauncher struct {
	opts Options

	mu          sync.Mutex
	browserCtx  context.Context
	cancelAlloc context.CancelFunc
	cancelBrows context.CancelFunc
	closed      bool
}

// NewChromedpLauncher returns a launcher that starts Chrome on first use
func NewChromedpLauncher(opts Options) *ChromedpLauncher {
	return &ChromedpLauncher{opts: opts}
}

func (l *ChromedpLauncher) ensureBrowser() (context.Context, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrClosed
	}
	if l.browserCtx != nil && l.browserCtx.Err() == nil {
		return l.browserCtx, nil
	}

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.Flag("headless", l.opts.Headless),
		chromedp.WindowSize(l.opts.ViewportWidth, l.opts.ViewportHeight),
	)
	if l.opts.ExecutablePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(l.opts.ExecutablePath))
	}
	if l.opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(l.opts.UserAgent))
	}
	for _, arg := range l.opts.Args {
		name, value, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if hasValue {
			allocOpts = append(allocOpts, chromedp.Flag(name, value))
		} else {
			allocOpts = append(allocOpts, chromedp.Flag(name, true))
		}
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...interface{}) {
		util.Debugf(format, args...)
	}))

	util.Debug("launching chromium", "backend", "chromedp", "executable", l.opts.ExecutablePath)
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, errors.Wrap(err, "launch chrome")
	}

	l.browserCtx, l.cancelAlloc, l.cancelBrows = browserCtx, cancelAlloc, cancelBrowser
	return browserCtx, nil
}

// NewPage opens a new tab
func (l *ChromedpLauncher) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	browserCtx, err := l.ensureBrowser()
	if err != nil {
		return nil, err
	}

	tabCtx, cancel := chromedp.NewContext(browserCtx)
	p := &chromedpPage{tab: tabCtx, cancel: cancel}

	setup := []chromedp.Action{network.Enable()}
	if l.opts.BlockResources {
		setup = append(setup, network.SetBlockedURLS(blockedURLPatterns))
	}
	if err := p.run(ctx, setup...); err != nil {
		cancel()
		return nil, errors.Wrap(err, "open tab")
	}
	return p, nil
}

// Close shuts the browser down
func (l *ChromedpLauncher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	if l.cancelBrows != nil {
		l.cancelBrows()
		l.cancelAlloc()
		l.browserCtx, l.cancelBrows, l.cancelAlloc = nil, nil, nil
	}
	return nil
}

type chromedpPage struct {
	tab    context.Context
	cancel context.CancelFunc
}

// run executes actions on the tab, bounded by the caller's deadline and cancellation
func (p *chromedpPage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.tab)
	defer cancel()
	if dl, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, dl)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (p *chromedpPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := p.run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return errors.Wrapf(ErrNavigation, "%s: %v", url, err)
	}
	return nil
}

func (p *chromedpPage) QueryOne(ctx context.Context, selector string) (Element, error) {
	all, err := p.QueryAll(ctx, selector)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (p *chromedpPage) QueryAll(ctx context.Context, selector string) ([]Element, error) {
	var nodes []*cdp.Node
	if err := p.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, errors.Wrapf(err, "query all %s", selector)
	}
	out := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &chromedpElement{page: p, node: n})
	}
	return out, nil
}

func (p *chromedpPage) Evaluate(ctx context.Context, script string, out interface{}) error {
	expr := "(" + script + ")()"
	if err := p.run(ctx, chromedp.Evaluate(expr, out)); err != nil {
		return errors.Wrapf(ErrEvaluation, "%v", err)
	}
	return nil
}

func (p *chromedpPage) Content(ctx context.Context) (string, error) {
	var html string
	err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, errors.Wrap(err, "read content")
}

func (p *chromedpPage) URL(ctx context.Context) string {
	var loc string
	if err := p.run(ctx, chromedp.Location(&loc)); err != nil {
		return ""
	}
	return loc
}

func (p *chromedpPage) Close() error {
	p.cancel()
	return nil
}

type chromedpElement struct {
	page *chromedpPage
	node *cdp.Node
}

func (e *chromedpElement) Click(ctx context.Context) error {
	return errors.Wrap(e.page.run(ctx, chromedp.MouseClickNode(e.node)), "click")
}

func (e *chromedpElement) Text(ctx context.Context) (string, error) {
	var text string
	err := e.page.run(ctx, chromedp.TextContent([]cdp.NodeID{e.node.NodeID}, &text, chromedp.ByNodeID))
	return text, errors.Wrap(err, "text content")
}

func (e *chromedpElement) Attr(_ context.Context, name string) (string, error) {
	return e.node.AttributeValue(name), nil
}
