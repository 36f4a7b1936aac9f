// Package browsertest provides an in-memory browser backed by goquery for tests
package browsertest

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/depezo/sflix-api/internal/browser"
	"github.com/depezo/sflix-api/internal/extract"
)

// ClickFunc is called when an element is clicked. It receives the current
// page URL and the clicked node and returns replacement HTML for the whole
// page, or "" to leave the page unchanged.
type ClickFunc func(url string, el *goquery.Selection) string

// Site is a fake Launcher serving fixed HTML per URL
type Site struct {
	mu    sync.Mutex
	pages map[string]string

	OnClick     ClickFunc
	NavigateErr error
	EvaluateErr error
	NewPageErr  error

	opened atomic.Int32
	closed atomic.Int32
	clicks []string
}

// NewSite returns an empty fake site
func NewSite() *Site {
	return &Site{pages: map[string]string{}}
}

// Handle serves html at url
func (s *Site) Handle(url, html string) *Site {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[url] = html
	return s
}

// Opened is the number of pages opened so far
func (s *Site) Opened() int { return int(s.opened.Load()) }

// Closed is the number of pages closed so far
func (s *Site) Closed() int { return int(s.closed.Load()) }

// Clicks returns the outer text of every clicked element, in order
func (s *Site) Clicks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.clicks...)
}

// NewPage implements browser.Launcher
func (s *Site) NewPage(ctx context.Context) (browser.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.NewPageErr != nil {
		return nil, s.NewPageErr
	}
	s.opened.Add(1)
	return &Page{site: s}, nil
}

// Close implements browser.Launcher
func (s *Site) Close() error { return nil }

// Page is a fake browser.Page
type Page struct {
	site   *Site
	mu     sync.Mutex
	url    string
	doc    *goquery.Document
	closed bool
}

func (p *Page) Navigate(ctx context.Context, url string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.site.NavigateErr != nil {
		return errors.Wrapf(browser.ErrNavigation, "%s: %v", url, p.site.NavigateErr)
	}
	p.site.mu.Lock()
	html, ok := p.site.pages[url]
	p.site.mu.Unlock()
	if !ok {
		return errors.Wrapf(browser.ErrNavigation, "%s: 404", url)
	}
	return p.load(url, html)
}

func (p *Page) load(url, html string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.url, p.doc = url, doc
	p.mu.Unlock()
	return nil
}

func (p *Page) document() *goquery.Document {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.doc == nil {
		p.doc, _ = goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	}
	return p.doc
}

func (p *Page) QueryOne(ctx context.Context, selector string) (browser.Element, error) {
	all, err := p.QueryAll(ctx, selector)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (p *Page) QueryAll(ctx context.Context, selector string) ([]browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []browser.Element
	p.document().Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, &Element{page: p, sel: s})
	})
	return out, nil
}

// Evaluate understands only the server scan script
func (p *Page) Evaluate(ctx context.Context, script string, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.site.EvaluateErr != nil {
		return errors.Wrapf(browser.ErrEvaluation, "%v", p.site.EvaluateErr)
	}
	if script != extract.ServerScanScript {
		return errors.Wrap(browser.ErrEvaluation, "unsupported script")
	}
	scan := extract.ScanServers(p.document().Selection)
	scan.URL = p.URL(ctx)
	raw, err := json.Marshal(scan)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (p *Page) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.document().Html()
}

func (p *Page) URL(context.Context) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		p.site.closed.Add(1)
	}
	return nil
}

// Element is a fake browser.Element over one goquery node
type Element struct {
	page *Page
	sel  *goquery.Selection
}

func (e *Element) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.page.site.mu.Lock()
	e.page.site.clicks = append(e.page.site.clicks, strings.TrimSpace(e.sel.Text()))
	e.page.site.mu.Unlock()

	if e.page.site.OnClick == nil {
		return nil
	}
	url := e.page.URL(ctx)
	if html := e.page.site.OnClick(url, e.sel); html != "" {
		return e.page.load(url, html)
	}
	return nil
}

func (e *Element) Text(context.Context) (string, error) {
	return e.sel.Text(), nil
}

func (e *Element) Attr(_ context.Context, name string) (string, error) {
	return e.sel.AttrOr(name, ""), nil
}
