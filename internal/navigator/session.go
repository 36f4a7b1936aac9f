package navigator

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/depezo/sflix-api/internal/browser"
	"github.com/depezo/sflix-api/internal/extract"
	"github.com/depezo/sflix-api/internal/models"
	"github.com/depezo/sflix-api/internal/util"
)

// contentMarkers signal that the title page finished rendering its pickers
var contentMarkers = []string{
	".ss-list",
	".slt-seasons-content",
	".seasons-block",
	"[data-season]",
	".eps-item",
	".episode-item",
	"[data-episode]",
	".film-servers",
	".server-list",
	".watching_player",
	".detail_page",
}

// clickableSeasonSelector is scanned by text when no season carries a data attribute
const clickableSeasonSelector = "a, button, [data-season], .ss-item, .ssc-item"

// clickableServerTabSelector is scanned for a literal "Servers" label
const clickableServerTabSelector = "a, button, .nav-link"

var serversLabelRe = regexp.MustCompile(`(?i)^servers?$`)

var serverMarkers = append(append([]string{}, extract.ServerSelectors...), extract.IframeSelectors...)

type session struct {
	page   browser.Page
	cfg    Config
	origin string
	diag   *models.Diagnostics
}

func (s *session) load(ctx context.Context, url string) error {
	util.Debug("navigating", "url", url)
	s.diag.URL = url
	if err := s.page.Navigate(ctx, url, s.cfg.NavigationTimeout); err != nil {
		return errors.Wrapf(err, "load %s", url)
	}
	if _, err := s.wait(ctx, contentMarkers, s.cfg.SettleTimeout); err != nil {
		s.diag.AddError("settle", err)
	}
	return nil
}

func (s *session) wait(ctx context.Context, selectors []string, timeout time.Duration) (string, error) {
	return browser.WaitForAny(ctx, s.page, selectors, timeout, s.cfg.PollInterval)
}

func (s *session) document(ctx context.Context) (*goquery.Document, error) {
	html, err := s.page.Content(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read page content")
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// click clicks el, recording the failure under step
func (s *session) click(ctx context.Context, step string, el browser.Element) bool {
	if err := el.Click(ctx); err != nil {
		s.diag.AddError(step, err)
		return false
	}
	return true
}

func (s *session) openSeasonDropdown(ctx context.Context) {
	el, err := s.page.QueryOne(ctx, extract.SeasonDropdownSelector)
	if err != nil {
		s.diag.AddError("season dropdown", err)
		return
	}
	if el == nil {
		return
	}
	if s.click(ctx, "season dropdown", el) {
		if _, err := s.wait(ctx, extract.StructuredSeasonSelectors, s.cfg.ClickTimeout); err != nil {
			s.diag.AddError("season dropdown", err)
		}
	}
}

// selectSeason clicks the picker entry for season n and waits for the
// episode list to change. It reports whether anything was clicked.
func (s *session) selectSeason(ctx context.Context, n int) bool {
	el := s.findSeason(ctx, n)
	if el == nil {
		return false
	}
	before := s.rowSignature(ctx)
	if !s.click(ctx, "select season "+strconv.Itoa(n), el) {
		return false
	}
	s.waitForRows(ctx, before)
	return true
}

func (s *session) findSeason(ctx context.Context, n int) browser.Element {
	num := strconv.Itoa(n)
	el, err := s.page.QueryOne(ctx, `[data-season="`+num+`"]`)
	if err != nil {
		s.diag.AddError("find season", err)
	}
	if el != nil {
		return el
	}

	candidates, err := s.page.QueryAll(ctx, clickableSeasonSelector)
	if err != nil {
		s.diag.AddError("find season", err)
		return nil
	}
	want := extract.SeasonName(n)
	for _, c := range candidates {
		text, err := c.Text(ctx)
		if err != nil {
			continue
		}
		if strings.EqualFold(extract.CollapseSpace(text), want) {
			return c
		}
	}
	return nil
}

// rowSignature summarises the visible episode rows so a re-render can be detected
func (s *session) rowSignature(ctx context.Context) string {
	for _, sel := range extract.EpisodeSelectors {
		rows, err := s.page.QueryAll(ctx, sel)
		if err != nil || len(rows) == 0 {
			continue
		}
		first, _ := rows[0].Text(ctx)
		last, _ := rows[len(rows)-1].Text(ctx)
		return sel + "|" + strconv.Itoa(len(rows)) + "|" + extract.CollapseSpace(first) + "|" + extract.CollapseSpace(last)
	}
	return ""
}

// waitForRows polls until the episode rows differ from before. A timeout
// is not an error: the selected season may already have been on screen.
func (s *session) waitForRows(ctx context.Context, before string) {
	deadline := time.Now().Add(s.cfg.ClickTimeout)
	for {
		if sig := s.rowSignature(ctx); sig != "" && sig != before {
			return
		}
		if !time.Now().Before(deadline) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.cfg.PollInterval):
		}
	}
}

// selectEpisode clicks the row for episode n and waits for server markers
func (s *session) selectEpisode(ctx context.Context, n int) bool {
	el := s.findEpisode(ctx, n)
	if el == nil {
		return false
	}
	if !s.click(ctx, "select episode "+strconv.Itoa(n), el) {
		return false
	}
	if _, err := s.wait(ctx, serverMarkers, s.cfg.ClickTimeout); err != nil {
		s.diag.AddError("episode servers", err)
	}
	return true
}

func (s *session) findEpisode(ctx context.Context, n int) browser.Element {
	num := strconv.Itoa(n)
	for _, sel := range extract.EpisodeSelectors {
		rows, err := s.page.QueryAll(ctx, sel)
		if err != nil {
			s.diag.AddError("find episode", err)
			continue
		}
		if len(rows) == 0 {
			continue
		}
		for _, attr := range []string{"data-episode", "data-id"} {
			if el, _ := s.page.QueryOne(ctx, sel+"["+attr+`="`+num+`"]`); el != nil {
				return el
			}
		}
		for _, row := range rows {
			href, _ := row.Attr(ctx, "href")
			if extract.EpisodeNumberFromHref(href) == n {
				return row
			}
		}
		for _, row := range rows {
			text, _ := row.Text(ctx)
			if extract.EpisodeNumberFromText(extract.CollapseSpace(text)) == n {
				return row
			}
		}
		return nil
	}
	return nil
}

// revealServers opens the servers tab when the page hides the list behind one
func (s *session) revealServers(ctx context.Context) {
	for _, sel := range extract.ServerTriggerSelectors {
		el, err := s.page.QueryOne(ctx, sel)
		if err != nil || el == nil {
			continue
		}
		if s.click(ctx, "servers tab", el) {
			s.waitForServers(ctx)
			return
		}
	}

	candidates, err := s.page.QueryAll(ctx, clickableServerTabSelector)
	if err != nil {
		s.diag.AddError("servers tab", err)
		return
	}
	for _, c := range candidates {
		text, _ := c.Text(ctx)
		if serversLabelRe.MatchString(extract.CollapseSpace(text)) {
			if s.click(ctx, "servers tab", c) {
				s.waitForServers(ctx)
			}
			return
		}
	}
}

func (s *session) waitForServers(ctx context.Context) {
	if _, err := s.wait(ctx, extract.ServerSelectors, s.cfg.ServerTimeout); err != nil {
		s.diag.AddError("servers", err)
	}
}

// servers scans the page in-browser, falling back to parsing its HTML
func (s *session) servers(ctx context.Context) ServerResult {
	var scan extract.ServerScan
	if err := s.page.Evaluate(ctx, extract.ServerScanScript, &scan); err != nil {
		s.diag.AddError("server scan", err)
		doc, err := s.document(ctx)
		if err != nil {
			s.diag.AddError("server scan fallback", err)
			return ServerResult{Servers: []models.ServerEntry{}, Diagnostics: s.diag}
		}
		scan = extract.ScanServers(doc.Selection)
		scan.URL = s.page.URL(ctx)
	}

	diag := scan.Diagnostics()
	diag.Errors = s.diag.Errors
	if diag.URL == "" {
		diag.URL = s.diag.URL
	}
	s.diag = diag

	res := ServerResult{
		Servers:     extract.FilterServers(scan.Candidates),
		Iframe:      extract.AbsolutizeURL(s.origin, scan.Iframe),
		Diagnostics: diag,
	}
	return res
}

// inspect records how many nodes each selector matches, plus a snapshot of
// the main content
func (s *session) inspect(doc *goquery.Document, selectors []string) {
	if s.diag.SelectorCounts == nil {
		s.diag.SelectorCounts = map[string]int{}
	}
	for _, sel := range selectors {
		s.diag.SelectorCounts[sel] = doc.Find(sel).Length()
	}
	s.diag.Snapshot = extract.Snapshot(doc.Selection)
}

// logDiagnostics runs once per extraction, whatever its outcome
func (s *session) logDiagnostics(op string, err error) {
	s.diag.AddError(op, err)
	if s.cfg.Report != nil {
		s.cfg.Report(op, *s.diag)
	}
	util.Debug("navigation diagnostics",
		"op", op,
		"url", s.diag.URL,
		"counts", s.diag.SelectorCounts,
		"errors", s.diag.Errors,
	)
}
