package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/depezo/sflix-api/internal/models"
)

// ServerSelectors are scanned in order; matches of every selector are pooled
var ServerSelectors = []string{
	".link-item[data-id]",
	".btn-play[data-id]",
	"a.link-item",
	".server-item",
	".item.server",
	".ps__-list .item",
	".server-list .item",
	".list-server .server-item",
	"[data-server]",
	".nav-link[data-id]",
	".btn-server",
	".server-btn",
	".watching_player-servers .item",
	".ps-list .item",
	".server",
	"[data-server-id]",
	".linkserver",
}

// ServerContainerSelectors are dumped into diagnostics
var ServerContainerSelectors = []string{
	".film-servers",
	".link-list",
	"#servers-list",
	".list-server",
	".server-list",
	".sl-box",
	".ps__-list",
	"#list-server",
	".watching_list",
	".watching-servers",
	".watching_player-servers",
	".ps-list",
}

// ServerTriggerSelectors reveal the server list on pages that tab it away
var ServerTriggerSelectors = []string{
	`.nav-tabs a[href*="server"]`,
	`.tab-link[data-name="servers"]`,
	".servers-tab",
	"#servers-tab",
	`[data-toggle="tab"][href*="server"]`,
}

// IframeSelectors locate the current player frame
var IframeSelectors = []string{"iframe#iframe-embed", "#iframe-embed", "iframe.watching_iframe", "iframe"}

const (
	snapshotSelector = ".watching_player, .player-wrapper, .detail_page, main"
	previewLimit     = 500
	snapshotLimit    = 2000
	minServerName    = 2
	maxServerName    = 50
)

var (
	serverNoiseRe = regexp.MustCompile(`(?i)share|detail|report|download|favorite|comment|trailer|^season|^episode\s+\d|^\d+$|rating|rate it`)
	serverWordRe  = regexp.MustCompile(`(?i)server`)
)

// ServerCandidate is a raw node that might be a server button. Attribute
// cascades are already resolved; the name is derived later from Text.
type ServerCandidate struct {
	Text    string `json:"text"`
	ID      string `json:"id"`
	Link    string `json:"link"`
	Type    string `json:"type"`
	Element string `json:"element"`
	Active  bool   `json:"active"`
}

// ServerScan is everything read from a page in one server extraction pass
type ServerScan struct {
	Candidates []ServerCandidate      `json:"candidates"`
	Counts     map[string]int         `json:"counts"`
	Containers []models.ContainerDump `json:"containers"`
	Snapshot   string                 `json:"snapshot"`
	Iframe     string                 `json:"iframe"`
	URL        string                 `json:"url"`
}

// ServerScanScript performs ScanServers inside a live page. It is a function
// expression; backends invoke it and decode the returned object into ServerScan.
var ServerScanScript = strings.NewReplacer(
	"%SERVERS%", jsList(ServerSelectors),
	"%CONTAINERS%", jsList(ServerContainerSelectors),
	"%IFRAMES%", jsList(IframeSelectors),
	"%SNAPSHOT%", jsList([]string{snapshotSelector}),
).Replace(serverScanTemplate)

const serverScanTemplate = `() => {
  const serverSelectors = %SERVERS%;
  const containerSelectors = %CONTAINERS%;
  const iframeSelectors = %IFRAMES%;
  const attr = (n, names) => {
    for (const a of names) {
      const v = n.getAttribute ? (n.getAttribute(a) || '').trim() : '';
      if (v) return v;
    }
    return '';
  };
  const candidates = [];
  const counts = {};
  for (const sel of serverSelectors) {
    const nodes = Array.from(document.querySelectorAll(sel));
    counts[sel] = nodes.length;
    for (const n of nodes) {
      candidates.push({
        text: n.textContent || '',
        id: attr(n, ['data-id', 'data-server', 'data-server-id', 'data-linkid', 'id']),
        link: attr(n, ['data-link', 'data-url', 'href']),
        type: attr(n, ['data-type', 'data-provider', 'data-name']),
        element: n.tagName || '',
        active: !!(n.classList && n.classList.contains('active')),
      });
    }
  }
  const containers = containerSelectors.map((sel) => {
    const el = document.querySelector(sel);
    const html = el ? el.innerHTML : '';
    return { selector: sel, present: !!el, length: html.length, preview: html.substring(0, 500) };
  });
  const main = document.querySelector(%SNAPSHOT%[0]);
  let iframe = '';
  for (const sel of iframeSelectors) {
    const el = document.querySelector(sel);
    const src = el ? (el.getAttribute('src') || '').trim() : '';
    if (src) { iframe = src; break; }
  }
  return {
    candidates,
    counts,
    containers,
    snapshot: main ? main.innerHTML.substring(0, 2000) : '',
    iframe,
    url: location.href,
  };
}`

// ScanServers collects the same data as ServerScanScript from parsed HTML
func ScanServers(root *goquery.Selection) ServerScan {
	scan := ServerScan{Counts: map[string]int{}}

	for _, sel := range ServerSelectors {
		nodes := root.Find(sel)
		scan.Counts[sel] = nodes.Length()
		nodes.Each(func(_ int, n *goquery.Selection) {
			scan.Candidates = append(scan.Candidates, ServerCandidate{
				Text:    n.Text(),
				ID:      AttrCascade(n, "data-id", "data-server", "data-server-id", "data-linkid", "id"),
				Link:    AttrCascade(n, "data-link", "data-url", "href"),
				Type:    AttrCascade(n, "data-type", "data-provider", "data-name"),
				Element: strings.ToUpper(goquery.NodeName(n)),
				Active:  n.HasClass("active"),
			})
		})
	}

	for _, sel := range ServerContainerSelectors {
		el := root.Find(sel).First()
		html, _ := el.Html()
		scan.Containers = append(scan.Containers, models.ContainerDump{
			Selector: sel,
			Present:  el.Length() > 0,
			Length:   len([]rune(html)),
			Preview:  truncate(html, previewLimit),
		})
	}

	scan.Snapshot = Snapshot(root)
	scan.Iframe = IframeSource(root)
	return scan
}

// Snapshot returns the start of the main content's HTML, or "" when the page
// has no main content block
func Snapshot(root *goquery.Selection) string {
	main := root.Find(snapshotSelector).First()
	if main.Length() == 0 {
		return ""
	}
	html, _ := main.Html()
	return truncate(html, snapshotLimit)
}

// IframeSource returns the src of the first player frame found
func IframeSource(root *goquery.Selection) string {
	for _, sel := range IframeSelectors {
		if src := strings.TrimSpace(root.Find(sel).First().AttrOr("src", "")); src != "" {
			return src
		}
	}
	return ""
}

// ServerName derives a display name from a node's text: the part after the
// first "server" word when present, else the whole collapsed text.
func ServerName(raw string) string {
	text := CollapseSpace(raw)
	parts := serverWordRe.Split(text, 3)
	if len(parts) > 1 {
		return strings.TrimSpace(parts[1])
	}
	return text
}

// ValidServerName rejects empty, noisy and out-of-range names
func ValidServerName(name string) bool {
	n := len([]rune(name))
	if n < minServerName || n > maxServerName {
		return false
	}
	return !serverNoiseRe.MatchString(name)
}

// FilterServers turns raw candidates into valid, unique server entries.
// The first candidate with a given (name, id) wins.
func FilterServers(candidates []ServerCandidate) []models.ServerEntry {
	servers := []models.ServerEntry{}
	seen := map[models.ServerKey]bool{}
	for _, c := range candidates {
		name := ServerName(c.Text)
		if !ValidServerName(name) {
			continue
		}
		entry := models.ServerEntry{
			Name:     name,
			ID:       strings.TrimSpace(c.ID),
			Link:     strings.TrimSpace(c.Link),
			Type:     strings.TrimSpace(c.Type),
			Element:  c.Element,
			IsActive: c.Active,
		}
		if seen[entry.Key()] {
			continue
		}
		seen[entry.Key()] = true
		if entry.ID == "" {
			continue
		}
		servers = append(servers, entry)
	}
	return servers
}

// Diagnostics converts a scan into the internal diagnostics record
func (s ServerScan) Diagnostics() *models.Diagnostics {
	return &models.Diagnostics{
		URL:            s.URL,
		SelectorCounts: s.Counts,
		Containers:     s.Containers,
		Snapshot:       s.Snapshot,
	}
}

func jsList(items []string) string {
	b, _ := json.Marshal(items)
	return string(b)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
