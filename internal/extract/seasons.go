package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/depezo/sflix-api/internal/models"
)

// SeasonLimits bounds the season numbers each discovery strategy accepts.
// Numbers above a strategy's limit are treated as noise.
type SeasonLimits struct {
	Script      int
	DOM         int
	Enumeration int
}

// DefaultSeasonLimits are the ceilings used when none are configured
var DefaultSeasonLimits = SeasonLimits{Script: 10, DOM: 20, Enumeration: 50}

// SeasonSelectors are tried in order; the first one producing a season wins
var SeasonSelectors = []string{
	".ss-list .ss-item",
	".season-list .btn-season",
	".dropdown-menu a[data-season]",
	".season-item",
	".slt-seasons-content .ssc-item",
	".sl-season",
	"[data-season]",
	".seasons-block .season",
	".season-tabs .tab",
	".dropdown-menu li a",
	".season-select option",
	"button[data-season]",
	`a[href*="/season-"]`,
	"a",
	"button",
}

// StructuredSeasonSelectors is SeasonSelectors without the bare a/button
// fallbacks, for pages where any link could be mistaken for a season.
var StructuredSeasonSelectors = SeasonSelectors[:len(SeasonSelectors)-2]

// EnumerationSeasonSelector is the union scanned when every season is enumerated at once
const EnumerationSeasonSelector = ".ss-list .ss-item, .season-list .btn-season, .dropdown-menu a, " +
	".slt-seasons-content .ssc-item, [data-season], .season-item, .season-tabs .tab, .seasons-block .season, a, button"

// SeasonDropdownSelector opens the season picker when the site hides it behind a toggle
const SeasonDropdownSelector = ".btn-season, .season-dropdown, .dropdown-toggle, .slt-seasons-content"

var (
	seasonTextRe   = regexp.MustCompile(`(?i)^\s*Season\s+(\d+)\s*$`)
	seasonHrefRe   = regexp.MustCompile(`season-(\d+)`)
	scriptSeasonRe = regexp.MustCompile(`(?i)season[\s:]*([0-9]+)`)
	digitsRe       = regexp.MustCompile(`^\d+$`)
)

// SeasonName is the display name given to discovered seasons
func SeasonName(n int) string {
	return fmt.Sprintf("Season %d", n)
}

// DefaultSeasons is returned when no strategy finds anything
func DefaultSeasons() []models.Season {
	return []models.Season{{SeasonNumber: 1, SeasonName: SeasonName(1), EpisodeCount: 0}}
}

// seasonSet accumulates unique season numbers in discovery order
type seasonSet struct {
	ceiling int
	seen    map[int]bool
	list    []models.Season
}

func newSeasonSet(ceiling int) *seasonSet {
	return &seasonSet{ceiling: ceiling, seen: map[int]bool{}}
}

func (s *seasonSet) add(n int) {
	if n <= 0 || n > s.ceiling || s.seen[n] {
		return
	}
	s.seen[n] = true
	s.list = append(s.list, models.Season{SeasonNumber: n, SeasonName: SeasonName(n)})
}

// DiscoverSeasons is the structured DOM strategy: selectors are tried in
// order and the first selector yielding at least one season decides the list.
func DiscoverSeasons(root *goquery.Selection, ceiling int) []models.Season {
	return DiscoverSeasonsWith(root, SeasonSelectors, ceiling)
}

// DiscoverSeasonsWith runs the DOM strategy over a custom selector list
func DiscoverSeasonsWith(root *goquery.Selection, selectors []string, ceiling int) []models.Season {
	for _, sel := range selectors {
		set := newSeasonSet(ceiling)
		root.Find(sel).Each(func(_ int, node *goquery.Selection) {
			set.add(seasonFromNode(node, false))
		})
		if len(set.list) > 0 {
			return SortSeasons(set.list)
		}
	}
	return nil
}

// EnumerateSeasons scans the union selector once and keeps every season found.
// Attribute values must be purely numeric to count.
func EnumerateSeasons(root *goquery.Selection, ceiling int) []models.Season {
	set := newSeasonSet(ceiling)
	root.Find(EnumerationSeasonSelector).Each(func(_ int, node *goquery.Selection) {
		set.add(seasonFromNode(node, true))
	})
	return SortSeasons(set.list)
}

// ScanScriptSeasons is the low-confidence strategy: it sniffs "season N"
// mentions in inline scripts. Use it only when DOM discovery found nothing.
func ScanScriptSeasons(root *goquery.Selection, ceiling int) []models.Season {
	set := newSeasonSet(ceiling)
	root.Find("script").Each(func(_ int, s *goquery.Selection) {
		body := s.Text()
		if !strings.Contains(strings.ToLower(body), "season") {
			return
		}
		for _, m := range scriptSeasonRe.FindAllStringSubmatch(body, -1) {
			if n, ok := atoiPositive(m[1]); ok {
				set.add(n)
			}
		}
	})
	return SortSeasons(set.list)
}

func seasonFromNode(node *goquery.Selection, strictDigits bool) int {
	if m := seasonTextRe.FindStringSubmatch(node.Text()); m != nil {
		if n, ok := atoiPositive(m[1]); ok {
			return n
		}
	}
	if v := AttrCascade(node, "data-season", "data-id", "value"); v != "" {
		if strictDigits && !digitsRe.MatchString(v) {
			return 0
		}
		n, _ := atoiPositive(leadingDigits(v))
		return n
	}
	href, _ := node.Attr("href")
	if m := seasonHrefRe.FindStringSubmatch(href); m != nil {
		n, _ := atoiPositive(m[1])
		return n
	}
	return 0
}

// ActiveSeason reports which season the page currently shows, or 0 when the
// page gives no indication.
func ActiveSeason(root *goquery.Selection) int {
	sel := root.Find(".ss-item.active, .ssc-item.active, .season-item.active, [data-season].active, .dropdown-menu a.active").First()
	if sel.Length() > 0 {
		if n := seasonFromNode(sel, false); n > 0 {
			return n
		}
	}
	for _, toggle := range []string{".btn-season", ".season-dropdown", ".slt-seasons-content .ssc-label"} {
		if m := seasonTextRe.FindStringSubmatch(CollapseSpace(root.Find(toggle).First().Text())); m != nil {
			n, _ := atoiPositive(m[1])
			return n
		}
	}
	return 0
}

// SortSeasons orders seasons by number, dropping repeated numbers
func SortSeasons(seasons []models.Season) []models.Season {
	if len(seasons) == 0 {
		return seasons
	}
	sort.SliceStable(seasons, func(i, j int) bool {
		return seasons[i].SeasonNumber < seasons[j].SeasonNumber
	})
	out := seasons[:1]
	for _, s := range seasons[1:] {
		if s.SeasonNumber != out[len(out)-1].SeasonNumber {
			out = append(out, s)
		}
	}
	return out
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}
