package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/depezo/sflix-api/internal/models"
)

// EpisodeSelectors locate episode rows; the first selector with any match is used
var EpisodeSelectors = []string{
	".eps-item",
	".episode-item",
	".ep-item",
	"[data-episode]",
	".episode",
	`a[href*="/episode-"]`,
}

var (
	episodeHrefRe = regexp.MustCompile(`episode-(\d+)`)
	episodeTextRe = regexp.MustCompile(`(?i)Episode\s*(\d+)`)
	bareNumberRe  = regexp.MustCompile(`^(\d+)$`)
)

// EpisodeRowSelector returns the first episode selector matching under root
func EpisodeRowSelector(root *goquery.Selection) string {
	for _, sel := range EpisodeSelectors {
		if root.Find(sel).Length() > 0 {
			return sel
		}
	}
	return ""
}

// EpisodeRows extracts the visible episode list, unique by number and sorted.
func EpisodeRows(root *goquery.Selection, origin string) []models.Episode {
	sel := EpisodeRowSelector(root)
	if sel == "" {
		return []models.Episode{}
	}

	seen := map[int]bool{}
	episodes := []models.Episode{}
	root.Find(sel).Each(func(idx int, row *goquery.Selection) {
		href, _ := row.Attr("href")
		text := strings.TrimSpace(row.Text())
		number := EpisodeNumber(href, AttrCascade(row, "data-episode", "data-id"), text, idx)
		if seen[number] {
			return
		}
		seen[number] = true

		title := strings.TrimSpace(row.Find(".ep-name, .episode-name, .title").First().Text())
		if title == "" {
			title = text
		}
		if title == "" {
			title = fmt.Sprintf("Episode %d", number)
		}
		thumb, _ := row.Find("img").First().Attr("src")

		episodes = append(episodes, models.Episode{
			EpisodeNumber: number,
			Title:         NormalizeTitle(title),
			Thumbnail:     AbsolutizeURL(origin, thumb),
			URL:           AbsolutizeURL(origin, href),
		})
	})

	sort.SliceStable(episodes, func(i, j int) bool {
		return episodes[i].EpisodeNumber < episodes[j].EpisodeNumber
	})
	return episodes
}

// EpisodeNumber resolves a row's number: an episode-N link wins, then a
// numeric data attribute, then "Episode N" or a bare number in the text,
// then the row position.
func EpisodeNumber(href, dataAttr, text string, idx int) int {
	if m := episodeHrefRe.FindStringSubmatch(href); m != nil {
		if n, ok := atoiPositive(m[1]); ok {
			return n
		}
	}
	if n, ok := atoiPositive(leadingDigits(dataAttr)); ok {
		return n
	}
	if n := EpisodeNumberFromText(text); n > 0 {
		return n
	}
	return idx + 1
}

// EpisodeNumberFromText reads "Episode N" or a bare number, returning 0 otherwise
func EpisodeNumberFromText(text string) int {
	text = strings.TrimSpace(text)
	if m := episodeTextRe.FindStringSubmatch(text); m != nil {
		n, _ := atoiPositive(m[1])
		return n
	}
	if m := bareNumberRe.FindStringSubmatch(text); m != nil {
		n, _ := atoiPositive(m[1])
		return n
	}
	return 0
}

// EpisodeNumberFromHref reads the N of an episode-N link, returning 0 otherwise
func EpisodeNumberFromHref(href string) int {
	if m := episodeHrefRe.FindStringSubmatch(href); m != nil {
		n, _ := atoiPositive(m[1])
		return n
	}
	return 0
}

// PlaceholderEpisodes synthesizes count numbered episodes with no metadata
func PlaceholderEpisodes(count int) []models.Episode {
	episodes := make([]models.Episode, 0, count)
	for i := 1; i <= count; i++ {
		episodes = append(episodes, models.Episode{EpisodeNumber: i, Title: fmt.Sprintf("Episode %d", i)})
	}
	return episodes
}

// ActiveEpisode reports the episode row marked active, or 0 when none is
func ActiveEpisode(root *goquery.Selection) int {
	row := root.Find(".eps-item.active, .episode-item.active, .ep-item.active, [data-episode].active").First()
	if row.Length() == 0 {
		return 0
	}
	href, _ := row.Attr("href")
	return EpisodeNumber(href, AttrCascade(row, "data-episode", "data-id"), CollapseSpace(row.Text()), 0)
}
