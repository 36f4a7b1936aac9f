package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/depezo/sflix-api/internal/models"
)

const (
	cardSelector     = ".flw-item"
	blockSelector    = ".block_area"
	defaultQuality   = "HD"
	defaultRating    = "N/A"
	listingFallbackN = 30
)

// Listing strategies for the home page sections, most specific first
var (
	TrendingMovieStrategies = []Strategy{
		Selector(`.block_area:contains("Trending Movies") .flw-item`),
		Selector(".section-id-01 .flw-item"),
		Selector(".trending-movies .flw-item"),
		Selector(".film_list-wrap .flw-item"),
	}

	LatestMovieStrategies = []Strategy{
		Selector(`.block_area:contains("Latest Movies") .flw-item`),
		Selector(".section-id-03 .flw-item"),
		Selector(".latest-movies .flw-item"),
		NthBlock(blockSelector, 2, cardSelector),
	}

	LatestTVStrategies = []Strategy{
		Selector(`.block_area:contains("Latest TV Shows") .flw-item`),
		Selector(".section-id-04 .flw-item"),
		Selector(".latest-series .flw-item"),
		NthBlock(blockSelector, 3, cardSelector),
	}

	RecommendationStrategies = Selectors(
		".film-related .flw-item, .recommendations .flw-item, .related .flw-item",
	)
)

// Card extracts a MediaCard from one .flw-item tile
func Card(s *goquery.Selection, origin string) models.MediaCard {
	link, _ := s.Find("a").First().Attr("href")
	link = strings.TrimSpace(link)

	title := FirstText(s, ".film-name", ".title", "h3", ".film-detail h3")
	if title == "" {
		title, _ = s.Find(".film-name a, a[title]").First().Attr("title")
		title = strings.TrimSpace(title)
	}

	poster := FirstAttr(s, "data-src", "img")
	if poster == "" {
		poster = FirstAttr(s, "src", "img")
	}

	return models.MediaCard{
		ID:      LastPathSegment(link),
		Title:   CollapseSpace(title),
		Poster:  AbsolutizeURL(origin, poster),
		Quality: orDefault(FirstText(s, ".quality", ".jtip-quality"), defaultQuality),
		Rating:  orDefault(FirstText(s, ".rating", ".imdb", ".score"), defaultRating),
		Year:    FirstText(s, ".year", ".released", ".fdi-item"),
		Link:    AbsolutizeURL(origin, link),
	}
}

// Cards converts every tile in sel into a card
func Cards(sel *goquery.Selection, origin string) []models.MediaCard {
	cards := make([]models.MediaCard, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		cards = append(cards, Card(s, origin))
	})
	return cards
}

// CardList returns the tiles matched by the first productive strategy. When
// none match, the first fallbackCap .flw-item tiles on the page are used, or
// nothing when fallbackCap is zero.
func CardList(doc *goquery.Document, strategies []Strategy, fallbackCap int) *goquery.Selection {
	items, _ := FirstMatch(doc.Selection, strategies)
	if items.Length() > 0 || fallbackCap <= 0 {
		return items
	}
	return capSelection(doc.Find(cardSelector), fallbackCap)
}

// TrendingMovieTiles returns the trending tiles of the home page
func TrendingMovieTiles(doc *goquery.Document) *goquery.Selection {
	return CardList(doc, TrendingMovieStrategies, listingFallbackN)
}

// TrendingSeriesCards returns page of the /tv/ tiles in the first home block.
// Short pages are topped up from the latest-TV block (third block on the page).
func TrendingSeriesCards(doc *goquery.Document, origin string, page, perPage int) []models.MediaCard {
	start := (page - 1) * perPage
	cards := make([]models.MediaCard, 0, perPage)

	seen := 0
	doc.Find(blockSelector).First().Find(cardSelector).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Find("a").First().Attr("href")
		if !strings.Contains(href, "/tv/") {
			return
		}
		if seen >= start && seen < start+perPage {
			cards = append(cards, Card(s, origin))
		}
		seen++
	})

	if len(cards) < perPage {
		remaining := perPage - len(cards)
		doc.Find(blockSelector).Eq(2).Find(cardSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			cards = append(cards, Card(s, origin))
			remaining--
			return remaining > 0
		})
	}
	return cards
}

// SearchResults converts tiles to cards tagged with their media type
func SearchResults(sel *goquery.Selection, origin string) []models.SearchResult {
	results := make([]models.SearchResult, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		results = append(results, models.SearchResult{MediaCard: Card(s, origin), Type: TileType(s)})
	})
	return results
}

// TileType classifies a tile by its first link: /tv/ links are series
func TileType(s *goquery.Selection) models.MediaType {
	href, _ := s.Find("a").First().Attr("href")
	if strings.Contains(href, "/tv/") {
		return models.MediaTypeSeries
	}
	return models.MediaTypeMovie
}

// Paginate returns the page-th window of size perPage (pages start at 1)
func Paginate[T any](items []T, page, perPage int) []T {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || page-1 >= (len(items)+perPage-1)/perPage {
		return []T{}
	}
	start := (page - 1) * perPage
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func capSelection(sel *goquery.Selection, n int) *goquery.Selection {
	if sel.Length() <= n {
		return sel
	}
	return sel.Slice(0, n)
}
