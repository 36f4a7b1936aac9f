package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/depezo/sflix-api/internal/models"
)

const maxRecommendations = 10

// MovieDetail reads the title page fields shared by movies and series
func MovieDetail(doc *goquery.Document, origin, id string) models.MovieDetail {
	root := doc.Selection

	released := LabeledText(root, ".row-line", "Released")
	if released == "" {
		released = FirstText(root, ".released", ".year")
	}
	runtime := LabeledText(root, ".row-line", "Duration")
	if runtime == "" {
		runtime = FirstText(root, ".runtime", ".duration")
	}

	return models.MovieDetail{
		ID:       id,
		Title:    CollapseSpace(FirstText(root, ".heading-name", ".film-name", ".movie-title", "h1")),
		Overview: CollapseSpace(FirstText(root, ".description", ".film-description", ".movie-description", ".synopsis")),
		Released: released,
		Runtime:  runtime,
		Trailer:  "",
		Genres:   uniqueTexts(root.Find(`.row-line:contains("Genre") a, .genre a, .genres a`)),
		Cast:     castMembers(root.Find(`.row-line:contains("Casts") a, .cast-item, .actor`)),
		Quality:  orDefault(FirstText(root, ".quality", ".badge-quality"), defaultQuality),
		Rating:   orDefault(FirstText(root, ".imdb", ".rating", ".vote"), defaultRating),
		Poster:   AbsolutizeURL(origin, FirstAttr(root, "src", ".film-poster img", ".movie-poster img", ".dp-i-c-poster img")),
		Banner:   AbsolutizeURL(origin, FirstAttr(root, "src", ".cover img", ".backdrop img", ".dp-i-c-bg img")),
	}
}

// Recommendations returns up to ten related-title cards from a series page
func Recommendations(doc *goquery.Document, origin string) []models.MediaCard {
	items, _ := FirstMatch(doc.Selection, RecommendationStrategies)
	return Cards(capSelection(items, maxRecommendations), origin)
}

func uniqueTexts(sel *goquery.Selection) []string {
	out := []string{}
	seen := map[string]bool{}
	sel.Each(func(_ int, s *goquery.Selection) {
		t := CollapseSpace(s.Text())
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		out = append(out, t)
	})
	return out
}

func castMembers(sel *goquery.Selection) []models.CastMember {
	names := uniqueTexts(sel)
	cast := make([]models.CastMember, 0, len(names))
	for _, n := range names {
		cast = append(cast, models.CastMember{Name: strings.TrimSuffix(n, ","), Role: ""})
	}
	return cast
}
