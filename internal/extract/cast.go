package extract

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/depezo/sflix-api/internal/models"
)

// CastWorkStrategies locate the filmography tiles on a person page
var CastWorkStrategies = Selectors(
	".filmography .flw-item",
	".cast-movies .flw-item",
	".works-list .flw-item",
	".movies-list .flw-item",
	".flw-item",
)

// CastInfo reads the person header of a cast page
func CastInfo(doc *goquery.Document, origin, id string) models.CastInfo {
	root := doc.Selection

	birth := FirstText(root, ".birth-date")
	if birth == "" {
		birth = LabeledText(root, ".info-item", "Birth")
	}
	nationality := FirstText(root, ".nationality")
	if nationality == "" {
		nationality = LabeledText(root, ".info-item", "Nationality")
	}

	return models.CastInfo{
		ID:          id,
		Name:        CollapseSpace(FirstText(root, ".cast-name", ".actor-name", ".heading-name", "h1")),
		Photo:       AbsolutizeURL(origin, FirstAttr(root, "src", ".cast-photo img", ".actor-photo img", ".profile-image img")),
		Bio:         CollapseSpace(FirstText(root, ".cast-bio", ".actor-bio", ".biography")),
		BirthDate:   birth,
		Nationality: nationality,
	}
}

// CastWorks returns every credited tile on a person page, in page order
func CastWorks(doc *goquery.Document, origin string) []models.CastWork {
	items, _ := FirstMatch(doc.Selection, CastWorkStrategies)
	works := make([]models.CastWork, 0, items.Length())
	items.Each(func(_ int, s *goquery.Selection) {
		works = append(works, models.CastWork{
			SearchResult: models.SearchResult{MediaCard: Card(s, origin), Type: TileType(s)},
			Role:         FirstText(s, ".character", ".role"),
		})
	})
	return works
}
