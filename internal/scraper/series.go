package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/depezo/sflix-api/internal/extract"
	"github.com/depezo/sflix-api/internal/models"
	"github.com/depezo/sflix-api/internal/util"
)

func validateSeries(seriesID string, numbers ...int) error {
	if strings.TrimSpace(seriesID) == "" {
		return errors.Wrap(ErrMissingParameter, "series id")
	}
	for _, n := range numbers {
		if n < 1 {
			return errors.Wrapf(ErrInvalidParameter, "number %d", n)
		}
	}
	return nil
}

// SeriesSeasons lists the seasons of a series. It never returns an empty
// list: when nothing is discovered a single empty season 1 is returned.
func (c *SFlixClient) SeriesSeasons(ctx context.Context, seriesID string) ([]models.Season, error) {
	if err := validateSeries(seriesID); err != nil {
		return nil, err
	}
	doc := c.document(ctx, "series seasons", c.seriesURL(seriesID))
	return c.seasons(ctx, seriesID, doc), nil
}

// seasons runs static discovery on doc (which may be nil), then the
// navigator, then the overrides, then the default.
func (c *SFlixClient) seasons(ctx context.Context, seriesID string, doc *goquery.Document) []models.Season {
	var seasons []models.Season
	source := "none"
	if doc != nil {
		seasons = extract.DiscoverSeasonsWith(doc.Selection, extract.StructuredSeasonSelectors, c.limits.DOM)
		source = "dom"
		if len(seasons) == 0 {
			seasons = extract.ScanScriptSeasons(doc.Selection, c.limits.Script)
			source = "script"
		}
	}

	if len(seasons) == 0 && c.navigator != nil {
		found, err := c.navigator.Seasons(ctx, c.seriesURL(seriesID))
		if err != nil {
			util.Warn("dynamic season discovery failed", "series", seriesID, "error", err)
		}
		seasons, source = found, "browser"
	}

	seasons = c.overrides.Apply(seriesID, seasons)
	if len(seasons) == 0 {
		util.Debug("no seasons discovered, using default", "series", seriesID)
		return extract.DefaultSeasons()
	}
	util.Debug("seasons discovered", "series", seriesID, "source", source, "count", len(seasons))
	return seasons
}

// SeasonEpisodes lists the episodes of one season
func (c *SFlixClient) SeasonEpisodes(ctx context.Context, seriesID string, season int) ([]models.Episode, error) {
	if err := validateSeries(seriesID, season); err != nil {
		return nil, err
	}

	if doc := c.document(ctx, "season episodes", c.seriesURL(seriesID)); doc != nil {
		if showsSeason(doc, season) {
			if rows := extract.EpisodeRows(doc.Selection, c.origin); len(rows) > 0 {
				return rows, nil
			}
		}
	}

	if c.navigator != nil {
		episodes, err := c.navigator.SeasonEpisodes(ctx, c.seriesURL(seriesID), season)
		if err != nil {
			util.Warn("dynamic episode listing failed", "series", seriesID, "season", season, "error", err)
		}
		if len(episodes) > 0 {
			return episodes, nil
		}
	}

	if count, ok := c.overrides.EpisodeCount(seriesID, season); ok && count > 0 {
		util.Debug("using known episode count", "series", seriesID, "season", season, "episodes", count)
		return extract.PlaceholderEpisodes(count), nil
	}
	return []models.Episode{}, nil
}

// SeriesSeasonsAndEpisodes lists every season together with its episodes
func (c *SFlixClient) SeriesSeasonsAndEpisodes(ctx context.Context, seriesID string) ([]models.Season, error) {
	if err := validateSeries(seriesID); err != nil {
		return nil, err
	}

	var seasons []models.Season
	if doc := c.document(ctx, "seasons and episodes", c.seriesURL(seriesID)); doc != nil {
		seasons = singleSeason(doc, c.origin, c.limits.DOM)
	}

	if len(seasons) == 0 && c.navigator != nil {
		found, err := c.navigator.SeasonsWithEpisodes(ctx, c.seriesURL(seriesID))
		if err != nil {
			util.Warn("dynamic season enumeration failed", "series", seriesID, "error", err)
		}
		seasons = found
	}

	seasons = c.overrides.Apply(seriesID, seasons)
	if len(seasons) == 0 {
		return extract.DefaultSeasons(), nil
	}
	for i := range seasons {
		if len(seasons[i].Episodes) == 0 && seasons[i].EpisodeCount > 0 {
			seasons[i].Episodes = extract.PlaceholderEpisodes(seasons[i].EpisodeCount)
		}
	}
	return seasons, nil
}

// showsSeason reports whether the static page renders the rows of season
func showsSeason(doc *goquery.Document, season int) bool {
	active := extract.ActiveSeason(doc.Selection)
	if active == 0 {
		return season == 1
	}
	return active == season
}

// singleSeason reads a page that shows at most one season together with its
// rows. Pages with several seasons need the browser and yield nil.
func singleSeason(doc *goquery.Document, origin string, ceiling int) []models.Season {
	found := extract.DiscoverSeasonsWith(doc.Selection, extract.StructuredSeasonSelectors, ceiling)
	if len(found) > 1 {
		return nil
	}
	rows := extract.EpisodeRows(doc.Selection, origin)
	if len(rows) == 0 {
		return nil
	}

	n := 1
	if len(found) == 1 {
		n = found[0].SeasonNumber
	}
	return []models.Season{{
		SeasonNumber: n,
		SeasonName:   extract.SeasonName(n),
		EpisodeCount: len(rows),
		Episodes:     rows,
	}}
}
