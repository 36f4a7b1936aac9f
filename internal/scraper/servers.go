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

// EpisodeServers lists the streaming servers of one episode. Server links
// are never visited; an empty list is a valid answer.
func (c *SFlixClient) EpisodeServers(ctx context.Context, seriesID string, season, episode int) (*models.EpisodeServers, error) {
	if err := validateSeries(seriesID, season, episode); err != nil {
		return nil, err
	}
	result := &models.EpisodeServers{
		SeriesID:      seriesID,
		SeasonNumber:  season,
		EpisodeNumber: episode,
		Servers:       []models.ServerEntry{},
	}

	if doc := c.document(ctx, "episode servers", c.seriesURL(seriesID)); doc != nil && showsEpisode(doc, season, episode) {
		if servers, iframe, diag := c.staticServers(doc); len(servers) > 0 {
			result.Servers, result.Iframe, result.Diagnostics = servers, iframe, diag
			return result, nil
		}
	}

	if c.navigator != nil {
		res, err := c.navigator.EpisodeServers(ctx, c.seriesURL(seriesID), season, episode)
		if err != nil {
			util.Warn("dynamic server extraction failed", "series", seriesID, "season", season, "episode", episode, "error", err)
		}
		if len(res.Servers) > 0 {
			result.Servers = res.Servers
		}
		result.Iframe, result.Diagnostics = res.Iframe, res.Diagnostics
	}

	logServerDiagnostics(result.Diagnostics, len(result.Servers), "series", seriesID, "season", season, "episode", episode)
	return result, nil
}

// MovieServers lists the streaming servers of a movie
func (c *SFlixClient) MovieServers(ctx context.Context, movieID string) (*models.MovieServers, error) {
	if strings.TrimSpace(movieID) == "" {
		return nil, errors.Wrap(ErrMissingParameter, "movie id")
	}
	result := &models.MovieServers{MovieID: movieID, Servers: []models.ServerEntry{}}

	if doc := c.document(ctx, "movie servers", c.movieURL(movieID)); doc != nil {
		if servers, iframe, diag := c.staticServers(doc); len(servers) > 0 {
			result.Servers, result.Iframe, result.Diagnostics = servers, iframe, diag
			return result, nil
		}
	}

	if c.navigator != nil {
		res, err := c.navigator.MovieServers(ctx, c.movieURL(movieID))
		if err != nil {
			util.Warn("dynamic server extraction failed", "movie", movieID, "error", err)
		}
		if len(res.Servers) > 0 {
			result.Servers = res.Servers
		}
		result.Iframe, result.Diagnostics = res.Iframe, res.Diagnostics
	}

	logServerDiagnostics(result.Diagnostics, len(result.Servers), "movie", movieID)
	return result, nil
}

func (c *SFlixClient) staticServers(doc *goquery.Document) ([]models.ServerEntry, string, *models.Diagnostics) {
	scan := extract.ScanServers(doc.Selection)
	return extract.FilterServers(scan.Candidates), extract.AbsolutizeURL(c.origin, scan.Iframe), scan.Diagnostics()
}

// showsEpisode reports whether the static page is already on the requested
// episode, so that any servers it lists belong to it.
func showsEpisode(doc *goquery.Document, season, episode int) bool {
	if !showsSeason(doc, season) {
		return false
	}
	active := extract.ActiveEpisode(doc.Selection)
	if active == 0 {
		return episode == 1
	}
	return active == episode
}

func logServerDiagnostics(diag *models.Diagnostics, found int, keyvals ...interface{}) {
	if found > 0 || diag == nil {
		return
	}
	keyvals = append(keyvals,
		"url", diag.URL,
		"counts", diag.SelectorCounts,
		"errors", diag.Errors,
		"snapshot", diag.Snapshot,
	)
	util.Debug("no servers found", keyvals...)
}
