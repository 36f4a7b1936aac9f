// Package navigator drives a browser page through the season, episode and
// server pickers of a title page to read content that is rendered client-side.
package navigator

import (
	"context"
	"time"

	"github.com/depezo/sflix-api/internal/browser"
	"github.com/depezo/sflix-api/internal/extract"
	"github.com/depezo/sflix-api/internal/models"
	"github.com/depezo/sflix-api/internal/util"
)

// Config bounds every wait the navigator performs
type Config struct {
	NavigationTimeout time.Duration
	SettleTimeout     time.Duration
	ClickTimeout      time.Duration
	ServerTimeout     time.Duration
	PollInterval      time.Duration
	Limits            extract.SeasonLimits

	// Report, when set, receives the diagnostics of every extraction,
	// failed ones included
	Report func(op string, diag models.Diagnostics)
}

// DefaultConfig mirrors the timings the site needs in practice
func DefaultConfig() Config {
	return Config{
		NavigationTimeout: 30 * time.Second,
		SettleTimeout:     2 * time.Second,
		ClickTimeout:      1500 * time.Millisecond,
		ServerTimeout:     3 * time.Second,
		PollInterval:      100 * time.Millisecond,
		Limits:            extract.DefaultSeasonLimits,
	}
}

// Navigator runs dynamic extractions, each on its own pooled page
type Navigator struct {
	pool   *browser.Pool
	origin string
	cfg    Config
}

// New creates a navigator for the site rooted at origin
func New(pool *browser.Pool, origin string, cfg Config) *Navigator {
	def := DefaultConfig()
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = def.NavigationTimeout
	}
	if cfg.SettleTimeout <= 0 {
		cfg.SettleTimeout = def.SettleTimeout
	}
	if cfg.ClickTimeout <= 0 {
		cfg.ClickTimeout = def.ClickTimeout
	}
	if cfg.ServerTimeout <= 0 {
		cfg.ServerTimeout = def.ServerTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.Limits == (extract.SeasonLimits{}) {
		cfg.Limits = def.Limits
	}
	return &Navigator{pool: pool, origin: origin, cfg: cfg}
}

// Seasons discovers the season list after client-side rendering and counts
// the episodes shown for each season.
func (n *Navigator) Seasons(ctx context.Context, seriesURL string) ([]models.Season, error) {
	var seasons []models.Season
	err := n.pool.WithPage(ctx, func(ctx context.Context, page browser.Page) (err error) {
		s := n.session(page)
		defer func() { s.logDiagnostics("seasons", err) }()
		if err := s.load(ctx, seriesURL); err != nil {
			return err
		}
		s.openSeasonDropdown(ctx)

		doc, err := s.document(ctx)
		if err != nil {
			return err
		}
		s.inspect(doc, extract.SeasonSelectors)
		seasons = extract.DiscoverSeasons(doc.Selection, n.cfg.Limits.DOM)

		for i := range seasons {
			if !s.selectSeason(ctx, seasons[i].SeasonNumber) {
				continue
			}
			doc, err := s.document(ctx)
			if err != nil {
				s.diag.AddError("count episodes", err)
				continue
			}
			seasons[i].EpisodeCount = len(extract.EpisodeRows(doc.Selection, n.origin))
			util.Debug("season episodes counted", "season", seasons[i].SeasonNumber, "episodes", seasons[i].EpisodeCount)
		}
		return nil
	})
	return seasons, err
}

// SeasonEpisodes selects one season and reads its visible episode rows
func (n *Navigator) SeasonEpisodes(ctx context.Context, seriesURL string, season int) ([]models.Episode, error) {
	episodes := []models.Episode{}
	err := n.pool.WithPage(ctx, func(ctx context.Context, page browser.Page) (err error) {
		s := n.session(page)
		defer func() { s.logDiagnostics("season episodes", err) }()
		if err := s.load(ctx, seriesURL); err != nil {
			return err
		}
		s.openSeasonDropdown(ctx)
		if !s.selectSeason(ctx, season) {
			util.Debug("season not selectable, reading visible rows", "season", season)
		}

		doc, err := s.document(ctx)
		if err != nil {
			return err
		}
		s.inspect(doc, extract.EpisodeSelectors)
		episodes = extract.EpisodeRows(doc.Selection, n.origin)
		return nil
	})
	return episodes, err
}

// SeasonsWithEpisodes enumerates every season on one page and reads the
// episode rows of each.
func (n *Navigator) SeasonsWithEpisodes(ctx context.Context, seriesURL string) ([]models.Season, error) {
	var seasons []models.Season
	err := n.pool.WithPage(ctx, func(ctx context.Context, page browser.Page) (err error) {
		s := n.session(page)
		defer func() { s.logDiagnostics("seasons with episodes", err) }()
		if err := s.load(ctx, seriesURL); err != nil {
			return err
		}
		s.openSeasonDropdown(ctx)

		doc, err := s.document(ctx)
		if err != nil {
			return err
		}
		s.inspect(doc, extract.SeasonSelectors)
		found := extract.EnumerateSeasons(doc.Selection, n.cfg.Limits.Enumeration)

		for _, season := range found {
			s.selectSeason(ctx, season.SeasonNumber)
			doc, err := s.document(ctx)
			if err != nil {
				s.diag.AddError("read episodes", err)
				continue
			}
			season.Episodes = extract.EpisodeRows(doc.Selection, n.origin)
			season.EpisodeCount = len(season.Episodes)
			seasons = append(seasons, season)
		}
		return nil
	})
	return seasons, err
}

// ServerResult is the outcome of a dynamic server extraction
type ServerResult struct {
	Servers     []models.ServerEntry
	Iframe      string
	Diagnostics *models.Diagnostics
}

// EpisodeServers selects season and episode, reveals the server list and scans it
func (n *Navigator) EpisodeServers(ctx context.Context, seriesURL string, season, episode int) (ServerResult, error) {
	var res ServerResult
	err := n.pool.WithPage(ctx, func(ctx context.Context, page browser.Page) (err error) {
		s := n.session(page)
		defer func() { s.logDiagnostics("episode servers", err) }()
		if err := s.load(ctx, seriesURL); err != nil {
			return err
		}
		s.openSeasonDropdown(ctx)
		if !s.selectSeason(ctx, season) {
			util.Debug("season not selectable", "season", season)
		}
		if !s.selectEpisode(ctx, episode) {
			util.Debug("episode not selectable", "episode", episode)
		}
		util.Debug("page after selection", "url", page.URL(ctx))

		s.revealServers(ctx)
		res = s.servers(ctx)
		return nil
	})
	return res, err
}

// MovieServers reveals and scans the server list of a movie page
func (n *Navigator) MovieServers(ctx context.Context, movieURL string) (ServerResult, error) {
	var res ServerResult
	err := n.pool.WithPage(ctx, func(ctx context.Context, page browser.Page) (err error) {
		s := n.session(page)
		defer func() { s.logDiagnostics("movie servers", err) }()
		if err := s.load(ctx, movieURL); err != nil {
			return err
		}
		s.revealServers(ctx)
		res = s.servers(ctx)
		return nil
	})
	return res, err
}

func (n *Navigator) session(page browser.Page) *session {
	return &session{
		page:   page,
		cfg:    n.cfg,
		origin: n.origin,
		diag:   &models.Diagnostics{SelectorCounts: map[string]int{}},
	}
}
