// Package sflix exposes the catalog engine as a library for other Go programs.
// The HTTP service in cmd/sflix-api is one consumer of it.
package sflix

import (
	"context"

	"github.com/pkg/errors"

	"github.com/depezo/sflix-api/internal/browser"
	"github.com/depezo/sflix-api/internal/config"
	"github.com/depezo/sflix-api/internal/fetch"
	"github.com/depezo/sflix-api/internal/models"
	"github.com/depezo/sflix-api/internal/navigator"
	"github.com/depezo/sflix-api/internal/override"
	"github.com/depezo/sflix-api/internal/scraper"
	"github.com/depezo/sflix-api/internal/util"
)

// Public aliases for the records the client returns
type (
	Config         = config.Config
	MediaCard      = models.MediaCard
	SearchResult   = models.SearchResult
	MovieDetail    = models.MovieDetail
	SeriesDetail   = models.SeriesDetail
	CastPage       = models.CastPage
	Season         = models.Season
	Episode        = models.Episode
	ServerEntry    = models.ServerEntry
	EpisodeServers = models.EpisodeServers
	MovieServers   = models.MovieServers
)

var (
	ErrMissingParameter = scraper.ErrMissingParameter
	ErrInvalidParameter = scraper.ErrInvalidParameter
)

// DefaultConfig returns the settings used when no environment variable is set
func DefaultConfig() Config {
	return config.Default()
}

// LoadConfig reads the environment over DefaultConfig
func LoadConfig() (Config, error) {
	return config.Load()
}

// Client runs every catalog operation. When the browser is enabled it owns
// the browser pool, so callers must Close it.
type Client struct {
	*scraper.SFlixClient

	pool *browser.Pool
}

// NewClient wires the fetcher, the override table and (when enabled) the
// browser-backed navigator from cfg.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	overrides, err := override.Load(cfg.Site.OverridesFile)
	if err != nil {
		return nil, errors.Wrap(err, "load known-catalog overrides")
	}

	fetcher := fetch.New(cfg.Site.BaseURL,
		fetch.WithHTTPClient(util.NewHTTPClient(cfg.FetchTimeout())),
		fetch.WithMaxRetries(cfg.Site.FetchRetries),
		fetch.WithBackoff(cfg.FetchBackoff()),
	)

	opts := []scraper.Option{
		scraper.WithOverrides(overrides),
		scraper.WithSeasonLimits(cfg.SeasonLimits()),
	}

	c := &Client{}
	if cfg.Browser.Enabled {
		launcher, err := browser.NewLauncher(cfg.BrowserOptions())
		if err != nil {
			return nil, errors.Wrap(err, "configure browser")
		}
		c.pool = browser.NewPool(launcher, cfg.Browser.PoolSize)
		opts = append(opts, scraper.WithNavigator(navigator.New(c.pool, fetcher.Origin(), cfg.NavigatorConfig())))
		util.Debugf("browser navigator enabled (backend=%s, pool=%d)", cfg.Browser.Backend, cfg.Browser.PoolSize)
	}

	c.SFlixClient = scraper.NewSFlixClient(fetcher, opts...)
	return c, nil
}

// Listing names accepted by Listings
const (
	ListingTrendingMovies = "trending_movies"
	ListingTrendingSeries = "trending_series"
	ListingLatestMovies   = "latest_movies"
	ListingLatestTVShows  = "latest_tvshows"
	ListingMovies         = "movies"
	ListingTVShows        = "tvshows"
)

// Listings fetches all six listings for page concurrently, at most
// maxWorkers at a time. Each listing degrades to empty independently.
func (c *Client) Listings(ctx context.Context, page, maxWorkers int) map[string][]MediaCard {
	ops := []struct {
		name string
		run  func(context.Context, int) []MediaCard
	}{
		{ListingTrendingMovies, c.TrendingMovies},
		{ListingTrendingSeries, c.TrendingSeries},
		{ListingLatestMovies, c.LatestMovies},
		{ListingLatestTVShows, c.LatestTVShows},
		{ListingMovies, c.AllMovies},
		{ListingTVShows, c.AllTVShows},
	}

	results := make([][]MediaCard, len(ops))
	tasks := make([]func(), len(ops))
	for i, op := range ops {
		i, op := i, op
		tasks[i] = func() { results[i] = op.run(ctx, page) }
	}
	util.ParallelExecute(maxWorkers, tasks...)

	out := make(map[string][]MediaCard, len(ops))
	for i, op := range ops {
		out[op.name] = results[i]
	}
	return out
}

// BrowserEnabled reports whether dynamic navigation is available
func (c *Client) BrowserEnabled() bool {
	return c.pool != nil
}

// Close shuts the browser down. It is safe to call more than once.
func (c *Client) Close() error {
	if c.pool == nil {
		return nil
	}
	return c.pool.Close()
}
