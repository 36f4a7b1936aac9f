// Package scraper provides the SFlix catalog engine: listings, details,
// seasons, episodes and streaming-server lists.
package scraper

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/depezo/sflix-api/internal/extract"
	"github.com/depezo/sflix-api/internal/models"
	"github.com/depezo/sflix-api/internal/navigator"
	"github.com/depezo/sflix-api/internal/override"
	"github.com/depezo/sflix-api/internal/util"
)

// Page sizes of the listing operations
const (
	ListingPerPage = 10
	BrowsePerPage  = 15
	CastPerPage    = 20
)

var (
	// ErrMissingParameter is returned when a required identifier or query is empty
	ErrMissingParameter = errors.New("missing parameter")
	// ErrInvalidParameter is returned for out-of-range season or episode numbers
	ErrInvalidParameter = errors.New("invalid parameter")
)

// DocumentFetcher loads and parses pages of the site
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, url string) (*goquery.Document, error)
	Origin() string
}

// Navigator reads client-rendered content through a browser
type Navigator interface {
	Seasons(ctx context.Context, seriesURL string) ([]models.Season, error)
	SeasonEpisodes(ctx context.Context, seriesURL string, season int) ([]models.Episode, error)
	SeasonsWithEpisodes(ctx context.Context, seriesURL string) ([]models.Season, error)
	EpisodeServers(ctx context.Context, seriesURL string, season, episode int) (navigator.ServerResult, error)
	MovieServers(ctx context.Context, movieURL string) (navigator.ServerResult, error)
}

// SFlixClient is the extraction engine. Listing operations use static HTML
// only; season, episode and server operations fall back to the navigator
// and then to the known-catalog overrides.
type SFlixClient struct {
	fetcher   DocumentFetcher
	navigator Navigator
	overrides *override.Table
	limits    extract.SeasonLimits
	origin    string
}

// Option configures an SFlixClient
type Option func(*SFlixClient)

// WithNavigator enables the browser-driven path
func WithNavigator(nav Navigator) Option {
	return func(c *SFlixClient) { c.navigator = nav }
}

// WithOverrides replaces the embedded known-catalog table
func WithOverrides(t *override.Table) Option {
	return func(c *SFlixClient) {
		if t != nil {
			c.overrides = t
		}
	}
}

// WithSeasonLimits sets the per-strategy season ceilings
func WithSeasonLimits(l extract.SeasonLimits) Option {
	return func(c *SFlixClient) { c.limits = l }
}

// NewSFlixClient creates an engine reading pages through fetcher
func NewSFlixClient(fetcher DocumentFetcher, opts ...Option) *SFlixClient {
	c := &SFlixClient{
		fetcher:   fetcher,
		overrides: override.Default(),
		limits:    extract.DefaultSeasonLimits,
		origin:    strings.TrimRight(fetcher.Origin(), "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Origin is the site root all links are resolved against
func (c *SFlixClient) Origin() string {
	return c.origin
}

func (c *SFlixClient) pageURL(parts ...string) string {
	return c.origin + "/" + strings.Join(parts, "/")
}

func (c *SFlixClient) seriesURL(id string) string { return c.pageURL("tv", id) }
func (c *SFlixClient) movieURL(id string) string  { return c.pageURL("movie", id) }

// document fetches a page, logging failures. A nil document means the
// caller should degrade to its empty result.
func (c *SFlixClient) document(ctx context.Context, op, pageURL string) *goquery.Document {
	doc, err := c.fetcher.FetchDocument(ctx, pageURL)
	if err != nil {
		util.Warn("fetch failed", "op", op, "url", pageURL, "error", err)
		return nil
	}
	return doc
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// TrendingMovies returns the trending tiles of the home page, ten per page
func (c *SFlixClient) TrendingMovies(ctx context.Context, page int) []models.MediaCard {
	doc := c.document(ctx, "trending movies", c.pageURL("home"))
	if doc == nil {
		return []models.MediaCard{}
	}
	cards := extract.Cards(extract.TrendingMovieTiles(doc), c.origin)
	return extract.Paginate(cards, normalizePage(page), ListingPerPage)
}

// TrendingSeries returns the series among the trending tiles, ten per page
func (c *SFlixClient) TrendingSeries(ctx context.Context, page int) []models.MediaCard {
	doc := c.document(ctx, "trending series", c.pageURL("home"))
	if doc == nil {
		return []models.MediaCard{}
	}
	return extract.TrendingSeriesCards(doc, c.origin, normalizePage(page), ListingPerPage)
}

// LatestMovies returns the latest-movies section, or the movie listing when
// the home page has no such section.
func (c *SFlixClient) LatestMovies(ctx context.Context, page int) []models.MediaCard {
	return c.latest(ctx, "latest movies", extract.LatestMovieStrategies, "movie", page)
}

// LatestTVShows returns the latest-TV section, or the TV listing when the
// home page has no such section.
func (c *SFlixClient) LatestTVShows(ctx context.Context, page int) []models.MediaCard {
	return c.latest(ctx, "latest tv shows", extract.LatestTVStrategies, "tv-show", page)
}

func (c *SFlixClient) latest(ctx context.Context, op string, strategies []extract.Strategy, listing string, page int) []models.MediaCard {
	doc := c.document(ctx, op, c.pageURL("home"))
	if doc == nil {
		return []models.MediaCard{}
	}
	items := extract.CardList(doc, strategies, 0)
	if items.Length() == 0 {
		util.Debug("home section missing, using listing", "op", op, "listing", listing)
		if doc = c.document(ctx, op, c.pageURL(listing)); doc == nil {
			return []models.MediaCard{}
		}
		items = doc.Find(".flw-item")
	}
	return extract.Paginate(extract.Cards(items, c.origin), normalizePage(page), ListingPerPage)
}

// AllMovies returns the first fifteen tiles of a movie listing page
func (c *SFlixClient) AllMovies(ctx context.Context, page int) []models.MediaCard {
	return c.browse(ctx, "all movies", "movie", page)
}

// AllTVShows returns the first fifteen tiles of a TV listing page
func (c *SFlixClient) AllTVShows(ctx context.Context, page int) []models.MediaCard {
	return c.browse(ctx, "all tv shows", "tv-show", page)
}

func (c *SFlixClient) browse(ctx context.Context, op, listing string, page int) []models.MediaCard {
	u := c.pageURL(listing) + "?page=" + strconv.Itoa(normalizePage(page))
	doc := c.document(ctx, op, u)
	if doc == nil {
		return []models.MediaCard{}
	}
	return extract.Paginate(extract.Cards(doc.Find(".flw-item"), c.origin), 1, BrowsePerPage)
}

// Search returns every tile of the search results page tagged with its type
func (c *SFlixClient) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.Wrap(ErrMissingParameter, "query")
	}
	doc := c.document(ctx, "search", c.pageURL("search", url.PathEscape(query)))
	if doc == nil {
		return []models.SearchResult{}, nil
	}
	return extract.SearchResults(doc.Find(".flw-item"), c.origin), nil
}

// CastMoviesAndShows returns a person's header and one page of their credits
func (c *SFlixClient) CastMoviesAndShows(ctx context.Context, castID string, page int) (models.CastPage, error) {
	if strings.TrimSpace(castID) == "" {
		return models.CastPage{}, errors.Wrap(ErrMissingParameter, "cast id")
	}
	page = normalizePage(page)
	result := models.CastPage{
		CastInfo: models.CastInfo{ID: castID},
		Works:    []models.CastWork{},
		Page:     page,
		PerPage:  CastPerPage,
	}

	doc := c.document(ctx, "cast", c.pageURL("cast", castID))
	if doc == nil {
		return result, nil
	}
	works := extract.CastWorks(doc, c.origin)
	result.CastInfo = extract.CastInfo(doc, c.origin, castID)
	result.Works = extract.Paginate(works, page, CastPerPage)
	result.TotalWorks = len(works)
	return result, nil
}

// MovieDetails reads a movie page. It returns nil when the page cannot be loaded.
func (c *SFlixClient) MovieDetails(ctx context.Context, movieID string) (*models.MovieDetail, error) {
	if strings.TrimSpace(movieID) == "" {
		return nil, errors.Wrap(ErrMissingParameter, "movie id")
	}
	doc := c.document(ctx, "movie details", c.movieURL(movieID))
	if doc == nil {
		return nil, nil
	}
	detail := extract.MovieDetail(doc, c.origin, movieID)
	return &detail, nil
}

// SeriesDetails reads a series page with its seasons and recommendations.
// It returns nil when the page cannot be loaded.
func (c *SFlixClient) SeriesDetails(ctx context.Context, seriesID string) (*models.SeriesDetail, error) {
	if strings.TrimSpace(seriesID) == "" {
		return nil, errors.Wrap(ErrMissingParameter, "series id")
	}
	doc := c.document(ctx, "series details", c.seriesURL(seriesID))
	if doc == nil {
		return nil, nil
	}
	return &models.SeriesDetail{
		MovieDetail:     extract.MovieDetail(doc, c.origin, seriesID),
		Seasons:         c.seasons(ctx, seriesID, doc),
		Recommendations: extract.Recommendations(doc, c.origin),
	}, nil
}
