package api

import (
	"context"
	"net/http"

	"github.com/rs/cors"

	"github.com/depezo/sflix-api/internal/models"
	"github.com/depezo/sflix-api/internal/scraper"
)

// Catalog is the engine surface exposed over HTTP
type Catalog interface {
	TrendingMovies(ctx context.Context, page int) []models.MediaCard
	TrendingSeries(ctx context.Context, page int) []models.MediaCard
	LatestMovies(ctx context.Context, page int) []models.MediaCard
	LatestTVShows(ctx context.Context, page int) []models.MediaCard
	AllMovies(ctx context.Context, page int) []models.MediaCard
	AllTVShows(ctx context.Context, page int) []models.MediaCard
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
	CastMoviesAndShows(ctx context.Context, castID string, page int) (models.CastPage, error)
	MovieDetails(ctx context.Context, movieID string) (*models.MovieDetail, error)
	SeriesDetails(ctx context.Context, seriesID string) (*models.SeriesDetail, error)
	SeriesSeasons(ctx context.Context, seriesID string) ([]models.Season, error)
	SeasonEpisodes(ctx context.Context, seriesID string, season int) ([]models.Episode, error)
	SeriesSeasonsAndEpisodes(ctx context.Context, seriesID string) ([]models.Season, error)
	EpisodeServers(ctx context.Context, seriesID string, season, episode int) (*models.EpisodeServers, error)
	MovieServers(ctx context.Context, movieID string) (*models.MovieServers, error)
}

// Server routes JSON requests to a Catalog
type Server struct {
	catalog Catalog
	version string
}

// NewHandler returns the complete HTTP handler: routes, CORS, request IDs and access logging
func NewHandler(catalog Catalog, version string, allowedOrigins []string) http.Handler {
	s := &Server{catalog: catalog, version: version}
	mux := http.NewServeMux()
	s.register(mux)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	})
	return withRequestID(withAccessLog(withRecovery(c.Handler(mux))))
}

func (s *Server) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)

	mux.HandleFunc("GET /api/trending/movies", s.listing(s.catalog.TrendingMovies, scraper.ListingPerPage))
	mux.HandleFunc("GET /api/trending/series", s.listing(s.catalog.TrendingSeries, scraper.ListingPerPage))
	mux.HandleFunc("GET /api/latest/movies", s.listing(s.catalog.LatestMovies, scraper.ListingPerPage))
	mux.HandleFunc("GET /api/latest/tvshows", s.listing(s.catalog.LatestTVShows, scraper.ListingPerPage))
	mux.HandleFunc("GET /api/movies", s.listing(s.catalog.AllMovies, scraper.BrowsePerPage))
	mux.HandleFunc("GET /api/tvshows", s.listing(s.catalog.AllTVShows, scraper.BrowsePerPage))

	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/cast/{id}", s.handleCast)

	mux.HandleFunc("GET /api/movie/{id}", s.handleMovie)
	mux.HandleFunc("GET /api/movie/{id}/servers", s.handleMovieServers)

	mux.HandleFunc("GET /api/series/{id}", s.handleSeries)
	mux.HandleFunc("GET /api/series/{id}/seasons", s.handleSeasons)
	mux.HandleFunc("GET /api/series/{id}/seasons-episodes", s.handleSeasonsAndEpisodes)
	mux.HandleFunc("GET /api/series/{id}/season/{season}", s.handleSeasonEpisodes)
	mux.HandleFunc("GET /api/series/{id}/season/{season}/episode/{episode}/servers", s.handleEpisodeServers)

	mux.HandleFunc("/", handleNotFound)
}
