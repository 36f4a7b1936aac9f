package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/depezo/sflix-api/internal/models"
	"github.com/depezo/sflix-api/internal/scraper"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) TrendingMovies(_ context.Context, page int) []models.MediaCard {
	return m.Called(page).Get(0).([]models.MediaCard)
}

func (m *mockCatalog) TrendingSeries(_ context.Context, page int) []models.MediaCard {
	return m.Called(page).Get(0).([]models.MediaCard)
}

func (m *mockCatalog) LatestMovies(_ context.Context, page int) []models.MediaCard {
	return m.Called(page).Get(0).([]models.MediaCard)
}

func (m *mockCatalog) LatestTVShows(_ context.Context, page int) []models.MediaCard {
	return m.Called(page).Get(0).([]models.MediaCard)
}

func (m *mockCatalog) AllMovies(_ context.Context, page int) []models.MediaCard {
	return m.Called(page).Get(0).([]models.MediaCard)
}

func (m *mockCatalog) AllTVShows(_ context.Context, page int) []models.MediaCard {
	return m.Called(page).Get(0).([]models.MediaCard)
}

func (m *mockCatalog) Search(_ context.Context, query string) ([]models.SearchResult, error) {
	args := m.Called(query)
	results, _ := args.Get(0).([]models.SearchResult)
	return results, args.Error(1)
}

func (m *mockCatalog) CastMoviesAndShows(_ context.Context, castID string, page int) (models.CastPage, error) {
	args := m.Called(castID, page)
	return args.Get(0).(models.CastPage), args.Error(1)
}

func (m *mockCatalog) MovieDetails(_ context.Context, movieID string) (*models.MovieDetail, error) {
	args := m.Called(movieID)
	detail, _ := args.Get(0).(*models.MovieDetail)
	return detail, args.Error(1)
}

func (m *mockCatalog) SeriesDetails(_ context.Context, seriesID string) (*models.SeriesDetail, error) {
	args := m.Called(seriesID)
	detail, _ := args.Get(0).(*models.SeriesDetail)
	return detail, args.Error(1)
}

func (m *mockCatalog) SeriesSeasons(_ context.Context, seriesID string) ([]models.Season, error) {
	args := m.Called(seriesID)
	seasons, _ := args.Get(0).([]models.Season)
	return seasons, args.Error(1)
}

func (m *mockCatalog) SeasonEpisodes(_ context.Context, seriesID string, season int) ([]models.Episode, error) {
	args := m.Called(seriesID, season)
	episodes, _ := args.Get(0).([]models.Episode)
	return episodes, args.Error(1)
}

func (m *mockCatalog) SeriesSeasonsAndEpisodes(_ context.Context, seriesID string) ([]models.Season, error) {
	args := m.Called(seriesID)
	seasons, _ := args.Get(0).([]models.Season)
	return seasons, args.Error(1)
}

func (m *mockCatalog) EpisodeServers(_ context.Context, seriesID string, season, episode int) (*models.EpisodeServers, error) {
	args := m.Called(seriesID, season, episode)
	result, _ := args.Get(0).(*models.EpisodeServers)
	return result, args.Error(1)
}

func (m *mockCatalog) MovieServers(_ context.Context, movieID string) (*models.MovieServers, error) {
	args := m.Called(movieID)
	result, _ := args.Get(0).(*models.MovieServers)
	return result, args.Error(1)
}

func serve(t *testing.T, catalog Catalog, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	NewHandler(catalog, "test", []string{"*"}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func TestListingEnvelope(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{}
	catalog.On("TrendingMovies", 2).Return([]models.MediaCard{{ID: "free-a-hd-1", Title: "A"}})

	rec, body := serve(t, catalog, "/api/trending/movies?page=2")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["page"])
	assert.Equal(t, float64(10), body["perPage"])
	assert.Len(t, body["data"], 1)
	catalog.AssertExpectations(t)
}

func TestListingBadPageDefaultsToFirst(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{}
	catalog.On("AllTVShows", 1).Return([]models.MediaCard{})

	rec, body := serve(t, catalog, "/api/tvshows?page=abc")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(15), body["perPage"])
	assert.Equal(t, []interface{}{}, body["data"])
}

func TestSearchRequiresQuery(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{}
	rec, body := serve(t, catalog, "/api/search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
	catalog.AssertNotCalled(t, "Search", mock.Anything)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{}
	catalog.On("Search", "dark").Return([]models.SearchResult{{Type: models.MediaTypeSeries}}, nil)

	rec, body := serve(t, catalog, "/api/search?query=dark")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dark", body["query"])
}

func TestSeasonEpisodesValidatesNumber(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{}
	rec, _ := serve(t, catalog, "/api/series/free-show-hd-1/season/zero")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	catalog.On("SeasonEpisodes", "free-show-hd-1", 2).Return([]models.Episode{{EpisodeNumber: 1}}, nil)
	rec, body := serve(t, catalog, "/api/series/free-show-hd-1/season/2")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "free-show-hd-1", body["seriesId"])
	assert.Equal(t, float64(2), body["seasonNumber"])
}

func TestEpisodeServersFlattensResult(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{}
	catalog.On("EpisodeServers", "free-show-hd-1", 1, 3).Return(&models.EpisodeServers{
		SeriesID:      "free-show-hd-1",
		SeasonNumber:  1,
		EpisodeNumber: 3,
		Servers:       []models.ServerEntry{{Name: "UpCloud", ID: "10"}},
		Diagnostics:   &models.Diagnostics{Snapshot: "<div>"},
	}, nil)

	rec, body := serve(t, catalog, "/api/series/free-show-hd-1/season/1/episode/3/servers")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(3), body["episodeNumber"])
	assert.Len(t, body["servers"], 1)
	assert.NotContains(t, body, "Diagnostics")
	assert.NotContains(t, body, "diagnostics")
}

func TestEpisodeServersRejectsBadEpisode(t *testing.T) {
	t.Parallel()

	rec, body := serve(t, &mockCatalog{}, "/api/series/free-show-hd-1/season/1/episode/-1/servers")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestMovieServersRoute(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{}
	catalog.On("MovieServers", "free-film-hd-2").Return(&models.MovieServers{MovieID: "free-film-hd-2", Servers: []models.ServerEntry{}}, nil)

	rec, body := serve(t, catalog, "/api/movie/free-film-hd-2/servers")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "free-film-hd-2", body["movieId"])
	assert.Equal(t, []interface{}{}, body["servers"])
}

func TestMovieDetailsUnavailableIsNullData(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{}
	catalog.On("MovieDetails", "free-missing-hd-1").Return(nil, nil)

	rec, body := serve(t, catalog, "/api/movie/free-missing-hd-1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "data")
	assert.Nil(t, body["data"])
}

func TestEngineErrorsMapToStatus(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{}
	catalog.On("SeriesSeasons", "bad").Return(nil, errors.Wrap(scraper.ErrMissingParameter, "series id"))
	catalog.On("SeriesSeasons", "boom").Return(nil, errors.New("unexpected"))

	rec, _ := serve(t, catalog, "/api/series/bad/seasons")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := serve(t, catalog, "/api/series/boom/seasons")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "unexpected", body["error"])
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	t.Parallel()

	rec, body := serve(t, &mockCatalog{}, "/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestIndexListsEndpoints(t *testing.T) {
	t.Parallel()

	rec, body := serve(t, &mockCatalog{}, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "endpoints")
	assert.Equal(t, "test", body["version"])
}

func TestRequestIDIsAssignedOrReused(t *testing.T) {
	t.Parallel()

	rec, _ := serve(t, &mockCatalog{}, "/")
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, id)
	rec = httptest.NewRecorder()
	NewHandler(&mockCatalog{}, "test", []string{"*"}).ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
}

func TestPanicsBecome500(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{}
	catalog.On("SeriesDetails", "x").Panic("kaboom")

	rec, body := serve(t, catalog, "/api/series/x")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, body["success"])
}
