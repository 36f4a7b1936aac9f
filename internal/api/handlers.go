package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/depezo/sflix-api/internal/models"
)

var endpoints = envelope{
	"trending": map[string]string{
		"movies": "/api/trending/movies?page=1",
		"series": "/api/trending/series?page=1",
	},
	"latest": map[string]string{
		"movies":  "/api/latest/movies?page=1",
		"tvshows": "/api/latest/tvshows?page=1",
	},
	"browse": map[string]string{
		"movies":  "/api/movies?page=1",
		"tvshows": "/api/tvshows?page=1",
	},
	"details": map[string]string{
		"movie":               "/api/movie/:id",
		"movieServers":        "/api/movie/:id/servers",
		"series":              "/api/series/:id",
		"seasons":             "/api/series/:id/seasons",
		"seasonsWithEpisodes": "/api/series/:id/seasons-episodes",
		"episodes":            "/api/series/:seriesId/season/:seasonNumber",
		"episodeServers":      "/api/series/:seriesId/season/:seasonNumber/episode/:episodeNumber/servers",
	},
	"cast":   "/api/cast/:id?page=1",
	"search": "/api/search?query=yourquery",
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, envelope{
		"message":   "SFlix catalog API",
		"version":   s.version,
		"endpoints": endpoints,
	})
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "endpoint not found")
}

// listing adapts a paginated catalog listing
func (s *Server) listing(fetch func(context.Context, int) []models.MediaCard, perPage int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := pageParam(r)
		writeOK(w, envelope{
			"page":    page,
			"perPage": perPage,
			"data":    fetch(r.Context(), page),
		})
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter is required")
		return
	}
	results, err := s.catalog.Search(r.Context(), query)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeOK(w, envelope{"query": query, "data": results})
}

func (s *Server) handleCast(w http.ResponseWriter, r *http.Request) {
	id, page := r.PathValue("id"), pageParam(r)
	result, err := s.catalog.CastMoviesAndShows(r.Context(), id, page)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeOK(w, envelope{"castId": id, "page": page, "data": result})
}

func (s *Server) handleMovie(w http.ResponseWriter, r *http.Request) {
	detail, err := s.catalog.MovieDetails(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeOK(w, envelope{"data": detail})
}

func (s *Server) handleMovieServers(w http.ResponseWriter, r *http.Request) {
	result, err := s.catalog.MovieServers(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*models.MovieServers
	}{true, result})
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	detail, err := s.catalog.SeriesDetails(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeOK(w, envelope{"data": detail})
}

func (s *Server) handleSeasons(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	seasons, err := s.catalog.SeriesSeasons(r.Context(), id)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeOK(w, envelope{"seriesId": id, "data": seasons})
}

func (s *Server) handleSeasonsAndEpisodes(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	seasons, err := s.catalog.SeriesSeasonsAndEpisodes(r.Context(), id)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeOK(w, envelope{"seriesId": id, "data": seasons})
}

func (s *Server) handleSeasonEpisodes(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	season, ok := positiveParam(r, "season")
	if !ok {
		writeError(w, http.StatusBadRequest, "season number must be a positive integer")
		return
	}
	episodes, err := s.catalog.SeasonEpisodes(r.Context(), id, season)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeOK(w, envelope{"seriesId": id, "seasonNumber": season, "data": episodes})
}

func (s *Server) handleEpisodeServers(w http.ResponseWriter, r *http.Request) {
	season, ok := positiveParam(r, "season")
	if !ok {
		writeError(w, http.StatusBadRequest, "season number must be a positive integer")
		return
	}
	episode, ok := positiveParam(r, "episode")
	if !ok {
		writeError(w, http.StatusBadRequest, "episode number must be a positive integer")
		return
	}
	result, err := s.catalog.EpisodeServers(r.Context(), r.PathValue("id"), season, episode)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*models.EpisodeServers
	}{true, result})
}
