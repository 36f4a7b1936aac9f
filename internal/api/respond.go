package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/depezo/sflix-api/internal/scraper"
	"github.com/depezo/sflix-api/internal/util"
)

// envelope is a success response body; "success" is added by writeOK
type envelope map[string]interface{}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		util.Warn("encode response", "error", err)
	}
}

func writeOK(w http.ResponseWriter, body envelope) {
	body["success"] = true
	writeJSON(w, http.StatusOK, body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{"success": false, "error": message})
}

// writeEngineError maps parameter errors to 400 and everything else to 500
func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, scraper.ErrMissingParameter) || errors.Is(err, scraper.ErrInvalidParameter) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	util.Error("request failed", "path", r.URL.Path, "request_id", RequestID(r.Context()), "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

// pageParam reads ?page, defaulting to 1 for missing or unusable values
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// positiveParam reads a numeric path segment that must be at least 1
func positiveParam(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
