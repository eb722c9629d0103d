package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"rojgarsetu/core-service/internal/geo"
	"rojgarsetu/core-service/internal/jobs"
	"rojgarsetu/core-service/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps service errors to status codes: bad input → 400,
// missing job → 404, provider down → 503, anything else → 500. The split
// lets callers distinguish "fix your request" from "try again later".
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		jobsInvalid *jobs.ValidationError
		geoInvalid  *geo.ValidationError
	)
	switch {
	case errors.As(err, &jobsInvalid), errors.As(err, &geoInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "job not found")
	case errors.Is(err, geo.ErrProviderUnavailable):
		writeError(w, http.StatusServiceUnavailable, "geocoding temporarily unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
