package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"rojgarsetu/core-service/internal/jobs"
)

type handler struct {
	jobs JobsService
	geo  GeoService
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /jobs?q=&state=&district=&category=&status=&sort=&page=&pageSize=
func (h *handler) searchJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := intParam(q.Get("page"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "page must be an integer")
		return
	}
	pageSize, err := intParam(q.Get("pageSize"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "pageSize must be an integer")
		return
	}

	resp, err := h.jobs.Search(r.Context(), jobs.SearchRequest{
		Query:    q.Get("q"),
		State:    q.Get("state"),
		District: q.Get("district"),
		Category: q.Get("category"),
		Status:   q.Get("status"),
		Sort:     q.Get("sort"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /jobs/{id}
func (h *handler) getJob(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	job, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// GET /jobs/nearby?lat=&lon=&radiusKm=&limit=
func (h *handler) nearbyJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err := floatParam(q.Get("lat"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "lat is required and must be a number")
		return
	}
	lon, err := floatParam(q.Get("lon"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "lon is required and must be a number")
		return
	}

	radius := 0.0
	if v := q.Get("radiusKm"); v != "" {
		radius, err = floatParam(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "radiusKm must be a number")
			return
		}
	}
	limit, err := intParam(q.Get("limit"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}

	resp, err := h.jobs.Nearby(r.Context(), jobs.NearbyRequest{
		Lat:      lat,
		Lon:      lon,
		RadiusKm: radius,
		Limit:    limit,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// reverseAddress is the nested address block of the reverse-geocode payload.
type reverseAddress struct {
	City     string `json:"city,omitempty"`
	District string `json:"district,omitempty"`
	State    string `json:"state,omitempty"`
	Country  string `json:"country,omitempty"`
	Postcode string `json:"postcode,omitempty"`
}

type reverseResponse struct {
	DisplayName string         `json:"display_name"`
	Address     reverseAddress `json:"address"`
	Lat         float64        `json:"lat"`
	Lon         float64        `json:"lon"`
	Cached      bool           `json:"cached"`
}

// GET /geo/reverse?lat=&lon=
func (h *handler) reverseGeocode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err := floatParam(q.Get("lat"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "lat is required and must be a number")
		return
	}
	lon, err := floatParam(q.Get("lon"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "lon is required and must be a number")
		return
	}

	addr, cached, err := h.geo.ReverseGeocode(r.Context(), lat, lon)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reverseResponse{
		DisplayName: addr.DisplayName,
		Address: reverseAddress{
			City:     addr.City,
			District: addr.District,
			State:    addr.State,
			Country:  addr.Country,
			Postcode: addr.Postcode,
		},
		Lat:    addr.Lat,
		Lon:    addr.Lon,
		Cached: cached,
	})
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func floatParam(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
