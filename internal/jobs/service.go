// Package jobs contains the query engine: validation, clamping and snapping
// in front of the job store. It is transport-agnostic — the HTTP server is
// just one caller.
package jobs

import (
	"context"
	"fmt"

	"rojgarsetu/core-service/internal/geo"
	"rojgarsetu/core-service/internal/model"
	"rojgarsetu/core-service/internal/store"
)

// Pagination and limit bounds. Values outside are clamped, not rejected.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultLimit    = 50
	MaxLimit        = 200
)

// Store is the persistence surface the query engine reads from.
type Store interface {
	Search(ctx context.Context, q store.SearchQuery) (*store.SearchResult, error)
	FindByID(ctx context.Context, id int64) (*model.Job, error)
	Nearby(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]model.Job, error)
}

// Service is the query engine. Stateless between requests; safe for
// arbitrarily many concurrent callers.
type Service struct {
	store Store
}

// NewService returns a configured Service.
func NewService(st Store) *Service {
	return &Service{store: st}
}

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// ─── Parsing ─────────────────────────────────────────────────────────────────

// ParseStatus validates a status filter value. Empty means no filter.
func ParseStatus(s string) (model.JobStatus, error) {
	switch model.JobStatus(s) {
	case "", model.StatusOpen, model.StatusUpcoming, model.StatusClosed, model.StatusResultOut:
		return model.JobStatus(s), nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// ParseSort validates a sort value. Empty means the default (latest).
func ParseSort(s string) (store.Sort, error) {
	switch store.Sort(s) {
	case "":
		return store.SortLatest, nil
	case store.SortLatest, store.SortClosingSoon, store.SortRelevance:
		return store.Sort(s), nil
	default:
		return "", fmt.Errorf("unknown sort %q", s)
	}
}

// ─── Search ──────────────────────────────────────────────────────────────────

// SearchRequest is the raw caller input for keyword + facet search.
type SearchRequest struct {
	Query    string
	State    string
	District string
	Category string
	Status   string
	Sort     string
	Page     int
	PageSize int
}

// SearchResponse is one page of results with the effective pagination.
type SearchResponse struct {
	Results  []model.Job  `json:"results"`
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
	Facets   store.Facets `json:"facets"`
}

// Search validates and clamps the request, then queries the store.
// Page defaults to 1; pageSize is clamped to [1,100] with default 20.
// Requesting relevance sort without a text query falls back to latest.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	status, err := ParseStatus(req.Status)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	sort, err := ParseSort(req.Sort)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	if sort == store.SortRelevance && req.Query == "" {
		sort = store.SortLatest
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	} else if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	result, err := s.store.Search(ctx, store.SearchQuery{
		Query:    req.Query,
		State:    req.State,
		District: req.District,
		Category: req.Category,
		Status:   status,
		Sort:     sort,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, err
	}

	return &SearchResponse{
		Results:  result.Results,
		Total:    result.Total,
		Page:     page,
		PageSize: pageSize,
		Facets:   result.Facets,
	}, nil
}

// Get returns a single job; store.ErrNotFound passes through.
func (s *Service) Get(ctx context.Context, id int64) (*model.Job, error) {
	return s.store.FindByID(ctx, id)
}

// ─── Nearby ──────────────────────────────────────────────────────────────────

// NearbyRequest is the raw caller input for radius search.
type NearbyRequest struct {
	Lat      float64
	Lon      float64
	RadiusKm float64
	Limit    int
}

// NearbyResponse is the distance-sorted result set. RadiusKm echoes the
// effective (snapped) radius.
type NearbyResponse struct {
	Results  []model.Job `json:"results"`
	Total    int         `json:"total"`
	RadiusKm float64     `json:"radiusKm"`
}

// Nearby validates coordinates, snaps the radius to the nearest allowed
// value and clamps the limit to [1,200] (default 50). Jobs without
// coordinates never appear in the results.
func (s *Service) Nearby(ctx context.Context, req NearbyRequest) (*NearbyResponse, error) {
	if !geo.ValidCoords(req.Lat, req.Lon) {
		return nil, &ValidationError{Msg: "lat must be in [-90,90] and lon in [-180,180]"}
	}

	radius := geo.SnapRadius(req.RadiusKm)

	limit := req.Limit
	if limit < 1 {
		limit = DefaultLimit
	} else if limit > MaxLimit {
		limit = MaxLimit
	}

	results, err := s.store.Nearby(ctx, req.Lat, req.Lon, radius, limit)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []model.Job{}
	}

	return &NearbyResponse{Results: results, Total: len(results), RadiusKm: radius}, nil
}
