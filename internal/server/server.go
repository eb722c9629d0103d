// Package server exposes the query engine and the geocoder over HTTP.
// It owns no business logic: parse, delegate, map errors to status codes.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"rojgarsetu/core-service/internal/jobs"
	"rojgarsetu/core-service/internal/model"
)

// JobsService is the query engine surface the server depends on.
type JobsService interface {
	Search(ctx context.Context, req jobs.SearchRequest) (*jobs.SearchResponse, error)
	Get(ctx context.Context, id int64) (*model.Job, error)
	Nearby(ctx context.Context, req jobs.NearbyRequest) (*jobs.NearbyResponse, error)
}

// GeoService is the reverse-geocoding surface the server depends on.
type GeoService interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (*model.Address, bool, error)
}

// Server wraps the http.Server lifecycle.
type Server struct {
	srv *http.Server
}

// New creates the server. baseCtx becomes the base context of every request
// so cancelling it aborts in-flight store queries during shutdown.
func New(baseCtx context.Context, port string, jobsSvc JobsService, geoSvc GeoService) *Server {
	return &Server{
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: NewRouter(jobsSvc, geoSvc),
			BaseContext: func(_ net.Listener) context.Context {
				return baseCtx
			},
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}
}

// Start blocks serving requests until Shutdown or a listener error.
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
