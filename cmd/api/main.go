// core-service API — job search, nearby search and reverse geocoding.
//
// Serves the read path:
//   - GET /jobs         — keyword + facet search
//   - GET /jobs/{id}    — single job
//   - GET /jobs/nearby  — radius-bounded distance-sorted search
//   - GET /geo/reverse  — cached reverse geocoding
//
// With INGEST_INTERVAL_HOURS > 0 the server also runs the ingestion
// pipeline on a cron schedule; cmd/ingest is the one-shot alternative.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rojgarsetu/core-service/internal/config"
	"rojgarsetu/core-service/internal/db"
	"rojgarsetu/core-service/internal/geo"
	"rojgarsetu/core-service/internal/ingest"
	"rojgarsetu/core-service/internal/jobs"
	"rojgarsetu/core-service/internal/scheduler"
	"rojgarsetu/core-service/internal/server"
	"rojgarsetu/core-service/internal/source"
	"rojgarsetu/core-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[core-api] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ──────────────────────────────────────────────────────────
	log.Println("[core-api] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[core-api] PostgreSQL: %v", err)
	}
	defer pool.Close()

	jobStore := store.New(pool)

	// ── Geocode cache ───────────────────────────────────────────────────────
	ttl := time.Duration(cfg.GeocodeCacheTTLHours) * time.Hour
	var cache geo.Cache
	if cfg.RedisURL != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("[core-api] Redis: %v", err)
		}
		defer rdb.Close()
		cache = geo.NewRedisCache(rdb, ttl, cfg.GeocodePrecision)
		log.Println("[core-api] Geocode cache: redis")
	} else {
		cache = geo.NewMemoryCache(cfg.GeocodeCacheSize, ttl, cfg.GeocodePrecision)
		log.Println("[core-api] Geocode cache: in-memory")
	}

	geoSvc := geo.NewService(cache, geo.NewClient(cfg.GeocodeBaseURL))
	jobsSvc := jobs.NewService(jobStore)

	// ── Scheduled ingestion (optional) ──────────────────────────────────────
	if cfg.IngestIntervalHours > 0 {
		registry, err := source.LoadFile(cfg.SourcesFile)
		if err != nil {
			log.Fatalf("[core-api] Sources: %v", err)
		}
		orchestrator := ingest.NewOrchestrator(jobStore, ingest.NewAdapters(), cfg.IngestWorkers)
		sched := scheduler.New(orchestrator, registry, cfg.IngestIntervalHours)
		if err := sched.Start(ctx); err != nil {
			log.Fatalf("[core-api] Scheduler: %v", err)
		}
		defer sched.Stop()
	}

	// ── HTTP server ─────────────────────────────────────────────────────────
	srv := server.New(ctx, cfg.Port, jobsSvc, geoSvc)

	go func() {
		log.Printf("[core-api] Listening on :%s", cfg.Port)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[core-api] Server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("[core-api] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[core-api] Shutdown error: %v", err)
	}
}
