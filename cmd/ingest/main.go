// core-service ingest — one-shot batch ingestion.
//
// Reads the source registry, runs every active source through its fetch
// adapter, dedups against the job store and bulk-inserts survivors. Runs to
// completion and exits; scheduling retries is an external concern. Exits
// non-zero only when every source failed.
package main

import (
	"context"
	"log"
	"os"

	"rojgarsetu/core-service/internal/config"
	"rojgarsetu/core-service/internal/db"
	"rojgarsetu/core-service/internal/ingest"
	"rojgarsetu/core-service/internal/source"
	"rojgarsetu/core-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[ingest] Config error: %v", err)
	}

	ctx := context.Background()

	registry, err := source.LoadFile(cfg.SourcesFile)
	if err != nil {
		log.Fatalf("[ingest] Sources: %v", err)
	}
	active := registry.Active()
	if len(active) == 0 {
		log.Println("[ingest] No active sources — nothing to do")
		return
	}

	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[ingest] PostgreSQL: %v", err)
	}
	defer pool.Close()

	orchestrator := ingest.NewOrchestrator(store.New(pool), ingest.NewAdapters(), cfg.IngestWorkers)
	reports := orchestrator.Run(ctx, active)

	failed := 0
	for _, r := range reports {
		if r.Err != "" {
			failed++
			log.Printf("[ingest] %s: FAILED — %s", r.SourceID, r.Err)
			continue
		}
		log.Printf("[ingest] %s: inserted=%d skipped=%d", r.SourceID, r.Inserted, r.Skipped)
	}

	if failed == len(reports) {
		os.Exit(1)
	}
}
