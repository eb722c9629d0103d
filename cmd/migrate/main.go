// core-service migrate — applies the job store schema.
//
// Idempotent: safe to run on every deploy before the API or ingest binaries
// start.
package main

import (
	"context"
	"log"

	"rojgarsetu/core-service/internal/config"
	"rojgarsetu/core-service/internal/db"
	"rojgarsetu/core-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[migrate] Config error: %v", err)
	}

	ctx := context.Background()

	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[migrate] PostgreSQL: %v", err)
	}
	defer pool.Close()

	if err := store.New(pool).Migrate(ctx); err != nil {
		log.Fatalf("[migrate] %v", err)
	}

	log.Println("[migrate] Schema applied ✓")
}
