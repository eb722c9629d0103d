// Package scheduler wires up the cron job that periodically re-runs the
// ingestion pipeline while the API server is up.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"rojgarsetu/core-service/internal/ingest"
	"rojgarsetu/core-service/internal/source"
)

// Scheduler wraps robfig/cron around the ingestion orchestrator.
type Scheduler struct {
	cron         *cron.Cron
	orchestrator *ingest.Orchestrator
	registry     *source.Registry
	spec         string // cron spec, e.g. "@every 6h"
}

// New creates a Scheduler that fires every intervalHours hours.
func New(orchestrator *ingest.Orchestrator, registry *source.Registry, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:         cron.New(cron.WithLogger(cron.DefaultLogger)),
		orchestrator: orchestrator,
		registry:     registry,
		spec:         fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one ingestion
// immediately so a fresh deployment has data without waiting for the first
// tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runIngest(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	go s.runIngest(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

func (s *Scheduler) runIngest(ctx context.Context) {
	sources := s.registry.Active()
	if len(sources) == 0 {
		log.Println("[scheduler] No active sources — nothing to ingest")
		return
	}

	reports := s.orchestrator.Run(ctx, sources)
	for _, r := range reports {
		if r.Err != "" {
			log.Printf("[scheduler] Source %s failed: %s", r.SourceID, r.Err)
		}
	}
}
