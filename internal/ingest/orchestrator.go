package ingest

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"rojgarsetu/core-service/internal/geo"
	"rojgarsetu/core-service/internal/model"
)

// Store is the persistence surface the orchestrator writes through.
type Store interface {
	HashStore
	InsertBatch(ctx context.Context, jobs []model.Job) (int, error)
}

// SourceReport is the per-source outcome of one ingestion run.
type SourceReport struct {
	SourceID string `json:"sourceId"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
	Err      string `json:"error,omitempty"`
}

// Orchestrator runs the full ingestion cycle: fetch each active source via
// its adapter, dedup the batch, bulk-persist survivors. Source failures are
// isolated — one broken feed never aborts the rest of the run.
type Orchestrator struct {
	store    Store
	adapters Adapters
	workers  int
	now      func() time.Time
}

// NewOrchestrator constructs an Orchestrator with a bounded worker count.
func NewOrchestrator(store Store, adapters Adapters, workers int) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{store: store, adapters: adapters, workers: workers, now: time.Now}
}

// Run processes every active source and returns one report per source, in
// input order. Sources run concurrently up to the worker limit; each writes
// only its own report slot, so no locking is needed. Safe to run while
// another orchestrator is active — insertion is atomic on the hash
// constraint, a race just turns an insert into a skip.
func (o *Orchestrator) Run(ctx context.Context, sources []model.Source) []SourceReport {
	active := make([]model.Source, 0, len(sources))
	for _, s := range sources {
		if s.Active {
			active = append(active, s)
		}
	}

	log.Printf("[ingest] Run started — %d active source(s), %d worker(s)", len(active), o.workers)

	reports := make([]SourceReport, len(active))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for i, src := range active {
		i, src := i, src
		g.Go(func() error {
			reports[i] = o.runSource(ctx, src)
			return nil
		})
	}
	_ = g.Wait() // per-source errors live in the reports, never here

	var inserted, skipped, failed int
	for _, r := range reports {
		inserted += r.Inserted
		skipped += r.Skipped
		if r.Err != "" {
			failed++
		}
	}
	log.Printf("[ingest] Run complete — inserted=%d skipped=%d failed_sources=%d",
		inserted, skipped, failed)

	return reports
}

// runSource executes the pending → fetching → deduping → persisting → done
// pipeline for one source. Any failure short-circuits to a failed report.
func (o *Orchestrator) runSource(ctx context.Context, src model.Source) SourceReport {
	report := SourceReport{SourceID: src.ID}

	adapter, ok := o.adapters[src.Type]
	if !ok {
		report.Err = "no adapter for source type " + string(src.Type)
		return report
	}

	candidates, err := adapter.Fetch(ctx, src)
	if err != nil {
		log.Printf("[ingest] Source %s fetch failed: %v — continuing", src.ID, err)
		report.Err = err.Error()
		return report
	}
	if len(candidates) == 0 {
		log.Printf("[ingest] Source %s returned no candidates", src.ID)
		return report
	}

	valid := make([]model.CandidateJob, 0, len(candidates))
	for _, c := range candidates {
		if reason := validate(c); reason != "" {
			log.Printf("[ingest] Source %s: dropping candidate %q: %s", src.ID, c.Title, reason)
			report.Skipped++
			continue
		}
		valid = append(valid, c)
	}

	fresh, dupes, err := FilterNew(ctx, o.store, valid)
	if err != nil {
		report.Err = err.Error()
		return report
	}
	report.Skipped += dupes

	jobs := make([]model.Job, 0, len(fresh))
	for _, c := range fresh {
		jobs = append(jobs, o.toJob(c))
	}

	inserted, err := o.store.InsertBatch(ctx, jobs)
	if err != nil {
		report.Err = err.Error()
		return report
	}
	report.Inserted = inserted
	// Insert-time hash collisions (a concurrent run won the race) are skips.
	report.Skipped += len(jobs) - inserted

	log.Printf("[ingest] Source %s done — inserted=%d skipped=%d",
		src.ID, report.Inserted, report.Skipped)
	return report
}

// validate rejects candidates that must never reach the store.
func validate(c model.CandidateJob) string {
	if c.Title == "" {
		return "empty title"
	}
	if (c.Lat == nil) != (c.Lon == nil) {
		return "lat/lon must both be present or both absent"
	}
	if c.Lat != nil && !geo.ValidCoords(*c.Lat, *c.Lon) {
		return "coordinates out of range"
	}
	return ""
}

// toJob finalises a deduplicated candidate for persistence.
func (o *Orchestrator) toJob(c model.CandidateJob) model.Job {
	status := c.Status
	if status == "" {
		status = model.StatusOpen
	}
	published := o.now().UTC()
	if c.PublishedAt != nil {
		published = *c.PublishedAt
	}

	return model.Job{
		ContentHash:             c.ContentHash,
		Title:                   c.Title,
		Organisation:            c.Organisation,
		Category:                c.Category,
		Qualification:           c.Qualification,
		Description:             c.Description,
		State:                   c.State,
		District:                c.District,
		City:                    c.City,
		Lat:                     c.Lat,
		Lon:                     c.Lon,
		Status:                  status,
		ApplyStartDate:          c.ApplyStartDate,
		ApplyEndDate:            c.ApplyEndDate,
		PublishedAt:             published,
		SourceURL:               c.SourceURL,
		OfficialNotificationURL: c.OfficialNotificationURL,
	}
}
