// Package ingest implements job fetching, deduplication and the batch
// ingestion orchestrator.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"rojgarsetu/core-service/internal/model"
)

const (
	fetchTimeout  = 10 * time.Second
	maxFetchBytes = 5 << 20 // per-document download cap
)

// Adapter turns one source descriptor into normalised candidate jobs.
// Every adapter type produces the same shape, so the orchestrator is
// adapter-agnostic. Adapters never compute content hashes — the hashing
// rule lives in the dedup engine only.
type Adapter interface {
	Fetch(ctx context.Context, src model.Source) ([]model.CandidateJob, error)
}

// Adapters maps source types to their adapter, sharing one HTTP client with
// a request-level timeout so a hung source degrades to a per-source failure
// rather than a process hang.
type Adapters map[model.SourceType]Adapter

// NewAdapters wires the built-in RSS/HTML/PDF adapters.
func NewAdapters() Adapters {
	client := &http.Client{Timeout: fetchTimeout}
	return Adapters{
		model.SourceRSS:  &RSSAdapter{client: client},
		model.SourceHTML: &HTMLAdapter{client: client},
		model.SourcePDF:  &PDFAdapter{client: client},
	}
}

// fetchBody GETs endpoint and returns at most maxFetchBytes of the body.
func fetchBody(ctx context.Context, client *http.Client, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// applyDefaults fills fields the source format could not provide from the
// descriptor's configured defaults.
func applyDefaults(c *model.CandidateJob, d model.SourceDefaults) {
	if c.Organisation == "" {
		c.Organisation = d.Organisation
	}
	if c.Category == "" {
		c.Category = d.Category
	}
	if c.State == "" {
		c.State = d.State
	}
	if c.Qualification == "" {
		c.Qualification = d.Qualification
	}
}
