package store_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"rojgarsetu/core-service/internal/db"
	"rojgarsetu/core-service/internal/model"
	"rojgarsetu/core-service/internal/store"
)

// newTestStore connects to TEST_DATABASE_URL, applies the schema and wipes
// the jobs table. Tests are skipped when no test database is configured.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping store integration tests")
	}

	ctx := context.Background()
	pool, err := db.NewPostgresPool(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	s := store.New(pool)
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE jobs RESTART IDENTITY`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return s
}

func coord(v float64) *float64 { return &v }

func seedJobs(t *testing.T, s *store.Store) {
	t.Helper()
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	closing := base.AddDate(0, 1, 0)

	jobs := []model.Job{
		{
			ContentHash: "h-delhi-clerk", Title: "SSC Clerk Recruitment",
			Organisation: "Staff Selection Commission", Category: "clerical",
			State: "Delhi", District: "New Delhi",
			Lat: coord(28.6139), Lon: coord(77.2090),
			Status: model.StatusOpen, PublishedAt: base.Add(48 * time.Hour),
			ApplyEndDate: &closing,
		},
		{
			ContentHash: "h-mumbai-engineer", Title: "Junior Engineer Civil",
			Organisation: "PWD Maharashtra", Category: "engineering",
			State: "Maharashtra", District: "Mumbai",
			Lat: coord(19.0760), Lon: coord(72.8777),
			Status: model.StatusOpen, PublishedAt: base.Add(24 * time.Hour),
		},
		{
			ContentHash: "h-nowhere-teacher", Title: "Primary Teacher Vacancy",
			Organisation: "Education Board", Category: "teaching",
			State: "Delhi",
			Status: model.StatusUpcoming, PublishedAt: base,
		},
	}
	for _, j := range jobs {
		inserted, err := s.InsertIfNew(ctx, j)
		if err != nil {
			t.Fatalf("seed %s: %v", j.ContentHash, err)
		}
		if !inserted {
			t.Fatalf("seed %s: unexpectedly skipped", j.ContentHash)
		}
	}
}

// ── Insert semantics ──────────────────────────────────────────────────────

func TestInsertIfNew_DuplicateHashIsSilentNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	j := model.Job{ContentHash: "h-dup", Title: "First Write", Status: model.StatusOpen}
	if inserted, err := s.InsertIfNew(ctx, j); err != nil || !inserted {
		t.Fatalf("first insert = %v, %v", inserted, err)
	}

	j.Title = "Second Write Same Hash"
	inserted, err := s.InsertIfNew(ctx, j)
	if err != nil {
		t.Fatalf("duplicate insert must not error: %v", err)
	}
	if inserted {
		t.Error("duplicate hash must be a no-op")
	}

	existing, err := s.ExistingHashes(ctx, []string{"h-dup", "h-absent"})
	if err != nil {
		t.Fatalf("ExistingHashes: %v", err)
	}
	if _, ok := existing["h-dup"]; !ok {
		t.Error("h-dup should be reported as existing")
	}
	if _, ok := existing["h-absent"]; ok {
		t.Error("h-absent should not be reported")
	}
}

func TestInsertBatch_CountsOnlyNewRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	batch := []model.Job{
		{ContentHash: "b1", Title: "One"},
		{ContentHash: "b2", Title: "Two"},
	}
	if n, err := s.InsertBatch(ctx, batch); err != nil || n != 2 {
		t.Fatalf("first batch = %d, %v; want 2", n, err)
	}

	batch = append(batch, model.Job{ContentHash: "b3", Title: "Three"})
	n, err := s.InsertBatch(ctx, batch)
	if err != nil {
		t.Fatalf("second batch: %v", err)
	}
	if n != 1 {
		t.Errorf("second batch inserted %d, want 1", n)
	}
}

func TestUpdateStatus(t *testing.T) {
	s := newTestStore(t)
	seedJobs(t, s)
	ctx := context.Background()

	res, err := s.Search(ctx, store.SearchQuery{State: "Maharashtra", Page: 1, PageSize: 10})
	if err != nil || len(res.Results) != 1 {
		t.Fatalf("seed lookup: %v, %d results", err, len(res.Results))
	}
	id := res.Results[0].ID

	if err := s.UpdateStatus(ctx, id, model.StatusClosed); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	j, err := s.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if j.Status != model.StatusClosed {
		t.Errorf("Status = %q, want closed", j.Status)
	}

	if err := s.UpdateStatus(ctx, 99999, model.StatusClosed); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing id err = %v, want ErrNotFound", err)
	}
}

// ── FindByID ──────────────────────────────────────────────────────────────

func TestFindByID(t *testing.T) {
	s := newTestStore(t)
	seedJobs(t, s)
	ctx := context.Background()

	res, err := s.Search(ctx, store.SearchQuery{Sort: store.SortLatest, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	id := res.Results[0].ID

	j, err := s.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID(%d): %v", id, err)
	}
	if j.ID != id {
		t.Errorf("ID = %d, want %d", j.ID, id)
	}

	if _, err := s.FindByID(ctx, 99999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing id err = %v, want ErrNotFound", err)
	}
}

// ── Search ────────────────────────────────────────────────────────────────

func TestSearch_FiltersAndSorts(t *testing.T) {
	s := newTestStore(t)
	seedJobs(t, s)
	ctx := context.Background()

	// State filter.
	res, err := s.Search(ctx, store.SearchQuery{State: "Delhi", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("state filter: %v", err)
	}
	if res.Total != 2 {
		t.Errorf("Delhi total = %d, want 2", res.Total)
	}

	// Free text matches title words.
	res, err = s.Search(ctx, store.SearchQuery{Query: "engineer", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("text query: %v", err)
	}
	if res.Total != 1 || res.Results[0].ContentHash != "h-mumbai-engineer" {
		t.Errorf("text query hit = %+v", res.Results)
	}

	// Latest: newest published first.
	res, err = s.Search(ctx, store.SearchQuery{Sort: store.SortLatest, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("latest sort: %v", err)
	}
	if res.Results[0].ContentHash != "h-delhi-clerk" {
		t.Errorf("latest[0] = %s", res.Results[0].ContentHash)
	}

	// Closing soon: the only job with an apply_end_date leads; nulls last.
	res, err = s.Search(ctx, store.SearchQuery{Sort: store.SortClosingSoon, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("closing_soon sort: %v", err)
	}
	if res.Results[0].ContentHash != "h-delhi-clerk" {
		t.Errorf("closing_soon[0] = %s", res.Results[0].ContentHash)
	}

	// Facets are computed over the global set.
	if len(res.Facets.State) == 0 || res.Facets.State[0].Value != "Delhi" || res.Facets.State[0].Count != 2 {
		t.Errorf("state facets = %+v", res.Facets.State)
	}
}

func TestSearch_PaginationInvariant(t *testing.T) {
	s := newTestStore(t)
	seedJobs(t, s)
	ctx := context.Background()

	seen := map[int64]bool{}
	collected := 0
	for page := 1; ; page++ {
		res, err := s.Search(ctx, store.SearchQuery{Page: page, PageSize: 2})
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if res.Total != 3 {
			t.Fatalf("total = %d on page %d, want 3 regardless of slice", res.Total, page)
		}
		if len(res.Results) == 0 {
			break
		}
		for _, j := range res.Results {
			if seen[j.ID] {
				t.Errorf("job %d appeared on two pages", j.ID)
			}
			seen[j.ID] = true
		}
		collected += len(res.Results)
	}
	if collected != 3 {
		t.Errorf("sum across pages = %d, want total 3", collected)
	}
}

// ── Nearby ────────────────────────────────────────────────────────────────

func TestNearby_DistanceSortedAndBounded(t *testing.T) {
	s := newTestStore(t)
	seedJobs(t, s)
	ctx := context.Background()

	// From central Delhi: the clerk job is within 25 km; Mumbai and the
	// coordinate-less teacher job must not appear.
	results, err := s.Nearby(ctx, 28.60, 77.20, 25, 50)
	if err != nil {
		t.Fatalf("Nearby: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.ContentHash != "h-delhi-clerk" {
		t.Errorf("hit = %s", r.ContentHash)
	}
	if r.DistanceKm == nil || *r.DistanceKm <= 0 || *r.DistanceKm > 25 {
		t.Errorf("DistanceKm = %v", r.DistanceKm)
	}
}

func TestNearby_NullCoordinatesExcludedAtAnyRadius(t *testing.T) {
	s := newTestStore(t)
	seedJobs(t, s)
	ctx := context.Background()

	for _, radius := range []float64{10, 25, 50, 100} {
		results, err := s.Nearby(ctx, 28.60, 77.20, radius, 200)
		if err != nil {
			t.Fatalf("Nearby(r=%v): %v", radius, err)
		}
		for _, j := range results {
			if j.ContentHash == "h-nowhere-teacher" {
				t.Errorf("coordinate-less job leaked into nearby at r=%v", radius)
			}
		}
	}
}

func TestNearby_OrderingIsDistanceThenID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Two jobs in the same geocell bucket, one farther away.
	batch := []model.Job{
		{ContentHash: "n1", Title: "Same Spot A", Lat: coord(28.60), Lon: coord(77.20)},
		{ContentHash: "n2", Title: "Same Spot B", Lat: coord(28.60), Lon: coord(77.20)},
		{ContentHash: "n3", Title: "Farther", Lat: coord(28.70), Lon: coord(77.30)},
	}
	if _, err := s.InsertBatch(ctx, batch); err != nil {
		t.Fatalf("seed: %v", err)
	}

	results, err := s.Nearby(ctx, 28.60, 77.20, 50, 50)
	if err != nil {
		t.Fatalf("Nearby: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].ContentHash != "n1" || results[1].ContentHash != "n2" {
		t.Errorf("equal distances must tie-break by id ascending: %s, %s",
			results[0].ContentHash, results[1].ContentHash)
	}
	if results[2].ContentHash != "n3" {
		t.Errorf("farther job must sort last: %s", results[2].ContentHash)
	}
}
