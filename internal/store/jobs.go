// Package store implements the persistent job store on PostgreSQL.
// It owns the uniqueness invariant on content_hash, the full-text search
// vector and the spatial index; callers above it never build SQL.
package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rojgarsetu/core-service/internal/geo"
	"rojgarsetu/core-service/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when a job id does not exist.
var ErrNotFound = errors.New("job not found")

// Store wraps a pgx pool with job-table operations.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store backed by pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate applies the embedded schema. Idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// ─── Sorting ─────────────────────────────────────────────────────────────────

// Sort selects the ordering of search results.
type Sort string

const (
	SortLatest      Sort = "latest"       // published_at descending (default)
	SortClosingSoon Sort = "closing_soon" // apply_end_date ascending, nulls last
	SortRelevance   Sort = "relevance"    // text-match rank descending
)

// ─── Search types ────────────────────────────────────────────────────────────

// SearchQuery is a validated, clamped search request (see jobs.Service).
type SearchQuery struct {
	Query    string
	State    string
	District string
	Category string
	Status   model.JobStatus
	Sort     Sort
	Page     int // 1-indexed
	PageSize int
}

// Facet is one distinct value with its occurrence count.
type Facet struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Facets summarise the filterable columns. Counts are computed over the
// globally unfiltered job set, so the UI filter menus stay stable while the
// user narrows a query.
type Facets struct {
	State    []Facet `json:"state"`
	Category []Facet `json:"category"`
	Status   []Facet `json:"status"`
}

// SearchResult is one page of results plus the full filtered count.
type SearchResult struct {
	Results []model.Job
	Total   int
	Facets  Facets
}

// ─── Writes ──────────────────────────────────────────────────────────────────

const insertSQL = `
	INSERT INTO jobs (content_hash, title, organisation, category, qualification,
	                  description, state, district, city, lat, lon, status,
	                  apply_start_date, apply_end_date, published_at,
	                  source_url, official_notification_url)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	ON CONFLICT (content_hash) DO NOTHING`

// InsertIfNew atomically inserts a job unless its content_hash already
// exists. A duplicate is a no-op, not an error; the constraint makes this
// safe under concurrent ingestion runs.
func (s *Store) InsertIfNew(ctx context.Context, j model.Job) (bool, error) {
	tag, err := s.pool.Exec(ctx, insertSQL, insertArgs(j)...)
	if err != nil {
		return false, fmt.Errorf("insert job: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// InsertBatch bulk-inserts jobs in one round trip and returns how many rows
// were actually written. Hash collisions (concurrent runs included) count as
// skips.
func (s *Store) InsertBatch(ctx context.Context, jobs []model.Job) (int, error) {
	if len(jobs) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, j := range jobs {
		batch.Queue(insertSQL, insertArgs(j)...)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range jobs {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("batch insert: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func insertArgs(j model.Job) []any {
	published := j.PublishedAt
	if published.IsZero() {
		published = time.Now().UTC()
	}
	status := j.Status
	if status == "" {
		status = model.StatusOpen
	}
	return []any{
		j.ContentHash, j.Title, j.Organisation, j.Category, j.Qualification,
		j.Description, j.State, j.District, j.City, j.Lat, j.Lon, string(status),
		j.ApplyStartDate, j.ApplyEndDate, published,
		j.SourceURL, j.OfficialNotificationURL,
	}
}

// ExistingHashes returns the subset of hashes already present, in a single
// batched lookup.
func (s *Store) ExistingHashes(ctx context.Context, hashes []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	if len(hashes) == 0 {
		return existing, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT content_hash FROM jobs WHERE content_hash = ANY($1)`, hashes)
	if err != nil {
		return nil, fmt.Errorf("query existing hashes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scan hash: %w", err)
		}
		existing[h] = struct{}{}
	}
	return existing, rows.Err()
}

// UpdateStatus sets the lifecycle status of a job. Transitions are
// caller-driven; the store does not auto-expire by date.
func (s *Store) UpdateStatus(ctx context.Context, id int64, status model.JobStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ─── Reads ───────────────────────────────────────────────────────────────────

const jobCols = `id, content_hash, title, organisation, category, qualification,
	description, state, district, city, lat, lon, status,
	apply_start_date, apply_end_date, published_at,
	source_url, official_notification_url`

// FindByID returns a single job or ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id int64) (*model.Job, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+jobCols+` FROM jobs WHERE id = $1`, id)

	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find job %d: %w", id, err)
	}
	return j, nil
}

// Search runs a keyword + facet search. The free-text query matches
// title/organisation/description/category through the stored tsvector;
// exact-match filters narrow by state/district/category/status. Total is the
// full filtered count, independent of the returned page slice.
func (s *Store) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	var (
		where    []string
		args     []any
		queryArg int // positional index of the free-text argument, 0 = none
	)

	add := func(cond string, val any) {
		args = append(args, val)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if q.Query != "" {
		add(`search_vector @@ websearch_to_tsquery('simple', $%d)`, q.Query)
		queryArg = len(args)
	}
	if q.State != "" {
		add(`state = $%d`, q.State)
	}
	if q.District != "" {
		add(`district = $%d`, q.District)
	}
	if q.Category != "" {
		add(`category = $%d`, q.Category)
	}
	if q.Status != "" {
		add(`status = $%d`, string(q.Status))
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM jobs`+whereSQL, args...,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("search count: %w", err)
	}

	orderSQL := orderBy(q.Sort, queryArg)
	args = append(args, q.PageSize, (q.Page-1)*q.PageSize)
	pageSQL := fmt.Sprintf(`SELECT `+jobCols+` FROM jobs%s%s LIMIT $%d OFFSET $%d`,
		whereSQL, orderSQL, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, pageSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	results := make([]model.Job, 0, q.PageSize)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("search scan: %w", err)
		}
		results = append(results, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	facets, err := s.Facets(ctx)
	if err != nil {
		return nil, err
	}

	return &SearchResult{Results: results, Total: total, Facets: *facets}, nil
}

// orderBy maps a Sort to an ORDER BY clause. The id tie-break keeps paging
// stable: a job never appears on two pages of the same query.
func orderBy(s Sort, queryArg int) string {
	switch {
	case s == SortClosingSoon:
		return ` ORDER BY apply_end_date ASC NULLS LAST, id ASC`
	case s == SortRelevance && queryArg > 0:
		return fmt.Sprintf(
			` ORDER BY ts_rank(search_vector, websearch_to_tsquery('simple', $%d)) DESC, id ASC`,
			queryArg)
	default:
		return ` ORDER BY published_at DESC, id DESC`
	}
}

// Facets returns distinct values with counts for state, category and status
// over the globally unfiltered job set, sorted by count descending.
func (s *Store) Facets(ctx context.Context) (*Facets, error) {
	f := &Facets{}
	for _, col := range []struct {
		name string
		dst  *[]Facet
	}{
		{"state", &f.State},
		{"category", &f.Category},
		{"status", &f.Status},
	} {
		rows, err := s.pool.Query(ctx, fmt.Sprintf(
			`SELECT %s, COUNT(*) FROM jobs WHERE %s <> '' GROUP BY %s
			 ORDER BY COUNT(*) DESC, %s ASC`,
			col.name, col.name, col.name, col.name))
		if err != nil {
			return nil, fmt.Errorf("facet %s: %w", col.name, err)
		}
		for rows.Next() {
			var fv Facet
			if err := rows.Scan(&fv.Value, &fv.Count); err != nil {
				rows.Close()
				return nil, fmt.Errorf("facet %s scan: %w", col.name, err)
			}
			*col.dst = append(*col.dst, fv)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Nearby returns jobs within radiusKm of (lat, lon), distance ascending with
// id as tie-break, each annotated with DistanceKm. Rows without coordinates
// are excluded unconditionally.
//
// The query uses a rectangular bounding-box predicate on the (lat, lon)
// index to bound the scanned set; the exact great-circle distance is then
// computed with the single shared Haversine implementation (geo.DistanceKm)
// so database and application code can never disagree on ordering.
func (s *Store) Nearby(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]model.Job, error) {
	box := geo.Bounds(lat, lon, radiusKm)

	rows, err := s.pool.Query(ctx,
		`SELECT `+jobCols+` FROM jobs
		 WHERE lat IS NOT NULL
		   AND lat BETWEEN $1 AND $2
		   AND lon BETWEEN $3 AND $4`,
		box.LatMin, box.LatMax, box.LonMin, box.LonMax)
	if err != nil {
		return nil, fmt.Errorf("nearby query: %w", err)
	}
	defer rows.Close()

	var results []model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("nearby scan: %w", err)
		}
		d := geo.DistanceKm(lat, lon, *j.Lat, *j.Lon)
		if d > radiusKm {
			continue // corner of the bounding box, outside the circle
		}
		j.DistanceKm = &d
		results = append(results, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, k int) bool {
		if *results[i].DistanceKm != *results[k].DistanceKm {
			return *results[i].DistanceKm < *results[k].DistanceKm
		}
		return results[i].ID < results[k].ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// ─── Scanning ────────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*model.Job, error) {
	var (
		j      model.Job
		status string
	)
	if err := row.Scan(
		&j.ID, &j.ContentHash, &j.Title, &j.Organisation, &j.Category,
		&j.Qualification, &j.Description, &j.State, &j.District, &j.City,
		&j.Lat, &j.Lon, &status,
		&j.ApplyStartDate, &j.ApplyEndDate, &j.PublishedAt,
		&j.SourceURL, &j.OfficialNotificationURL,
	); err != nil {
		return nil, err
	}
	j.Status = model.JobStatus(status)
	return &j, nil
}
