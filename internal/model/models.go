// Package model defines shared data structures for the core service.
package model

import "time"

// JobStatus is the lifecycle state of a posting. Transitions are caller-driven;
// the core only stores and filters on the value.
type JobStatus string

const (
	StatusOpen      JobStatus = "open"
	StatusUpcoming  JobStatus = "upcoming"
	StatusClosed    JobStatus = "closed"
	StatusResultOut JobStatus = "result_out"
)

// Job is a persisted posting. ID is assigned by the store; ContentHash is the
// dedup fingerprint and is unique across the store.
type Job struct {
	ID                      int64      `json:"id"`
	ContentHash             string     `json:"contentHash"`
	Title                   string     `json:"title"`
	Organisation            string     `json:"organisation,omitempty"`
	Category                string     `json:"category,omitempty"`
	Qualification           string     `json:"qualification,omitempty"`
	Description             string     `json:"description,omitempty"`
	State                   string     `json:"state,omitempty"`
	District                string     `json:"district,omitempty"`
	City                    string     `json:"city,omitempty"`
	Lat                     *float64   `json:"lat,omitempty"`
	Lon                     *float64   `json:"lon,omitempty"`
	Status                  JobStatus  `json:"status"`
	ApplyStartDate          *time.Time `json:"applyStartDate,omitempty"`
	ApplyEndDate            *time.Time `json:"applyEndDate,omitempty"`
	PublishedAt             time.Time  `json:"publishedAt"`
	SourceURL               string     `json:"sourceUrl,omitempty"`
	OfficialNotificationURL string     `json:"officialNotificationUrl,omitempty"`

	// DistanceKm is set only on nearby-search results.
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

// CandidateJob is an adapter-normalised posting awaiting deduplication.
// All source-specific shapes are flattened into this one struct at the adapter
// boundary. ContentHash is empty until the dedup engine assigns it.
type CandidateJob struct {
	Title                   string
	Organisation            string
	Category                string
	Qualification           string
	Description             string
	State                   string
	District                string
	City                    string
	Lat                     *float64
	Lon                     *float64
	Status                  JobStatus
	ApplyStartDate          *time.Time
	ApplyEndDate            *time.Time
	PublishedAt             *time.Time
	SourceURL               string
	OfficialNotificationURL string
	ContentHash             string
}

// Address is a reverse-geocoded location, trimmed to the fields the system
// persists. Raw provider payloads are never cached verbatim.
type Address struct {
	DisplayName string  `json:"display_name"`
	City        string  `json:"city,omitempty"`
	District    string  `json:"district,omitempty"`
	State       string  `json:"state,omitempty"`
	Country     string  `json:"country,omitempty"`
	Postcode    string  `json:"postcode,omitempty"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// SourceType selects the fetch adapter for a source.
type SourceType string

const (
	SourceRSS  SourceType = "rss"
	SourceHTML SourceType = "html"
	SourcePDF  SourceType = "pdf"
)

// SourceDefaults fill candidate fields the source's format cannot provide.
type SourceDefaults struct {
	Organisation  string `json:"organisation,omitempty"`
	Category      string `json:"category,omitempty"`
	State         string `json:"state,omitempty"`
	Qualification string `json:"qualification,omitempty"`
}

// SourceSelectors configure the HTML adapter. Only List and Title are
// required; a missing optional selector leaves the field empty.
type SourceSelectors struct {
	List         string `json:"list,omitempty"`
	Title        string `json:"title,omitempty"`
	Link         string `json:"link,omitempty"`
	Organisation string `json:"organisation,omitempty"`
	Date         string `json:"date,omitempty"`
}

// Source describes one ingestion source from the registry file.
type Source struct {
	ID        string          `json:"id"`
	Type      SourceType      `json:"type"`
	Name      string          `json:"name,omitempty"`
	Endpoint  string          `json:"endpoint"`
	Active    bool            `json:"active"`
	Defaults  SourceDefaults  `json:"defaults,omitempty"`
	Selectors SourceSelectors `json:"selectors,omitempty"`
}
