package ingest_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rojgarsetu/core-service/internal/ingest"
	"rojgarsetu/core-service/internal/model"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Sarkari Notifications</title>
    <item>
      <title>SSC Clerk Recruitment 2026</title>
      <link>https://example.gov.in/ssc-clerk</link>
      <description>1200 clerk vacancies across regions.</description>
      <pubDate>Mon, 03 Aug 2026 09:00:00 +0530</pubDate>
    </item>
    <item>
      <title>Railway Group D Apply Online</title>
      <link>https://example.gov.in/rrb-group-d</link>
      <description>Group D recruitment notification.</description>
    </item>
    <item>
      <title></title>
      <link>https://example.gov.in/untitled</link>
    </item>
  </channel>
</rss>`

// ── RSS adapter ───────────────────────────────────────────────────────────

func TestRSSAdapter_MapsItemsAndDefaults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(testFeed))
	}))
	defer ts.Close()

	src := model.Source{
		ID:       "ssc-feed",
		Type:     model.SourceRSS,
		Endpoint: ts.URL,
		Active:   true,
		Defaults: model.SourceDefaults{
			Organisation: "Staff Selection Commission",
			Category:     "clerical",
			State:        "Delhi",
		},
	}

	candidates, err := ingest.NewAdapters()[model.SourceRSS].Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2 (untitled item dropped)", len(candidates))
	}

	first := candidates[0]
	if first.Title != "SSC Clerk Recruitment 2026" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.SourceURL != "https://example.gov.in/ssc-clerk" {
		t.Errorf("SourceURL = %q", first.SourceURL)
	}
	if first.PublishedAt == nil {
		t.Error("pubDate should map onto PublishedAt")
	}
	if first.Organisation != "Staff Selection Commission" ||
		first.Category != "clerical" || first.State != "Delhi" {
		t.Errorf("defaults not applied: %+v", first)
	}
	if candidates[1].PublishedAt != nil {
		t.Error("item without pubDate should have nil PublishedAt")
	}
}

func TestRSSAdapter_UnparseableFeedFails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("this is not xml"))
	}))
	defer ts.Close()

	src := model.Source{ID: "bad", Type: model.SourceRSS, Endpoint: ts.URL, Active: true}
	if _, err := ingest.NewAdapters()[model.SourceRSS].Fetch(context.Background(), src); err == nil {
		t.Error("expected error for an unparseable feed")
	}
}

// ── HTML adapter ──────────────────────────────────────────────────────────

const testPage = `<!DOCTYPE html>
<html><body>
  <ul class="vacancies">
    <li class="vacancy">
      <a class="post" href="/jobs/patwari-2026">Rajasthan Patwari 2026</a>
      <span class="dept">Revenue Department</span>
      <span class="posted">2026-07-15</span>
    </li>
    <li class="vacancy">
      <a class="post" href="https://other.gov.in/ldc">LDC Recruitment</a>
    </li>
    <li class="vacancy">
      <span class="dept">No title here</span>
    </li>
  </ul>
</body></html>`

func TestHTMLAdapter_ExtractsListItems(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testPage))
	}))
	defer ts.Close()

	src := model.Source{
		ID:       "raj-board",
		Type:     model.SourceHTML,
		Endpoint: ts.URL,
		Active:   true,
		Defaults: model.SourceDefaults{State: "Rajasthan"},
		Selectors: model.SourceSelectors{
			List:         "li.vacancy",
			Title:        "a.post",
			Link:         "a.post",
			Organisation: "span.dept",
			Date:         "span.posted",
		},
	}

	candidates, err := ingest.NewAdapters()[model.SourceHTML].Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2 (titleless item dropped)", len(candidates))
	}

	first := candidates[0]
	if first.Title != "Rajasthan Patwari 2026" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.SourceURL != ts.URL+"/jobs/patwari-2026" {
		t.Errorf("relative link not resolved: %q", first.SourceURL)
	}
	if first.Organisation != "Revenue Department" {
		t.Errorf("Organisation = %q", first.Organisation)
	}
	if first.PublishedAt == nil {
		t.Error("date selector should populate PublishedAt")
	}
	if first.State != "Rajasthan" {
		t.Errorf("State default not applied: %q", first.State)
	}

	second := candidates[1]
	if second.SourceURL != "https://other.gov.in/ldc" {
		t.Errorf("absolute link mangled: %q", second.SourceURL)
	}
	if second.Organisation != "" || second.PublishedAt != nil {
		t.Errorf("missing optional selectors must yield empty fields, got %+v", second)
	}
}

func TestHTMLAdapter_MissingOptionalSelectorsTolerated(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testPage))
	}))
	defer ts.Close()

	src := model.Source{
		ID:       "minimal",
		Type:     model.SourceHTML,
		Endpoint: ts.URL,
		Active:   true,
		Selectors: model.SourceSelectors{
			List:  "li.vacancy",
			Title: "a.post",
		},
	}

	candidates, err := ingest.NewAdapters()[model.SourceHTML].Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}
	for _, c := range candidates {
		if c.Organisation != "" {
			t.Errorf("unconfigured selector should leave field empty: %+v", c)
		}
	}
}

// ── PDF adapter ───────────────────────────────────────────────────────────

func TestPDFAdapter_ExtractsPrintableText(t *testing.T) {
	// Fake PDF: binary noise around printable runs; runs under 4 chars are
	// layout noise and must be dropped.
	payload := []byte("%PDF-1.4\x00\x01\x02Recruitment of Junior Engineers\x00\x03ab\x00Apply before 30-09-2026\xff\xfe")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ".pdf") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(payload)
	}))
	defer ts.Close()

	src := model.Source{
		ID:       "je-notice",
		Type:     model.SourcePDF,
		Endpoint: ts.URL + "/notices/junior-engineer_2026.pdf",
		Active:   true,
		Defaults: model.SourceDefaults{Organisation: "PWD"},
	}

	candidates, err := ingest.NewAdapters()[model.SourcePDF].Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}

	c := candidates[0]
	if c.Title != "junior engineer 2026" {
		t.Errorf("Title = %q, want filename-derived title", c.Title)
	}
	if !strings.Contains(c.Description, "Recruitment of Junior Engineers") ||
		!strings.Contains(c.Description, "Apply before 30-09-2026") {
		t.Errorf("Description = %q", c.Description)
	}
	for _, tok := range strings.Fields(c.Description) {
		if tok == "ab" {
			t.Errorf("sub-minimum run leaked into extraction: %q", c.Description)
		}
	}
	if c.OfficialNotificationURL != src.Endpoint {
		t.Errorf("OfficialNotificationURL = %q, want the PDF URL", c.OfficialNotificationURL)
	}
	if c.Organisation != "PWD" {
		t.Errorf("defaults not applied: %q", c.Organisation)
	}
}

func TestPDFAdapter_SourceNameWinsOverFilename(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("%PDF-1.4 some notification text"))
	}))
	defer ts.Close()

	src := model.Source{
		ID:       "named",
		Type:     model.SourcePDF,
		Name:     "UPSC CSE Notification",
		Endpoint: ts.URL + "/x.pdf",
		Active:   true,
	}

	candidates, err := ingest.NewAdapters()[model.SourcePDF].Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if candidates[0].Title != "UPSC CSE Notification" {
		t.Errorf("Title = %q, want configured source name", candidates[0].Title)
	}
}
