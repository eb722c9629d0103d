package ingest

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"strings"

	"rojgarsetu/core-service/internal/model"
)

const (
	pdfMinRunLen  = 4    // printable runs shorter than this are layout noise
	pdfMaxExtract = 2000 // extracted text is truncated to this many bytes
)

// PDFAdapter downloads a notification PDF and produces a single candidate
// from it. Text extraction is a best-effort scan for printable ASCII runs.
//
// Known limitation: single-byte scanning cannot recover non-Latin scripts
// (Devanagari notifications come out empty). Full Unicode extraction needs a
// real PDF text library and is deliberately not attempted here.
type PDFAdapter struct {
	client *http.Client
}

// Fetch downloads src.Endpoint and derives one candidate. The PDF URL is
// always stored as the official notification URL for provenance.
func (a *PDFAdapter) Fetch(ctx context.Context, src model.Source) ([]model.CandidateJob, error) {
	body, err := fetchBody(ctx, a.client, src.Endpoint)
	if err != nil {
		return nil, err
	}

	c := model.CandidateJob{
		Title:                   titleFromURL(src.Endpoint, src.Name),
		Description:             extractPrintable(body),
		SourceURL:               src.Endpoint,
		OfficialNotificationURL: src.Endpoint,
	}
	applyDefaults(&c, src.Defaults)

	return []model.CandidateJob{c}, nil
}

// extractPrintable collects ASCII-range runs of length >= pdfMinRunLen,
// joins them with single spaces and truncates to pdfMaxExtract bytes.
func extractPrintable(data []byte) string {
	var (
		b   strings.Builder
		run []byte
	)

	flush := func() {
		if len(run) >= pdfMinRunLen {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.Write(run)
		}
		run = run[:0]
	}

	for _, ch := range data {
		if ch >= 0x20 && ch <= 0x7e {
			run = append(run, ch)
			continue
		}
		flush()
		if b.Len() >= pdfMaxExtract {
			break
		}
	}
	flush()

	text := b.String()
	if len(text) > pdfMaxExtract {
		text = text[:pdfMaxExtract]
	}
	return strings.TrimSpace(text)
}

// titleFromURL derives a readable title from the PDF filename when the
// source has no better name configured.
func titleFromURL(endpoint, name string) string {
	if name != "" {
		return name
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	base := strings.TrimSuffix(path.Base(u.Path), path.Ext(u.Path))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" || base == "." || base == "/" {
		return endpoint
	}
	return base
}
