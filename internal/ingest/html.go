package ingest

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"rojgarsetu/core-service/internal/model"
)

// dateLayouts are tried in order when parsing scraped date text. Government
// listing pages are inconsistent; an unparseable date is simply dropped.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"02 Jan 2006",
	"January 2, 2006",
}

// HTMLAdapter extracts repeated list items from a page using the CSS
// selectors configured on the source descriptor. Missing optional selectors
// leave the field empty — they are never a failure.
type HTMLAdapter struct {
	client *http.Client
}

// Fetch downloads src.Endpoint and extracts one candidate per list item.
func (a *HTMLAdapter) Fetch(ctx context.Context, src model.Source) ([]model.CandidateJob, error) {
	body, err := fetchBody(ctx, a.client, src.Endpoint)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base, err := url.Parse(src.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint url: %w", err)
	}

	sel := src.Selectors
	var candidates []model.CandidateJob

	doc.Find(sel.List).Each(func(_ int, item *goquery.Selection) {
		title := strings.TrimSpace(item.Find(sel.Title).First().Text())
		if title == "" {
			return
		}

		c := model.CandidateJob{
			Title:     title,
			SourceURL: extractLink(item, sel.Link, base),
		}
		if sel.Organisation != "" {
			c.Organisation = strings.TrimSpace(item.Find(sel.Organisation).First().Text())
		}
		if sel.Date != "" {
			if t := parseDate(item.Find(sel.Date).First().Text()); t != nil {
				c.PublishedAt = t
			}
		}
		if c.SourceURL == "" {
			c.SourceURL = src.Endpoint
		}

		applyDefaults(&c, src.Defaults)
		candidates = append(candidates, c)
	})

	return candidates, nil
}

// extractLink resolves the item's link href against the page URL. Works
// whether the link selector targets an <a> or the item itself is one.
func extractLink(item *goquery.Selection, linkSel string, base *url.URL) string {
	target := item
	if linkSel != "" {
		target = item.Find(linkSel).First()
	}

	href, ok := target.Attr("href")
	if !ok {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func parseDate(text string) *time.Time {
	text = strings.TrimSpace(text)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return &t
		}
	}
	return nil
}
