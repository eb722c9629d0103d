package ingest

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"rojgarsetu/core-service/internal/model"
)

// RSSAdapter parses a feed URL into candidate jobs. Feed items map onto the
// candidate directly (title, link, description, pubDate); everything the
// feed cannot express comes from the source's configured defaults.
type RSSAdapter struct {
	client *http.Client
}

// Fetch downloads and parses the feed at src.Endpoint.
func (a *RSSAdapter) Fetch(ctx context.Context, src model.Source) ([]model.CandidateJob, error) {
	parser := gofeed.NewParser()
	parser.Client = a.client

	feed, err := parser.ParseURLWithContext(src.Endpoint, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	candidates := make([]model.CandidateJob, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}

		c := model.CandidateJob{
			Title:       title,
			Description: strings.TrimSpace(item.Description),
			SourceURL:   strings.TrimSpace(item.Link),
			PublishedAt: item.PublishedParsed,
		}
		applyDefaults(&c, src.Defaults)
		candidates = append(candidates, c)
	}

	return candidates, nil
}
