// Package source loads and validates the ingestion source registry.
// The registry is a static JSON file: sources are configured, not stored.
package source

import (
	"encoding/json"
	"fmt"
	"os"

	"rojgarsetu/core-service/internal/model"
)

// Registry is the configured list of ingestion sources.
type Registry struct {
	sources []model.Source
}

// LoadFile reads and validates the registry JSON at path.
func LoadFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	return Parse(raw)
}

// Parse validates raw registry JSON.
func Parse(raw []byte) (*Registry, error) {
	var sources []model.Source
	if err := json.Unmarshal(raw, &sources); err != nil {
		return nil, fmt.Errorf("parse sources: %w", err)
	}

	seen := make(map[string]struct{}, len(sources))
	for i, s := range sources {
		if s.ID == "" {
			return nil, fmt.Errorf("source %d: id is required", i)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("source %q: duplicate id", s.ID)
		}
		seen[s.ID] = struct{}{}

		if s.Endpoint == "" {
			return nil, fmt.Errorf("source %q: endpoint is required", s.ID)
		}
		switch s.Type {
		case model.SourceRSS, model.SourcePDF:
		case model.SourceHTML:
			if s.Selectors.List == "" || s.Selectors.Title == "" {
				return nil, fmt.Errorf("source %q: html sources need list and title selectors", s.ID)
			}
		default:
			return nil, fmt.Errorf("source %q: unknown type %q", s.ID, s.Type)
		}
	}

	return &Registry{sources: sources}, nil
}

// All returns every configured source.
func (r *Registry) All() []model.Source {
	return r.sources
}

// Active returns only sources with active = true, in file order.
func (r *Registry) Active() []model.Source {
	var active []model.Source
	for _, s := range r.sources {
		if s.Active {
			active = append(active, s)
		}
	}
	return active
}
