package bundle

import (
	"context"
	"fmt"

	"github.com/vitalscope/vitalscope/pkg/rules"
)

// Loader fetches the four bundle files for a macroarea from a Store, parses
// them, and caches the validated result.
type Loader struct {
	store Store
	cache *Cache
}

// NewLoader creates a Loader backed by the given store and cache.
// A nil cache disables caching.
func NewLoader(store Store, cache *Cache) *Loader {
	return &Loader{store: store, cache: cache}
}

// Load returns the parsed bundle for a macroarea, from cache when possible.
func (l *Loader) Load(ctx context.Context, macroarea string) (*rules.Bundle, error) {
	if l.cache != nil {
		if b := l.cache.Get(macroarea); b != nil {
			return b, nil
		}
	}

	fetch := func(name string) ([]byte, error) {
		data, err := l.store.GetFile(ctx, macroarea, name)
		if err != nil {
			return nil, fmt.Errorf("fetching %s/%s: %w", macroarea, name, err)
		}
		return data, nil
	}

	features, err := fetch(rules.FileFeatures)
	if err != nil {
		return nil, err
	}
	scoring, err := fetch(rules.FileScoring)
	if err != nil {
		return nil, err
	}
	actions, err := fetch(rules.FileActions)
	if err != nil {
		return nil, err
	}
	mapping, err := fetch(rules.FileMapping)
	if err != nil {
		return nil, err
	}

	b, err := rules.Parse(features, scoring, actions, mapping)
	if err != nil {
		return nil, fmt.Errorf("bundle %s: %w", macroarea, err)
	}

	if l.cache != nil {
		l.cache.Put(macroarea, b)
	}
	return b, nil
}

// Invalidate drops a macroarea from the loader's cache.
func (l *Loader) Invalidate(macroarea string) {
	if l.cache != nil {
		l.cache.Invalidate(macroarea)
	}
}
