package search

import (
	"fmt"
	"sync/atomic"

	"github.com/MrSnakeDoc/yangfinder/internal/fuzzy"
	"github.com/MrSnakeDoc/yangfinder/internal/index"
)

// BuildOptions configures Build.
type BuildOptions struct {
	Engine       string // fuzzy engine kind, "" means bleve
	Fuzzy        fuzzy.Options
	Search       Options
	SuggestLimit int
}

// Snapshot is the read-only lookup state derived from one catalog.
type Snapshot struct {
	Catalog      *index.Catalog
	Autocomplete *index.Autocomplete
	Searcher     *Searcher
	engine       fuzzy.Engine
}

// Build derives the autocomplete index, the fuzzy engine and the searcher
// from catalog.
func Build(catalog *index.Catalog, opts BuildOptions) (*Snapshot, error) {
	if len(opts.Fuzzy.Fields) == 0 {
		threshold := opts.Fuzzy.Threshold
		opts.Fuzzy = fuzzy.DefaultOptions()
		if threshold > 0 {
			opts.Fuzzy.Threshold = threshold
		}
	}

	engine, err := fuzzy.New(opts.Engine, catalog.All(), opts.Fuzzy)
	if err != nil {
		return nil, fmt.Errorf("build %s engine: %w", opts.Engine, err)
	}
	searcher, err := NewSearcher(catalog, engine, opts.Search)
	if err != nil {
		_ = engine.Close()
		return nil, err
	}

	return &Snapshot{
		Catalog:      catalog,
		Autocomplete: index.NewAutocomplete(catalog, opts.SuggestLimit),
		Searcher:     searcher,
		engine:       engine,
	}, nil
}

// Close releases the fuzzy engine.
func (s *Snapshot) Close() error {
	if s == nil || s.engine == nil {
		return nil
	}
	return s.engine.Close()
}

// Holder publishes the snapshot once the catalog has loaded. The zero
// value holds nothing.
type Holder struct {
	p atomic.Pointer[Snapshot]
}

// Load returns the current snapshot, or nil before the catalog loaded.
func (h *Holder) Load() *Snapshot { return h.p.Load() }

// Store publishes s and returns the one it replaced.
func (h *Holder) Store(s *Snapshot) *Snapshot { return h.p.Swap(s) }
