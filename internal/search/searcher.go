// Package search runs queries through the fuzzy engine and the filter set,
// and drives a presentation through the Orchestrator state machine.
package search

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/MrSnakeDoc/yangfinder/internal/domain"
	"github.com/MrSnakeDoc/yangfinder/internal/fuzzy"
	"github.com/MrSnakeDoc/yangfinder/internal/index"
	"github.com/MrSnakeDoc/yangfinder/internal/logger"
	"github.com/MrSnakeDoc/yangfinder/internal/metrics"
)

const (
	// DefaultLimit caps the number of results handed to a renderer. Larger
	// limits are clamped to it.
	DefaultLimit = 50
	// MinQueryLength is the shortest query that triggers a search.
	MinQueryLength = 2
)

// ErrUnavailable is returned while the catalog is empty.
var ErrUnavailable = errors.New("search unavailable: catalog is empty")

// Phase is what a query of a given length should produce.
type Phase int

const (
	PhaseEmpty    Phase = iota // nothing typed: hide results
	PhaseTypeMore              // too short: prompt for more input
	PhaseSearch
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseTypeMore:
		return "type-more"
	case PhaseSearch:
		return "search"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Classify maps query text to its phase. Surrounding spaces do not count.
func Classify(query string) Phase {
	switch n := utf8.RuneCountInString(strings.TrimSpace(query)); {
	case n == 0:
		return PhaseEmpty
	case n < MinQueryLength:
		return PhaseTypeMore
	default:
		return PhaseSearch
	}
}

// Results is one capped, filtered result set in engine order.
type Results struct {
	Query     string          `json:"query"`
	Items     []domain.Module `json:"items"`
	Total     int             `json:"total"`
	Truncated bool            `json:"truncated"`
}

// Engine is the part of fuzzy.Engine the searcher needs.
type Engine interface {
	Search(query string) ([]fuzzy.Match, error)
}

// Options tunes a Searcher. Zero values pick the defaults; a negative
// CacheSize disables the cache.
type Options struct {
	Limit     int
	CacheSize int
	Metrics   *metrics.Metrics
	Logger    logger.Logger
}

// DefaultCacheSize is used when Options.CacheSize is zero.
const DefaultCacheSize = 256

// Searcher answers queries against one immutable catalog. It is safe for
// concurrent use.
type Searcher struct {
	catalog *index.Catalog
	engine  Engine
	limit   int
	cache   *lru.Cache[uint64, Results]
	metrics *metrics.Metrics
	logger  logger.Logger
}

// NewSearcher builds a searcher over catalog using engine.
func NewSearcher(catalog *index.Catalog, engine Engine, opts Options) (*Searcher, error) {
	if catalog == nil {
		catalog = index.NewCatalog(nil)
	}
	if opts.Limit <= 0 || opts.Limit > DefaultLimit {
		opts.Limit = DefaultLimit
	}
	if opts.CacheSize == 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	s := &Searcher{
		catalog: catalog,
		engine:  engine,
		limit:   opts.Limit,
		metrics: opts.Metrics,
		logger:  opts.Logger.Named("search"),
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[uint64, Results](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("result cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Available reports whether the catalog has anything to search.
func (s *Searcher) Available() bool { return !s.catalog.Empty() && s.engine != nil }

// Catalog returns the catalog searched.
func (s *Searcher) Catalog() *index.Catalog { return s.catalog }

// Search runs query through the engine, keeps the matches that pass
// filters and returns the first Limit of them. Order is the engine's.
func (s *Searcher) Search(query string, filters domain.FilterSet) (Results, error) {
	start := time.Now()
	query = strings.TrimSpace(query)

	if !s.Available() {
		s.metrics.ObserveSearch("unavailable", time.Since(start), 0)
		return Results{Query: query, Items: []domain.Module{}}, ErrUnavailable
	}

	key := cacheKey(query, filters)
	if s.cache != nil {
		if res, ok := s.cache.Get(key); ok {
			s.metrics.CacheHit()
			s.metrics.ObserveSearch("ok", time.Since(start), res.Total)
			res = res.clone()
			res.Query = query
			return res, nil
		}
		s.metrics.CacheMiss()
	}

	matches, err := s.engine.Search(query)
	if err != nil {
		s.metrics.ObserveSearch("error", time.Since(start), 0)
		s.logger.Error("fuzzy query failed", logger.String("query", query), logger.Error(err))
		return Results{Query: query, Items: []domain.Module{}}, fmt.Errorf("query %q: %w", query, err)
	}

	res := Results{Query: query, Items: make([]domain.Module, 0, min(len(matches), s.limit))}
	for _, m := range matches {
		mod, ok := s.catalog.FindByName(m.Name)
		if !ok || !filters.Match(mod) {
			continue
		}
		res.Total++
		if len(res.Items) < s.limit {
			res.Items = append(res.Items, mod)
		}
	}
	res.Truncated = res.Total > len(res.Items)

	if s.cache != nil {
		s.cache.Add(key, res)
	}
	s.metrics.ObserveSearch("ok", time.Since(start), res.Total)
	s.logger.Debug("search",
		logger.String("query", query),
		logger.String("filters", filters.Key()),
		logger.Int("matches", len(matches)),
		logger.Int("total", res.Total),
		logger.Duration("took", time.Since(start)))

	return res.clone(), nil
}

func cacheKey(query string, filters domain.FilterSet) uint64 {
	return xxhash.Sum64String(strings.ToLower(query) + "\x00" + filters.Key())
}

func (r Results) clone() Results {
	items := make([]domain.Module, len(r.Items))
	copy(items, r.Items)
	r.Items = items
	return r
}
