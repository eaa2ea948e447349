package scheduler

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/yangfinder/internal/domain"
	"github.com/MrSnakeDoc/yangfinder/internal/index"
	"github.com/MrSnakeDoc/yangfinder/internal/logger"
	"github.com/MrSnakeDoc/yangfinder/internal/metrics"
	"github.com/MrSnakeDoc/yangfinder/internal/sources/manifest"
)

// Source is the manifest fetch used by CatalogLoader.
type Source interface {
	Load(ctx context.Context) (manifest.Document, error)
	Source() string
}

// CatalogLoader builds the catalog once from the manifest.
type CatalogLoader struct {
	source  Source
	mapper  *manifest.Mapper
	logger  logger.Logger
	metrics *metrics.Metrics
}

// NewCatalogLoader creates a loader. m may be nil.
func NewCatalogLoader(source Source, log logger.Logger, m *metrics.Metrics) *CatalogLoader {
	return &CatalogLoader{
		source:  source,
		mapper:  manifest.NewMapper(),
		logger:  log,
		metrics: m,
	}
}

// Load fetches and maps the manifest. It always returns a usable catalog:
// on failure the catalog is empty, the error is logged and returned so the
// caller can report search as unavailable.
func (cl *CatalogLoader) Load(ctx context.Context) (*index.Catalog, error) {
	cl.logger.Info("loading catalog manifest",
		logger.String("source", cl.source.Source()))

	doc, err := cl.source.Load(ctx)
	if err != nil {
		var le *manifest.LoadError
		if errors.As(err, &le) {
			cl.logger.Error("catalog manifest unavailable, search disabled",
				logger.String("source", le.Source),
				logger.Error(le.Err))
		} else {
			cl.logger.Error("catalog manifest unavailable, search disabled", logger.Error(err))
		}
		cl.metrics.SetCatalogSize(0)
		return index.NewCatalog(nil), err
	}

	modules, stats := cl.mapper.MapModules(doc)
	catalog := index.NewCatalog(modules)

	fields := []logger.Field{
		logger.Int("modules", catalog.Len()),
		logger.Int("skipped", stats.Skipped),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("unknown_types", stats.Unknown),
	}
	if doc.Version != "" {
		fields = append(fields, logger.String("manifest_version", doc.Version))
	}
	if doc.Generated != "" {
		fields = append(fields, logger.String("generated", doc.Generated))
	}
	cl.logger.Info("catalog loaded", fields...)

	counts := catalog.CountByType()
	for _, t := range domain.KnownTypes {
		if n := counts[t]; n > 0 {
			cl.logger.Debug("catalog type", logger.String("type", string(t)), logger.Int("modules", n))
		}
	}

	cl.metrics.SetCatalogSize(catalog.Len())
	return catalog, nil
}

// Start loads the catalog in the background and hands it to ready. ready
// is called exactly once unless ctx is cancelled first.
func (cl *CatalogLoader) Start(ctx context.Context, ready func(*index.Catalog)) {
	go func() {
		catalog, _ := cl.Load(ctx)
		if ctx.Err() != nil {
			return
		}
		ready(catalog)
	}()
}
