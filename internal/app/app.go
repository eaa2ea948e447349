package app

import (
	"context"
	"fmt"
	"io"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/yangfinder/internal/config"
	"github.com/MrSnakeDoc/yangfinder/internal/domain"
	"github.com/MrSnakeDoc/yangfinder/internal/fuzzy"
	"github.com/MrSnakeDoc/yangfinder/internal/httpserver"
	"github.com/MrSnakeDoc/yangfinder/internal/httpserver/deps"
	"github.com/MrSnakeDoc/yangfinder/internal/index"
	"github.com/MrSnakeDoc/yangfinder/internal/kv"
	"github.com/MrSnakeDoc/yangfinder/internal/logger"
	"github.com/MrSnakeDoc/yangfinder/internal/metrics"
	"github.com/MrSnakeDoc/yangfinder/internal/redis"
	"github.com/MrSnakeDoc/yangfinder/internal/scheduler"
	"github.com/MrSnakeDoc/yangfinder/internal/search"
	"github.com/MrSnakeDoc/yangfinder/internal/shell"
	"github.com/MrSnakeDoc/yangfinder/internal/sources/manifest"
	"github.com/MrSnakeDoc/yangfinder/internal/utils"
	"github.com/MrSnakeDoc/yangfinder/internal/version"
)

// App owns the long-lived components shared by every command.
type App struct {
	cfg         *config.Config
	logger      logger.Logger
	metrics     *metrics.Metrics
	store       kv.Store
	storeKind   string
	redisClient *goredis.Client
	loader      *scheduler.CatalogLoader
	lookup      *search.Holder
}

// New opens the list store and prepares the catalog loader. A store that
// cannot be opened falls back to the in-memory backend.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) *App {
	a := &App{
		cfg:     cfg,
		logger:  log,
		metrics: metrics.New(),
		lookup:  &search.Holder{},
	}
	a.openStore(ctx)
	a.loader = scheduler.NewCatalogLoader(
		manifest.NewLoader(cfg.Manifest, cfg.ManifestTimeout),
		log.Named("catalog"),
		a.metrics,
	)
	return a
}

func (a *App) openStore(ctx context.Context) {
	switch a.cfg.Store {
	case config.StoreRedis:
		client, err := redis.Connect(ctx, redis.Options{
			Addr:          a.cfg.RedisAddr,
			User:          a.cfg.RedisUser,
			Password:      a.cfg.RedisPassword,
			DB:            a.cfg.RedisDB,
			DialTimeout:   a.cfg.RedisDT,
			ReadTimeout:   a.cfg.RedisRT,
			WriteTimeout:  a.cfg.RedisWT,
			PoolSize:      a.cfg.RedisPoolSize,
			RetryFor:      a.cfg.RedisConnectTimeout,
			RetryInterval: a.cfg.RedisRetryInterval,
			MaxWait:       a.cfg.RedisMaxWait,
			PingTimeout:   a.cfg.RedisPingTimeout,
		}, a.logger.Named("redis"))
		if err != nil {
			a.logger.Warn("redis store unavailable, lists fall back to memory", logger.Error(err))
			break
		}
		a.redisClient = client
		a.store, a.storeKind = kv.NewRedis(client, kv.RedisOptions{
			MaxValueBytes: a.cfg.RedisMaxValueBytes,
			ClientTTL:     a.cfg.ClientTTL,
		}), config.StoreRedis
		return

	case config.StoreSQLite:
		s, err := kv.OpenSQLite(ctx, kv.SQLiteOptions{Path: a.cfg.SQLitePath, MaxPages: a.cfg.SQLiteMaxPages})
		if err != nil {
			a.logger.Warn("sqlite store unavailable, lists fall back to memory",
				logger.String("path", a.cfg.SQLitePath), logger.Error(err))
			break
		}
		a.store, a.storeKind = s, config.StoreSQLite
		return
	}

	a.store, a.storeKind = kv.NewMemory(a.cfg.StoreQuota), config.StoreMemory
}

func (a *App) buildSnapshot(catalog *index.Catalog) (*search.Snapshot, error) {
	return search.Build(catalog, search.BuildOptions{
		Engine: a.cfg.SearchEngine,
		Fuzzy:  fuzzy.Options{Threshold: a.cfg.SearchThreshold},
		Search: search.Options{
			Limit:     a.cfg.ResultLimit,
			CacheSize: a.cfg.CacheSize,
			Metrics:   a.metrics,
			Logger:    a.logger.Named("search"),
		},
		SuggestLimit: a.cfg.SuggestLimit,
	})
}

// loadSnapshot loads the catalog synchronously. A failed load still yields
// a snapshot, over an empty catalog, so search reports itself unavailable.
func (a *App) loadSnapshot(ctx context.Context) (*search.Snapshot, error) {
	catalog, _ := a.loader.Load(ctx)
	snap, err := a.buildSnapshot(catalog)
	if err != nil {
		return nil, err
	}
	a.publish(snap)
	return snap, nil
}

func (a *App) publish(snap *search.Snapshot) {
	if old := a.lookup.Store(snap); old != nil {
		utils.CloseLogged(old, a.logger, "search snapshot")
	}
}

// Serve runs the HTTP API until ctx is done. The catalog loads in the
// background; until it lands search answers 503 and /readyz is not ready.
func (a *App) Serve(ctx context.Context) error {
	a.logger.Infof("🚀 Starting yangfinder v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("yangfinder %s", version.String())

	a.loader.Start(ctx, func(catalog *index.Catalog) {
		snap, err := a.buildSnapshot(catalog)
		if err != nil {
			a.logger.Error("failed to build search index", logger.Error(err))
			return
		}
		a.publish(snap)
		a.logger.Info("search ready",
			logger.Int("modules", catalog.Len()),
			logger.String("engine", a.cfg.SearchEngine))
	})

	// Client budgets are the quota on the API; the process-local medium
	// only has to hold all of them.
	if m, ok := a.store.(*kv.Memory); ok {
		m.Grow(a.cfg.ClientQuotaBytes * a.cfg.MaxClients)
	}

	d := deps.Deps{
		Logger:          a.logger,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    a.cfg.AllowedHosts,
		AllowedCIDRS:    a.cfg.AllowedCIDRS,
		TrustProxy:      a.cfg.TrustProxy,
		Lookup:          a.lookup,
		Store:           a.store,
		StoreKind:       a.storeKind,
		Metrics:         a.metrics,
		RateLimitBurst:  a.cfg.RateLimitBurst,
		RateLimitPerMin: a.cfg.RateLimitPerMin,

		ClientQuotaBytes: a.cfg.ClientQuotaBytes,
		MaxClients:       a.cfg.MaxClients,
	}
	server := httpserver.New(a.cfg, a.logger, d)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	return nil
}

// Shell runs the interactive search loop over in and out.
func (a *App) Shell(ctx context.Context, in io.Reader, out io.Writer) error {
	snap, err := a.loadSnapshot(ctx)
	if err != nil {
		return err
	}

	sh := shell.New(shell.Config{
		Searcher:  snap.Searcher,
		Suggester: snap.Autocomplete,
		Finder:    snap.Catalog,
		Store:     a.store,
		Debounce:  a.cfg.Debounce,
		Metrics:   a.metrics,
		Logger:    a.logger,
		Out:       out,
	})
	return sh.Run(ctx, in)
}

// SearchOnce runs a single filtered search and prints the results.
func (a *App) SearchOnce(ctx context.Context, query string, filters domain.FilterSet, out io.Writer) error {
	if search.Classify(query) != search.PhaseSearch {
		return fmt.Errorf("query must be at least %d characters", search.MinQueryLength)
	}

	snap, err := a.loadSnapshot(ctx)
	if err != nil {
		return err
	}
	res, err := snap.Searcher.Search(query, filters)
	if err != nil {
		return err
	}
	shell.Fprint(out, res)
	return nil
}

// SuggestOnce prints the autocomplete suggestions for query.
func (a *App) SuggestOnce(ctx context.Context, query string, out io.Writer) error {
	snap, err := a.loadSnapshot(ctx)
	if err != nil {
		return err
	}
	shell.FprintSuggestions(out, query, snap.Autocomplete)
	return nil
}

// Close releases the snapshot, the store and the redis connection.
func (a *App) Close() error {
	if snap := a.lookup.Store(nil); snap != nil {
		utils.CloseLogged(snap, a.logger, "search snapshot")
	}
	utils.CloseLogged(a.store, a.logger, "list store")
	if a.redisClient != nil {
		utils.CloseLogged(a.redisClient, a.logger, "redis")
	}
	a.logger.Debug("✅ yangfinder stopped cleanly")
	return nil
}
