package deps

import (
	"time"

	"github.com/MrSnakeDoc/yangfinder/internal/kv"
	"github.com/MrSnakeDoc/yangfinder/internal/logger"
	"github.com/MrSnakeDoc/yangfinder/internal/metrics"
	"github.com/MrSnakeDoc/yangfinder/internal/search"
	"github.com/MrSnakeDoc/yangfinder/internal/userlists"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access the server
	AllowedCIDRS []string         // IPs allowed to access /metrics, /readyz and /api/status
	TrustProxy   bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)

	Lookup    *search.Holder   // catalog, autocomplete and searcher; empty until the manifest loads
	Store     kv.Store         // recent/favorites persistence
	StoreKind string           // "memory" | "redis" | "sqlite", reported by /api/status
	Keys      userlists.Keys   // base list keys, namespaced per client
	Metrics   *metrics.Metrics // nil disables /metrics

	ClientQuotaBytes int // > 0 gives each client its own budget over Store
	MaxClients       int // clients tracked at once, see kv.PartitionOptions

	RateLimitBurst  int // write endpoints burst per client IP
	RateLimitPerMin int // write endpoints refill per client IP
}
