package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends for the recent/favorites lists.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Upper bounds of the display limits.
const (
	MaxResultLimit  = 50
	MaxSuggestLimit = 8
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Catalog and search
	Manifest        string        // path or http(s) URL of the catalog manifest
	ManifestTimeout time.Duration // fetch timeout for an http(s) manifest
	SearchEngine    string        // "bleve" | "edit"
	SearchThreshold float64       // fuzzy looseness in [0,1]
	Debounce        time.Duration // input quiescence before a search runs (shell)
	ResultLimit     int           // results shown per search, at most MaxResultLimit
	SuggestLimit    int           // autocomplete suggestions per query, at most MaxSuggestLimit
	CacheSize       int           // search result cache entries, < 0 disables

	// Recent/favorites store
	Store          string // "memory" | "redis" | "sqlite"
	StoreQuota     int    // memory backend byte quota
	SQLitePath     string
	SQLiteMaxPages int // 0 = unbounded

	// Per-client isolation on the HTTP API
	ClientQuotaBytes int           // byte budget of one client's lists
	MaxClients       int           // clients whose lists are kept at once, least recently used dropped first
	ClientTTL        time.Duration // redis: idle client lists expire after this, 0 = never

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisMaxValueBytes    int           // per-value size limit, reported as quota exceeded

	// Write endpoints rate limit
	RateLimitBurst  int
	RateLimitPerMin int

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict /metrics and /readyz to these networks
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("YANGFINDER_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("YANGFINDER_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("YANGFINDER_LOG_LEVEL", "info"),
		PrettyLog: mustBool("YANGFINDER_PRETTY_LOG", true),

		// Catalog and search
		Manifest:        getenv("YANGFINDER_MANIFEST", "search-index.json"),
		ManifestTimeout: mustDuration("YANGFINDER_MANIFEST_TIMEOUT", 10*time.Second),
		SearchEngine:    strings.ToLower(getenv("YANGFINDER_SEARCH_ENGINE", "bleve")),
		SearchThreshold: getenvFloat("YANGFINDER_SEARCH_THRESHOLD", 0.3),
		Debounce:        mustDuration("YANGFINDER_DEBOUNCE", 300*time.Millisecond),
		ResultLimit:     getenvInt("YANGFINDER_RESULT_LIMIT", MaxResultLimit),
		SuggestLimit:    getenvInt("YANGFINDER_SUGGEST_LIMIT", MaxSuggestLimit),
		CacheSize:       getenvInt("YANGFINDER_CACHE_SIZE", 256),

		// Store
		Store:          strings.ToLower(getenv("YANGFINDER_STORE", StoreMemory)),
		StoreQuota:     getenvInt("YANGFINDER_STORE_QUOTA_BYTES", 5<<20),
		SQLitePath:     getenv("YANGFINDER_SQLITE_PATH", "yangfinder.db"),
		SQLiteMaxPages: getenvInt("YANGFINDER_SQLITE_MAX_PAGES", 0),

		ClientQuotaBytes: getenvInt("YANGFINDER_CLIENT_QUOTA_BYTES", 64<<10),
		MaxClients:       getenvInt("YANGFINDER_MAX_CLIENTS", 4096),
		ClientTTL:        mustDuration("YANGFINDER_CLIENT_TTL", 90*24*time.Hour),

		// Redis settings
		RedisAddr:             getenv("YANGFINDER_REDIS_ADDR", ""),
		RedisUser:             getenv("YANGFINDER_REDIS_USERNAME", ""),
		RedisPasswordRequired: mustBool("YANGFINDER_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("YANGFINDER_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("YANGFINDER_REDIS_DB", 0),
		RedisDT:               mustDuration("YANGFINDER_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("YANGFINDER_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("YANGFINDER_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("YANGFINDER_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("YANGFINDER_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("YANGFINDER_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("YANGFINDER_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("YANGFINDER_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisMaxValueBytes:    getenvInt("YANGFINDER_REDIS_MAX_VALUE_BYTES", 64<<10),

		RateLimitBurst:  getenvInt("YANGFINDER_RATE_LIMIT_BURST", 20),
		RateLimitPerMin: getenvInt("YANGFINDER_RATE_LIMIT_PER_MIN", 60),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("YANGFINDER_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("YANGFINDER_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("YANGFINDER_TRUST_PROXY", false),
	}

	switch cfg.Store {
	case StoreMemory, StoreSQLite:
	case StoreRedis:
		cfg.RedisAddr = requireEnv("YANGFINDER_REDIS_ADDR")
		if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
			panic("❌ FATAL: YANGFINDER_REDIS_PASSWORD is required when YANGFINDER_REDIS_PASSWORD_REQUIRED=true")
		}
	default:
		panic(fmt.Sprintf("❌ FATAL: YANGFINDER_STORE must be memory, redis or sqlite, got %q", cfg.Store))
	}

	if cfg.SearchEngine != "bleve" && cfg.SearchEngine != "edit" {
		panic(fmt.Sprintf("❌ FATAL: YANGFINDER_SEARCH_ENGINE must be bleve or edit, got %q", cfg.SearchEngine))
	}

	if cfg.SearchThreshold < 0 || cfg.SearchThreshold > 1 {
		panic(fmt.Sprintf("❌ FATAL: YANGFINDER_SEARCH_THRESHOLD must be in [0,1], got %v", cfg.SearchThreshold))
	}

	if cfg.ResultLimit < 1 || cfg.ResultLimit > MaxResultLimit {
		panic(fmt.Sprintf("❌ FATAL: YANGFINDER_RESULT_LIMIT must be in [1,%d], got %d", MaxResultLimit, cfg.ResultLimit))
	}

	if cfg.SuggestLimit < 1 || cfg.SuggestLimit > MaxSuggestLimit {
		panic(fmt.Sprintf("❌ FATAL: YANGFINDER_SUGGEST_LIMIT must be in [1,%d], got %d", MaxSuggestLimit, cfg.SuggestLimit))
	}

	if cfg.ClientQuotaBytes <= 0 || cfg.MaxClients <= 0 {
		panic(fmt.Sprintf("❌ FATAL: YANGFINDER_CLIENT_QUOTA_BYTES and YANGFINDER_MAX_CLIENTS must be positive, got %d and %d",
			cfg.ClientQuotaBytes, cfg.MaxClients))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
