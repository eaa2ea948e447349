package config

import (
	"reflect"
	"testing"
	"time"
)

func expectPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected a panic")
		}
	}()
	fn()
}

func TestRequireEnv(t *testing.T) {
	t.Setenv("YANGFINDER_TEST_VAR", "value")
	if got := requireEnv("YANGFINDER_TEST_VAR"); got != "value" {
		t.Errorf("requireEnv() = %q, want value", got)
	}

	expectPanic(t, func() { requireEnv("YANGFINDER_TEST_VAR_MISSING") })
}

func TestGetters(t *testing.T) {
	t.Setenv("YF_DURATION", "5s")
	t.Setenv("YF_DURATION_BAD", "soon")
	t.Setenv("YF_BOOL", "false")
	t.Setenv("YF_BOOL_BAD", "maybe")
	t.Setenv("YF_INT", "42")
	t.Setenv("YF_INT_BAD", "many")
	t.Setenv("YF_FLOAT", "0.45")
	t.Setenv("YF_FLOAT_BAD", "high")

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"duration", mustDuration("YF_DURATION", time.Second), 5 * time.Second},
		{"invalid duration uses default", mustDuration("YF_DURATION_BAD", 10*time.Second), 10 * time.Second},
		{"missing duration uses default", mustDuration("YF_DURATION_MISSING", 15*time.Second), 15 * time.Second},
		{"bool", mustBool("YF_BOOL", true), false},
		{"invalid bool uses default", mustBool("YF_BOOL_BAD", true), true},
		{"missing bool uses default", mustBool("YF_BOOL_MISSING", false), false},
		{"int", getenvInt("YF_INT", 1), 42},
		{"invalid int uses default", getenvInt("YF_INT_BAD", 7), 7},
		{"float", getenvFloat("YF_FLOAT", 0.3), 0.45},
		{"invalid float uses default", getenvFloat("YF_FLOAT_BAD", 0.3), 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"10.0.0.0/8", []string{"10.0.0.0/8"}},
		{` "10.0.0.0/8" , '192.168.1.4',, `, []string{"10.0.0.0/8", "192.168.1.4"}},
	}
	for _, tt := range tests {
		if got := splitAndTrim(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitAndTrim(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ListenPort != ":8080" || cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("server defaults = %q %v", cfg.ListenPort, cfg.ShutdownTimeout)
	}
	if cfg.Manifest != "search-index.json" || cfg.ManifestTimeout != 10*time.Second {
		t.Errorf("manifest defaults = %q %v", cfg.Manifest, cfg.ManifestTimeout)
	}
	if cfg.SearchEngine != "bleve" || cfg.SearchThreshold != 0.3 || cfg.Debounce != 300*time.Millisecond {
		t.Errorf("search defaults = %q %v %v", cfg.SearchEngine, cfg.SearchThreshold, cfg.Debounce)
	}
	if cfg.ResultLimit != 50 || cfg.SuggestLimit != 8 || cfg.CacheSize != 256 {
		t.Errorf("limits = %d %d %d", cfg.ResultLimit, cfg.SuggestLimit, cfg.CacheSize)
	}
	if cfg.Store != StoreMemory || cfg.StoreQuota != 5<<20 {
		t.Errorf("store defaults = %q %d", cfg.Store, cfg.StoreQuota)
	}
	if cfg.ClientQuotaBytes != 64<<10 || cfg.MaxClients != 4096 || cfg.ClientTTL != 90*24*time.Hour {
		t.Errorf("client defaults = %d %d %v", cfg.ClientQuotaBytes, cfg.MaxClients, cfg.ClientTTL)
	}
	if cfg.TrustProxy || cfg.AllowedCIDRS != nil {
		t.Errorf("access defaults = %v %v", cfg.TrustProxy, cfg.AllowedCIDRS)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("YANGFINDER_SEARCH_ENGINE", "EDIT")
	t.Setenv("YANGFINDER_STORE", "sqlite")
	t.Setenv("YANGFINDER_SQLITE_PATH", "/tmp/yf.db")
	t.Setenv("YANGFINDER_ALLOWED_CIDRS", "127.0.0.1/32, 10.0.0.0/8")

	cfg := Load()
	if cfg.SearchEngine != "edit" {
		t.Errorf("SearchEngine = %q, want edit", cfg.SearchEngine)
	}
	if cfg.Store != StoreSQLite || cfg.SQLitePath != "/tmp/yf.db" {
		t.Errorf("store = %q %q", cfg.Store, cfg.SQLitePath)
	}
	if want := []string{"127.0.0.1/32", "10.0.0.0/8"}; !reflect.DeepEqual(cfg.AllowedCIDRS, want) {
		t.Errorf("AllowedCIDRS = %v, want %v", cfg.AllowedCIDRS, want)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown store", map[string]string{"YANGFINDER_STORE": "etcd"}},
		{"redis without address", map[string]string{"YANGFINDER_STORE": "redis"}},
		{"redis password required", map[string]string{
			"YANGFINDER_STORE":                   "redis",
			"YANGFINDER_REDIS_ADDR":              "localhost:6379",
			"YANGFINDER_REDIS_PASSWORD_REQUIRED": "true",
		}},
		{"threshold out of range", map[string]string{"YANGFINDER_SEARCH_THRESHOLD": "1.5"}},
		{"unknown engine", map[string]string{"YANGFINDER_SEARCH_ENGINE": "lucene"}},
		{"result limit above 50", map[string]string{"YANGFINDER_RESULT_LIMIT": "51"}},
		{"result limit zero", map[string]string{"YANGFINDER_RESULT_LIMIT": "0"}},
		{"suggest limit above 8", map[string]string{"YANGFINDER_SUGGEST_LIMIT": "20"}},
		{"suggest limit negative", map[string]string{"YANGFINDER_SUGGEST_LIMIT": "-1"}},
		{"client quota zero", map[string]string{"YANGFINDER_CLIENT_QUOTA_BYTES": "0"}},
		{"max clients negative", map[string]string{"YANGFINDER_MAX_CLIENTS": "-5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			expectPanic(t, func() { Load() })
		})
	}
}

func TestLoadRedis(t *testing.T) {
	t.Setenv("YANGFINDER_STORE", "redis")
	t.Setenv("YANGFINDER_REDIS_ADDR", "localhost:6379")
	t.Setenv("YANGFINDER_REDIS_DB", "2")

	cfg := Load()
	if cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 2 {
		t.Errorf("redis = %q db %d", cfg.RedisAddr, cfg.RedisDB)
	}
}
