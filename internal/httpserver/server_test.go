package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/yangfinder/internal/domain"
	"github.com/MrSnakeDoc/yangfinder/internal/fuzzy"
	"github.com/MrSnakeDoc/yangfinder/internal/httpserver/deps"
	"github.com/MrSnakeDoc/yangfinder/internal/index"
	"github.com/MrSnakeDoc/yangfinder/internal/kv"
	"github.com/MrSnakeDoc/yangfinder/internal/logger"
	"github.com/MrSnakeDoc/yangfinder/internal/metrics"
	"github.com/MrSnakeDoc/yangfinder/internal/search"
)

func testModules() []domain.Module {
	return []domain.Module{
		{
			Name:            "ietf-interfaces",
			Type:            domain.TypeIETF,
			DisplayCategory: "IETF Standard",
			Description:     "Interface management",
			Keywords:        []string{"interface", "link"},
			YangTreeURL:     "yang-trees/ietf-interfaces.html",
		},
		{
			Name:            "cisco-ios-xe-native",
			Type:            domain.TypeConfig,
			DisplayCategory: "Configuration",
			Description:     "Native device configuration",
			Keywords:        []string{"config"},
			SwaggerURL:      "swagger-native/?url=api/native.json",
		},
	}
}

func testDeps(t *testing.T, loaded bool) deps.Deps {
	t.Helper()

	d := deps.Deps{
		Logger:          logger.NewNop(),
		StartTime:       time.Now(),
		Version:         "test",
		Lookup:          &search.Holder{},
		Store:           kv.NewMemory(0),
		StoreKind:       "memory",
		Metrics:         metrics.New(),
		RateLimitBurst:  100,
		RateLimitPerMin: 100,
	}
	if loaded {
		snap, err := search.Build(index.NewCatalog(testModules()), search.BuildOptions{
			Engine: fuzzy.KindEdit,
			Search: search.Options{Metrics: d.Metrics},
		})
		if err != nil {
			t.Fatalf("search.Build() error = %v", err)
		}
		t.Cleanup(func() { _ = snap.Close() })
		d.Lookup.Store(snap)
	}
	return d
}

func do(t *testing.T, h http.Handler, method, target, clientID, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if clientID != "" {
		req.Header.Set("X-Client-ID", clientID)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: invalid JSON %q: %v", method, target, rec.Body.String(), err)
		}
	}
	return rec, out
}

func names(t *testing.T, v any) []string {
	t.Helper()
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, item := range list {
		m, _ := item.(map[string]any)
		name, _ := m["name"].(string)
		out = append(out, name)
	}
	return out
}

func TestHealthAndReadiness(t *testing.T) {
	d := testDeps(t, false)
	h := NewRouter(d.Logger, d)

	if rec, body := do(t, h, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("GET /healthz = %d %v", rec.Code, body)
	}
	if rec, _ := do(t, h, http.MethodGet, "/readyz", "", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /readyz before load = %d, want 503", rec.Code)
	}

	snap, err := search.Build(index.NewCatalog(testModules()), search.BuildOptions{Engine: fuzzy.KindEdit})
	if err != nil {
		t.Fatalf("search.Build() error = %v", err)
	}
	defer snap.Close()
	d.Lookup.Store(snap)

	rec, body := do(t, h, http.MethodGet, "/readyz", "", "")
	if rec.Code != http.StatusOK || body["modules"] != float64(2) {
		t.Errorf("GET /readyz after load = %d %v", rec.Code, body)
	}
}

func TestSearchEndpoint(t *testing.T) {
	h := NewRouter(logger.NewNop(), testDeps(t, true))

	tests := []struct {
		name      string
		target    string
		wantCode  int
		wantPhase string
		wantItems []string
	}{
		{"fuzzy match", "/api/search?q=interface", http.StatusOK, "search", []string{"ietf-interfaces"}},
		{"filtered out", "/api/search?q=interface&type=config", http.StatusOK, "search", []string{}},
		{"has tree", "/api/search?q=interface&tree=yes&prefix=ietf", http.StatusOK, "search", []string{"ietf-interfaces"}},
		{"one character", "/api/search?q=i", http.StatusOK, "type-more", []string{}},
		{"empty", "/api/search", http.StatusOK, "empty", []string{}},
		{"bad prefix", "/api/search?q=interface&prefix=juniper", http.StatusBadRequest, "", nil},
		{"bad tree", "/api/search?q=interface&tree=maybe", http.StatusBadRequest, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, h, http.MethodGet, tt.target, "", "")
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantItems == nil {
				return
			}
			if body["phase"] != tt.wantPhase {
				t.Errorf("phase = %v, want %s", body["phase"], tt.wantPhase)
			}
			got := names(t, body["items"])
			if strings.Join(got, ",") != strings.Join(tt.wantItems, ",") {
				t.Errorf("items = %v, want %v", got, tt.wantItems)
			}
		})
	}
}

func TestSearchBeforeCatalogLoads(t *testing.T) {
	h := NewRouter(logger.NewNop(), testDeps(t, false))

	for _, target := range []string{"/api/search?q=interface", "/api/suggest?q=inter", "/api/modules/ietf-interfaces"} {
		if rec, _ := do(t, h, http.MethodGet, target, "", ""); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s = %d, want 503", target, rec.Code)
		}
	}
}

func TestSuggestEndpoint(t *testing.T) {
	h := NewRouter(logger.NewNop(), testDeps(t, true))

	_, body := do(t, h, http.MethodGet, "/api/suggest?q=inter", "", "")
	list, _ := body["suggestions"].([]any)
	if len(list) != 2 {
		t.Fatalf("suggestions = %v, want 2 entries", body["suggestions"])
	}
	first, _ := list[0].(map[string]any)
	if first["term"] != "ietf-interfaces" || first["match"] != "inter" || first["before"] != "ietf-" {
		t.Errorf("first suggestion = %v", first)
	}

	_, body = do(t, h, http.MethodGet, "/api/suggest?q=i", "", "")
	if list, _ := body["suggestions"].([]any); len(list) != 0 {
		t.Errorf("short query suggestions = %v, want none", list)
	}
}

func TestModuleEndpoint(t *testing.T) {
	h := NewRouter(logger.NewNop(), testDeps(t, true))

	rec, body := do(t, h, http.MethodGet, "/api/modules/ietf-interfaces", "alice", "")
	if rec.Code != http.StatusOK || body["name"] != "ietf-interfaces" || body["favorite"] != false {
		t.Errorf("GET module = %d %v", rec.Code, body)
	}

	do(t, h, http.MethodPost, "/api/favorites/toggle", "alice", `{"name":"ietf-interfaces"}`)
	if _, body := do(t, h, http.MethodGet, "/api/modules/ietf-interfaces", "alice", ""); body["favorite"] != true {
		t.Errorf("favorite after toggle = %v", body["favorite"])
	}

	if rec, _ := do(t, h, http.MethodGet, "/api/modules/nope", "alice", ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET unknown module = %d, want 404", rec.Code)
	}
}

func TestRecentEndpoints(t *testing.T) {
	h := NewRouter(logger.NewNop(), testDeps(t, true))

	for _, name := range []string{"ietf-interfaces", "cisco-ios-xe-native", "ietf-interfaces"} {
		rec, _ := do(t, h, http.MethodPost, "/api/recent", "alice", `{"name":"`+name+`"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("POST /api/recent %s = %d", name, rec.Code)
		}
	}

	_, body := do(t, h, http.MethodGet, "/api/recent", "alice", "")
	if got := names(t, body["entries"]); strings.Join(got, ",") != "ietf-interfaces,cisco-ios-xe-native" {
		t.Errorf("alice recent = %v", got)
	}

	_, body = do(t, h, http.MethodGet, "/api/recent", "bob", "")
	if got := names(t, body["entries"]); len(got) != 0 {
		t.Errorf("bob recent = %v, want empty", got)
	}

	if rec, _ := do(t, h, http.MethodPost, "/api/recent", "alice", `{"name":"gone"}`); rec.Code != http.StatusNotFound {
		t.Errorf("POST unknown = %d, want 404", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodPost, "/api/recent", "alice", `not json`); rec.Code != http.StatusBadRequest {
		t.Errorf("POST bad body = %d, want 400", rec.Code)
	}
}

func TestFavoriteToggleIsInvolution(t *testing.T) {
	h := NewRouter(logger.NewNop(), testDeps(t, true))

	_, body := do(t, h, http.MethodPost, "/api/favorites/toggle", "alice", `{"name":"cisco-ios-xe-native"}`)
	if body["favorite"] != true || len(names(t, body["entries"])) != 1 {
		t.Errorf("first toggle = %v", body)
	}

	_, body = do(t, h, http.MethodPost, "/api/favorites/toggle", "alice", `{"name":"cisco-ios-xe-native"}`)
	if body["favorite"] != false || len(names(t, body["entries"])) != 0 {
		t.Errorf("second toggle = %v", body)
	}
}

func TestStoreWarnings(t *testing.T) {
	d := testDeps(t, true)
	d.Store = kv.NewMemory(16)
	h := NewRouter(d.Logger, d)

	rec, body := do(t, h, http.MethodPost, "/api/recent", "alice", `{"name":"ietf-interfaces"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/recent = %d", rec.Code)
	}
	warnings, _ := body["warnings"].([]any)
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want 1", body["warnings"])
	}
	w, _ := warnings[0].(map[string]any)
	if w["kind"] != "quota-exceeded" || w["list"] != "recent" {
		t.Errorf("warning = %v", w)
	}
	if got := names(t, body["entries"]); len(got) != 0 {
		t.Errorf("entries after failed write = %v, want empty", got)
	}
}

func TestClientsCannotExhaustEachOthersWrites(t *testing.T) {
	const quota = 512

	tests := []struct {
		name        string
		maxClients  int
		victimFirst bool
	}{
		{name: "victim writes after the flood", maxClients: 8},
		{name: "victim history survives the flood", maxClients: 64, victimFirst: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testDeps(t, true)
			d.Store = kv.NewMemory(quota * tt.maxClients)
			d.ClientQuotaBytes = quota
			d.MaxClients = tt.maxClients
			d.RateLimitBurst = 1000
			h := NewRouter(d.Logger, d)

			if tt.victimFirst {
				_, body := do(t, h, http.MethodPost, "/api/recent", "victim", `{"name":"cisco-ios-xe-native"}`)
				if warnings, _ := body["warnings"].([]any); len(warnings) != 0 {
					t.Fatalf("victim first write warnings = %v", warnings)
				}
			}

			// Every other client writes until its own budget runs out.
			var lastWarnings []any
			for i := range 40 {
				id := fmt.Sprintf("mallory-%02d", i)
				for _, m := range testModules() {
					do(t, h, http.MethodPost, "/api/favorites/toggle", id, `{"name":"`+m.Name+`"}`)
				}
				for _, m := range testModules() {
					_, body := do(t, h, http.MethodPost, "/api/recent", id, `{"name":"`+m.Name+`"}`)
					lastWarnings, _ = body["warnings"].([]any)
				}
			}
			if len(lastWarnings) != 1 {
				t.Fatalf("flooding client warnings = %v, want its own quota warning", lastWarnings)
			}
			if w, _ := lastWarnings[0].(map[string]any); w["kind"] != "quota-exceeded" {
				t.Errorf("flooding client warning = %v", w)
			}

			rec, body := do(t, h, http.MethodPost, "/api/recent", "victim", `{"name":"ietf-interfaces"}`)
			if rec.Code != http.StatusOK {
				t.Fatalf("victim POST /api/recent = %d", rec.Code)
			}
			if warnings, _ := body["warnings"].([]any); len(warnings) != 0 {
				t.Errorf("victim warnings = %v, want none", warnings)
			}
			want := "ietf-interfaces"
			if tt.victimFirst {
				want += ",cisco-ios-xe-native"
			}
			if got := names(t, body["entries"]); strings.Join(got, ",") != want {
				t.Errorf("victim recent = %v, want %s", got, want)
			}
		})
	}
}

func TestClientIDMinted(t *testing.T) {
	h := NewRouter(logger.NewNop(), testDeps(t, true))

	rec, _ := do(t, h, http.MethodGet, "/api/recent", "", "")
	id := rec.Header().Get("X-Client-ID")
	if id == "" {
		t.Fatal("no client id minted")
	}
	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "yf_client" && c.Value == id {
			found = true
		}
	}
	if !found {
		t.Error("minted client id not set as yf_client cookie")
	}

	rec, _ = do(t, h, http.MethodGet, "/api/recent", "alice", "")
	if got := rec.Header().Get("X-Client-ID"); got != "alice" {
		t.Errorf("X-Client-ID = %q, want alice", got)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("cookie set for a caller that sent an id")
	}
}

func TestMetricsAndStatusRestricted(t *testing.T) {
	d := testDeps(t, true)
	d.AllowedCIDRS = []string{"10.0.0.0/8"}
	h := NewRouter(d.Logger, d)

	for _, target := range []string{"/metrics", "/readyz", "/api/status"} {
		if rec, _ := do(t, h, http.MethodGet, target, "", ""); rec.Code != http.StatusForbidden {
			t.Errorf("GET %s from outside = %d, want 403", target, rec.Code)
		}
	}

	d.AllowedCIDRS = nil
	h = NewRouter(d.Logger, d)

	do(t, h, http.MethodGet, "/api/search?q=interface", "", "")
	rec, _ := do(t, h, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "yangfinder_searches_total") {
		t.Errorf("GET /metrics = %d", rec.Code)
	}

	rec, body := do(t, h, http.MethodGet, "/api/status", "", "")
	if rec.Code != http.StatusOK || body["mode"] != "ok" {
		t.Errorf("GET /api/status = %d %v", rec.Code, body)
	}
}

func TestWriteRateLimit(t *testing.T) {
	d := testDeps(t, true)
	d.RateLimitBurst = 1
	d.RateLimitPerMin = 1
	h := NewRouter(d.Logger, d)

	if rec, _ := do(t, h, http.MethodPost, "/api/recent", "alice", `{"name":"ietf-interfaces"}`); rec.Code != http.StatusOK {
		t.Fatalf("first POST = %d", rec.Code)
	}
	rec, _ := do(t, h, http.MethodPost, "/api/recent", "alice", `{"name":"ietf-interfaces"}`)
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") == "" {
		t.Errorf("second POST = %d, want 429 with Retry-After", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodGet, "/api/recent", "alice", ""); rec.Code != http.StatusOK {
		t.Errorf("reads must not be limited, GET = %d", rec.Code)
	}
}
