package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	// None of these may panic.
	m.ObserveSearch("ok", time.Millisecond, 3)
	m.CacheHit()
	m.CacheMiss()
	m.Suggest()
	m.SetCatalogSize(10)
	m.ListWrite("recent", "ok")
	m.ListReadError("recent")

	if m.Registry() != nil {
		t.Error("nil Metrics should have no registry")
	}
}

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveSearch("ok", time.Millisecond, 3)
	m.ObserveSearch("ok", time.Millisecond, 0)
	m.CacheHit()
	m.ListWrite("favorites", "quota-exceeded")
	m.SetCatalogSize(768)

	if got := testutil.ToFloat64(m.SearchesTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("searches ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.StoreWritesTotal.WithLabelValues("favorites", "quota-exceeded")); got != 1 {
		t.Errorf("quota failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CatalogModules); got != 768 {
		t.Errorf("catalog modules = %v, want 768", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.Suggest()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "yangfinder_suggest_requests_total 1") {
		t.Errorf("metrics output missing suggest counter:\n%s", rec.Body.String())
	}
}
