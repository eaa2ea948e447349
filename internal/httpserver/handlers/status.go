package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/yangfinder/internal/httpserver/deps"
)

// storeProbeKey is read, never written, to check the store answers.
const storeProbeKey = "yangfinder-status-probe"

type componentStatus struct {
	OK       bool           `json:"ok"`
	Modules  *int           `json:"modules,omitempty"`
	ByType   map[string]int `json:"by_type,omitempty"`
	LoadedAt string         `json:"loaded_at,omitempty"`
	Backend  string         `json:"backend,omitempty"`
	Impact   string         `json:"impact,omitempty"`
	Error    string         `json:"error,omitempty"`
}

type statusResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Status reports the catalog and store state. Mode is "ok", "degraded"
// (store down, lists not saved) or "critical" (no catalog, search off).
func Status(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"catalog": catalogStatus(d),
			"store":   storeStatus(r.Context(), d),
		}
		writeJSON(w, http.StatusOK, statusResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func catalogStatus(d deps.Deps) componentStatus {
	snap := d.Lookup.Load()
	if snap == nil {
		return componentStatus{OK: false, Impact: "search-disabled", Error: "not loaded"}
	}

	n := snap.Catalog.Len()
	byType := make(map[string]int)
	for t, c := range snap.Catalog.CountByType() {
		byType[string(t)] = c
	}
	st := componentStatus{
		OK:       n > 0,
		Modules:  &n,
		ByType:   byType,
		LoadedAt: snap.Catalog.LoadedAt().Format(time.RFC3339),
	}
	if n == 0 {
		st.Impact = "search-disabled"
		st.Error = "manifest empty or unreadable"
	}
	return st
}

func storeStatus(ctx context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{OK: false, Backend: d.StoreKind, Impact: "lists-disabled", Error: "not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if _, _, err := d.Store.Get(ctx, storeProbeKey); err != nil {
		return componentStatus{OK: false, Backend: d.StoreKind, Impact: "lists-not-saved", Error: err.Error()}
	}
	return componentStatus{OK: true, Backend: d.StoreKind}
}

func determineMode(components map[string]componentStatus) string {
	if c, ok := components["catalog"]; ok && !c.OK {
		return "critical"
	}
	if s, ok := components["store"]; ok && !s.OK {
		return "degraded"
	}
	return "ok"
}
