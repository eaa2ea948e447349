package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/yangfinder/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready   bool `json:"ready"`
	Modules int  `json:"modules"`
}

// Readyz is ready once the catalog load finished, even if it came back
// empty: search then reports itself unavailable instead of failing.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := d.Lookup.Load()
		if snap == nil {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true, Modules: snap.Catalog.Len()})
	}
}
