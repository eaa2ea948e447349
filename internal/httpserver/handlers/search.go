package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/yangfinder/internal/domain"
	"github.com/MrSnakeDoc/yangfinder/internal/httpserver/deps"
	"github.com/MrSnakeDoc/yangfinder/internal/index"
	"github.com/MrSnakeDoc/yangfinder/internal/logger"
	"github.com/MrSnakeDoc/yangfinder/internal/search"
)

const errUnavailable = "search unavailable: the module catalog is not loaded"

type searchResponse struct {
	Query     string          `json:"query"`
	Phase     string          `json:"phase"`
	MinLength int             `json:"minLength,omitempty"`
	Items     []domain.Module `json:"items"`
	Total     int             `json:"total"`
	Truncated bool            `json:"truncated"`
}

// Search answers GET /api/search?q=&type=a,b&prefix=&tree=&spec=.
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query := strings.TrimSpace(q.Get("q"))

		filters, err := parseFilters(q.Get("type"), q.Get("prefix"), q.Get("tree"), q.Get("spec"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		resp := searchResponse{Query: query, Items: []domain.Module{}}
		phase := search.Classify(query)
		resp.Phase = phase.String()
		if phase != search.PhaseSearch {
			if phase == search.PhaseTypeMore {
				resp.MinLength = search.MinQueryLength
			}
			writeJSON(w, http.StatusOK, resp)
			return
		}

		snap := d.Lookup.Load()
		if snap == nil {
			writeError(w, http.StatusServiceUnavailable, errUnavailable)
			return
		}

		res, err := snap.Searcher.Search(query, filters)
		switch {
		case errors.Is(err, search.ErrUnavailable):
			writeError(w, http.StatusServiceUnavailable, errUnavailable)
			return
		case err != nil:
			d.Logger.Error("search failed", logger.String("query", query), logger.Error(err))
			writeError(w, http.StatusInternalServerError, "search failed")
			return
		}

		resp.Items, resp.Total, resp.Truncated = res.Items, res.Total, res.Truncated
		writeJSON(w, http.StatusOK, resp)
	}
}

type suggestResponse struct {
	Query       string             `json:"query"`
	Suggestions []index.Suggestion `json:"suggestions"`
}

// Suggest answers GET /api/suggest?q=.
func Suggest(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		resp := suggestResponse{Query: query, Suggestions: []index.Suggestion{}}

		snap := d.Lookup.Load()
		if snap == nil {
			writeError(w, http.StatusServiceUnavailable, errUnavailable)
			return
		}

		if s := snap.Autocomplete.Suggest(query); len(s) > 0 {
			resp.Suggestions = s
		}
		d.Metrics.Suggest()
		writeJSON(w, http.StatusOK, resp)
	}
}

type moduleResponse struct {
	domain.Module
	Favorite bool `json:"favorite"`
}

// Module answers GET /api/modules/{name} with the live descriptor and the
// caller's favorite flag.
func Module(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		snap := d.Lookup.Load()
		if snap == nil {
			writeError(w, http.StatusServiceUnavailable, errUnavailable)
			return
		}
		m, ok := snap.Catalog.FindByName(name)
		if !ok {
			writeError(w, http.StatusNotFound, "no module named "+name)
			return
		}

		tracker, _ := newTracker(d, r, snap)
		writeJSON(w, http.StatusOK, moduleResponse{
			Module:   m,
			Favorite: tracker.Favorites().IsFavorite(r.Context(), m.Name),
		})
	}
}

func parseFilters(types, prefix, tree, spec string) (domain.FilterSet, error) {
	f := domain.NewFilterSet()
	f.SetTypes(domain.ParseTypes(types)...)

	p, err := domain.ParsePrefix(prefix)
	if err != nil {
		return f, err
	}
	if f.Tree, err = domain.ParseAvailability(tree); err != nil {
		return f, err
	}
	if f.Spec, err = domain.ParseAvailability(spec); err != nil {
		return f, err
	}
	f.Prefix = p
	return f, nil
}
