package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/yangfinder/internal/domain"
	"github.com/MrSnakeDoc/yangfinder/internal/httpserver/deps"
	"github.com/MrSnakeDoc/yangfinder/internal/httpserver/mw"
	"github.com/MrSnakeDoc/yangfinder/internal/logger"
	"github.com/MrSnakeDoc/yangfinder/internal/search"
	"github.com/MrSnakeDoc/yangfinder/internal/userlists"
)

const maxBodyBytes = 4 << 10

type nameRequest struct {
	Name string `json:"name"`
}

type listResponse struct {
	Entries  []domain.Entry      `json:"entries"`
	Warnings []userlists.Warning `json:"warnings"`
}

type toggleResponse struct {
	Name     string              `json:"name"`
	Favorite bool                `json:"favorite"`
	Entries  []domain.Entry      `json:"entries"`
	Warnings []userlists.Warning `json:"warnings"`
}

// newTracker builds the caller's lists. Write warnings land in the
// returned collector so they can be attached to the response.
func newTracker(d deps.Deps, r *http.Request, snap *search.Snapshot) (*userlists.Tracker, *userlists.Collector) {
	keys := d.Keys
	if keys == (userlists.Keys{}) {
		keys = userlists.DefaultKeys
	}
	keys = keys.ForClient(mw.ClientIDFrom(r.Context()))

	warnings := &userlists.Collector{}
	cfg := userlists.Config{
		Notifier: warnings,
		Metrics:  d.Metrics,
		Logger:   d.Logger,
	}
	if d.TimeNow != nil {
		cfg.Now = d.TimeNow
	}

	var finder userlists.Finder = noCatalog{}
	if snap != nil {
		finder = snap.Catalog
	}
	return userlists.NewTracker(finder,
		userlists.NewRecentList(d.Store, keys.Recent, cfg),
		userlists.NewFavoriteList(d.Store, keys.Favorites, cfg)), warnings
}

// noCatalog resolves nothing, so writes before the catalog loads are
// lookup misses.
type noCatalog struct{}

func (noCatalog) FindByName(string) (domain.Module, bool) { return domain.Module{}, false }

func readName(w http.ResponseWriter, r *http.Request) (string, error) {
	var req nameRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return "", errors.New("body must be a JSON object with a name")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", errors.New("name is required")
	}
	return name, nil
}

// Recent answers GET /api/recent.
func Recent(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracker, warnings := newTracker(d, r, d.Lookup.Load())
		entries, err := tracker.Recent().List(r.Context())
		logReadError(d, err)
		writeJSON(w, http.StatusOK, listResponse{Entries: entries, Warnings: warnings.Warnings()})
	}
}

// RecordView answers POST /api/recent {"name": ...}.
func RecordView(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := readName(w, r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		tracker, warnings := newTracker(d, r, d.Lookup.Load())
		if err := tracker.TrackView(r.Context(), name); errors.Is(err, userlists.ErrLookupMiss) {
			writeError(w, http.StatusNotFound, "no module named "+name)
			return
		}

		entries, err := tracker.Recent().List(r.Context())
		logReadError(d, err)
		writeJSON(w, http.StatusOK, listResponse{Entries: entries, Warnings: warnings.Warnings()})
	}
}

// Favorites answers GET /api/favorites.
func Favorites(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracker, warnings := newTracker(d, r, d.Lookup.Load())
		entries, err := tracker.Favorites().List(r.Context())
		logReadError(d, err)
		writeJSON(w, http.StatusOK, listResponse{Entries: entries, Warnings: warnings.Warnings()})
	}
}

// ToggleFavorite answers POST /api/favorites/toggle {"name": ...}. A
// failed write leaves the list as it was and reports a warning.
func ToggleFavorite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := readName(w, r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		tracker, warnings := newTracker(d, r, d.Lookup.Load())
		on, err := tracker.ToggleFavorite(r.Context(), name)
		if errors.Is(err, userlists.ErrLookupMiss) {
			writeError(w, http.StatusNotFound, "no module named "+name)
			return
		}

		entries, err := tracker.Favorites().List(r.Context())
		logReadError(d, err)
		writeJSON(w, http.StatusOK, toggleResponse{
			Name:     name,
			Favorite: on,
			Entries:  entries,
			Warnings: warnings.Warnings(),
		})
	}
}

func logReadError(d deps.Deps, err error) {
	if err != nil {
		d.Logger.Warn("stored list unreadable, serving it empty", logger.Error(err))
	}
}
