package userlists

import (
	"context"
	"errors"
	"testing"

	"github.com/MrSnakeDoc/yangfinder/internal/domain"
	"github.com/MrSnakeDoc/yangfinder/internal/kv"
)

type mapFinder map[string]domain.Module

func (f mapFinder) FindByName(name string) (domain.Module, bool) {
	m, ok := f[name]
	return m, ok
}

func newTestTracker(store kv.Store) *Tracker {
	finder := mapFinder{"ietf-interfaces": module("ietf-interfaces")}
	return NewTracker(finder,
		NewRecentList(store, DefaultKeys.Recent, Config{}),
		NewFavoriteList(store, DefaultKeys.Favorites, Config{}),
	)
}

func TestTrackerResolvesNames(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(kv.NewMemory(0))

	if err := tr.TrackView(ctx, "ietf-interfaces"); err != nil {
		t.Fatalf("TrackView() error = %v", err)
	}
	state, err := tr.ToggleFavorite(ctx, "ietf-interfaces")
	if err != nil || !state {
		t.Fatalf("ToggleFavorite() = %v, %v", state, err)
	}

	recent, _ := tr.Recent().List(ctx)
	if len(recent) != 1 || recent[0].Type != domain.TypeOperational {
		t.Errorf("recent = %+v", recent)
	}
	if !tr.Favorites().IsFavorite(ctx, "ietf-interfaces") {
		t.Error("favorite not persisted")
	}
}

func TestTrackerLookupMissIsNoop(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory(0)
	tr := newTestTracker(store)

	if err := tr.TrackView(ctx, "gone"); !errors.Is(err, ErrLookupMiss) {
		t.Errorf("TrackView(gone) = %v, want ErrLookupMiss", err)
	}
	state, err := tr.ToggleFavorite(ctx, "gone")
	if !errors.Is(err, ErrLookupMiss) || state {
		t.Errorf("ToggleFavorite(gone) = %v, %v", state, err)
	}

	if store.Used() != 0 {
		t.Error("lookup misses should not write anything")
	}
}
