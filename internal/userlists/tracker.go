package userlists

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/yangfinder/internal/domain"
)

// ErrLookupMiss is returned when a module name no longer resolves in the
// catalog. The requested action is a no-op.
var ErrLookupMiss = errors.New("module not found in catalog")

// Finder resolves a module name to its live descriptor.
type Finder interface {
	FindByName(name string) (domain.Module, bool)
}

// Tracker drives both lists from contexts that only know a module name,
// such as a result card or a list entry.
type Tracker struct {
	finder    Finder
	recent    *RecentList
	favorites *FavoriteList
}

// NewTracker wires both lists to finder.
func NewTracker(finder Finder, recent *RecentList, favorites *FavoriteList) *Tracker {
	return &Tracker{finder: finder, recent: recent, favorites: favorites}
}

// Recent returns the recent list.
func (t *Tracker) Recent() *RecentList { return t.recent }

// Favorites returns the favorite list.
func (t *Tracker) Favorites() *FavoriteList { return t.favorites }

// TrackView records a view of the named module.
func (t *Tracker) TrackView(ctx context.Context, name string) error {
	m, ok := t.finder.FindByName(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrLookupMiss, name)
	}
	return t.recent.RecordView(ctx, m)
}

// ToggleFavorite toggles the named module and returns its new membership.
func (t *Tracker) ToggleFavorite(ctx context.Context, name string) (bool, error) {
	m, ok := t.finder.FindByName(name)
	if !ok {
		return t.favorites.IsFavorite(ctx, name), fmt.Errorf("%w: %s", ErrLookupMiss, name)
	}
	return t.favorites.Toggle(ctx, m)
}
