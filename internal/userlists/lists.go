// Package userlists persists the recently viewed modules and the starred
// favorites through a kv.Store.
//
// Both lists hold domain.Entry snapshots serialized as a JSON array under
// one key each. Reads fail open (empty list); writes either fully persist
// or leave the stored value untouched and raise a Warning.
package userlists

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/yangfinder/internal/domain"
	"github.com/MrSnakeDoc/yangfinder/internal/kv"
	"github.com/MrSnakeDoc/yangfinder/internal/logger"
	"github.com/MrSnakeDoc/yangfinder/internal/metrics"
)

// MaxRecent bounds the recent list.
const MaxRecent = 10

// Keys are the store keys of the two lists.
type Keys struct {
	Recent    string
	Favorites string
}

// DefaultKeys are the keys used by the documentation hub.
var DefaultKeys = Keys{
	Recent:    "iosxe-recent-modules",
	Favorites: "iosxe-favorite-modules",
}

// ForClient namespaces the keys for one client.
func (k Keys) ForClient(clientID string) Keys {
	if clientID == "" {
		return k
	}
	return Keys{
		Recent:    clientID + ":" + k.Recent,
		Favorites: clientID + ":" + k.Favorites,
	}
}

// ReadError reports a stored value that could not be read or decoded.
// The list it came from is treated as empty.
type ReadError struct {
	Key string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("userlists: read %q: %v", e.Key, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Observer is told about the new contents of a list after every
// successful write, so the presentation can re-render it.
type Observer interface {
	ListChanged(list ListName, entries []domain.Entry)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(list ListName, entries []domain.Entry)

func (f ObserverFunc) ListChanged(list ListName, entries []domain.Entry) { f(list, entries) }

// Config carries the optional collaborators of a list.
type Config struct {
	Notifier Notifier
	Observer Observer
	Metrics  *metrics.Metrics
	Logger   logger.Logger
	Now      func() time.Time // defaults to time.Now
}

// list is the persistence shared by both lists.
type list struct {
	store kv.Store
	key   string
	name  ListName
	cfg   Config
}

func newList(store kv.Store, key string, name ListName, cfg Config) list {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return list{store: store, key: key, name: name, cfg: cfg}
}

// List returns the persisted entries. An absent key is an empty list with
// no error. An unreadable or malformed value is an empty list plus a
// *ReadError the caller may log; the returned entries are always usable.
func (l *list) List(ctx context.Context) ([]domain.Entry, error) {
	raw, ok, err := l.store.Get(ctx, l.key)
	if err != nil {
		l.cfg.Metrics.ListReadError(string(l.name))
		return []domain.Entry{}, &ReadError{Key: l.key, Err: err}
	}
	if !ok {
		return []domain.Entry{}, nil
	}

	var entries []domain.Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		l.cfg.Metrics.ListReadError(string(l.name))
		return []domain.Entry{}, &ReadError{Key: l.key, Err: err}
	}

	out := entries[:0]
	for _, e := range entries {
		if e.Name != "" {
			out = append(out, e)
		}
	}
	if out == nil {
		out = []domain.Entry{}
	}
	return out, nil
}

// load is List for mutations: a read error is logged and the mutation
// starts from an empty list.
func (l *list) load(ctx context.Context) []domain.Entry {
	entries, err := l.List(ctx)
	if err != nil {
		l.cfg.Logger.Warn("discarding unreadable list",
			logger.String("list", string(l.name)),
			logger.Error(err))
	}
	return entries
}

// save persists entries. On failure nothing is stored, the notifier gets a
// warning and the *kv.WriteError is returned.
func (l *list) save(ctx context.Context, entries []domain.Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal %s list: %w", l.name, err)
	}

	if err := l.store.Set(ctx, l.key, string(data)); err != nil {
		kind := kv.KindUnavailable
		if k, ok := kv.KindOf(err); ok {
			kind = k
		} else {
			err = &kv.WriteError{Key: l.key, Kind: kind, Err: err}
		}

		l.cfg.Metrics.ListWrite(string(l.name), kind.String())
		l.cfg.Logger.Warn("failed to save list",
			logger.String("list", string(l.name)),
			logger.String("kind", kind.String()),
			logger.Error(err))
		if l.cfg.Notifier != nil {
			l.cfg.Notifier.Warn(newWarning(l.name, kind))
		}
		return err
	}

	l.cfg.Metrics.ListWrite(string(l.name), "ok")
	if l.cfg.Observer != nil {
		l.cfg.Observer.ListChanged(l.name, cloneEntries(entries))
	}
	return nil
}

// RecentList is the bounded, most-recent-first history of viewed modules.
type RecentList struct {
	list
}

// NewRecentList returns the recent list stored under key.
func NewRecentList(store kv.Store, key string, cfg Config) *RecentList {
	return &RecentList{list: newList(store, key, ListRecent, cfg)}
}

// RecordView moves m to the front of the list with a fresh timestamp,
// dropping any older entry with the same name and anything past MaxRecent.
func (r *RecentList) RecordView(ctx context.Context, m domain.Module) error {
	if m.Name == "" {
		return errors.New("userlists: module name is required")
	}

	current := r.load(ctx)
	next := make([]domain.Entry, 0, MaxRecent)
	next = append(next, domain.Snapshot(m, r.cfg.Now()))
	for _, e := range current {
		if len(next) == MaxRecent {
			break
		}
		if e.Name != m.Name {
			next = append(next, e)
		}
	}

	return r.save(ctx, next)
}

// FavoriteList is the unbounded, toggle-membership bookmark list. Entries
// keep insertion order.
type FavoriteList struct {
	list
}

// NewFavoriteList returns the favorite list stored under key.
func NewFavoriteList(store kv.Store, key string, cfg Config) *FavoriteList {
	return &FavoriteList{list: newList(store, key, ListFavorites, cfg)}
}

// IsFavorite reports whether name is in the persisted list.
func (f *FavoriteList) IsFavorite(ctx context.Context, name string) bool {
	entries, _ := f.List(ctx)
	return indexOf(entries, name) >= 0
}

// Toggle removes m if present, otherwise appends a snapshot of it, and
// returns the new membership. On a write failure the persisted list is
// unchanged and the previous membership is returned with the error.
func (f *FavoriteList) Toggle(ctx context.Context, m domain.Module) (bool, error) {
	if m.Name == "" {
		return false, errors.New("userlists: module name is required")
	}

	current := f.load(ctx)
	i := indexOf(current, m.Name)
	was := i >= 0

	var next []domain.Entry
	if was {
		next = make([]domain.Entry, 0, len(current)-1)
		next = append(next, current[:i]...)
		next = append(next, current[i+1:]...)
	} else {
		next = make([]domain.Entry, 0, len(current)+1)
		next = append(next, current...)
		next = append(next, domain.Snapshot(m, f.cfg.Now()))
	}

	if err := f.save(ctx, next); err != nil {
		return was, err
	}
	return !was, nil
}

func indexOf(entries []domain.Entry, name string) int {
	for i, e := range entries {
		if e.Name == name {
			return i
		}
	}
	return -1
}

func cloneEntries(entries []domain.Entry) []domain.Entry {
	out := make([]domain.Entry, len(entries))
	copy(out, entries)
	return out
}
