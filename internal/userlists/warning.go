package userlists

import (
	"encoding/json"
	"sync"

	"github.com/MrSnakeDoc/yangfinder/internal/kv"
)

// ListName identifies one of the two persisted lists.
type ListName string

const (
	ListRecent    ListName = "recent"
	ListFavorites ListName = "favorites"
)

// Warning is raised when a list could not be persisted.
type Warning struct {
	Kind    kv.Kind
	List    ListName
	Message string
}

// MarshalJSON writes Kind by its wire name
// ("quota-exceeded" | "store-unavailable").
func (w Warning) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    string   `json:"kind"`
		List    ListName `json:"list"`
		Message string   `json:"message"`
	}{w.Kind.String(), w.List, w.Message})
}

// Notifier renders warnings to the user. A nil Notifier drops them.
type Notifier interface {
	Warn(w Warning)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(w Warning)

func (f NotifierFunc) Warn(w Warning) { f(w) }

// Collector is a Notifier that keeps warnings for later inspection, used
// to attach them to an HTTP response.
type Collector struct {
	mu       sync.Mutex
	warnings []Warning
}

func (c *Collector) Warn(w Warning) {
	c.mu.Lock()
	c.warnings = append(c.warnings, w)
	c.mu.Unlock()
}

// Warnings returns the collected warnings.
func (c *Collector) Warnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

func newWarning(list ListName, kind kv.Kind) Warning {
	return Warning{Kind: kind, List: list, Message: warningMessage(list, kind)}
}

func warningMessage(list ListName, kind kv.Kind) string {
	what := "recent modules"
	if list == ListFavorites {
		what = "favorites"
	}
	if kind == kv.KindQuotaExceeded {
		return "Cannot save " + what + " - storage is full"
	}
	return "Cannot save " + what + " (storage may be disabled)"
}
