package index

import (
	"time"

	"github.com/MrSnakeDoc/yangfinder/internal/domain"
)

// Catalog is the read-only list of modules loaded from the manifest.
// It is built once at boot and never mutated, so it needs no locking.
type Catalog struct {
	modules  []domain.Module
	byName   map[string]int // Name -> position in modules
	loadedAt time.Time
}

// NewCatalog builds a catalog in load order. On duplicate names the first
// occurrence wins.
func NewCatalog(modules []domain.Module) *Catalog {
	c := &Catalog{
		modules:  make([]domain.Module, 0, len(modules)),
		byName:   make(map[string]int, len(modules)),
		loadedAt: time.Now(),
	}
	for _, m := range modules {
		if m.Name == "" {
			continue
		}
		if _, dup := c.byName[m.Name]; dup {
			continue
		}
		c.byName[m.Name] = len(c.modules)
		c.modules = append(c.modules, m)
	}
	return c
}

// All returns the modules in load order. The slice is a copy.
func (c *Catalog) All() []domain.Module {
	out := make([]domain.Module, len(c.modules))
	copy(out, c.modules)
	return out
}

// FindByName resolves a module name back to its live descriptor.
func (c *Catalog) FindByName(name string) (domain.Module, bool) {
	i, ok := c.byName[name]
	if !ok {
		return domain.Module{}, false
	}
	return c.modules[i], true
}

// Len returns the number of modules.
func (c *Catalog) Len() int { return len(c.modules) }

// Empty reports whether search is unavailable.
func (c *Catalog) Empty() bool { return len(c.modules) == 0 }

// LoadedAt returns when the catalog was built.
func (c *Catalog) LoadedAt() time.Time { return c.loadedAt }

// CountByType returns the number of modules per type.
func (c *Catalog) CountByType() map[domain.ModuleType]int {
	counts := make(map[domain.ModuleType]int)
	for _, m := range c.modules {
		counts[m.Type]++
	}
	return counts
}
