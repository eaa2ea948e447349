package manifest

import (
	"strings"

	"github.com/MrSnakeDoc/yangfinder/internal/domain"
)

// Stats summarizes a mapping pass.
type Stats struct {
	Total      int // entries in the document
	Mapped     int
	Skipped    int // entries without a name
	Duplicates int // later entries sharing a name, dropped
	Unknown    int // entries whose type is not a known module type
}

// Mapper converts manifest entries to domain.Module values.
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapModules converts doc into modules in document order. Unnamed entries
// are skipped and the first entry wins on duplicate names (the generator
// emits the swagger entry before the tree-only one).
func (m *Mapper) MapModules(doc Document) ([]domain.Module, Stats) {
	stats := Stats{Total: len(doc.Modules)}
	modules := make([]domain.Module, 0, len(doc.Modules))
	seen := make(map[string]struct{}, len(doc.Modules))

	for _, p := range doc.Modules {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			stats.Skipped++
			continue
		}
		if _, dup := seen[name]; dup {
			stats.Duplicates++
			continue
		}
		seen[name] = struct{}{}

		mod := domain.Module{
			Name:            name,
			Type:            domain.ModuleType(strings.ToLower(strings.TrimSpace(p.Type))),
			Category:        strings.TrimSpace(p.Category),
			DisplayCategory: strings.TrimSpace(p.DisplayCategory),
			Emoji:           strings.TrimSpace(p.Emoji),
			Color:           strings.TrimSpace(p.Color),
			Description:     strings.TrimSpace(p.Description),
			Keywords:        cleanKeywords(p.Keywords),
			SwaggerURL:      strings.TrimSpace(p.SwaggerURL),
			YangTreeURL:     strings.TrimSpace(p.YangTreeURL),
		}
		if !mod.Type.Known() {
			stats.Unknown++
		}

		modules = append(modules, mod)
	}

	stats.Mapped = len(modules)
	return modules, stats
}

func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, kw := range in {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
