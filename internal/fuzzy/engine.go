// Package fuzzy holds the approximate-match engines queried by the search
// pipeline. Engines are built once over the catalog and are read-only
// afterwards, so Search is safe for concurrent use.
package fuzzy

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/MrSnakeDoc/yangfinder/internal/domain"
)

// Searchable module fields.
const (
	FieldName            = "name"
	FieldKeywords        = "keywords"
	FieldDescription     = "description"
	FieldDisplayCategory = "displayCategory"
)

// Engine kinds selectable by configuration.
const (
	KindBleve = "bleve"
	KindEdit  = "edit"
)

// Field is a searchable field and its relative weight.
type Field struct {
	Name   string
	Weight float64
}

// Options configures an engine.
type Options struct {
	Fields []Field
	// Threshold is the match looseness in [0,1]: 0 requires an exact
	// match, 1 matches almost anything.
	Threshold float64
	// MinMatchLength drops query terms shorter than this many runes.
	MinMatchLength int
}

// DefaultOptions matches the hub's search box.
func DefaultOptions() Options {
	return Options{
		Fields: []Field{
			{Name: FieldName, Weight: 3},
			{Name: FieldKeywords, Weight: 2},
			{Name: FieldDescription, Weight: 1},
			{Name: FieldDisplayCategory, Weight: 1},
		},
		Threshold:      0.3,
		MinMatchLength: 2,
	}
}

func (o Options) validate() error {
	if len(o.Fields) == 0 {
		return fmt.Errorf("at least one field is required")
	}
	for _, f := range o.Fields {
		switch f.Name {
		case FieldName, FieldKeywords, FieldDescription, FieldDisplayCategory:
		default:
			return fmt.Errorf("unknown field %q", f.Name)
		}
		if f.Weight <= 0 {
			return fmt.Errorf("field %q: weight must be > 0", f.Name)
		}
	}
	if o.Threshold < 0 || o.Threshold > 1 {
		return fmt.Errorf("threshold must be in [0,1], got %v", o.Threshold)
	}
	return nil
}

// Match is one engine hit. Score is engine specific; callers rely on the
// order of the returned slice, never on Score itself.
type Match struct {
	Name  string
	Score float64
}

// Engine is the approximate matcher consumed by the search pipeline.
type Engine interface {
	// Search returns matches in ranking order.
	Search(query string) ([]Match, error)
	Close() error
}

// New builds the engine of the given kind over modules.
func New(kind string, modules []domain.Module, opts Options) (Engine, error) {
	switch strings.ToLower(kind) {
	case KindBleve, "":
		return NewBleve(modules, opts)
	case KindEdit:
		return NewEdit(modules, opts)
	default:
		return nil, fmt.Errorf("unknown search engine %q", kind)
	}
}

// fieldText returns the raw values of a module field.
func fieldText(m domain.Module, field string) []string {
	switch field {
	case FieldName:
		return []string{m.Name}
	case FieldKeywords:
		return m.Keywords
	case FieldDescription:
		return []string{m.Description}
	case FieldDisplayCategory:
		return []string{m.DisplayCategory}
	}
	return nil
}

// Terms lowercases s and splits it on anything that is not a letter or a
// digit, dropping terms shorter than minLen runes.
func Terms(s string, minLen int) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= minLen {
			out = append(out, f)
		}
	}
	return out
}
