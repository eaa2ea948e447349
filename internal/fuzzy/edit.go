package fuzzy

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/MrSnakeDoc/yangfinder/internal/domain"
)

// Similarity tiers, best first. Anything below SimSubstring comes from the
// normalized Levenshtein similarity.
const (
	SimExact     = 1.0
	SimPrefix    = 0.95
	SimSubstring = 0.9
)

type editField struct {
	weight float64
	whole  []string   // lowercased raw values
	terms  [][]string // terms per value
}

type editDoc struct {
	name   string
	fields []editField
}

// Edit is an in-memory engine scoring every module with edit distance.
// Its Score is in [0,1], lower is better.
type Edit struct {
	opts      Options
	maxWeight float64
	docs      []editDoc
}

// NewEdit indexes modules in catalog order.
func NewEdit(modules []domain.Module, opts Options) (*Edit, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	e := &Edit{opts: opts, docs: make([]editDoc, 0, len(modules))}
	for _, f := range opts.Fields {
		if f.Weight > e.maxWeight {
			e.maxWeight = f.Weight
		}
	}

	for _, m := range modules {
		doc := editDoc{name: m.Name, fields: make([]editField, 0, len(opts.Fields))}
		for _, f := range opts.Fields {
			ef := editField{weight: f.Weight}
			for _, v := range fieldText(m, f.Name) {
				ef.whole = append(ef.whole, strings.ToLower(v))
				ef.terms = append(ef.terms, Terms(v, 1))
			}
			doc.fields = append(doc.fields, ef)
		}
		e.docs = append(e.docs, doc)
	}

	return e, nil
}

// Search returns every module where each query term reaches the similarity
// floor (1 - Threshold) in at least one field, ascending by score. Ties keep
// catalog order.
func (e *Edit) Search(query string) ([]Match, error) {
	terms := Terms(query, e.opts.MinMatchLength)
	if len(terms) == 0 {
		return nil, nil
	}

	floor := 1 - e.opts.Threshold
	var matches []Match

	for _, doc := range e.docs {
		var total float64
		ok := true
		for _, term := range terms {
			best := 0.0
			for _, f := range doc.fields {
				sim := f.similarity(term)
				if sim < floor {
					continue
				}
				if weighted := sim * f.weight / e.maxWeight; weighted > best {
					best = weighted
				}
			}
			if best == 0 {
				ok = false
				break
			}
			total += best
		}
		if !ok {
			continue
		}
		matches = append(matches, Match{
			Name:  doc.name,
			Score: 1 - total/float64(len(terms)),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score < matches[j].Score
	})
	return matches, nil
}

func (e *Edit) Close() error { return nil }

// similarity returns the best similarity of term against the field.
func (f editField) similarity(term string) float64 {
	best := 0.0
	for i, whole := range f.whole {
		if whole == term {
			return SimExact
		}
		if strings.Contains(whole, term) && best < SimSubstring {
			best = SimSubstring
		}
		for _, t := range f.terms[i] {
			if s := termSimilarity(term, t); s > best {
				best = s
			}
			if best == SimExact {
				return best
			}
		}
	}
	return best
}

func termSimilarity(q, t string) float64 {
	switch {
	case q == t:
		return SimExact
	case strings.HasPrefix(t, q):
		return SimPrefix
	case strings.Contains(t, q):
		return SimSubstring
	}

	sim, err := edlib.StringsSimilarity(q, t, edlib.Levenshtein)
	if err != nil {
		return 0
	}
	// Keep edit-distance hits below every literal tier.
	if s := float64(sim); s < SimSubstring {
		return s
	}
	return SimSubstring - 0.01
}
