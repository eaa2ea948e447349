package fuzzy

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/MrSnakeDoc/yangfinder/internal/domain"
)

// maxFuzziness is the largest edit distance bleve accepts.
const maxFuzziness = 2

// Bleve is an in-memory bleve index over the catalog. Its Score is the
// bleve relevance, higher is better.
type Bleve struct {
	opts  Options
	index bleve.Index
	size  int
}

// NewBleve indexes modules in a memory-only bleve index keyed by name.
func NewBleve(modules []domain.Module, opts Options) (*Bleve, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	batch := idx.NewBatch()
	for _, m := range modules {
		doc := make(map[string]interface{}, len(opts.Fields))
		for _, f := range opts.Fields {
			values := fieldText(m, f.Name)
			if f.Name == FieldKeywords {
				doc[f.Name] = values
			} else if len(values) > 0 {
				doc[f.Name] = values[0]
			}
		}
		if err := batch.Index(m.Name, doc); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("failed to index %s: %w", m.Name, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("failed to index catalog: %w", err)
	}

	return &Bleve{opts: opts, index: idx, size: len(modules)}, nil
}

// Search runs, per query term and per field, a fuzzy query and a prefix
// query boosted by the field weight. Terms are OR-ed.
func (b *Bleve) Search(q string) ([]Match, error) {
	terms := Terms(q, b.opts.MinMatchLength)
	if len(terms) == 0 || b.size == 0 {
		return nil, nil
	}

	disjuncts := make([]query.Query, 0, len(terms)*len(b.opts.Fields)*2)
	for _, term := range terms {
		fuzziness := b.fuzziness(term)
		for _, f := range b.opts.Fields {
			fq := bleve.NewFuzzyQuery(term)
			fq.SetField(f.Name)
			fq.SetFuzziness(fuzziness)
			fq.SetBoost(f.Weight)
			disjuncts = append(disjuncts, fq)

			pq := bleve.NewPrefixQuery(term)
			pq.SetField(f.Name)
			pq.SetBoost(f.Weight)
			disjuncts = append(disjuncts, pq)
		}
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(disjuncts...), b.size, 0, false)
	req.SortBy([]string{"-_score", "_id"})

	res, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	matches := make([]Match, 0, len(res.Hits))
	for _, hit := range res.Hits {
		matches = append(matches, Match{Name: hit.ID, Score: hit.Score})
	}
	return matches, nil
}

// fuzziness derives the allowed edit distance from the threshold and the
// term length.
func (b *Bleve) fuzziness(term string) int {
	n := int(b.opts.Threshold * float64(len([]rune(term))))
	if n > maxFuzziness {
		n = maxFuzziness
	}
	return n
}

func (b *Bleve) Close() error { return b.index.Close() }
