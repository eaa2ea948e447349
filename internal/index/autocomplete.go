package index

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultSuggestLimit caps the suggestion list. Larger limits are
	// clamped to it.
	DefaultSuggestLimit = 8
	// MinSuggestLength is the shortest query that gets suggestions.
	MinSuggestLength = 2
)

// Suggestion is an indexed term with its first case-insensitive match of
// the query split out for emphasis: Term == Before + Match + After.
type Suggestion struct {
	Term   string `json:"term"`
	Before string `json:"before"`
	Match  string `json:"match"`
	After  string `json:"after"`
}

// Autocomplete is the sorted set of distinct module names and keywords.
type Autocomplete struct {
	terms []string
	lower []string // terms lowered rune by rune, same positions
	limit int
}

// NewAutocomplete derives the term set from the catalog. limit <= 0 means
// DefaultSuggestLimit.
func NewAutocomplete(c *Catalog, limit int) *Autocomplete {
	if limit <= 0 || limit > DefaultSuggestLimit {
		limit = DefaultSuggestLimit
	}

	seen := make(map[string]struct{}, c.Len()*4)
	for _, m := range c.modules {
		seen[m.Name] = struct{}{}
		for _, kw := range m.Keywords {
			if kw != "" {
				seen[kw] = struct{}{}
			}
		}
	}

	terms := make([]string, 0, len(seen))
	for t := range seen {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	lower := make([]string, len(terms))
	for i, t := range terms {
		lower[i] = lowerRunes(t)
	}

	return &Autocomplete{terms: terms, lower: lower, limit: limit}
}

// Len returns the number of indexed terms.
func (a *Autocomplete) Len() int { return len(a.terms) }

// Suggest returns, in sorted order, the first terms containing query
// (case-insensitive). Queries under MinSuggestLength runes yield nothing.
func (a *Autocomplete) Suggest(query string) []Suggestion {
	q := lowerRunes(strings.TrimSpace(query))
	if utf8.RuneCountInString(q) < MinSuggestLength {
		return nil
	}

	var out []Suggestion
	for i, lt := range a.lower {
		pos := strings.Index(lt, q)
		if pos < 0 {
			continue
		}
		out = append(out, highlight(a.terms[i], lt, pos, q))
		if len(out) == a.limit {
			break
		}
	}
	return out
}

// lowerRunes lowercases s one rune at a time, so the result has exactly
// as many runes as s. strings.ToLower may expand a rune ("İ" to "i̇").
func lowerRunes(s string) string {
	return strings.Map(unicode.ToLower, s)
}

// highlight splits term around the match found at byte pos of lower. The
// match is located by rune index since lowering can change byte lengths.
func highlight(term, lower string, pos int, q string) Suggestion {
	start := utf8.RuneCountInString(lower[:pos])
	end := start + utf8.RuneCountInString(q)

	from, to := len(term), len(term)
	r := 0
	for i := range term {
		if r == start {
			from = i
		}
		if r == end {
			to = i
			break
		}
		r++
	}
	return Suggestion{
		Term:   term,
		Before: term[:from],
		Match:  term[from:to],
		After:  term[to:],
	}
}
