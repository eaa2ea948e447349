package search

import (
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/yangfinder/internal/domain"
	"github.com/MrSnakeDoc/yangfinder/internal/index"
	"github.com/MrSnakeDoc/yangfinder/internal/logger"
	"github.com/MrSnakeDoc/yangfinder/internal/scheduler"
)

// Key is a keyboard event the orchestrator reacts to.
type Key int

const (
	KeyFocus Key = iota // global "focus search" shortcut
	KeyEscape
	KeyUp
	KeyDown
	KeyEnter
)

// Querier runs one search. *Searcher implements it.
type Querier interface {
	Search(query string, filters domain.FilterSet) (Results, error)
}

// Suggester returns autocomplete suggestions. *index.Autocomplete
// implements it.
type Suggester interface {
	Suggest(query string) []index.Suggestion
}

// OrchestratorConfig wires an Orchestrator.
type OrchestratorConfig struct {
	Searcher  Querier
	Suggester Suggester
	Renderer  Renderer
	// Debounce is the input quiescence before a search runs.
	// Zero means scheduler.DefaultDebounce.
	Debounce time.Duration
	Logger   logger.Logger
}

// Orchestrator is the query box state machine. It owns the query text, the
// filter set, the suggestion cursor and the pending debounced search. All
// methods and the debounce callback are serialized by one mutex.
type Orchestrator struct {
	mu       sync.Mutex
	searcher Querier
	suggest  Suggester
	render   Renderer
	debounce *scheduler.Debouncer
	logger   logger.Logger

	query       string
	filters     domain.FilterSet
	suggestions []index.Suggestion
	cursor      int
	closed      bool
}

// NewOrchestrator creates an orchestrator with every filter at "all".
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.Renderer == nil {
		cfg.Renderer = NopRenderer{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	return &Orchestrator{
		searcher: cfg.Searcher,
		suggest:  cfg.Suggester,
		render:   cfg.Renderer,
		debounce: scheduler.NewDebouncer(cfg.Debounce),
		logger:   cfg.Logger.Named("orchestrator"),
		filters:  domain.NewFilterSet(),
		cursor:   -1,
	}
}

// Input handles a change of the query text.
func (o *Orchestrator) Input(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}

	o.query = text
	switch Classify(text) {
	case PhaseEmpty:
		o.debounce.Cancel()
		o.closeSuggestionsLocked()
		o.render.Hide()
	case PhaseTypeMore:
		o.debounce.Cancel()
		o.closeSuggestionsLocked()
		o.render.Prompt(MinQueryLength)
	case PhaseSearch:
		o.openSuggestionsLocked(text)
		o.scheduleLocked(text)
	}
}

// SelectSuggestion commits suggestion i: it becomes the query text and is
// searched at once. It reports false when i is out of range.
func (o *Orchestrator) SelectSuggestion(i int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || i < 0 || i >= len(o.suggestions) {
		return false
	}
	o.selectLocked(i)
	return true
}

// Blur closes the suggestion list, as when focus leaves the query box.
func (o *Orchestrator) Blur() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closeSuggestionsLocked()
}

// HandleKey applies a keyboard event.
func (o *Orchestrator) HandleKey(k Key) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}

	switch k {
	case KeyFocus:
		o.render.Focus()
	case KeyEscape:
		o.query = ""
		o.debounce.Cancel()
		o.closeSuggestionsLocked()
		o.render.Query("")
		o.render.Hide()
	case KeyUp:
		o.moveCursorLocked(-1)
	case KeyDown:
		o.moveCursorLocked(1)
	case KeyEnter:
		if o.cursor >= 0 && o.cursor < len(o.suggestions) {
			o.selectLocked(o.cursor)
			return
		}
		// Nothing selected: run the pending search now.
		o.debounce.Cancel()
		o.runLocked()
	}
}

// ToggleType flips t in the type filter and re-runs the current query.
func (o *Orchestrator) ToggleType(t domain.ModuleType) {
	o.mutateFilters(func(f *domain.FilterSet) { f.ToggleType(t) })
}

func (o *Orchestrator) SetPrefix(p domain.Prefix) {
	o.mutateFilters(func(f *domain.FilterSet) { f.Prefix = p })
}

func (o *Orchestrator) SetTree(a domain.Availability) {
	o.mutateFilters(func(f *domain.FilterSet) { f.Tree = a })
}

func (o *Orchestrator) SetSpec(a domain.Availability) {
	o.mutateFilters(func(f *domain.FilterSet) { f.Spec = a })
}

// ResetFilters puts every dimension back to "all" and re-runs the query.
func (o *Orchestrator) ResetFilters() {
	o.mutateFilters(func(f *domain.FilterSet) { f.Reset() })
}

// Filters returns a copy of the active filter set.
func (o *Orchestrator) Filters() domain.FilterSet {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.filters.Clone()
}

// Query returns the current query text.
func (o *Orchestrator) Query() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.query
}

// Cursor returns the selected suggestion index, or -1.
func (o *Orchestrator) Cursor() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cursor
}

// Suggestions returns the open suggestion list, nil when closed.
func (o *Orchestrator) Suggestions() []index.Suggestion {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.suggestions == nil {
		return nil
	}
	out := make([]index.Suggestion, len(o.suggestions))
	copy(out, o.suggestions)
	return out
}

// Pending reports whether a debounced search is waiting.
func (o *Orchestrator) Pending() bool { return o.debounce.Pending() }

// Close drops the pending search. Later events are ignored.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	o.debounce.Stop()
}

func (o *Orchestrator) mutateFilters(fn func(*domain.FilterSet)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	fn(&o.filters)
	o.debounce.Cancel()
	o.runLocked()
}

func (o *Orchestrator) selectLocked(i int) {
	term := o.suggestions[i].Term
	o.query = term
	o.closeSuggestionsLocked()
	o.debounce.Cancel()
	o.render.Query(term)
	o.runLocked()
}

// scheduleLocked replaces the pending search with one for query. The
// callback drops itself if the query changed after the timer fired.
func (o *Orchestrator) scheduleLocked(query string) {
	o.debounce.Schedule(func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.closed || o.query != query {
			return
		}
		o.runLocked()
	})
}

func (o *Orchestrator) runLocked() {
	switch Classify(o.query) {
	case PhaseEmpty:
		o.render.Hide()
		return
	case PhaseTypeMore:
		o.render.Prompt(MinQueryLength)
		return
	}

	res, err := o.searcher.Search(o.query, o.filters.Clone())
	switch {
	case errors.Is(err, ErrUnavailable):
		o.render.Unavailable()
	case err != nil:
		o.logger.Warn("search failed", logger.String("query", o.query), logger.Error(err))
		o.render.Error(err)
	default:
		o.render.Results(res)
	}
}

func (o *Orchestrator) openSuggestionsLocked(text string) {
	var items []index.Suggestion
	if o.suggest != nil {
		items = o.suggest.Suggest(text)
	}
	if len(items) == 0 {
		o.closeSuggestionsLocked()
		return
	}
	o.suggestions = items
	o.cursor = -1
	o.render.Suggestions(items, o.cursor)
}

func (o *Orchestrator) closeSuggestionsLocked() {
	if o.suggestions == nil {
		return
	}
	o.suggestions = nil
	o.cursor = -1
	o.render.HideSuggestions()
}

func (o *Orchestrator) moveCursorLocked(delta int) {
	n := len(o.suggestions)
	if n == 0 {
		return
	}
	c := o.cursor + delta
	if o.cursor < 0 {
		c = 0
	}
	o.cursor = max(0, min(c, n-1))
	o.render.Suggestions(o.suggestions, o.cursor)
}
