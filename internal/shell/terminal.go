package shell

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/MrSnakeDoc/yangfinder/internal/domain"
	"github.com/MrSnakeDoc/yangfinder/internal/index"
	"github.com/MrSnakeDoc/yangfinder/internal/search"
	"github.com/MrSnakeDoc/yangfinder/internal/userlists"
)

// terminal renders orchestrator state as plain text lines. Debounced
// results arrive on a timer goroutine, so writes are serialized.
type terminal struct {
	mu sync.Mutex
	w  io.Writer
}

var _ search.Renderer = (*terminal)(nil)

func (t *terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintf(t.w, format, args...)
}

func (t *terminal) Hide() {}

func (t *terminal) Prompt(min int) {
	t.printf("type at least %d characters\n", min)
}

func (t *terminal) Unavailable() {
	t.printf("search unavailable: the module catalog is not loaded\n")
}

func (t *terminal) Results(r search.Results) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if r.Total == 0 {
		_, _ = fmt.Fprintf(t.w, "no modules found for %q, try different keywords or filters\n", r.Query)
		return
	}
	if r.Truncated {
		_, _ = fmt.Fprintf(t.w, "%d modules for %q (showing first %d)\n", r.Total, r.Query, len(r.Items))
	} else {
		_, _ = fmt.Fprintf(t.w, "%d modules for %q\n", r.Total, r.Query)
	}
	for _, m := range r.Items {
		_, _ = fmt.Fprintln(t.w, moduleLine(m))
	}
}

func (t *terminal) Error(err error) {
	t.printf("search failed: %v\n", err)
}

func (t *terminal) Query(text string) {
	t.printf("> %s\n", text)
}

func (t *terminal) Suggestions(items []index.Suggestion, cursor int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, s := range items {
		mark := " "
		if i == cursor {
			mark = ">"
		}
		_, _ = fmt.Fprintf(t.w, "%s %s[%s]%s\n", mark, s.Before, s.Match, s.After)
	}
}

func (t *terminal) HideSuggestions() {}

func (t *terminal) Focus() {}

func (t *terminal) warn(w userlists.Warning) {
	t.printf("warning: %s\n", w.Message)
}

func (t *terminal) entries(title string, entries []domain.Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(entries) == 0 {
		_, _ = fmt.Fprintf(t.w, "%s: none\n", title)
		return
	}
	_, _ = fmt.Fprintf(t.w, "%s:\n", title)
	for _, e := range entries {
		_, _ = fmt.Fprintf(t.w, "  %s %s [%s]\n", emoji(e.Emoji), e.Name, e.DisplayCategory)
	}
}

func moduleLine(m domain.Module) string {
	var links []string
	if m.HasSpec() {
		links = append(links, "spec")
	}
	if m.HasTree() {
		links = append(links, "tree")
	}
	line := fmt.Sprintf("  %s %s [%s]", emoji(m.Emoji), m.Name, m.DisplayCategory)
	if len(links) > 0 {
		line += " " + strings.Join(links, ",")
	}
	return line
}

func emoji(e string) string {
	if e == "" {
		return "-"
	}
	return e
}
