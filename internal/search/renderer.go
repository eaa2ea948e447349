package search

import "github.com/MrSnakeDoc/yangfinder/internal/index"

// Renderer is the presentation side of an Orchestrator. Calls are made with
// the orchestrator lock held, one at a time; implementations must not call
// back into the orchestrator.
type Renderer interface {
	// Hide clears the result panel.
	Hide()
	// Prompt asks for at least min characters.
	Prompt(min int)
	// Unavailable reports that no catalog is loaded.
	Unavailable()
	Results(r Results)
	Error(err error)

	// Query reflects a query text change the orchestrator made itself.
	Query(text string)
	// Suggestions shows items with cursor selected, or none when cursor < 0.
	Suggestions(items []index.Suggestion, cursor int)
	HideSuggestions()
	// Focus moves input focus to the query field.
	Focus()
}

// NopRenderer discards everything. Embed it to implement a subset.
type NopRenderer struct{}

func (NopRenderer) Hide()                               {}
func (NopRenderer) Prompt(int)                          {}
func (NopRenderer) Unavailable()                        {}
func (NopRenderer) Results(Results)                     {}
func (NopRenderer) Error(error)                         {}
func (NopRenderer) Query(string)                        {}
func (NopRenderer) Suggestions([]index.Suggestion, int) {}
func (NopRenderer) HideSuggestions()                    {}
func (NopRenderer) Focus()                              {}
