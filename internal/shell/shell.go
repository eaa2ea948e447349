// Package shell is a line-driven terminal front end for the search
// orchestrator. Each plain line replaces the query text; lines starting
// with ':' are commands.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrSnakeDoc/yangfinder/internal/domain"
	"github.com/MrSnakeDoc/yangfinder/internal/kv"
	"github.com/MrSnakeDoc/yangfinder/internal/logger"
	"github.com/MrSnakeDoc/yangfinder/internal/metrics"
	"github.com/MrSnakeDoc/yangfinder/internal/search"
	"github.com/MrSnakeDoc/yangfinder/internal/userlists"
)

const help = `commands:
  TEXT            set the query (empty line clears it)
  :up :down       move the suggestion cursor
  :enter          commit the selected suggestion, or search now
  :esc            clear the query
  :blur           close suggestions
  :type T         toggle a type filter (all resets types)
  :prefix P       all|cisco|ietf|openconfig|mib
  :tree V         all|yes|no
  :spec V         all|yes|no
  :reset          reset every filter
  :view NAME      record a view of NAME
  :fav NAME       toggle NAME in favorites
  :recent         list recently viewed modules
  :favorites      list favorite modules
  :quit
`

// Config wires a Shell.
type Config struct {
	Searcher  search.Querier
	Suggester search.Suggester
	Finder    userlists.Finder
	Store     kv.Store
	Keys      userlists.Keys
	Debounce  time.Duration
	Metrics   *metrics.Metrics
	Logger    logger.Logger
	Out       io.Writer
}

// Shell reads input events and commands and renders to Out.
type Shell struct {
	term    *terminal
	orch    *search.Orchestrator
	tracker *userlists.Tracker
	logger  logger.Logger
}

// New builds a shell. Store warnings are printed inline.
func New(cfg Config) *Shell {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	if cfg.Keys == (userlists.Keys{}) {
		cfg.Keys = userlists.DefaultKeys
	}

	term := &terminal{w: cfg.Out}
	listCfg := userlists.Config{
		Notifier: userlists.NotifierFunc(term.warn),
		Metrics:  cfg.Metrics,
		Logger:   cfg.Logger,
	}

	return &Shell{
		term: term,
		orch: search.NewOrchestrator(search.OrchestratorConfig{
			Searcher:  cfg.Searcher,
			Suggester: cfg.Suggester,
			Renderer:  term,
			Debounce:  cfg.Debounce,
			Logger:    cfg.Logger,
		}),
		tracker: userlists.NewTracker(cfg.Finder,
			userlists.NewRecentList(cfg.Store, cfg.Keys.Recent, listCfg),
			userlists.NewFavoriteList(cfg.Store, cfg.Keys.Favorites, listCfg)),
		logger: cfg.Logger.Named("shell"),
	}
}

// Run processes lines from in until EOF, :quit or ctx is done.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	defer s.orch.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	s.orch.HandleKey(search.KeyFocus)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if quit := s.handle(ctx, line); quit {
				return nil
			}
		}
	}
}

func (s *Shell) handle(ctx context.Context, line string) bool {
	if !strings.HasPrefix(line, ":") {
		s.orch.Input(line)
		return false
	}

	cmd, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)

	cmd = strings.ToLower(cmd)
	switch cmd {
	case "quit", "q":
		return true
	case "help", "h":
		s.term.printf("%s", help)
	case "up":
		s.orch.HandleKey(search.KeyUp)
	case "down":
		s.orch.HandleKey(search.KeyDown)
	case "enter":
		s.orch.HandleKey(search.KeyEnter)
	case "esc":
		s.orch.HandleKey(search.KeyEscape)
	case "blur":
		s.orch.Blur()
	case "type":
		if arg == "" {
			s.term.printf("usage: :type TYPE\n")
			break
		}
		s.orch.ToggleType(domain.ModuleType(strings.ToLower(arg)))
	case "prefix":
		p, err := domain.ParsePrefix(arg)
		if err != nil {
			s.term.printf("%v\n", err)
			break
		}
		s.orch.SetPrefix(p)
	case "tree", "spec":
		a, err := domain.ParseAvailability(arg)
		if err != nil {
			s.term.printf("%v\n", err)
			break
		}
		if cmd == "tree" {
			s.orch.SetTree(a)
		} else {
			s.orch.SetSpec(a)
		}
	case "reset":
		s.orch.ResetFilters()
	case "view":
		s.view(ctx, arg)
	case "fav":
		s.toggleFavorite(ctx, arg)
	case "recent":
		entries, err := s.tracker.Recent().List(ctx)
		s.logReadError(err)
		s.term.entries("recent", entries)
	case "favorites":
		entries, err := s.tracker.Favorites().List(ctx)
		s.logReadError(err)
		s.term.entries("favorites", entries)
	default:
		s.term.printf("unknown command %q, try :help\n", cmd)
	}
	return false
}

func (s *Shell) view(ctx context.Context, name string) {
	err := s.tracker.TrackView(ctx, name)
	switch {
	case err == nil:
		s.term.printf("viewed %s\n", name)
	case errors.Is(err, userlists.ErrLookupMiss):
		s.term.printf("no module named %q\n", name)
	}
	// Write failures were already reported through the notifier.
}

func (s *Shell) toggleFavorite(ctx context.Context, name string) {
	on, err := s.tracker.ToggleFavorite(ctx, name)
	switch {
	case errors.Is(err, userlists.ErrLookupMiss):
		s.term.printf("no module named %q\n", name)
	case err != nil:
		// reported through the notifier
	case on:
		s.term.printf("starred %s\n", name)
	default:
		s.term.printf("unstarred %s\n", name)
	}
}

func (s *Shell) logReadError(err error) {
	if err != nil {
		s.logger.Warn("stored list unreadable, showing it empty", logger.Error(err))
	}
}

// Fprint renders one search result set, for the one-shot commands.
func Fprint(w io.Writer, r search.Results) {
	(&terminal{w: w}).Results(r)
}

// FprintSuggestions renders suggestions without a cursor.
func FprintSuggestions(w io.Writer, query string, s search.Suggester) {
	items := s.Suggest(query)
	if len(items) == 0 {
		_, _ = fmt.Fprintf(w, "no suggestions for %q\n", query)
		return
	}
	(&terminal{w: w}).Suggestions(items, -1)
}
