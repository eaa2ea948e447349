package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/MrSnakeDoc/yangfinder/internal/app"
	"github.com/MrSnakeDoc/yangfinder/internal/config"
	"github.com/MrSnakeDoc/yangfinder/internal/domain"
	"github.com/MrSnakeDoc/yangfinder/internal/logger"
	"github.com/MrSnakeDoc/yangfinder/internal/version"
)

// loadConfig reads the environment and applies the global flag overrides.
func loadConfig(c *cli.Context) *config.Config {
	cfg := config.Load()
	if v := c.String("manifest"); v != "" {
		cfg.Manifest = v
	}
	if v := c.String("engine"); v != "" {
		cfg.SearchEngine = strings.ToLower(v)
	}
	if v := c.String("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if c.IsSet("listen") {
		cfg.ListenPort = c.String("listen")
	}
	return cfg
}

// withApp builds the App for one command and tears it down afterwards.
// SIGINT and SIGTERM cancel the command's context.
func withApp(run func(ctx context.Context, a *app.App) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg := loadConfig(c)
		loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
		defer func() { _ = loggerClient.Sync() }()

		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		a := app.New(ctx, cfg, loggerClient)
		defer func() { _ = a.Close() }()
		return run(ctx, a)
	}
}

func filtersFrom(c *cli.Context) (domain.FilterSet, error) {
	f := domain.NewFilterSet()
	f.SetTypes(domain.ParseTypes(strings.Join(c.StringSlice("type"), ","))...)

	var err error
	if f.Prefix, err = domain.ParsePrefix(c.String("prefix")); err != nil {
		return f, err
	}
	if f.Tree, err = domain.ParseAvailability(c.String("tree")); err != nil {
		return f, err
	}
	if f.Spec, err = domain.ParseAvailability(c.String("spec")); err != nil {
		return f, err
	}
	return f, nil
}

func main() {
	cliApp := &cli.App{
		Name:    "yangfinder",
		Usage:   "Search a catalog of YANG and MIB documentation modules",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "manifest",
				Aliases: []string{"m"},
				Usage:   "catalog manifest path or http(s) URL (overrides YANGFINDER_MANIFEST)",
			},
			&cli.StringFlag{
				Name:  "engine",
				Usage: "fuzzy engine, bleve or edit (overrides YANGFINDER_SEARCH_ENGINE)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (overrides YANGFINDER_LOG_LEVEL)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Usage: "listen address (overrides YANGFINDER_LISTEN_PORT)",
					},
				},
				Action: withApp(func(ctx context.Context, a *app.App) error {
					return a.Serve(ctx)
				}),
			},
			{
				Name:  "shell",
				Usage: "Interactive search with autocomplete, filters and lists",
				Action: withApp(func(ctx context.Context, a *app.App) error {
					return a.Shell(ctx, os.Stdin, os.Stdout)
				}),
			},
			{
				Name:      "search",
				Usage:     "Run one search and print the results",
				ArgsUsage: "QUERY",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "type",
						Usage: "restrict to module types (repeatable, e.g. --type ietf --type mib)",
					},
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "all, cisco, ietf, openconfig or mib",
					},
					&cli.StringFlag{
						Name:  "tree",
						Usage: "has YANG tree: all, yes or no",
					},
					&cli.StringFlag{
						Name:  "spec",
						Usage: "has API spec: all, yes or no",
					},
				},
				Action: func(c *cli.Context) error {
					filters, err := filtersFrom(c)
					if err != nil {
						return cli.Exit(err.Error(), 2)
					}
					query := strings.Join(c.Args().Slice(), " ")
					return withApp(func(ctx context.Context, a *app.App) error {
						return a.SearchOnce(ctx, query, filters, os.Stdout)
					})(c)
				},
			},
			{
				Name:      "suggest",
				Usage:     "Print autocomplete suggestions",
				ArgsUsage: "QUERY",
				Action: func(c *cli.Context) error {
					query := strings.Join(c.Args().Slice(), " ")
					return withApp(func(ctx context.Context, a *app.App) error {
						return a.SuggestOnce(ctx, query, os.Stdout)
					})(c)
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatalf("❌ yangfinder: %v", err)
	}
}
