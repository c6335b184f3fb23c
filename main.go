package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"pagesift/internal/inspect"
	"pagesift/internal/runs"
	"pagesift/internal/scrape"
	"pagesift/pkg/paginate"
	"pagesift/pkg/store"
)

func main() {
	app := &cli.App{
		Name:  "pagesift",
		Usage: "classify web pages by structure and extract their content as records",
		Commands: []*cli.Command{
			{
				Name:      "scrape",
				Usage:     "fetch URLs, classify each page and extract records",
				ArgsUsage: "[URL ...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "urls",
						Aliases: []string{"u"},
						Usage:   "comma-separated list of URLs to scrape",
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "YAML or JSON file with custom selectors and pagination settings",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "output file (single URL) or directory (multiple URLs)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "output format: json, csv, yaml or markdown (default: from file extension, else json)",
					},
					&cli.IntFlag{
						Name:  "max-pages",
						Usage: "pagination ceiling per URL",
						Value: paginate.DefaultMaxPages,
					},
					&cli.StringFlag{
						Name:  "next-selector",
						Usage: "CSS selector for the next-page control (overrides detection)",
					},
					&cli.BoolFlag{
						Name:  "continue-on-empty",
						Usage: "keep paginating past pages that yield no records",
					},
					&cli.StringFlag{
						Name:  "roles",
						Usage: `override field role selectors, e.g. "price:.cost|.amount,title:h1"`,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "number of concurrent URL workers",
						Value: 4,
					},
					&cli.StringFlag{
						Name:  "db",
						Usage: "also persist runs into this SQLite database",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "HTTP request timeout",
						Value: 30 * time.Second,
					},
					&cli.Float64Flag{
						Name:  "rate",
						Usage: "maximum requests per second",
						Value: 2,
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "only log errors",
					},
				},
				Action: scrape.Action,
			},
			{
				Name:      "classify",
				Usage:     "fetch one URL and print its ranked structural classifications",
				ArgsUsage: "URL",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "HTTP request timeout",
						Value: 30 * time.Second,
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "only log errors",
					},
				},
				Action: inspect.Action,
			},
			{
				Name:      "runs",
				Usage:     "list persisted runs, or dump one run's records as JSON",
				ArgsUsage: "[RUN_ID]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "db",
						Usage: "SQLite database to read",
						Value: store.DefaultDBName,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "maximum number of runs to list",
						Value: 50,
					},
				},
				Action: runs.Action,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
