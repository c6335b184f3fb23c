// Package inspect implements the classify CLI command: fetch one page and
// print its ranked structural classifications without extracting anything.
package inspect

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"pagesift/internal/common"
	"pagesift/pkg/classify"
	"pagesift/pkg/fetcher"
)

// Action is the classify command entry point.
func Action(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	if c.Args().Len() != 1 {
		fmt.Fprintln(os.Stderr, "Error: classify takes exactly one URL")
		os.Exit(1)
	}
	rawURL := common.SanitizeURL(c.Args().First())

	f := fetcher.New(fetcher.Config{Timeout: c.Duration("timeout")})
	logger.Info("fetching page", "url", rawURL)
	doc, err := f.Fetch(c.Context, rawURL)
	if err != nil {
		logger.Error("fetch failed", "url", rawURL, "error", err)
		os.Exit(2)
	}

	ranked := classify.Classify(doc)
	best := classify.Best(ranked)

	fmt.Printf("URL:      %s\n", rawURL)
	fmt.Printf("Title:    %s\n", doc.Title())
	fmt.Printf("Category: %s (confidence %.2f)\n", best.Category, best.Confidence)
	if len(ranked) == 0 {
		fmt.Println("No structural signals detected; page would extract as generic.")
		return nil
	}
	fmt.Println("\nRanked candidates:")
	for _, cl := range ranked {
		fmt.Printf("  %-10s %.2f  %s\n", cl.Category, cl.Confidence, cl.Evidence)
	}
	return nil
}
