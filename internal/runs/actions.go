// Package runs implements the runs CLI command: list persisted runs from the
// record store, or dump the records of one run as JSON.
package runs

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"pagesift/pkg/store"
)

// Action is the runs command entry point. With no arguments it lists recent
// runs; with a run ID it prints that run's records as a JSON array.
func Action(c *cli.Context) error {
	db, err := store.Open(c.String("db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open record store: %v\n", err)
		os.Exit(2)
	}
	defer db.Close()

	if c.Args().Len() > 0 {
		runID, err := strconv.ParseInt(c.Args().First(), 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid run ID %q\n", c.Args().First())
			os.Exit(1)
		}
		return showRun(db, runID)
	}
	return listRuns(db, c.Int("limit"))
}

func listRuns(db *store.DB, limit int) error {
	infos, err := db.ListRuns(limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("%-5s %-19s %-10s %-7s %-5s %-8s %s\n",
		"ID", "CREATED", "CATEGORY", "RECORDS", "PAGES", "STOP", "URL")
	for _, info := range infos {
		fmt.Printf("%-5d %-19s %-10s %-7d %-5d %-8s %s\n",
			info.RunID,
			info.CreatedAt.Format("2006-01-02 15:04:05"),
			info.Category,
			info.RecordCount,
			info.PagesVisited,
			info.StopReason,
			info.URL)
	}
	return nil
}

func showRun(db *store.DB, runID int64) error {
	records, err := db.RunRecords(runID)
	if err != nil {
		return fmt.Errorf("failed to load run %d: %w", runID, err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
