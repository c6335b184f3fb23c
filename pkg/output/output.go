// Package output serializes run results to the requested sink format and
// prints the run summary. Formats: JSON (array of objects), CSV (header
// from the union of keys across the first HeaderSampleSize records), YAML,
// and Markdown tables.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pagesift/models"
)

// HeaderSampleSize is how many leading records contribute keys to the CSV
// and Markdown headers. Missing fields are emitted empty.
const HeaderSampleSize = 100

// Write serializes the run's records to path in the given format. An empty
// format is inferred from the path extension, defaulting to JSON.
func Write(run *models.RunResult, path, format string) error {
	if format == "" {
		format = FormatForPath(path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(format) {
	case "json":
		return writeJSON(f, run)
	case "csv":
		return writeCSV(f, run)
	case "yaml", "yml":
		return writeYAML(f, run)
	case "markdown", "md":
		return writeMarkdown(f, run)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// FormatForPath infers the output format from a file extension.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	case ".yaml", ".yml":
		return "yaml"
	case ".md", ".markdown":
		return "markdown"
	default:
		return "json"
	}
}

// DefaultPath returns a timestamped output filename for runs without an
// explicit -o flag.
func DefaultPath(format string) string {
	ext := format
	if ext == "" || ext == "markdown" {
		ext = "json"
	}
	return fmt.Sprintf("pagesift_%s.%s", time.Now().Format("20060102_150405"), ext)
}

func writeJSON(w io.Writer, run *models.RunResult) error {
	records := run.Records
	if records == nil {
		records = []*models.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func writeYAML(w io.Writer, run *models.RunResult) error {
	data, err := yaml.Marshal(run.Records)
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func writeCSV(w io.Writer, run *models.RunResult) error {
	header := headerKeys(run.Records)
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, rec := range run.Records {
		row := make([]string, len(header))
		for i, key := range header {
			if v, ok := rec.Get(key); ok {
				row[i] = formatValue(v)
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeMarkdown(w io.Writer, run *models.RunResult) error {
	header := headerKeys(run.Records)
	if len(header) == 0 {
		_, err := fmt.Fprintln(w, "_no records_")
		return err
	}

	var b strings.Builder
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for _, rec := range run.Records {
		cells := make([]string, len(header))
		for i, key := range header {
			if v, ok := rec.Get(key); ok {
				cells[i] = strings.ReplaceAll(formatValue(v), "|", "\\|")
			}
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// headerKeys returns the union of field names across the first
// HeaderSampleSize records, ordered by first appearance.
func headerKeys(records []*models.Record) []string {
	seen := map[string]bool{}
	var keys []string
	limit := len(records)
	if limit > HeaderSampleSize {
		limit = HeaderSampleSize
	}
	for _, rec := range records[:limit] {
		for _, k := range rec.Keys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		return strings.Join(t, "; ")
	default:
		return fmt.Sprint(t)
	}
}

// FieldStat is one field's fill count across a run's records.
type FieldStat struct {
	Name  string
	Count int
}

// FieldStats aggregates per-field fill counts over all records, ordered by
// first appearance. The stats feed the run summary.
func FieldStats(records []*models.Record) []FieldStat {
	index := map[string]int{}
	var stats []FieldStat
	for _, rec := range records {
		for _, k := range rec.Keys() {
			i, ok := index[k]
			if !ok {
				i = len(stats)
				index[k] = i
				stats = append(stats, FieldStat{Name: k})
			}
			stats[i].Count++
		}
	}
	return stats
}

// PrintSummary writes a human-readable run summary.
func PrintSummary(w io.Writer, run *models.RunResult) {
	fmt.Fprintf(w, "URL:          %s\n", run.URL)
	fmt.Fprintf(w, "Category:     %s (confidence %.2f)\n", run.Category, run.Confidence)
	fmt.Fprintf(w, "Records:      %d\n", len(run.Records))
	fmt.Fprintf(w, "Pages:        %d (stop: %s)\n", run.PagesVisited, run.StopReason)
	if run.FetchError != "" {
		fmt.Fprintf(w, "Fetch error:  %s\n", run.FetchError)
	}
	if stats := FieldStats(run.Records); len(stats) > 0 {
		fmt.Fprintln(w, "Fields:")
		for _, s := range stats {
			fmt.Fprintf(w, "  %-20s %d/%d\n", s.Name, s.Count, len(run.Records))
		}
	}
}
