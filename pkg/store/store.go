// Package store persists run results into a local SQLite database. Records
// are stored as JSON field maps, one row per record, so heterogeneous key
// sets survive a round trip unchanged.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"pagesift/models"
)

// DefaultDBName is the database filename when the operator gives a bare
// --db flag.
const DefaultDBName = "pagesift.db"

// DB wraps the SQLite handle.
type DB struct {
	*sql.DB
	path string
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string) (*DB, error) {
	if path == "" {
		path = DefaultDBName
	}
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db := &DB{DB: sqlDB, path: path}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// SaveRun persists a run and its records in one transaction and returns the
// new run ID.
func (db *DB) SaveRun(run *models.RunResult) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (url, category, confidence, stop_reason, fetch_error, pages_visited, record_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.URL, string(run.Category), run.Confidence, string(run.StopReason),
		run.FetchError, run.PagesVisited, len(run.Records),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO records (run_id, position, fields) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range run.Records {
		fields, err := json.Marshal(rec)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal record %d: %w", i, err)
		}
		if _, err := stmt.Exec(runID, i, string(fields)); err != nil {
			return 0, fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// RunInfo summarizes one stored run.
type RunInfo struct {
	RunID        int64
	URL          string
	Category     string
	StopReason   string
	PagesVisited int
	RecordCount  int
	CreatedAt    time.Time
}

// ListRuns returns stored runs, newest first.
func (db *DB) ListRuns(limit int) ([]RunInfo, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(
		`SELECT run_id, url, category, stop_reason, pages_visited, record_count, created_at
		 FROM runs ORDER BY run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var r RunInfo
		if err := rows.Scan(&r.RunID, &r.URL, &r.Category, &r.StopReason,
			&r.PagesVisited, &r.RecordCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunRecords returns the stored field maps of one run in extraction order.
func (db *DB) RunRecords(runID int64) ([]map[string]any, error) {
	rows, err := db.Query(
		`SELECT fields FROM records WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []map[string]any
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		var fields map[string]any
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		records = append(records, fields)
	}
	return records, rows.Err()
}
