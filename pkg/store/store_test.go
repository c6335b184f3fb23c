package store

import (
	"path/filepath"
	"testing"

	"pagesift/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return db
}

func sampleRun() *models.RunResult {
	a := models.NewRecord()
	a.Set("name", "Widget")
	a.Set("price", "$10")

	b := models.NewRecord()
	b.Set("name", "Gadget")

	return &models.RunResult{
		URL:          "https://example.com/shop",
		Category:     models.CategoryProduct,
		Confidence:   0.82,
		Records:      []*models.Record{a, b},
		PagesVisited: 2,
		StopReason:   models.StopCeilingReached,
	}
}

func TestSaveRun_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, err := db.SaveRun(sampleRun())
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if runID == 0 {
		t.Error("SaveRun() returned 0 run ID")
	}

	records, err := db.RunRecords(runID)
	if err != nil {
		t.Fatalf("RunRecords() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("RunRecords() = %d records, want 2", len(records))
	}
	if records[0]["name"] != "Widget" {
		t.Errorf("records[0][name] = %v, want Widget", records[0]["name"])
	}
	if records[0]["price"] != "$10" {
		t.Errorf("records[0][price] = %v, want $10", records[0]["price"])
	}
	// Heterogeneous key sets survive: the second record has no price.
	if _, ok := records[1]["price"]; ok {
		t.Error("records[1] has a price field, want absent")
	}
}

func TestListRuns_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	first, err := db.SaveRun(sampleRun())
	if err != nil {
		t.Fatalf("SaveRun() first error = %v", err)
	}
	second, err := db.SaveRun(sampleRun())
	if err != nil {
		t.Fatalf("SaveRun() second error = %v", err)
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns() = %d runs, want 2", len(runs))
	}
	if runs[0].RunID != second || runs[1].RunID != first {
		t.Errorf("run order = [%d %d], want [%d %d]", runs[0].RunID, runs[1].RunID, second, first)
	}

	info := runs[0]
	if info.URL != "https://example.com/shop" {
		t.Errorf("URL = %q, want sample URL", info.URL)
	}
	if info.Category != "product" {
		t.Errorf("Category = %q, want product", info.Category)
	}
	if info.RecordCount != 2 {
		t.Errorf("RecordCount = %d, want 2", info.RecordCount)
	}
	if info.PagesVisited != 2 {
		t.Errorf("PagesVisited = %d, want 2", info.PagesVisited)
	}
	if info.StopReason != "ceiling_reached" {
		t.Errorf("StopReason = %q, want ceiling_reached", info.StopReason)
	}
}

func TestListRuns_Limit(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for i := 0; i < 3; i++ {
		if _, err := db.SaveRun(sampleRun()); err != nil {
			t.Fatalf("SaveRun() error = %v", err)
		}
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("ListRuns(2) = %d runs, want 2", len(runs))
	}
}

func TestSaveRun_EmptyRecords(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	run := sampleRun()
	run.Records = nil
	run.StopReason = models.StopEmptyBatch

	runID, err := db.SaveRun(run)
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	records, err := db.RunRecords(runID)
	if err != nil {
		t.Fatalf("RunRecords() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("RunRecords() = %d records, want 0", len(records))
	}
}

func TestRunRecords_MissingRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	records, err := db.RunRecords(999)
	if err != nil {
		t.Fatalf("RunRecords() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("RunRecords(missing) = %d records, want 0", len(records))
	}
}
