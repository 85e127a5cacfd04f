package db_test

import (
	"path/filepath"
	"testing"
	"time"

	"simlink/pkg/db"
)

func TestDB(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "nested", "db_test.db")

	d, err := db.Init(path)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if d == nil {
		t.Fatal("Init() returned nil DB")
	}
	defer d.Close()

	for _, table := range []string{"definitions", "compile_runs", "persistent_state"} {
		var n int
		if err := d.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&n); err != nil || n != 1 {
			t.Errorf("table %s missing (n=%d, err=%v)", table, n, err)
		}
	}

	var col int
	if err := d.QueryRow("SELECT count(*) FROM pragma_table_info('definitions') WHERE name='source'").Scan(&col); err != nil || col != 1 {
		t.Errorf("source column missing (n=%d, err=%v)", col, err)
	}
}

func TestDB_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	for i := 0; i < 2; i++ {
		d, err := db.Init(path)
		if err != nil {
			t.Fatalf("Init() #%d failed: %v", i+1, err)
		}
		d.Close()
	}
}

func TestPruneCompileRuns(t *testing.T) {
	d, err := db.Init(filepath.Join(t.TempDir(), "prune.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	if _, err := d.Exec(`INSERT INTO compile_runs (interface, created_at) VALUES ('A', '2000-01-01 00:00:00'), ('A', CURRENT_TIMESTAMP)`); err != nil {
		t.Fatal(err)
	}
	n, err := d.PruneCompileRuns(24 * time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("pruned %d rows, want 1", n)
	}
}
