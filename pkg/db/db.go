package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Register driver
)

// DB wraps the sql.DB connection.
type DB struct {
	*sql.DB
}

// Init opens the database and runs migrations.
func Init(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=30000;"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	d := &DB{db}
	// Single writer; avoids SQLITE_BUSY between the session and the compiler.
	db.SetMaxOpenConns(1)

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return d, nil
}

// PruneCompileRuns removes compile run records older than the given age.
func (d *DB) PruneCompileRuns(olderThan time.Duration) (int64, error) {
	// Same layout as CURRENT_TIMESTAMP.
	deadline := time.Now().Add(-olderThan).UTC().Format("2006-01-02 15:04:05")
	res, err := d.Exec("DELETE FROM compile_runs WHERE created_at < ?", deadline)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS definitions (
			interface TEXT NOT NULL,
			id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			name TEXT,
			body BLOB NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (interface, id)
		);`,
		`CREATE TABLE IF NOT EXISTS compile_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			interface TEXT NOT NULL,
			source TEXT,
			elements INTEGER,
			functions INTEGER,
			inoperable INTEGER,
			skipped INTEGER,
			diagnostics BLOB,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_compile_runs_interface ON compile_runs(interface, created_at);`,
		`CREATE TABLE IF NOT EXISTS persistent_state (
			key TEXT PRIMARY KEY,
			value TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
	}

	for _, q := range queries {
		if _, err := d.Exec(q); err != nil {
			return fmt.Errorf("exec error: %w query: %s", err, q)
		}
	}

	// Databases created before definitions recorded their origin lack the column.
	var colCount int
	err := d.QueryRow("SELECT count(*) FROM pragma_table_info('definitions') WHERE name='source'").Scan(&colCount)
	if err == nil && colCount == 0 {
		if _, err := d.Exec("ALTER TABLE definitions ADD COLUMN source TEXT DEFAULT ''"); err != nil {
			return fmt.Errorf("failed to add source column: %w", err)
		}
	}

	return nil
}
