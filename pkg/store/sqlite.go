package store

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"simlink/pkg/db"
	"simlink/pkg/functable"
	"simlink/pkg/netfunc"
)

// Store composes all sub-interfaces for full store access. Consumers should
// depend on specific sub-interfaces when possible.
type Store interface {
	DefinitionStore
	CompileRunStore
	StateStore

	// Close closes the store connection.
	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Definitions ---

func (s *SQLiteStore) SaveDefinitions(ctx context.Context, iface, source string, defs []netfunc.Definition) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM definitions WHERE interface = ?", iface); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO definitions (interface, id, kind, name, body, source, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for i := range defs {
		d := &defs[i]
		body, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("encode definition %d: %w", d.ID, err)
		}
		if compressed, err := compress(body); err == nil {
			body = compressed
		}
		if _, err := stmt.ExecContext(ctx, iface, d.ID, string(d.Kind), d.Name, body, source, now); err != nil {
			return fmt.Errorf("save definition %d: %w", d.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadDefinitions(ctx context.Context, iface string) ([]netfunc.Definition, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, body FROM definitions WHERE interface = ? ORDER BY id", iface)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []netfunc.Definition
	for rows.Next() {
		var id int
		var body []byte
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		if isGzip(body) {
			if body, err = decompress(body); err != nil {
				return nil, fmt.Errorf("definition %d: %w", id, err)
			}
		}
		var d netfunc.Definition
		if err := json.Unmarshal(body, &d); err != nil {
			return nil, fmt.Errorf("definition %d: %w", id, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteDefinitions(ctx context.Context, iface string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM definitions WHERE interface = ?", iface)
	return err
}

func (s *SQLiteStore) ListInterfaces(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT interface FROM definitions ORDER BY interface")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// --- Compile runs ---

func (s *SQLiteStore) RecordCompileRun(ctx context.Context, run *CompileRun) error {
	diags, err := json.Marshal(run.Diagnostics)
	if err != nil {
		return err
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO compile_runs (interface, source, elements, functions, inoperable, skipped, diagnostics, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Interface, run.Source, run.Elements, run.Functions, run.Inoperable, run.Skipped, diags,
		run.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return err
	}
	run.ID, err = res.LastInsertId()
	return err
}

func (s *SQLiteStore) RecentCompileRuns(ctx context.Context, iface string, limit int) ([]CompileRun, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, interface, source, elements, functions, inoperable, skipped, diagnostics, created_at
		 FROM compile_runs WHERE interface = ? ORDER BY created_at DESC, id DESC LIMIT ?`, iface, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CompileRun
	for rows.Next() {
		var r CompileRun
		var source sql.NullString
		var diags []byte
		if err := rows.Scan(&r.ID, &r.Interface, &source, &r.Elements, &r.Functions, &r.Inoperable, &r.Skipped, &diags, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Source = source.String
		if len(diags) > 0 {
			var d []functable.Diagnostic
			if err := json.Unmarshal(diags, &d); err == nil {
				r.Diagnostics = d
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// --- Compression Pooling ---

var (
	gzipWriterPool = sync.Pool{
		New: func() interface{} {
			return gzip.NewWriter(io.Discard)
		},
	}
	bufferPool = sync.Pool{
		New: func() interface{} {
			return new(bytes.Buffer)
		},
	}
)

func compress(data []byte) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	w := gzipWriterPool.Get().(*gzip.Writer)
	defer gzipWriterPool.Put(w)
	w.Reset(buf)

	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	// buf goes back to the pool.
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func isGzip(b []byte) bool {
	return len(b) > 2 && b[0] == 0x1f && b[1] == 0x8b
}

// --- State ---

func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool) {
	var val string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM persistent_state WHERE key = ?", key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) || err != nil {
		return "", false
	}
	return val, true
}

func (s *SQLiteStore) SetState(ctx context.Context, key, val string) error {
	query := `INSERT OR REPLACE INTO persistent_state (key, value, created_at) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, key, val, time.Now())
	return err
}

func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM persistent_state WHERE key = ?", key)
	return err
}
