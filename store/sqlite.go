package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/phanxgames/twin"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const schema = `
CREATE TABLE IF NOT EXISTS scenes (
	id         TEXT PRIMARY KEY,
	mode       TEXT NOT NULL,
	nodes      INTEGER NOT NULL,
	data       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore keeps scenes in one table of a SQLite database. The pool is
// limited to a single connection.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the database at path and applies the
// schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: mkdir db dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate %s: %w", path, err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Save inserts or replaces m.
func (s *SQLiteStore) Save(ctx context.Context, m *twin.SceneModel) error {
	if m == nil || !ValidID(m.ID) {
		return ErrInvalidID
	}
	var sb strings.Builder
	if err := twin.EncodeScene(&sb, m); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scenes (id, mode, nodes, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			mode = excluded.mode,
			nodes = excluded.nodes,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, m.ID, string(m.SceneMode), countNodes(m), sb.String(), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("store: save %s: %w", m.ID, err)
	}
	slog.Debug("scene saved", "store", "sqlite", "id", m.ID)
	return nil
}

// Load returns the scene with the given id.
func (s *SQLiteStore) Load(ctx context.Context, id string) (*twin.SceneModel, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM scenes WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", id, err)
	}
	m, err := twin.DecodeScene(strings.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", id, err)
	}
	m.ID = id
	return m, nil
}

// List returns every scene sorted by id.
func (s *SQLiteStore) List(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, mode, nodes, updated_at FROM scenes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	out := []Info{}
	for rows.Next() {
		var (
			info    Info
			mode    string
			updated int64
		)
		if err := rows.Scan(&info.ID, &mode, &info.Nodes, &updated); err != nil {
			return nil, fmt.Errorf("store: list: %w", err)
		}
		info.SceneMode = twin.SceneMode(mode)
		info.UpdatedAt = time.UnixMilli(updated)
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return out, nil
}

// Delete removes the scene with the given id.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if !ValidID(id) {
		return ErrInvalidID
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM scenes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
