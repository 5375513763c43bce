package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one row of the save index.
type Entry struct {
	Slot    string
	Path    string
	Seed    int64
	Tick    uint64
	Items   int
	SavedAt time.Time
}

// Index lists saved snapshots. Calls are synchronous; it is only touched by
// explicit save and load actions.
type Index struct {
	db *sql.DB
}

func OpenIndex(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Index{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS saves (
			slot TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			seed INTEGER NOT NULL,
			tick INTEGER NOT NULL,
			items INTEGER NOT NULL,
			saved_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_saves_saved_at ON saves(saved_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (x *Index) Close() error {
	if x == nil {
		return nil
	}
	return x.db.Close()
}

// Record inserts or replaces the row for e.Slot.
func (x *Index) Record(ctx context.Context, e Entry) error {
	_, err := x.db.ExecContext(ctx,
		`INSERT INTO saves (slot, path, seed, tick, items, saved_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET path=excluded.path, seed=excluded.seed, tick=excluded.tick,
			items=excluded.items, saved_at=excluded.saved_at`,
		e.Slot, e.Path, e.Seed, int64(e.Tick), e.Items, e.SavedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record save %q: %w", e.Slot, err)
	}
	return nil
}

// Lookup returns the row for slot.
func (x *Index) Lookup(ctx context.Context, slot string) (Entry, bool, error) {
	row := x.db.QueryRowContext(ctx,
		`SELECT slot, path, seed, tick, items, saved_at FROM saves WHERE slot = ?`, slot)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup save %q: %w", slot, err)
	}
	return e, true, nil
}

// List returns every save, newest first.
func (x *Index) List(ctx context.Context) ([]Entry, error) {
	rows, err := x.db.QueryContext(ctx,
		`SELECT slot, path, seed, tick, items, saved_at FROM saves ORDER BY saved_at DESC, slot`)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list saves: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Delete removes the row for slot.
func (x *Index) Delete(ctx context.Context, slot string) error {
	if _, err := x.db.ExecContext(ctx, `DELETE FROM saves WHERE slot = ?`, slot); err != nil {
		return fmt.Errorf("delete save %q: %w", slot, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var (
		e     Entry
		tick  int64
		saved string
	)
	if err := s.Scan(&e.Slot, &e.Path, &e.Seed, &tick, &e.Items, &saved); err != nil {
		return Entry{}, err
	}
	e.Tick = uint64(tick)
	t, err := time.Parse(time.RFC3339Nano, saved)
	if err != nil {
		return Entry{}, fmt.Errorf("bad saved_at %q: %w", saved, err)
	}
	e.SavedAt = t
	return e, nil
}
