// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records batch runs and their outcomes in a SQLite
// database so repeated runs can be audited.
package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/docship/internal/pipeline"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is an open history database.
type Store struct {
	db *sql.DB
}

// Run is one recorded batch run.
type Run struct {
	ID         string
	Tool       string
	Root       string
	State      pipeline.State
	Total      int
	Succeeded  int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Entry is one recorded item outcome.
type Entry struct {
	Source      string
	Destination string
	Action      pipeline.Action
	Error       string
}

// Open opens or creates the database at path, creating its parent directory
// and the schema when missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "creating history directory")
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating schema")
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			tool TEXT NOT NULL,
			root TEXT NOT NULL,
			state TEXT NOT NULL,
			total INTEGER NOT NULL,
			succeeded INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			source TEXT NOT NULL,
			destination TEXT,
			action TEXT,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_run_id ON outcomes(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return errors.Wrap(err, "executing schema statement")
		}
	}
	return nil
}

// Record stores the report of one run of tool and returns the new run ID.
// The run and its outcomes are written in a single transaction.
func (s *Store) Record(ctx context.Context, tool string, r pipeline.Report, started time.Time) (string, error) {
	id := uuid.NewString()
	finished := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, tool, root, state, total, succeeded, failed, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, tool, r.Root, string(r.State()), r.Total(), r.Succeeded(), r.Failed(),
		started.UTC().Format(timeLayout), finished.Format(timeLayout),
	)
	if err != nil {
		return "", errors.Wrap(err, "inserting run")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO outcomes (run_id, source, destination, action, error) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", errors.Wrap(err, "preparing insert")
	}
	defer stmt.Close()

	for _, o := range r.Outcomes {
		var msg string
		if o.Err != nil {
			msg = o.Err.Error()
		}
		if _, err := stmt.ExecContext(ctx, id, o.Item.Path, o.Destination, string(o.Action), msg); err != nil {
			return "", errors.Wrapf(err, "inserting outcome %s", o.Item.Path)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(err, "committing run")
	}
	return id, nil
}

// Runs returns the most recent runs, newest first. A limit of zero or less
// returns all of them.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tool, root, state, total, succeeded, failed, started_at, finished_at
		 FROM runs ORDER BY finished_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var state, started, finished string
		if err := rows.Scan(&run.ID, &run.Tool, &run.Root, &state,
			&run.Total, &run.Succeeded, &run.Failed, &started, &finished); err != nil {
			return nil, errors.Wrap(err, "scanning run")
		}
		run.State = pipeline.State(state)
		run.StartedAt, _ = time.Parse(timeLayout, started)
		run.FinishedAt, _ = time.Parse(timeLayout, finished)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Entries returns the outcomes recorded for run id in processing order.
func (s *Store) Entries(ctx context.Context, id string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, destination, action, error FROM outcomes WHERE run_id = ? ORDER BY rowid`, id)
	if err != nil {
		return nil, errors.Wrap(err, "querying outcomes")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e      Entry
			action string
		)
		if err := rows.Scan(&e.Source, &e.Destination, &action, &e.Error); err != nil {
			return nil, errors.Wrap(err, "scanning outcome")
		}
		e.Action = pipeline.Action(action)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
