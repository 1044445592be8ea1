// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package checkpoint persists session state snapshots in an append-only,
// session-keyed SQLite log. Each checkpoint carries the stage tag that
// produced it; resume reads the latest entry, and human edits fork the log
// by appending a new entry under the edited stage's tag.
package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/deck-engine/pkg/types"
)

// ErrNoSession is returned when a session id has no checkpoints.
var ErrNoSession = errors.New("unknown session")

// ErrNoStage is returned when a session has no checkpoint under the
// requested stage tag.
var ErrNoStage = errors.New("no checkpoint for stage")

// Store manages the checkpoint SQLite database. It is safe for concurrent
// use across sessions; writes to a single session serialize on immediate
// transactions.
type Store struct {
	db *sql.DB
}

// Entry is one checkpoint row.
type Entry struct {
	Seq       int64
	SessionID string
	Stage     string
	State     types.State
	CreatedAt time.Time
}

// Open opens or creates the checkpoint database at cfg.Path, creating the
// schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS checkpoints (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id),
			stage TEXT NOT NULL,
			state TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_checkpoints_session ON checkpoints(session_id, seq)`,
		`CREATE INDEX IF NOT EXISTS idx_checkpoints_stage ON checkpoints(session_id, stage, seq)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// CreateSession registers a new session id.
func (s *Store) CreateSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at) VALUES (?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("creating session %s: %w", id, err)
	}
	return nil
}

// Append records a new checkpoint for the session under the given stage tag
// and returns its sequence number. The log is append-only; existing entries
// are never modified.
func (s *Store) Append(ctx context.Context, sessionID, stage string, state types.State) (int64, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return 0, fmt.Errorf("marshaling state: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO checkpoints (session_id, stage, state, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, stage, string(data), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("appending checkpoint for %s: %w", sessionID, err)
	}
	return res.LastInsertId()
}

// Latest returns the most recent checkpoint for the session, or ErrNoSession
// if the session has none.
func (s *Store) Latest(ctx context.Context, sessionID string) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT seq, stage, state, created_at FROM checkpoints
		 WHERE session_id = ? ORDER BY seq DESC LIMIT 1`, sessionID)
	return s.scanEntry(row, sessionID, ErrNoSession)
}

// LatestByStage returns the most recent checkpoint tagged with stage.
func (s *Store) LatestByStage(ctx context.Context, sessionID, stage string) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT seq, stage, state, created_at FROM checkpoints
		 WHERE session_id = ? AND stage = ? ORDER BY seq DESC LIMIT 1`, sessionID, stage)
	return s.scanEntry(row, sessionID, ErrNoStage)
}

// History returns all checkpoints for the session in append order.
func (s *Store) History(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, stage, state, created_at FROM checkpoints
		 WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("reading history for %s: %w", sessionID, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			stateJSON string
			createdAt string
		)
		if err := rows.Scan(&e.Seq, &e.Stage, &stateJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning checkpoint: %w", err)
		}
		if err := json.Unmarshal([]byte(stateJSON), &e.State); err != nil {
			return nil, fmt.Errorf("parsing checkpoint %d: %w", e.Seq, err)
		}
		e.SessionID = sessionID
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ApplyAsStage forks the log: inside one immediate transaction it reads the
// latest checkpoint tagged stage, applies merge to its state, and appends
// the result as a new checkpoint under the same tag. The new entry becomes
// the basis for continuing past that stage. The read-modify-write is atomic
// with respect to concurrent writers on the same session.
func (s *Store) ApplyAsStage(ctx context.Context, sessionID, stage string, merge func(types.State) types.State) (Entry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT seq, stage, state, created_at FROM checkpoints
		 WHERE session_id = ? AND stage = ? ORDER BY seq DESC LIMIT 1`, sessionID, stage)
	base, err := s.scanEntry(row, sessionID, ErrNoStage)
	if err != nil {
		return Entry{}, err
	}

	merged := merge(base.State.Clone())
	data, err := json.Marshal(merged)
	if err != nil {
		return Entry{}, fmt.Errorf("marshaling merged state: %w", err)
	}

	createdAt := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO checkpoints (session_id, stage, state, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, stage, string(data), createdAt,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("appending forked checkpoint: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return Entry{}, err
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, fmt.Errorf("committing fork: %w", err)
	}

	entry := Entry{Seq: seq, SessionID: sessionID, Stage: stage, State: merged}
	entry.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return entry, nil
}

func (s *Store) scanEntry(row *sql.Row, sessionID string, notFound error) (Entry, error) {
	var (
		e         Entry
		stateJSON string
		createdAt string
	)
	err := row.Scan(&e.Seq, &e.Stage, &stateJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%s: %w", sessionID, notFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("reading checkpoint for %s: %w", sessionID, err)
	}
	if err := json.Unmarshal([]byte(stateJSON), &e.State); err != nil {
		return Entry{}, fmt.Errorf("parsing checkpoint %d: %w", e.Seq, err)
	}
	e.SessionID = sessionID
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return e, nil
}
