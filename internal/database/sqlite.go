package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"camorg/internal/database/migrations"
	"camorg/internal/model"
	"camorg/internal/organizer"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase is the SQLite-backed run journal.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase opens the journal at path (or ":memory:") and brings its
// schema up to date.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &SQLiteDatabase{db: db, path: path}, nil
}

// OpenConnection opens a SQLite connection with the PRAGMAs the journal
// relies on. In-memory databases are pinned to one connection, since every
// new connection would otherwise see an empty database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Run operations

const runColumns = `id, uuid, operation, parameters, started_at, finished_at, status, moved, failed`

func scanRun(row interface{ Scan(...any) error }) (*model.Run, error) {
	var r model.Run
	err := row.Scan(&r.ID, &r.UUID, &r.Operation, &r.Parameters, &r.StartedAt, &r.FinishedAt, &r.Status, &r.Moved, &r.Failed)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLiteDatabase) CreateRun(uuid, operation, parameters string, startedAt time.Time) (*model.Run, error) {
	run := &model.Run{
		UUID:       uuid,
		Operation:  operation,
		Parameters: parameters,
		StartedAt:  startedAt.UTC(),
		Status:     model.RunStatusRunning,
	}

	res, err := s.db.Exec(
		`INSERT INTO runs (uuid, operation, parameters, started_at, status) VALUES (?, ?, ?, ?, ?)`,
		run.UUID, run.Operation, run.Parameters, run.StartedAt, run.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}
	if run.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("reading run id: %w", err)
	}
	return run, nil
}

func (s *SQLiteDatabase) FinishRun(id int64, status string, moved, failed int64, finishedAt time.Time) error {
	res, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, status = ?, moved = ?, failed = ? WHERE id = ?`,
		finishedAt.UTC(), status, moved, failed, id,
	)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finishing run: run %d not found", id)
	}
	return nil
}

func (s *SQLiteDatabase) FindRun(id int64) (*model.Run, error) {
	run, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("finding run: %w", err)
	}
	return run, nil
}

func (s *SQLiteDatabase) ListRuns(limit int) ([]*model.Run, error) {
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

func (s *SQLiteDatabase) MaxRunID() (int64, error) {
	var id int64
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(id), 0) FROM runs`).Scan(&id); err != nil {
		return 0, fmt.Errorf("getting max run ID: %w", err)
	}
	return id, nil
}

// Move operations

func (s *SQLiteDatabase) RecordMove(move *model.Move) error {
	res, err := s.db.Exec(
		`INSERT INTO moves (run_id, source_path, destination_path, status, error, moved_at) VALUES (?, ?, ?, ?, ?, ?)`,
		move.RunID, move.SourcePath, move.DestinationPath, move.Status, move.Error, move.At.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording move: %w", err)
	}
	if move.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading move id: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListMoves(runID int64) ([]*model.Move, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, source_path, destination_path, status, error, moved_at FROM moves WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing moves: %w", err)
	}
	defer rows.Close()

	var moves []*model.Move
	for rows.Next() {
		var m model.Move
		if err := rows.Scan(&m.ID, &m.RunID, &m.SourcePath, &m.DestinationPath, &m.Status, &m.Error, &m.At); err != nil {
			return nil, fmt.Errorf("scanning move: %w", err)
		}
		moves = append(moves, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing moves: %w", err)
	}
	return moves, nil
}

// Path returns the database file path (or ":memory:").
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the schema is at the latest version.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// BackupTo writes a complete copy of the database to destPath using
// VACUUM INTO. destPath must not exist.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements organizer.Journal
var _ organizer.Journal = (*SQLiteDatabase)(nil)
