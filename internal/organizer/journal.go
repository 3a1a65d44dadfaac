package organizer

import (
	"time"

	"camorg/internal/model"
)

// Journal records runs and the moves made during them.
type Journal interface {
	// CreateRun starts a run record with status "running".
	CreateRun(uuid, operation, parameters string, startedAt time.Time) (*model.Run, error)

	// FinishRun stamps the finish time, final status and counters of a run.
	FinishRun(id int64, status string, moved, failed int64, finishedAt time.Time) error

	// RecordMove appends a move to a run.
	RecordMove(move *model.Move) error

	// ListRuns returns at most limit runs, newest first.
	ListRuns(limit int) ([]*model.Run, error)

	// FindRun returns the run with the given ID, or nil if there is none.
	FindRun(id int64) (*model.Run, error)

	// ListMoves returns the moves of a run in the order they were recorded.
	ListMoves(runID int64) ([]*model.Move, error)

	// MaxRunID returns the highest run ID, or 0 for an empty journal.
	MaxRunID() (int64, error)

	// BackupTo writes a consistent copy of the journal to path.
	BackupTo(path string) error

	// Close releases the journal.
	Close() error
}
