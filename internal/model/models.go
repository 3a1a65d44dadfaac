package model

import (
	"database/sql"
	"time"
)

// Run statuses.
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusError   = "error"
)

// Move statuses.
const (
	MoveStatusMoved   = "moved"
	MoveStatusFailed  = "failed"
	MoveStatusPlanned = "planned"
)

// Run is one journaled CLI operation.
type Run struct {
	ID         int64  // auto-increment; doubles as the archive snapshot version
	UUID       string // stable identifier, used as the log operation ID
	Operation  string // "Organize" or "Prune"
	Parameters string
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Status     string
	Moved      int64
	Failed     int64
}

// Move is a single relocation attempt recorded within a run.
type Move struct {
	ID              int64
	RunID           int64
	SourcePath      string
	DestinationPath string
	Status          string
	Error           string
	At              time.Time
}
