package organizer

import (
	"errors"
	"fmt"

	"camorg/internal/model"
)

// ErrDropboxRootNotFound is returned when the Dropbox directory is missing.
// It aborts a run before any traversal.
var ErrDropboxRootNotFound = errors.New("dropbox directory does not exist")

// OrganizeRequest describes one organize run. All paths are absolute and
// already normalized.
type OrganizeRequest struct {
	Root        string
	Source      string
	Destination string
	Layout      Layout
	Cleanup     bool
	DryRun      bool
}

func (r OrganizeRequest) parameters() string {
	return fmt.Sprintf("source=%q destination=%q layout=%s cleanup=%t dry_run=%t",
		r.Source, r.Destination, r.Layout, r.Cleanup, r.DryRun)
}

// OrganizeResult summarizes an organize run.
type OrganizeResult struct {
	// Success is true iff every matching file was moved. A missing source
	// directory counts as success.
	Success bool
	// SourceMissing is set when there was nothing to organize.
	SourceMissing bool

	Moved   int
	Planned int
	Failed  int

	// Cleaned is set when empty directories were pruned after the moves;
	// Pruned counts the ones removed.
	Cleaned bool
	Pruned  int

	// RunID is the journal run, or 0 when the run was not journaled.
	RunID int64
}

// OrganizerService coordinates the relocator, the pruner and the journal.
type OrganizerService struct {
	fsmgr   FilesystemManager
	journal Journal
	logger  Logger
	clock   Clock
	idgen   IDGenerator
	marker  string
}

// NewOrganizerService creates an OrganizerService. journal may be nil, in
// which case nothing is recorded.
func NewOrganizerService(fsmgr FilesystemManager, journal Journal, logger Logger, clock Clock, idgen IDGenerator, marker string) *OrganizerService {
	return &OrganizerService{
		fsmgr:   fsmgr,
		journal: journal,
		logger:  logger,
		clock:   clock,
		idgen:   idgen,
		marker:  marker,
	}
}

// Organize relocates the camera uploads described by req and, if requested,
// prunes empty directories from the destination afterwards.
func (s *OrganizerService) Organize(req OrganizeRequest) (*OrganizeResult, error) {
	if !s.fsmgr.IsDir(req.Root) {
		s.logger.Error("Dropbox directory does not exist", "path", req.Root)
		return nil, fmt.Errorf("%w: %s", ErrDropboxRootNotFound, req.Root)
	}

	if !s.fsmgr.IsDir(req.Source) {
		s.logger.Warn("camera uploads directory does not exist", "path", req.Source)
		return &OrganizeResult{Success: true, SourceMissing: true}, nil
	}

	result := &OrganizeResult{}
	run := s.startRun("Organize", req.parameters())
	if run != nil {
		result.RunID = run.ID
	}

	relocator := NewRelocator(s.fsmgr, s.logger, RelocateOptions{
		DryRun: req.DryRun,
		Observer: func(m MoveResult) {
			switch {
			case m.Err != nil:
				result.Failed++
			case m.DryRun:
				result.Planned++
			default:
				result.Moved++
			}
			s.recordMove(run, m)
		},
	})
	result.Success = relocator.Relocate(req.Source, req.Destination, req.Layout)

	if req.Cleanup && !req.DryRun {
		result.Cleaned = true
		result.Pruned = NewPruner(s.fsmgr, s.logger, s.marker).Prune(req.Destination)
	}

	s.finishRun(run, result.Success, int64(result.Moved), int64(result.Failed))
	s.logger.Info("organize complete",
		"success", result.Success,
		"moved", result.Moved,
		"failed", result.Failed,
		"pruned", result.Pruned,
	)
	return result, nil
}

// Prune removes empty directories at or below path and returns how many
// were removed.
func (s *OrganizerService) Prune(path string) int {
	run := s.startRun("Prune", fmt.Sprintf("path=%q", path))
	removed := NewPruner(s.fsmgr, s.logger, s.marker).Prune(path)
	s.finishRun(run, true, 0, 0)
	s.logger.Info("prune complete", "path", path, "removed", removed)
	return removed
}

// Match parses a single file name.
func (s *OrganizerService) Match(name string) (*TimestampMatch, bool) {
	return Match(name)
}

// GetHistory returns the most recent runs, newest first.
func (s *OrganizerService) GetHistory(limit int) ([]*model.Run, error) {
	if s.journal == nil {
		return nil, fmt.Errorf("no journal configured")
	}
	runs, err := s.journal.ListRuns(limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// GetRunMoves returns a run together with the moves recorded for it.
func (s *OrganizerService) GetRunMoves(runID int64) (*model.Run, []*model.Move, error) {
	if s.journal == nil {
		return nil, nil, fmt.Errorf("no journal configured")
	}
	run, err := s.journal.FindRun(runID)
	if err != nil {
		return nil, nil, fmt.Errorf("finding run: %w", err)
	}
	if run == nil {
		return nil, nil, fmt.Errorf("run %d not found", runID)
	}
	moves, err := s.journal.ListMoves(runID)
	if err != nil {
		return nil, nil, fmt.Errorf("listing moves: %w", err)
	}
	return run, moves, nil
}

// Journal failures below are logged only; they never change the outcome of
// a run.

func (s *OrganizerService) startRun(operation, parameters string) *model.Run {
	if s.journal == nil {
		return nil
	}
	run, err := s.journal.CreateRun(s.idgen.New(), operation, parameters, s.clock.Now())
	if err != nil {
		s.logger.Error("failed to start journal run", "operation", operation, "error", err)
		return nil
	}
	return run
}

func (s *OrganizerService) finishRun(run *model.Run, success bool, moved, failed int64) {
	if run == nil {
		return
	}
	status := model.RunStatusSuccess
	if !success {
		status = model.RunStatusError
	}
	if err := s.journal.FinishRun(run.ID, status, moved, failed, s.clock.Now()); err != nil {
		s.logger.Error("failed to finish journal run", "run", run.ID, "error", err)
	}
}

func (s *OrganizerService) recordMove(run *model.Run, m MoveResult) {
	if run == nil {
		return
	}
	move := &model.Move{
		RunID:           run.ID,
		SourcePath:      m.Source,
		DestinationPath: m.Destination,
		Status:          model.MoveStatusMoved,
		At:              s.clock.Now(),
	}
	switch {
	case m.Err != nil:
		move.Status = model.MoveStatusFailed
		move.Error = m.Err.Error()
	case m.DryRun:
		move.Status = model.MoveStatusPlanned
	}
	if err := s.journal.RecordMove(move); err != nil {
		s.logger.Error("failed to record move", "source", m.Source, "error", err)
	}
}
