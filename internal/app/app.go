package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"camorg/internal/archive"
	"camorg/internal/config"
	"camorg/internal/database"
	"camorg/internal/encryption"
	"camorg/internal/fs"
	"camorg/internal/model"
	"camorg/internal/organizer"
)

// SnapshotName is the archive name under which journal snapshots are stored.
const SnapshotName = "journal"

// LockFileName is created in the base directory while a mutating command runs.
const LockFileName = "camorg.lock"

// ErrLocked is returned when another camorg process holds the lock.
var ErrLocked = errors.New("another camorg process is running")

// Options control how a CamorgApp is opened.
type Options struct {
	// Mutating commands take the process lock and, on Close, archive a
	// journal snapshot if a run was recorded.
	Mutating bool
	// Verbose sends debug records to stderr as well as the log file.
	Verbose bool
	// Stderr receives console log output. Defaults to os.Stderr.
	Stderr io.Writer
}

// OrganizeParams are the raw, per-run overrides of the [dropbox] config
// section. Empty strings keep the configured value.
type OrganizeParams struct {
	Root        string
	Source      string
	Destination string
	Layout      string
	Cleanup     bool
	DryRun      bool
}

// CamorgApp is the application layer between the CLI and OrganizerService.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and manages the journal lifecycle on Close.
type CamorgApp struct {
	cfg       *config.Config
	fsmgr     *fs.OSFilesystemManager
	journal   *database.SQLiteDatabase
	archive   organizer.Archive
	encryptor organizer.Encryptor
	service   *organizer.OrganizerService
	logger    organizer.Logger
	lock      *flock.Flock
	logFile   *os.File
	mutating  bool
	openedAt  int64 // journal MaxRunID when the app was opened
}

// NewCamorgApp creates a fully wired CamorgApp from the given config.
// The caller must call Close when done.
func NewCamorgApp(cfg *config.Config, opts Options) (*CamorgApp, error) {
	a := &CamorgApp{cfg: cfg, mutating: opts.Mutating}
	opened := false
	defer func() {
		if !opened {
			a.release()
		}
	}()

	var err error

	if opts.Mutating {
		if err := a.acquireLock(); err != nil {
			return nil, err
		}
	}

	a.fsmgr = fs.NewOSFilesystemManager(cfg.Filesystem.Ignore)

	a.journal, err = database.NewDatabaseFromConfig(cfg.Database, cfg.HostID)
	if err != nil {
		return nil, fmt.Errorf("creating journal: %w", err)
	}
	if err := a.journal.CheckMigrations(); err != nil {
		return nil, fmt.Errorf("journal schema out of date: %w", err)
	}
	if a.openedAt, err = a.journal.MaxRunID(); err != nil {
		return nil, fmt.Errorf("checking local journal version: %w", err)
	}

	if len(cfg.Archives) > 0 {
		a.archive, err = archive.NewArchiveFromConfig(cfg.Archives[0])
		if err != nil {
			return nil, fmt.Errorf("creating archive: %w", err)
		}

		remote, err := a.archive.GetSnapshotVersion(cfg.HostID, SnapshotName)
		if err != nil {
			return nil, fmt.Errorf("checking archived journal version: %w", err)
		}
		if remote > a.openedAt {
			return nil, fmt.Errorf("local journal is behind archive (local=%d, archive=%d): run 'camorg journal pull'", a.openedAt, remote)
		}
	}

	a.encryptor, err = encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	stderrLevel := slog.LevelInfo
	if opts.Verbose {
		stderrLevel = slog.LevelDebug
	}
	opID := time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, opID, stderr, stderrLevel)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	a.logFile = logFile
	a.logger = &slogAdapter{l: slogger}

	a.service = organizer.NewOrganizerService(a.fsmgr, a.journal, a.logger, organizer.RealClock{}, organizer.UUIDGenerator{}, cfg.Dropbox.Marker)
	opened = true
	return a, nil
}

func (a *CamorgApp) acquireLock() error {
	if err := os.MkdirAll(a.cfg.BaseDir, 0755); err != nil {
		return fmt.Errorf("creating base directory: %w", err)
	}

	lock := flock.New(filepath.Join(a.cfg.BaseDir, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	a.lock = lock
	return nil
}

// Locations resolves the configured paths with the given overrides applied.
func (a *CamorgApp) Locations(root, source, destination string) (*Locations, error) {
	d := a.cfg.Dropbox
	return ResolveLocations(firstNonEmpty(root, d.Root), firstNonEmpty(source, d.CameraUploads), firstNonEmpty(destination, d.Destination))
}

// Organize resolves the run's paths and layout and organizes the camera
// uploads.
func (a *CamorgApp) Organize(p OrganizeParams) (*organizer.OrganizeResult, error) {
	loc, err := a.Locations(p.Root, p.Source, p.Destination)
	if err != nil {
		return nil, err
	}

	layout, err := organizer.ParseLayout(firstNonEmpty(p.Layout, a.cfg.Dropbox.Layout))
	if err != nil {
		return nil, err
	}

	return a.service.Organize(organizer.OrganizeRequest{
		Root:        loc.Root,
		Source:      loc.Source,
		Destination: loc.Destination,
		Layout:      layout,
		Cleanup:     p.Cleanup || a.cfg.Dropbox.Cleanup,
		DryRun:      p.DryRun,
	})
}

// Prune removes empty directories below rawPath, or below the configured
// destination when rawPath is empty.
func (a *CamorgApp) Prune(rawPath string) (int, error) {
	var target string
	if rawPath == "" {
		loc, err := a.Locations("", "", "")
		if err != nil {
			return 0, err
		}
		target = loc.Destination
	} else {
		abs, err := filepath.Abs(rawPath)
		if err != nil {
			return 0, fmt.Errorf("resolving path: %w", err)
		}
		target = abs
	}
	return a.service.Prune(target), nil
}

// Match parses a single file name.
func (a *CamorgApp) Match(name string) (*organizer.TimestampMatch, bool) {
	return a.service.Match(name)
}

// GetHistory returns the most recent runs.
func (a *CamorgApp) GetHistory(limit int) ([]*model.Run, error) {
	return a.service.GetHistory(limit)
}

// GetRunMoves returns a run and its recorded moves.
func (a *CamorgApp) GetRunMoves(runID int64) (*model.Run, []*model.Move, error) {
	return a.service.GetRunMoves(runID)
}

// Close closes all resources. For mutating commands that recorded a run, the
// journal is snapshotted, encrypted and uploaded to the archive with the
// newest run ID as its version.
func (a *CamorgApp) Close() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if a.mutating && a.archive != nil {
		keep(a.archiveJournal())
	}
	keep(a.release())
	return firstErr
}

func (a *CamorgApp) archiveJournal() error {
	version, err := a.journal.MaxRunID()
	if err != nil {
		return fmt.Errorf("checking local journal version: %w", err)
	}
	if version == a.openedAt {
		return nil // nothing recorded
	}

	tmpDir, err := os.MkdirTemp("", "camorg-journal-*")
	if err != nil {
		return fmt.Errorf("creating temp directory for journal snapshot: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	snapshotPath := filepath.Join(tmpDir, "journal.db")
	if err := a.journal.BackupTo(snapshotPath); err != nil {
		return err
	}

	encryptedPath := filepath.Join(tmpDir, "journal.db.enc")
	if err := encryptFile(a.encryptor, snapshotPath, encryptedPath); err != nil {
		return err
	}

	if err := uploadFile(a.archive, a.cfg.HostID, encryptedPath, version); err != nil {
		return err
	}
	a.logger.Info("journal archived", "version", version)
	return nil
}

// release closes the journal, the log file and the lock, in that order.
func (a *CamorgApp) release() error {
	var firstErr error
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			firstErr = fmt.Errorf("closing journal: %w", err)
		}
		a.journal = nil
	}
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
	if a.lock != nil {
		if err := a.lock.Unlock(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("releasing lock: %w", err)
		}
		a.lock = nil
	}
	return firstErr
}

func encryptFile(enc organizer.Encryptor, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening journal snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating encrypted snapshot: %w", err)
	}
	if err := enc.Encrypt(in, out); err != nil {
		out.Close()
		return fmt.Errorf("encrypting journal snapshot: %w", err)
	}
	return out.Close()
}

func uploadFile(arc organizer.Archive, hostID, path string, version int64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening snapshot for upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat snapshot: %w", err)
	}

	if err := arc.PutSnapshot(hostID, SnapshotName, f, info.Size(), version); err != nil {
		return fmt.Errorf("uploading journal snapshot: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
