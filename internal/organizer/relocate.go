package organizer

import "path/filepath"

// MoveResult describes one attempt to relocate a matched file.
type MoveResult struct {
	Source      string
	Destination string
	Match       *TimestampMatch
	// DryRun is set when the move was only planned.
	DryRun bool
	// Err is nil when the file was moved (or planned) successfully.
	Err error
}

// RelocateOptions tune a Relocator.
type RelocateOptions struct {
	// DryRun computes destinations without touching the filesystem.
	DryRun bool
	// Observer, if set, is called once per matched file.
	Observer func(MoveResult)
}

// Relocator walks a source tree and moves every file named after the Camera
// Uploads convention into a date-partitioned destination tree.
type Relocator struct {
	fsmgr  FilesystemManager
	logger Logger
	opts   RelocateOptions
}

// NewRelocator creates a Relocator.
func NewRelocator(fsmgr FilesystemManager, logger Logger, opts RelocateOptions) *Relocator {
	return &Relocator{fsmgr: fsmgr, logger: logger, opts: opts}
}

// Relocate moves all matching files under sourceDir into destDir using the
// given layout. It returns true iff every matching file was moved. Failures
// are logged and do not stop the walk. If destDir lies inside sourceDir it is
// never entered.
func (r *Relocator) Relocate(sourceDir, destDir string, layout Layout) bool {
	sourceDir = filepath.Clean(sourceDir)
	destDir = filepath.Clean(destDir)
	return r.walk(sourceDir, sourceDir, destDir, layout)
}

func (r *Relocator) walk(root, dir, destDir string, layout Layout) bool {
	entries, err := r.fsmgr.ReadDir(dir)
	if err != nil {
		r.logger.Error("failed to list directory", "path", dir, "error", err)
		return false
	}

	ok := true
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name)

		ignored, err := r.fsmgr.IsIgnored(path, root)
		if err != nil {
			r.logger.Warn("checking ignore rules", "path", path, "error", err)
		} else if ignored {
			r.logger.Debug("ignored", "path", path)
			continue
		}

		if entry.IsDir {
			if path == destDir {
				continue
			}
			ok = r.walk(root, path, destDir, layout) && ok
			continue
		}

		m, matched := Match(entry.Name)
		if !matched {
			continue
		}

		target := filepath.Join(destDir, layout.RelativePath(m, entry.Name))
		ok = r.move(path, target, m) && ok
	}
	return ok
}

func (r *Relocator) move(src, dst string, m *TimestampMatch) bool {
	result := MoveResult{Source: src, Destination: dst, Match: m, DryRun: r.opts.DryRun}

	if r.opts.DryRun {
		r.logger.Info("would move file", "source", src, "destination", dst)
	} else if err := r.fsmgr.Move(src, dst); err != nil {
		result.Err = err
		r.logger.Error("failed to move file", "source", src, "destination", dst, "error", err)
	} else {
		r.logger.Info("file moved", "source", src, "destination", dst)
	}

	if r.opts.Observer != nil {
		r.opts.Observer(result)
	}
	return result.Err == nil
}
