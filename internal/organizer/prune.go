package organizer

import "path/filepath"

// DefaultMarker is the sync-metadata entry that does not keep a directory
// alive during pruning.
const DefaultMarker = ".dropbox"

// Pruner removes directories left empty by a relocation.
type Pruner struct {
	fsmgr  FilesystemManager
	logger Logger
	marker string
}

// NewPruner creates a Pruner. A directory holding nothing but an entry named
// marker counts as empty; an empty marker disables that rule.
func NewPruner(fsmgr FilesystemManager, logger Logger, marker string) *Pruner {
	return &Pruner{fsmgr: fsmgr, logger: logger, marker: marker}
}

// Prune removes every empty directory at or below path, children before
// parents, and returns how many were removed. Paths that are not
// directories are ignored. Removal failures are logged and skipped.
func (p *Pruner) Prune(path string) int {
	if !p.fsmgr.IsDir(path) {
		return 0
	}
	return p.prune(path)
}

// prune descends only into entries listed as directories, so symlinks
// below the starting path are never followed.
func (p *Pruner) prune(path string) int {
	entries, err := p.fsmgr.ReadDir(path)
	if err != nil {
		p.logger.Error("failed to list directory", "path", path, "error", err)
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir {
			removed += p.prune(filepath.Join(path, entry.Name))
		}
	}

	// Children may have gone; look again.
	if removed > 0 {
		if entries, err = p.fsmgr.ReadDir(path); err != nil {
			p.logger.Error("failed to list directory", "path", path, "error", err)
			return removed
		}
	}

	switch {
	case len(entries) == 0:
		err = p.fsmgr.Remove(path)
	case len(entries) == 1 && p.marker != "" && entries[0].Name == p.marker:
		err = p.fsmgr.RemoveAll(path)
	default:
		return removed
	}

	if err != nil {
		p.logger.Error("failed to remove directory", "path", path, "error", err)
		return removed
	}
	p.logger.Debug("removed empty directory", "path", path)
	return removed + 1
}
