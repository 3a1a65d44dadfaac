package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"camorg/internal/organizer"
)

// FileSystemArchive stores journal snapshots as files:
//
//	<root>/
//	  snapshots/
//	    <hostID>.<name>          (snapshot bytes)
//	    <hostID>.<name>.version  (decimal version)
//
// The root is typically on another disk or a network mount.
type FileSystemArchive struct {
	name        string
	root        string
	snapshotDir string
}

// NewFileSystemArchive creates a new filesystem archive rooted at the given path.
func NewFileSystemArchive(name, root string) (*FileSystemArchive, error) {
	snapshotDir := filepath.Join(root, "snapshots")
	if err := os.MkdirAll(snapshotDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	return &FileSystemArchive{
		name:        name,
		root:        root,
		snapshotDir: snapshotDir,
	}, nil
}

func (a *FileSystemArchive) snapshotPath(hostID, name string) string {
	return filepath.Join(a.snapshotDir, hostID+"."+name)
}

// PutSnapshot stores a snapshot for a host and then records its version. A
// reader that sees the new version is guaranteed to see the new snapshot.
func (a *FileSystemArchive) PutSnapshot(hostID, name string, r io.Reader, size int64, version int64) error {
	destPath := a.snapshotPath(hostID, name)
	if err := writeFileAtomic(destPath, r, size); err != nil {
		return err
	}

	versionData := strconv.FormatInt(version, 10)
	if err := writeFileAtomic(destPath+".version", strings.NewReader(versionData), int64(len(versionData))); err != nil {
		return fmt.Errorf("writing version file: %w", err)
	}
	return nil
}

// GetSnapshotVersion returns the snapshot version for a host.
// Returns 0 if no version file exists.
func (a *FileSystemArchive) GetSnapshotVersion(hostID, name string) (int64, error) {
	data, err := os.ReadFile(a.snapshotPath(hostID, name) + ".version")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading version file: %w", err)
	}

	version, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version: %w", err)
	}
	return version, nil
}

// GetSnapshot writes the snapshot for a host to w.
func (a *FileSystemArchive) GetSnapshot(hostID, name string, w io.Writer) error {
	f, err := os.Open(a.snapshotPath(hostID, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("snapshot %q not found for host: %s", name, hostID)
		}
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	return nil
}

// ValidateSetup verifies that the archive directories are accessible.
func (a *FileSystemArchive) ValidateSetup() error {
	for _, dir := range []string{a.root, a.snapshotDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("archive directory not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("archive path is not a directory: %s", dir)
		}
	}
	return nil
}

// writeFileAtomic writes data from r to destPath via a temp file and rename.
func writeFileAtomic(destPath string, r io.Reader, expectedSize int64) error {
	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemArchive implements organizer.Archive interface
var _ organizer.Archive = (*FileSystemArchive)(nil)
