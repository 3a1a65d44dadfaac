package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"camorg/internal/organizer"
)

// renameFunc is swapped out in tests to simulate EXDEV and friends.
var renameFunc = os.Rename

// CrossDeviceError reports a rename that failed because source and
// destination are on different filesystems. Files are never copied across
// devices; the move simply fails.
type CrossDeviceError struct {
	Src string
	Dst string
	Err error
}

func (e *CrossDeviceError) Error() string {
	return fmt.Sprintf("cannot move %q to %q across filesystems: %v", e.Src, e.Dst, e.Err)
}

func (e *CrossDeviceError) Unwrap() error { return e.Err }

// IsCrossDevice reports whether err is a *CrossDeviceError.
func IsCrossDevice(err error) bool {
	var e *CrossDeviceError
	return errors.As(err, &e)
}

// OSFilesystemManager is the real filesystem implementation of
// organizer.FilesystemManager.
type OSFilesystemManager struct {
	ignore   []string
	matchers map[string]*IgnoreMatcher // keyed by walk root
}

// NewOSFilesystemManager creates a filesystem manager. ignore holds extra
// ignore patterns from the config, applied under every root.
func NewOSFilesystemManager(ignore []string) *OSFilesystemManager {
	return &OSFilesystemManager{
		ignore:   ignore,
		matchers: make(map[string]*IgnoreMatcher),
	}
}

func (m *OSFilesystemManager) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// IsDir follows symlinks, so a Dropbox folder linked in from another disk
// counts as a directory.
func (m *OSFilesystemManager) IsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func (m *OSFilesystemManager) ReadDir(path string) ([]organizer.DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	result := make([]organizer.DirEntry, len(entries))
	for i, entry := range entries {
		result[i] = organizer.DirEntry{Name: entry.Name(), IsDir: entry.IsDir()}
	}
	return result, nil
}

// Move renames src to dst after creating dst's parent directories.
func (m *OSFilesystemManager) Move(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}
	if err := renameFunc(src, dst); err != nil {
		if isEXDEV(err) {
			return &CrossDeviceError{Src: src, Dst: dst, Err: err}
		}
		return err
	}
	return nil
}

func (m *OSFilesystemManager) Remove(path string) error {
	if err := refuseLinkedDir(path); err != nil {
		return err
	}
	return os.Remove(path)
}

func (m *OSFilesystemManager) RemoveAll(path string) error {
	if err := refuseLinkedDir(path); err != nil {
		return err
	}
	return os.RemoveAll(path)
}

// refuseLinkedDir fails for a symlink that resolves to a directory. Removing
// it would drop the link, not the empty directory behind it.
func refuseLinkedDir(path string) error {
	info, err := os.Lstat(path)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return nil
	}
	if target, err := os.Stat(path); err == nil && target.IsDir() {
		return fmt.Errorf("refusing to remove %q: symlink to a directory", path)
	}
	return nil
}

// IsIgnored matches path, relative to root, against the default patterns,
// the configured patterns and root's ignore file. The ignore file is read
// once per root.
func (m *OSFilesystemManager) IsIgnored(path, root string) (bool, error) {
	matcher, ok := m.matchers[root]
	if !ok {
		filePatterns, err := ParseIgnoreFile(filepath.Join(root, IgnoreFileName))
		if err != nil {
			return false, err
		}
		patterns := make([]string, 0, len(defaultIgnorePatterns)+len(m.ignore)+len(filePatterns))
		patterns = append(patterns, defaultIgnorePatterns...)
		patterns = append(patterns, m.ignore...)
		patterns = append(patterns, filePatterns...)
		matcher = NewIgnoreMatcher(patterns)
		m.matchers[root] = matcher
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false, fmt.Errorf("computing relative path: %w", err)
	}
	return matcher.Match(rel), nil
}

// Compile-time check that OSFilesystemManager implements organizer.FilesystemManager
var _ organizer.FilesystemManager = (*OSFilesystemManager)(nil)
