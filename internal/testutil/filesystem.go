package testutil

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"camorg/internal/organizer"
)

// MockFile represents an entry in the mock filesystem.
type MockFile struct {
	Content     []byte
	IsDirectory bool
}

// MockFilesystemManager is an in-memory filesystem for testing. Paths are
// absolute and slash-separated; adding an entry creates its parents.
type MockFilesystemManager struct {
	files map[string]*MockFile

	// Ignore holds base-name globs reported by IsIgnored.
	Ignore []string

	moveErrs   map[string]error // keyed by source path
	removeErrs map[string]error
	readErrs   map[string]error

	// Moves records successful moves as "src -> dst", in order.
	Moves []string
}

// NewMockFilesystemManager creates a new mock filesystem containing only "/".
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files:      map[string]*MockFile{"/": {IsDirectory: true}},
		moveErrs:   make(map[string]error),
		removeErrs: make(map[string]error),
		readErrs:   make(map[string]error),
	}
}

// AddFile adds a file, creating missing parent directories.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	path = filepath.Clean(path)
	m.AddDirectory(filepath.Dir(path))
	m.files[path] = &MockFile{Content: content}
}

// AddDirectory adds a directory and any missing parents.
func (m *MockFilesystemManager) AddDirectory(path string) {
	path = filepath.Clean(path)
	for p := path; ; p = filepath.Dir(p) {
		if _, ok := m.files[p]; !ok {
			m.files[p] = &MockFile{IsDirectory: true}
		}
		if p == filepath.Dir(p) {
			return
		}
	}
}

// FailMove makes every Move from src fail with err.
func (m *MockFilesystemManager) FailMove(src string, err error) {
	m.moveErrs[filepath.Clean(src)] = err
}

// FailRemove makes Remove and RemoveAll of path fail with err.
func (m *MockFilesystemManager) FailRemove(path string, err error) {
	m.removeErrs[filepath.Clean(path)] = err
}

// FailReadDir makes ReadDir of path fail with err.
func (m *MockFilesystemManager) FailReadDir(path string, err error) {
	m.readErrs[filepath.Clean(path)] = err
}

// Get returns the entry at path, or nil.
func (m *MockFilesystemManager) Get(path string) *MockFile {
	return m.files[filepath.Clean(path)]
}

// Paths returns every path in the tree, sorted.
func (m *MockFilesystemManager) Paths() []string {
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (m *MockFilesystemManager) Exists(path string) bool {
	_, ok := m.files[filepath.Clean(path)]
	return ok
}

func (m *MockFilesystemManager) IsDir(path string) bool {
	f, ok := m.files[filepath.Clean(path)]
	return ok && f.IsDirectory
}

func (m *MockFilesystemManager) ReadDir(path string) ([]organizer.DirEntry, error) {
	path = filepath.Clean(path)
	if err, ok := m.readErrs[path]; ok {
		return nil, err
	}
	if !m.IsDir(path) {
		return nil, fmt.Errorf("not a directory: %s", path)
	}

	var entries []organizer.DirEntry
	for _, child := range m.children(path) {
		entries = append(entries, organizer.DirEntry{
			Name:  filepath.Base(child),
			IsDir: m.files[child].IsDirectory,
		})
	}
	return entries, nil
}

func (m *MockFilesystemManager) Move(src, dst string) error {
	src, dst = filepath.Clean(src), filepath.Clean(dst)
	if err, ok := m.moveErrs[src]; ok {
		return err
	}
	f, ok := m.files[src]
	if !ok {
		return fmt.Errorf("file not found: %s", src)
	}
	if f.IsDirectory {
		return fmt.Errorf("cannot move directory: %s", src)
	}
	if existing, ok := m.files[dst]; ok && existing.IsDirectory {
		return fmt.Errorf("destination is a directory: %s", dst)
	}

	m.AddDirectory(filepath.Dir(dst))
	delete(m.files, src)
	m.files[dst] = f
	m.Moves = append(m.Moves, src+" -> "+dst)
	return nil
}

func (m *MockFilesystemManager) Remove(path string) error {
	path = filepath.Clean(path)
	if err, ok := m.removeErrs[path]; ok {
		return err
	}
	if _, ok := m.files[path]; !ok {
		return fmt.Errorf("file not found: %s", path)
	}
	if len(m.children(path)) > 0 {
		return fmt.Errorf("directory not empty: %s", path)
	}
	delete(m.files, path)
	return nil
}

func (m *MockFilesystemManager) RemoveAll(path string) error {
	path = filepath.Clean(path)
	if err, ok := m.removeErrs[path]; ok {
		return err
	}
	prefix := path + "/"
	for p := range m.files {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(m.files, p)
		}
	}
	return nil
}

func (m *MockFilesystemManager) IsIgnored(path, root string) (bool, error) {
	base := filepath.Base(path)
	for _, glob := range m.Ignore {
		if ok, _ := filepath.Match(glob, base); ok {
			return true, nil
		}
	}
	return false, nil
}

// children returns the direct children of dir, sorted.
func (m *MockFilesystemManager) children(dir string) []string {
	var out []string
	for p := range m.files {
		if p != dir && filepath.Dir(p) == dir {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Compile-time check
var _ organizer.FilesystemManager = (*MockFilesystemManager)(nil)
