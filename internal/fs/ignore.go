package fs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFileName is the per-tree ignore file read from a walk root.
const IgnoreFileName = ".camorgignore"

// defaultIgnorePatterns apply under every root: the ignore file itself and
// the Dropbox client's private cache.
var defaultIgnorePatterns = []string{IgnoreFileName, ".dropbox.cache"}

type ignorePattern struct {
	glob string
	// wholePath patterns contain a '/' and match the slash-separated path
	// relative to the root; the rest match the base name.
	wholePath bool
}

// IgnoreMatcher decides which entries a tree walk leaves alone. Matching an
// ignored directory keeps the walk out of it entirely.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher builds a matcher from raw lines. Blank lines and '#'
// comments are dropped.
func NewIgnoreMatcher(lines []string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m.patterns = append(m.patterns, ignorePattern{
			glob:      line,
			wholePath: strings.Contains(line, "/"),
		})
	}
	return m
}

// Match reports whether relativePath is ignored.
func (m *IgnoreMatcher) Match(relativePath string) bool {
	if relativePath == "" {
		return false
	}
	slashed := filepath.ToSlash(relativePath)
	base := filepath.Base(relativePath)

	for _, p := range m.patterns {
		subject := base
		if p.wholePath {
			subject = slashed
		}
		// filepath.Match only fails on malformed globs; those never match.
		if ok, err := filepath.Match(p.glob, subject); err == nil && ok {
			return true
		}
	}
	return false
}

// ParseIgnoreFile returns the raw lines of an ignore file, or nil if the
// file does not exist.
func ParseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return lines, nil
}
