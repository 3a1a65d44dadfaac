package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideDropbox is returned when an absolute source or destination does
// not lie inside the Dropbox root.
var ErrOutsideDropbox = errors.New("path is not inside the Dropbox directory")

// dropboxDirName is appended to a root that does not already end in it.
const dropboxDirName = "Dropbox"

// Locations are the absolute, cleaned paths of one organize run.
type Locations struct {
	Root        string
	Source      string
	Destination string
}

// ResolveLocations normalizes the configured Dropbox root, camera uploads
// source and destination. "~" is expanded in all three. The root loses any
// trailing separator and gets "Dropbox" appended unless that is already its
// last element. Relative source and destination paths are joined onto the
// root; absolute ones must be inside it.
func ResolveLocations(root, source, destination string) (*Locations, error) {
	if root == "" {
		return nil, fmt.Errorf("dropbox root is empty")
	}

	r, err := expandHome(root)
	if err != nil {
		return nil, err
	}
	r, err = filepath.Abs(r)
	if err != nil {
		return nil, fmt.Errorf("resolving dropbox root: %w", err)
	}
	if filepath.Base(r) != dropboxDirName {
		r = filepath.Join(r, dropboxDirName)
	}

	src, err := resolveInside(r, source, "camera uploads")
	if err != nil {
		return nil, err
	}
	dst, err := resolveInside(r, destination, "destination")
	if err != nil {
		return nil, err
	}

	return &Locations{Root: r, Source: src, Destination: dst}, nil
}

func resolveInside(root, p, what string) (string, error) {
	p, err := expandHome(p)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(p) {
		return filepath.Join(root, p), nil
	}

	p = filepath.Clean(p)
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s %s is not under %s", ErrOutsideDropbox, what, p, root)
	}
	return p, nil
}

// expandHome replaces a leading "~" with the current user's home directory.
func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}
