package organizer

// DirEntry is a single directory listing entry.
type DirEntry struct {
	Name  string
	IsDir bool
}

// FilesystemManager is the filesystem surface used by the relocator and the
// pruner. It exists so the tree walks can run against an in-memory tree in
// tests.
type FilesystemManager interface {
	// Exists reports whether anything exists at path.
	Exists(path string) bool

	// IsDir reports whether path exists and is a directory, following
	// symlinks.
	IsDir(path string) bool

	// ReadDir lists the entries of a directory in unspecified order. Entries
	// are not followed: a symlink to a directory is not IsDir.
	ReadDir(path string) ([]DirEntry, error)

	// Move renames src to dst, creating any missing parent directories of
	// dst. An existing file at dst is replaced.
	Move(src, dst string) error

	// Remove deletes a file or an empty directory. A symlink to a directory
	// is never removed.
	Remove(path string) error

	// RemoveAll deletes path and everything below it, with the same symlink
	// rule as Remove.
	RemoveAll(path string) error

	// IsIgnored reports whether path, which lies under root, matches the
	// configured ignore patterns or those in root's ignore file.
	IsIgnored(path, root string) (bool, error)
}
