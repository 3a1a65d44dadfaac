package archive

import (
	"context"
	"fmt"

	"camorg/internal/config"
	"camorg/internal/organizer"
)

// NewArchiveFromConfig creates an Archive implementation based on the archive config type.
func NewArchiveFromConfig(cfg config.ArchiveConfig) (organizer.Archive, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryArchive(cfg.Name), nil
	case "s3":
		a, err := NewS3Archive(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		return a, nil
	case "filesystem":
		if cfg.FSArchiveRoot == "" {
			return nil, fmt.Errorf("filesystem archive requires fs_archive_root to be set")
		}
		a, err := NewFileSystemArchive(cfg.Name, cfg.FSArchiveRoot)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown archive type: %s", cfg.Type)
	}
}
