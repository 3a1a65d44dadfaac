package organizer

import "io"

// Archive keeps versioned journal snapshots away from the machine that
// produced them. Snapshots are addressed by host ID and name.
type Archive interface {
	// PutSnapshot stores size bytes read from r, tagged with version.
	PutSnapshot(hostID, name string, r io.Reader, size int64, version int64) error

	// GetSnapshot writes the stored snapshot to w.
	GetSnapshot(hostID, name string, w io.Writer) error

	// GetSnapshotVersion returns the stored version, or 0 if there is none.
	GetSnapshotVersion(hostID, name string) (int64, error)

	// ValidateSetup checks that the archive is reachable and writable.
	ValidateSetup() error
}
