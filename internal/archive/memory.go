package archive

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"camorg/internal/organizer"
)

// MemoryArchive is an in-memory implementation of the Archive interface,
// useful for testing. This implementation is safe for concurrent use.
type MemoryArchive struct {
	name     string
	snapshot map[string][]byte // "hostID/name" -> snapshot
	version  map[string]int64  // "hostID/name" -> version
	mu       sync.RWMutex
}

// NewMemoryArchive creates a new in-memory archive with the given name.
func NewMemoryArchive(name string) *MemoryArchive {
	return &MemoryArchive{
		name:     name,
		snapshot: make(map[string][]byte),
		version:  make(map[string]int64),
	}
}

func snapshotKey(hostID, name string) string {
	return hostID + "/" + name
}

// PutSnapshot stores a named snapshot for a specific host.
func (m *MemoryArchive) PutSnapshot(hostID, name string, r io.Reader, size int64, version int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := snapshotKey(hostID, name)
	m.snapshot[key] = data
	m.version[key] = version
	return nil
}

// GetSnapshotVersion returns the snapshot version for a host.
// Returns 0 if nothing has been stored for this host/name.
func (m *MemoryArchive) GetSnapshotVersion(hostID, name string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.version[snapshotKey(hostID, name)], nil
}

// GetSnapshot writes a named snapshot for a specific host to w.
func (m *MemoryArchive) GetSnapshot(hostID, name string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.snapshot[snapshotKey(hostID, name)]
	if !ok {
		return fmt.Errorf("snapshot %q not found for host: %s", name, hostID)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	return nil
}

// ValidateSetup always succeeds for in-memory archive.
func (m *MemoryArchive) ValidateSetup() error {
	return nil
}

// Compile-time check that MemoryArchive implements organizer.Archive interface
var _ organizer.Archive = (*MemoryArchive)(nil)
