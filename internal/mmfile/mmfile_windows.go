//go:build windows

package mmfile

import (
	"fmt"
	"os"
)

// Mapping on Windows falls back to read-whole-file/write-back-on-close: we
// do not reach for golang.org/x/sys/windows' section-mapping APIs here, so
// there is no real demand paging, but the Arena contract (Bytes/Grow/Close)
// is identical to the unix implementation.
type Mapping struct {
	path   string
	data   []byte
	closed bool
	ro     bool
}

// OpenWritable reads (or creates) the file at path and pads it to
// initialSize in memory; the buffer is flushed back to disk on Close/Sync.
func OpenWritable(path string, initialSize int64) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("mmfile: read %s: %w", path, err)
	}
	if initialSize < 0 {
		initialSize = 0
	}
	buf := make([]byte, initialSize)
	copy(buf, data)
	return &Mapping{path: path, data: buf}, nil
}

// OpenReadOnly reads the whole file into memory.
func OpenReadOnly(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mmfile: read %s: %w", path, err)
	}
	return &Mapping{path: path, data: data, ro: true}, nil
}

func (m *Mapping) Bytes() []byte { return m.data }

// Grow resizes the in-memory buffer and persists it immediately, since there
// is no true mapping to remap.
func (m *Mapping) Grow(newSize int64) error {
	if m.closed {
		return ErrClosed
	}
	buf := make([]byte, newSize)
	copy(buf, m.data)
	m.data = buf
	return m.Sync()
}

// Sync writes the current buffer back to disk.
func (m *Mapping) Sync() error {
	if m.closed {
		return ErrClosed
	}
	if m.ro {
		return nil
	}
	if err := os.WriteFile(m.path, m.data, 0o644); err != nil {
		return fmt.Errorf("mmfile: write %s: %w", m.path, err)
	}
	return nil
}

// TrimToSize truncates the in-memory buffer and persists it.
func (m *Mapping) TrimToSize(size int64) error { return m.Grow(size) }

// Close flushes and releases the buffer.
func (m *Mapping) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	err := m.Sync()
	m.data = nil
	return err
}

// Fd has no meaning on this fallback path.
func (m *Mapping) Fd() int { return -1 }
