//go:build !unix && !windows

package mmfile

import (
	"fmt"
	"os"
)

// Mapping is the generic fallback for platforms without a unix or windows
// build tag: identical read-whole/write-back behavior to mmfile_windows.go.
type Mapping struct {
	path   string
	data   []byte
	closed bool
	ro     bool
}

// OpenWritable reads (or creates) the file at path and pads it to
// initialSize in memory.
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

func (m *Mapping) Grow(newSize int64) error {
	if m.closed {
		return ErrClosed
	}
	buf := make([]byte, newSize)
	copy(buf, m.data)
	m.data = buf
	return m.Sync()
}

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

func (m *Mapping) TrimToSize(size int64) error { return m.Grow(size) }

func (m *Mapping) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	err := m.Sync()
	m.data = nil
	return err
}

func (m *Mapping) Fd() int { return -1 }
