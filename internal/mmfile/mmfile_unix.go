//go:build unix

package mmfile

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Mapping is a writable, growable memory map of a regular file.
type Mapping struct {
	f      *os.File
	data   []byte
	closed bool
}

// OpenWritable opens (creating if necessary) the file at path, truncates it
// to exactly initialSize bytes, and maps it read-write.
func OpenWritable(path string, initialSize int64) (*Mapping, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("mmfile: open %s: %w", path, err)
	}
	if initialSize < 0 {
		initialSize = 0
	}
	if err := f.Truncate(initialSize); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmfile: truncate %s to %d: %w", path, initialSize, err)
	}
	data, err := mmapFile(f, initialSize)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Mapping{f: f, data: data}, nil
}

// OpenReadOnly maps an existing, already-sealed file read-only across its
// full size. Used by Tree.Load for a file-backed arena with no writer.
func OpenReadOnly(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmfile: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmfile: stat %s: %w", path, err)
	}
	size := info.Size()
	if size == 0 {
		return &Mapping{f: f, data: []byte{}}, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmfile: mmap %s: %w", path, err)
	}
	return &Mapping{f: f, data: data}, nil
}

func mmapFile(f *os.File, size int64) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmfile: mmap: %w", err)
	}
	return data, nil
}

// Bytes returns the current mapped region. The slice becomes invalid after
// the next call to Grow or Close.
func (m *Mapping) Bytes() []byte { return m.data }

// Grow remaps the file after extending it to newSize. On success the old
// slice is invalid; callers must re-fetch Bytes(). A failed Grow attempts to
// rebind the previous mapping at the previous size; if that also fails the
// Mapping is poisoned and every subsequent call returns ErrClosed.
func (m *Mapping) Grow(newSize int64) error {
	if m.closed {
		return ErrClosed
	}
	prevSize := int64(len(m.data))
	if len(m.data) > 0 {
		if err := unix.Munmap(m.data); err != nil {
			m.closed = true
			_ = m.f.Close()
			return fmt.Errorf("mmfile: munmap before grow: %w", err)
		}
		m.data = nil
	}
	if err := m.f.Truncate(newSize); err != nil {
		// Recovery: rebind the previous mapping at the previous size.
		if remapped, rerr := mmapFile(m.f, prevSize); rerr == nil {
			m.data = remapped
			return fmt.Errorf("mmfile: truncate to %d: %w", newSize, err)
		}
		m.closed = true
		_ = m.f.Close()
		return fmt.Errorf("mmfile: truncate to %d: %w (recovery mapping also failed)", newSize, err)
	}
	data, err := mmapFile(m.f, newSize)
	if err != nil {
		if remapped, rerr := mmapFile(m.f, prevSize); rerr == nil {
			m.data = remapped
			_ = m.f.Truncate(prevSize)
			return err
		}
		m.closed = true
		_ = m.f.Close()
		return fmt.Errorf("%w (recovery mapping also failed)", err)
	}
	m.data = data
	return nil
}

// Sync flushes the mapped pages to disk.
func (m *Mapping) Sync() error {
	if m.closed {
		return ErrClosed
	}
	if len(m.data) == 0 {
		return nil
	}
	return unix.Msync(m.data, unix.MS_SYNC)
}

// TrimToSize truncates the backing file (and remaps) to exactly size bytes.
func (m *Mapping) TrimToSize(size int64) error {
	return m.Grow(size)
}

// Close unmaps the region and closes the file descriptor. Safe to call
// multiple times.
func (m *Mapping) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	var unmapErr error
	if len(m.data) > 0 {
		unmapErr = unix.Munmap(m.data)
	}
	m.data = nil
	closeErr := m.f.Close()
	if unmapErr != nil {
		return fmt.Errorf("mmfile: munmap on close: %w", unmapErr)
	}
	if closeErr != nil {
		return fmt.Errorf("mmfile: close on close: %w", closeErr)
	}
	return nil
}

// Fd returns the underlying file descriptor, or -1 if closed.
func (m *Mapping) Fd() int {
	if m.closed {
		return -1
	}
	return int(m.f.Fd())
}
