//go:build unix

package mmfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenWritableUnix(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mmap test in short mode")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "test.bin")

	m, err := OpenWritable(path, 16)
	if err != nil {
		t.Fatalf("OpenWritable: %v", err)
	}
	defer func() {
		if err := m.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}()

	copy(m.Bytes(), []byte{0xde, 0xad, 0xbe, 0xef})
	if err := m.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != 16 {
		t.Fatalf("file size = %d, want 16", info.Size())
	}
}

func TestGrowUnix(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mmap test in short mode")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "grow.bin")

	m, err := OpenWritable(path, 8)
	if err != nil {
		t.Fatalf("OpenWritable: %v", err)
	}
	defer m.Close()

	copy(m.Bytes(), []byte{1, 2, 3, 4, 5, 6, 7, 8})
	if err := m.Grow(32); err != nil {
		t.Fatalf("Grow: %v", err)
	}
	if len(m.Bytes()) != 32 {
		t.Fatalf("len after grow = %d, want 32", len(m.Bytes()))
	}
	for i, want := range []byte{1, 2, 3, 4, 5, 6, 7, 8} {
		if m.Bytes()[i] != want {
			t.Fatalf("byte %d after grow = %d, want %d", i, m.Bytes()[i], want)
		}
	}
	for i := 8; i < 32; i++ {
		if m.Bytes()[i] != 0 {
			t.Fatalf("byte %d after grow should be zero, got %d", i, m.Bytes()[i])
		}
	}
}

func TestOpenReadOnlyUnix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ro.bin")
	want := []byte{9, 8, 7, 6}
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m, err := OpenReadOnly(path)
	if err != nil {
		t.Fatalf("OpenReadOnly: %v", err)
	}
	defer m.Close()

	if len(m.Bytes()) != len(want) {
		t.Fatalf("len mismatch: got %d want %d", len(m.Bytes()), len(want))
	}
	for i, b := range want {
		if m.Bytes()[i] != b {
			t.Fatalf("byte %d mismatch: got 0x%x want 0x%x", i, m.Bytes()[i], b)
		}
	}
}

func TestOpenReadOnlyZeroLengthUnix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	m, err := OpenReadOnly(path)
	if err != nil {
		t.Fatalf("OpenReadOnly: %v", err)
	}
	if len(m.Bytes()) != 0 {
		t.Fatalf("expected zero-length mapping, got %d", len(m.Bytes()))
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestCloseIsIdempotentUnix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "idempotent.bin")
	m, err := OpenWritable(path, 8)
	if err != nil {
		t.Fatalf("OpenWritable: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}
}
