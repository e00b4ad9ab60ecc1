package arena

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileArenaAllocateAndReadWrite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mmap test in short mode")
	}
	path := filepath.Join(t.TempDir(), "arena.bin")
	a, err := OpenFileArena(path, 64)
	require.NoError(t, err)
	defer a.Dispose()

	off, err := a.Allocate(8)
	require.NoError(t, err)
	require.NoError(t, a.WriteU32(off, 0xFEEDFACE))

	got, err := a.ReadU32(off)
	require.NoError(t, err)
	require.Equal(t, uint32(0xFEEDFACE), got)
}

func TestFileArenaGrowsPastInitialCapacity(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mmap test in short mode")
	}
	path := filepath.Join(t.TempDir(), "grow.bin")
	a, err := OpenFileArena(path, 8)
	require.NoError(t, err)
	defer a.Dispose()

	var lastOff uint64
	for i := 0; i < 20; i++ {
		off, err := a.Allocate(16)
		require.NoError(t, err)
		require.NoError(t, a.WriteU64(off, uint64(i)))
		lastOff = off
	}
	got, err := a.ReadU64(lastOff)
	require.NoError(t, err)
	require.Equal(t, uint64(19), got)
}

func TestFileArenaTrimAndReopenReadOnly(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mmap test in short mode")
	}
	path := filepath.Join(t.TempDir(), "trim.bin")
	a, err := OpenFileArena(path, 256)
	require.NoError(t, err)

	off, err := a.Allocate(8)
	require.NoError(t, err)
	require.NoError(t, a.WriteU64(off, 0x1122334455667788))
	require.NoError(t, a.TrimToSize())
	require.NoError(t, a.Dispose())

	ro, err := OpenFileArenaReadOnly(path)
	require.NoError(t, err)
	defer ro.Dispose()
	require.Equal(t, uint64(8), ro.Size())
	got, err := ro.ReadU64(off)
	require.NoError(t, err)
	require.Equal(t, uint64(0x1122334455667788), got)
}

func TestFileArenaSizeIsLogicalNotPhysical(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mmap test in short mode")
	}
	path := filepath.Join(t.TempDir(), "logical.bin")
	a, err := OpenFileArena(path, 4096)
	require.NoError(t, err)
	defer a.Dispose()

	require.Equal(t, uint64(0), a.Size(), "a freshly opened arena has allocated nothing yet")

	_, err = a.Allocate(10)
	require.NoError(t, err)
	require.Equal(t, uint64(10), a.Size(), "Size must track the bump pointer, not the over-allocated mapping")
}

func TestFileArenaDisposeIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mmap test in short mode")
	}
	path := filepath.Join(t.TempDir(), "dispose.bin")
	a, err := OpenFileArena(path, 16)
	require.NoError(t, err)
	require.NoError(t, a.Dispose())
	require.NoError(t, a.Dispose())
	require.True(t, a.Disposed())
}
