package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryArenaAllocateAndReadWrite(t *testing.T) {
	a := NewMemoryArena(0)

	off, err := a.Allocate(8)
	require.NoError(t, err)
	require.Equal(t, uint64(0), off)

	require.NoError(t, a.WriteU32(off, 0xCAFEBABE))
	got, err := a.ReadU32(off)
	require.NoError(t, err)
	require.Equal(t, uint32(0xCAFEBABE), got)

	off2, err := a.Allocate(8)
	require.NoError(t, err)
	require.Equal(t, uint64(8), off2)
	require.Equal(t, uint64(16), a.Size())
}

func TestMemoryArenaReadWriteBytes(t *testing.T) {
	a := NewMemoryArena(0)
	off, err := a.Allocate(16)
	require.NoError(t, err)

	payload := []byte("0123456789ABCDEF")
	require.NoError(t, a.WriteBytes(off, payload))
	got, err := a.ReadBytes(off, len(payload))
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestMemoryArenaBoundsCheck(t *testing.T) {
	a := NewMemoryArena(0)
	_, err := a.Allocate(4)
	require.NoError(t, err)

	_, err = a.ReadU64(0)
	require.Error(t, err)
}

func TestMemoryArenaEnsureCapacityCeiling(t *testing.T) {
	a := NewMemoryArena(0)
	err := a.EnsureCapacity(maxInMemorySize + 1)
	require.Error(t, err)
}

func TestMemoryArenaDisposeRejectsFurtherOps(t *testing.T) {
	a := NewMemoryArena(0)
	_, err := a.Allocate(4)
	require.NoError(t, err)
	require.NoError(t, a.Dispose())
	require.True(t, a.Disposed())

	_, err = a.Allocate(4)
	require.Error(t, err)
}

func TestMemoryArenaStats(t *testing.T) {
	a := NewMemoryArena(0)
	_, err := a.Allocate(8)
	require.NoError(t, err)
	_, err = a.Allocate(8)
	require.NoError(t, err)

	stats := a.Stats()
	require.Equal(t, uint64(16), stats.Allocated)
	require.Equal(t, uint64(2), stats.AllocationCount)
}

func TestMemoryArenaTrimToSize(t *testing.T) {
	a := NewMemoryArena(1024)
	_, err := a.Allocate(8)
	require.NoError(t, err)
	require.NoError(t, a.TrimToSize())
	require.Equal(t, uint64(8), a.Size())
}

func TestMemoryArenaSignedAndUnsigned64(t *testing.T) {
	a := NewMemoryArena(0)
	off, err := a.Allocate(16)
	require.NoError(t, err)
	require.NoError(t, a.WriteI64(off, -12345))
	got, err := a.ReadI64(off)
	require.NoError(t, err)
	require.Equal(t, int64(-12345), got)

	require.NoError(t, a.WriteU64(off+8, 1<<40))
	gotU, err := a.ReadU64(off + 8)
	require.NoError(t, err)
	require.Equal(t, uint64(1<<40), gotU)
}
