package arena

import (
	"fmt"

	"github.com/AlexanderV/sstree/internal/buf"
	"github.com/AlexanderV/sstree/internal/format"
)

// maxInMemorySize caps a MemoryArena at 2 GiB; a larger arena needs a
// FileArena (spec §4.1 "In-memory realization").
const maxInMemorySize = 1 << 31

// MemoryArena is a growable, doubling in-process buffer. It never shrinks
// below the allocated size (TrimToSize truncates capacity, not content).
type MemoryArena struct {
	data      []byte
	allocated uint64
	allocs    uint64
	disposed  bool
}

// NewMemoryArena allocates an empty MemoryArena with the given initial
// capacity (0 is fine; the first Allocate call grows it).
func NewMemoryArena(initialCapacity uint32) *MemoryArena {
	return &MemoryArena{data: make([]byte, 0, initialCapacity)}
}

func (a *MemoryArena) Size() uint64 { return uint64(len(a.data)) }

func (a *MemoryArena) Stats() Stats {
	return Stats{Allocated: a.allocated, Capacity: uint64(cap(a.data)), AllocationCount: a.allocs}
}

func (a *MemoryArena) Disposed() bool { return a.disposed }

func (a *MemoryArena) Dispose() error {
	a.data = nil
	a.disposed = true
	return nil
}

func (a *MemoryArena) Bytes() []byte { return a.data }

// Allocate bump-allocates size bytes at the current end of the arena,
// growing the backing slice (doubling, capped at maxInMemorySize) as needed.
func (a *MemoryArena) Allocate(size uint32) (uint64, error) {
	if a.disposed {
		return 0, format.ErrDisposed
	}
	off := uint64(len(a.data))
	newLen, ok := buf.AddOverflowSafe(len(a.data), int(size))
	if !ok {
		return 0, fmt.Errorf("arena: allocate overflow: %w", format.ErrCapacityExceeded)
	}
	if uint64(newLen) > maxInMemorySize {
		return 0, fmt.Errorf("arena: in-memory ceiling exceeded: %w", format.ErrCapacityExceeded)
	}
	if err := a.growTo(newLen); err != nil {
		return 0, err
	}
	a.data = a.data[:newLen]
	a.allocated = uint64(newLen)
	a.allocs++
	return off, nil
}

// EnsureCapacity grows the backing slice's capacity (not its length) to at
// least capacity bytes, so a subsequent sequence of Allocate calls does not
// repeatedly reallocate.
func (a *MemoryArena) EnsureCapacity(capacity uint64) error {
	if a.disposed {
		return format.ErrDisposed
	}
	if capacity > maxInMemorySize {
		return fmt.Errorf("arena: ensure capacity: %w", format.ErrCapacityExceeded)
	}
	if uint64(cap(a.data)) >= capacity {
		return nil
	}
	grown := make([]byte, len(a.data), capacity)
	copy(grown, a.data)
	a.data = grown
	return nil
}

func (a *MemoryArena) growTo(newLen int) error {
	if newLen <= cap(a.data) {
		return nil
	}
	newCap := cap(a.data)
	if newCap == 0 {
		newCap = 64
	}
	for newCap < newLen {
		doubled := newCap * 2
		if doubled <= newCap || doubled > maxInMemorySize {
			doubled = maxInMemorySize
		}
		newCap = doubled
		if newCap >= maxInMemorySize {
			break
		}
	}
	if newCap < newLen {
		return fmt.Errorf("arena: grow: %w", format.ErrCapacityExceeded)
	}
	grown := make([]byte, len(a.data), newCap)
	copy(grown, a.data)
	a.data = grown
	return nil
}

// TrimToSize releases any over-allocated capacity beyond the current length.
func (a *MemoryArena) TrimToSize() error {
	if a.disposed {
		return format.ErrDisposed
	}
	trimmed := make([]byte, len(a.data))
	copy(trimmed, a.data)
	a.data = trimmed
	return nil
}

func (a *MemoryArena) bounds(off uint64, n int) error {
	if a.disposed {
		return format.ErrDisposed
	}
	if !buf.HasU64(uint64(len(a.data)), off, n) {
		return errBounds(off, n)
	}
	return nil
}

func (a *MemoryArena) ReadU16(off uint64) (uint16, error) {
	if err := a.bounds(off, 2); err != nil {
		return 0, err
	}
	return format.U16(a.data, int(off)), nil
}

func (a *MemoryArena) ReadU32(off uint64) (uint32, error) {
	if err := a.bounds(off, 4); err != nil {
		return 0, err
	}
	return format.U32(a.data, int(off)), nil
}

func (a *MemoryArena) ReadI32(off uint64) (int32, error) {
	if err := a.bounds(off, 4); err != nil {
		return 0, err
	}
	return format.I32(a.data, int(off)), nil
}

func (a *MemoryArena) ReadU64(off uint64) (uint64, error) {
	if err := a.bounds(off, 8); err != nil {
		return 0, err
	}
	return format.U64(a.data, int(off)), nil
}

func (a *MemoryArena) ReadI64(off uint64) (int64, error) {
	if err := a.bounds(off, 8); err != nil {
		return 0, err
	}
	return format.I64(a.data, int(off)), nil
}

func (a *MemoryArena) WriteU16(off uint64, v uint16) error {
	if err := a.bounds(off, 2); err != nil {
		return err
	}
	format.PutU16(a.data, int(off), v)
	return nil
}

func (a *MemoryArena) WriteU32(off uint64, v uint32) error {
	if err := a.bounds(off, 4); err != nil {
		return err
	}
	format.PutU32(a.data, int(off), v)
	return nil
}

func (a *MemoryArena) WriteI32(off uint64, v int32) error {
	if err := a.bounds(off, 4); err != nil {
		return err
	}
	format.PutI32(a.data, int(off), v)
	return nil
}

func (a *MemoryArena) WriteU64(off uint64, v uint64) error {
	if err := a.bounds(off, 8); err != nil {
		return err
	}
	format.PutU64(a.data, int(off), v)
	return nil
}

func (a *MemoryArena) WriteI64(off uint64, v int64) error {
	if err := a.bounds(off, 8); err != nil {
		return err
	}
	format.PutI64(a.data, int(off), v)
	return nil
}

func (a *MemoryArena) ReadBytes(off uint64, n int) ([]byte, error) {
	if err := a.bounds(off, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, a.data[off:uint64(int(off)+n)])
	return out, nil
}

func (a *MemoryArena) WriteBytes(off uint64, b []byte) error {
	if err := a.bounds(off, len(b)); err != nil {
		return err
	}
	copy(a.data[off:], b)
	return nil
}
