package arena

import (
	"fmt"

	"github.com/AlexanderV/sstree/internal/buf"
	"github.com/AlexanderV/sstree/internal/format"
	"github.com/AlexanderV/sstree/internal/mmfile"
)

// fileGrowthFactor governs how aggressively EnsureCapacity over-allocates a
// FileArena's mapping to amortize the cost of remapping (unmap + ftruncate +
// mmap) across many Allocate calls.
const fileGrowthFactor = 2

// FileArena is backed by a growable memory-mapped file. It trades the
// MemoryArena's 2 GiB ceiling for the ability to use a Large (64-bit
// offset) layout and survive the process (spec §4.1 "File-backed
// realization").
type FileArena struct {
	mapping   *mmfile.Mapping
	allocated uint64
	allocs    uint64
	disposed  bool
}

// OpenFileArena creates or opens path as a writable, memory-mapped arena
// with the given initial capacity.
func OpenFileArena(path string, initialCapacity int64) (*FileArena, error) {
	m, err := mmfile.OpenWritable(path, initialCapacity)
	if err != nil {
		return nil, fmt.Errorf("arena: open file arena: %w", err)
	}
	return &FileArena{mapping: m}, nil
}

// OpenFileArenaReadOnly maps an existing sealed arena file read-only. Writes
// and EnsureCapacity calls against it fail.
func OpenFileArenaReadOnly(path string) (*FileArena, error) {
	m, err := mmfile.OpenReadOnly(path)
	if err != nil {
		return nil, fmt.Errorf("arena: open file arena read-only: %w", err)
	}
	fa := &FileArena{mapping: m}
	fa.allocated = uint64(len(m.Bytes()))
	return fa, nil
}

// Size returns the arena's logical size: the bump-allocated extent, not the
// (possibly larger, growth-factor over-allocated) physical mapping length.
// Header TotalSize and the builder's promotion-offset math both depend on
// this being the logical size, exactly like MemoryArena's len(data).
func (a *FileArena) Size() uint64 { return a.allocated }

func (a *FileArena) Stats() Stats {
	return Stats{Allocated: a.allocated, Capacity: uint64(len(a.mapping.Bytes())), AllocationCount: a.allocs}
}

func (a *FileArena) Disposed() bool { return a.disposed }

// Dispose unmaps and closes the backing file. Every failure path still
// releases what it can rather than leaking the mapping or the descriptor
// (mirrors the teacher's mmap-safety recover-and-report discipline, adapted
// from SIGBUS recovery to close-ordering).
func (a *FileArena) Dispose() error {
	if a.disposed {
		return nil
	}
	a.disposed = true
	if a.mapping == nil {
		return nil
	}
	err := a.mapping.Close()
	a.mapping = nil
	return err
}

func (a *FileArena) Bytes() []byte {
	if a.mapping == nil {
		return nil
	}
	return a.mapping.Bytes()
}

// Allocate bump-allocates size bytes, growing the mapping first if the
// allocation would exceed the current mapped length.
func (a *FileArena) Allocate(size uint32) (uint64, error) {
	if a.disposed {
		return 0, format.ErrDisposed
	}
	off := a.allocated
	end, ok := buf.AddOverflowSafe(int(off), int(size))
	if !ok {
		return 0, fmt.Errorf("arena: allocate overflow: %w", format.ErrCapacityExceeded)
	}
	if err := a.EnsureCapacity(uint64(end)); err != nil {
		return 0, err
	}
	a.allocated = uint64(end)
	a.allocs++
	return off, nil
}

// EnsureCapacity grows the mapping to at least capacity bytes. It
// over-allocates by fileGrowthFactor to amortize remap cost, matching the
// teacher's HBIN-growth idiom of growing in bigger steps than the immediate
// request.
func (a *FileArena) EnsureCapacity(capacity uint64) error {
	if a.disposed {
		return format.ErrDisposed
	}
	current := int64(len(a.mapping.Bytes()))
	if uint64(current) >= capacity {
		return nil
	}
	target := int64(capacity) * fileGrowthFactor
	if target < int64(capacity) {
		target = int64(capacity)
	}
	if err := a.mapping.Grow(target); err != nil {
		return fmt.Errorf("arena: ensure capacity: %w", err)
	}
	return nil
}

// TrimToSize truncates the underlying file (and mapping) down to exactly
// the allocated size, releasing growth slack before a final Sync.
func (a *FileArena) TrimToSize() error {
	if a.disposed {
		return format.ErrDisposed
	}
	if err := a.mapping.TrimToSize(int64(a.allocated)); err != nil {
		return fmt.Errorf("arena: trim to size: %w", err)
	}
	return nil
}

func (a *FileArena) bounds(off uint64, n int) error {
	if a.disposed {
		return format.ErrDisposed
	}
	if !buf.HasU64(uint64(len(a.mapping.Bytes())), off, n) {
		return errBounds(off, n)
	}
	return nil
}

func (a *FileArena) ReadU16(off uint64) (uint16, error) {
	if err := a.bounds(off, 2); err != nil {
		return 0, err
	}
	return format.U16(a.mapping.Bytes(), int(off)), nil
}

func (a *FileArena) ReadU32(off uint64) (uint32, error) {
	if err := a.bounds(off, 4); err != nil {
		return 0, err
	}
	return format.U32(a.mapping.Bytes(), int(off)), nil
}

func (a *FileArena) ReadI32(off uint64) (int32, error) {
	if err := a.bounds(off, 4); err != nil {
		return 0, err
	}
	return format.I32(a.mapping.Bytes(), int(off)), nil
}

func (a *FileArena) ReadU64(off uint64) (uint64, error) {
	if err := a.bounds(off, 8); err != nil {
		return 0, err
	}
	return format.U64(a.mapping.Bytes(), int(off)), nil
}

func (a *FileArena) ReadI64(off uint64) (int64, error) {
	if err := a.bounds(off, 8); err != nil {
		return 0, err
	}
	return format.I64(a.mapping.Bytes(), int(off)), nil
}

func (a *FileArena) WriteU16(off uint64, v uint16) error {
	if err := a.bounds(off, 2); err != nil {
		return err
	}
	format.PutU16(a.mapping.Bytes(), int(off), v)
	return nil
}

func (a *FileArena) WriteU32(off uint64, v uint32) error {
	if err := a.bounds(off, 4); err != nil {
		return err
	}
	format.PutU32(a.mapping.Bytes(), int(off), v)
	return nil
}

func (a *FileArena) WriteI32(off uint64, v int32) error {
	if err := a.bounds(off, 4); err != nil {
		return err
	}
	format.PutI32(a.mapping.Bytes(), int(off), v)
	return nil
}

func (a *FileArena) WriteU64(off uint64, v uint64) error {
	if err := a.bounds(off, 8); err != nil {
		return err
	}
	format.PutU64(a.mapping.Bytes(), int(off), v)
	return nil
}

func (a *FileArena) WriteI64(off uint64, v int64) error {
	if err := a.bounds(off, 8); err != nil {
		return err
	}
	format.PutI64(a.mapping.Bytes(), int(off), v)
	return nil
}

func (a *FileArena) ReadBytes(off uint64, n int) ([]byte, error) {
	if err := a.bounds(off, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, a.mapping.Bytes()[off:uint64(int(off)+n)])
	return out, nil
}

func (a *FileArena) WriteBytes(off uint64, b []byte) error {
	if err := a.bounds(off, len(b)); err != nil {
		return err
	}
	copy(a.mapping.Bytes()[off:], b)
	return nil
}

// Fd exposes the underlying file descriptor, primarily for tests that want
// to assert the mapping is backed by a real file.
func (a *FileArena) Fd() int {
	if a.mapping == nil {
		return -1
	}
	return a.mapping.Fd()
}
