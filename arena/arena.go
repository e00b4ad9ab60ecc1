// Package arena implements the storage-arena component: a byte-addressable,
// bump-allocated region that backs every node, child entry and text byte in
// a persistent suffix tree. Two realizations are provided: MemoryArena (a
// growable in-process buffer) and FileArena (a memory-mapped, resizable
// file). Both satisfy the Arena interface so the rest of the tree never
// needs to know which one it is talking to.
package arena

import (
	"fmt"

	"github.com/AlexanderV/sstree/internal/format"
)

// Arena is the storage contract shared by every backing realization.
type Arena interface {
	// Size returns the current logical size of the arena in bytes.
	Size() uint64

	// Allocate bump-allocates size bytes and returns the offset of the new
	// region. It grows the underlying storage as needed.
	Allocate(size uint32) (uint64, error)

	// EnsureCapacity grows the underlying storage so at least cap bytes are
	// addressable, without advancing the bump pointer.
	EnsureCapacity(capacity uint64) error

	ReadU16(off uint64) (uint16, error)
	ReadU32(off uint64) (uint32, error)
	ReadI32(off uint64) (int32, error)
	ReadU64(off uint64) (uint64, error)
	ReadI64(off uint64) (int64, error)

	WriteU16(off uint64, v uint16) error
	WriteU32(off uint64, v uint32) error
	WriteI32(off uint64, v int32) error
	WriteU64(off uint64, v uint64) error
	WriteI64(off uint64, v int64) error

	// ReadBytes returns a copy of n bytes starting at off.
	ReadBytes(off uint64, n int) ([]byte, error)
	// WriteBytes copies b into the arena starting at off.
	WriteBytes(off uint64, b []byte) error

	// TrimToSize shrinks the underlying storage to exactly the allocated
	// size, releasing any over-allocated capacity.
	TrimToSize() error

	// Dispose releases any OS-level resources (file descriptors, mappings).
	Dispose() error
	// Disposed reports whether Dispose has already been called.
	Disposed() bool

	// Stats returns allocation instrumentation for builder diagnostics.
	Stats() Stats

	// Bytes exposes the raw backing slice for header parsing and the
	// zero-copy node/text accessors. Callers must not retain it across a
	// call that might grow the arena.
	Bytes() []byte
}

// Stats reports allocator instrumentation, grounded on the teacher's
// allocator-stats idiom but with no free-list bookkeeping: this arena never
// frees a region once allocated.
type Stats struct {
	Allocated       uint64
	Capacity        uint64
	AllocationCount uint64
}

func errBounds(off uint64, n int) error {
	return fmt.Errorf("arena: %w (offset=%d len=%d)", format.ErrBoundsCheck, off, n)
}
