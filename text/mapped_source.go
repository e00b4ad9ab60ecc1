package text

import (
	"fmt"
	"sync/atomic"

	"github.com/AlexanderV/sstree/arena"
)

// MappedTextSource borrows the text region of a FileArena's mapping rather
// than copying it. Its lifetime is tied to the arena: once the arena or this
// view is disposed, no method dereferences the stale region. Slice returns
// ErrDisposed, At panics, and Iterate returns without calling fn; Len still
// reports the original length.
//
// Adapted from the teacher's snapshot-pointer / disposed-flag / dereference
// ordering (mmap_safety.go's SIGBUS pre-fault discipline): there we do not
// own the mapping's full lifetime and must guard against concurrent
// unmapping mid-read, so we take the same "check disposed, then snapshot
// the slice, then read" order, but via a simple atomic flag rather than
// SIGBUS recovery, since Dispose is the only way the mapping goes away and
// it is always explicit.
type MappedTextSource struct {
	a        arena.Arena
	off      uint64
	length   int // in uint16 units
	disposed atomic.Bool
}

// NewMappedTextSource borrows length code units starting at byte offset off
// within a's mapping. The caller is responsible for not disposing a while
// reads are in flight; MappedTextSource.Dispose only marks this view dead,
// it does not dispose the underlying arena.
func NewMappedTextSource(a arena.Arena, off uint64, length int) *MappedTextSource {
	return &MappedTextSource{a: a, off: off, length: length}
}

// Dispose marks this view as no longer readable. It does not affect the
// underlying arena, which may still be in use elsewhere.
func (m *MappedTextSource) Dispose() { m.disposed.Store(true) }

func (m *MappedTextSource) Len() int { return m.length }

func (m *MappedTextSource) At(i int) int32 {
	if m.disposed.Load() || m.a.Disposed() {
		panic("text: read from disposed mapped text source")
	}
	if i == m.length {
		return TerminatorKey
	}
	if i < 0 || i > m.length {
		panic(fmt.Sprintf("text: index %d out of range [0, %d]", i, m.length))
	}
	v, err := m.a.ReadU16(m.off + uint64(i*2))
	if err != nil {
		panic(fmt.Sprintf("text: read unit %d: %v", i, err))
	}
	return int32(v)
}

func (m *MappedTextSource) Slice(lo, hi int) ([]uint16, error) {
	if m.disposed.Load() || m.a.Disposed() {
		return nil, ErrDisposed
	}
	if lo < 0 || hi < lo || hi > m.length {
		return nil, ErrOutOfRange
	}
	out := make([]uint16, hi-lo)
	for i := range out {
		v, err := m.a.ReadU16(m.off + uint64((lo+i)*2))
		if err != nil {
			return nil, fmt.Errorf("text: slice read: %w", err)
		}
		out[i] = v
	}
	return out, nil
}

func (m *MappedTextSource) Iterate(fn func(i int, unit uint16) bool) {
	if m.disposed.Load() || m.a.Disposed() {
		return
	}
	for i := 0; i < m.length; i++ {
		v, err := m.a.ReadU16(m.off + uint64(i*2))
		if err != nil {
			return
		}
		if !fn(i, v) {
			return
		}
	}
}
