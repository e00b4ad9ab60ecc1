// Package layout describes the two on-disk node shapes (Compact, Large)
// and the child-entry shapes that go with them, plus the hybrid resolver
// that lets a single read-side algorithm walk a tree that mixes both.
package layout

import (
	"github.com/AlexanderV/sstree/arena"
	"github.com/AlexanderV/sstree/internal/format"
)

// NullOffset is the universal "no link" / "no children" sentinel seen above
// this package, regardless of which concrete layout backs a node.
const NullOffset = format.NullOffset

// NodeLayout describes one node-record shape: field offsets, sizes, and
// typed accessors operating on (arena, node offset). Start/end/child-entry
// key offsets are invariant across layouts (spec §4.2); only link, head,
// depth, leaf-count and child-count fields move.
type NodeLayout interface {
	Version() uint32
	NodeSize() int
	ChildEntrySize() int

	ReadStart(a arena.Arena, off uint64) (uint32, error)
	WriteStart(a arena.Arena, off uint64, v uint32) error
	ReadEnd(a arena.Arena, off uint64) (uint32, error)
	WriteEnd(a arena.Arena, off uint64, v uint32) error
	ReadSuffixLink(a arena.Arena, off uint64) (int64, error)
	WriteSuffixLink(a arena.Arena, off uint64, v int64) error
	ReadDepth(a arena.Arena, off uint64) (uint32, error)
	WriteDepth(a arena.Arena, off uint64, v uint32) error
	ReadLeafCount(a arena.Arena, off uint64) (uint32, error)
	WriteLeafCount(a arena.Arena, off uint64, v uint32) error

	// ReadChildrenHeadAndCount returns the raw children_head offset and the
	// raw (possibly jump-tagged) child_count field, untouched. Interpreting
	// the jumped bit is the HybridResolver's job, not the layout's.
	ReadChildrenHeadAndCount(a arena.Arena, off uint64) (head int64, rawCount int32, err error)
	WriteChildrenHeadAndCount(a arena.Arena, off uint64, head int64, rawCount int32) error

	// ChildEntry accessors, indexed by entry position within an array
	// starting at base.
	ReadChildKey(a arena.Arena, base uint64, i int) (int32, error)
	ReadChildOffset(a arena.Arena, base uint64, i int) (int64, error)
	WriteChildEntry(a arena.Arena, base uint64, i int, key int32, childOffset int64) error
}

// LayoutForVersion maps a header version to its base node layout (spec
// §4.2's "layout-by-version lookup": v3->Large, v4->Compact, v5->Compact
// base, with Large used above the hybrid transition boundary).
func LayoutForVersion(version uint32) (NodeLayout, error) {
	switch version {
	case format.VersionLarge:
		return Large{}, nil
	case format.VersionCompact, format.VersionHybrid:
		return Compact{}, nil
	default:
		return nil, format.ErrUnknownVersion
	}
}
