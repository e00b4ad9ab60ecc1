// Package format houses the low-level, allocation-free description of the
// persistent suffix-tree arena layout: header fields, the two node record
// shapes (Compact and Large), child-entry shapes, and the jump-table slot
// shape. It is independent of any in-memory tree object so higher-level
// packages (layout, arena, suffixtree) can build on a single source of
// truth for "where is byte N of field X".
package format

// Magic is the 8-byte signature at the start of every arena.
const Magic uint64 = 0x5452454558494646

// ExportMagic is the 8-byte signature at the start of a logical export stream.
const ExportMagic uint64 = 0x53544C4F47494332

// Format versions recorded in the header.
const (
	VersionLarge   uint32 = 3
	VersionCompact uint32 = 4
	VersionHybrid  uint32 = 5
)

// ExportVersion is the only supported logical-export format version.
const ExportVersion int32 = 2

// Null sentinels. U32Null is the Compact layout's "no link" marker; it is
// translated to the universal NullOffset (-1) at every API boundary so
// callers never see the 32-bit representation directly (spec §4.2, §9
// "Compact null sentinel").
const (
	U32Null    uint32 = 0xFFFFFFFF
	NullOffset int64  = -1
)

// JumpedBit is the top bit of a node's raw child_count field. When set, the
// remaining 31 bits are the real child count and children_head points at an
// 8-byte jump slot rather than a child-entry array (spec §3 "Child entry").
// Written as the exact MinInt32 bit pattern (0x80000000) rather than 1<<31
// because the latter overflows a constant int32 expression in Go.
const JumpedBit int32 = -2147483648

// ChildCountMask extracts the low 31 bits of a jumped child_count field.
const ChildCountMask int32 = 2147483647

// JumpSlotSize is the width, in bytes, of one jump-table slot.
const JumpSlotSize = 8

// Header layout. The header is a fixed 80-byte prefix regardless of
// version; versions 3/4 simply leave bytes 48-79 zeroed (spec §3 "Header").
const (
	HeaderMagicOffset           = 0  // u64
	HeaderVersionOffset         = 8  // u32
	HeaderTextLengthOffset      = 12 // u32
	HeaderRootOffset            = 16 // u64
	HeaderTextRegionOffset      = 24 // u64
	HeaderNodeCountOffset       = 32 // u32
	headerReservedOffset        = 36 // 4 bytes, reserved/zero
	HeaderTotalSizeOffset       = 40 // u64
	HeaderTransitionOffset      = 48 // u64, v5 only
	HeaderJumpStartOffset       = 56 // u64, v5 only
	HeaderJumpEndOffset         = 64 // u64, v5 only
	HeaderDeepestInternalOffset = 72 // u64, v5 only

	HeaderSize = 80
)

// Compact node record layout (28 bytes total).
const (
	CompactStartOffset         = 0  // u32
	CompactEndOffset           = 4  // u32
	CompactSuffixLinkOffset    = 8  // u32, U32Null = null
	CompactDepthFromRootOffset = 12 // u32
	CompactLeafCountOffset     = 16 // u32
	CompactChildrenHeadOffset  = 20 // u32
	CompactChildCountOffset    = 24 // i32

	CompactNodeSize = 28
)

// Compact child-entry layout (8 bytes total).
const (
	CompactChildKeyOffset    = 0 // u32 (signed-compared)
	CompactChildOffsetOffset = 4 // u32

	CompactChildEntrySize = 8
)

// Large node record layout (40 bytes total; bytes 36-39 are unused padding
// so the record stays a multiple of 8 for the i64 fields that follow it).
const (
	LargeStartOffset         = 0  // u32
	LargeEndOffset           = 4  // u32
	LargeSuffixLinkOffset    = 8  // i64, -1 = null
	LargeDepthFromRootOffset = 16 // u32
	LargeLeafCountOffset     = 20 // u32
	LargeChildrenHeadOffset  = 24 // i64
	LargeChildCountOffset    = 32 // i32

	LargeNodeSize = 40
)

// Large child-entry layout (12 bytes total).
const (
	LargeChildKeyOffset    = 0 // u32 (signed-compared)
	LargeChildOffsetOffset = 4 // i64

	LargeChildEntrySize = 12
)

// TerminatorKey is the virtual sentinel code unit's child-entry key. Stored
// as u32 bit pattern 0xFFFFFFFF but interpreted as signed int32 (-1) so it
// sorts before every real code unit (spec §3 "Text source").
const TerminatorKey int32 = -1

// EndOfText marks a node's `end` field as "current text end", i.e. a leaf.
const EndOfText uint32 = 0xFFFFFFFF
