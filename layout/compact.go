package layout

import (
	"github.com/AlexanderV/sstree/arena"
	"github.com/AlexanderV/sstree/internal/format"
)

// Compact is the 32-bit offset node layout: 28-byte records, 8-byte child
// entries, U32_MAX as the null sentinel (spec §3, §4.2).
type Compact struct{}

func (Compact) Version() uint32     { return format.VersionCompact }
func (Compact) NodeSize() int       { return format.CompactNodeSize }
func (Compact) ChildEntrySize() int { return format.CompactChildEntrySize }

func (Compact) ReadStart(a arena.Arena, off uint64) (uint32, error) {
	return a.ReadU32(off + format.CompactStartOffset)
}

func (Compact) WriteStart(a arena.Arena, off uint64, v uint32) error {
	return a.WriteU32(off+format.CompactStartOffset, v)
}

func (Compact) ReadEnd(a arena.Arena, off uint64) (uint32, error) {
	return a.ReadU32(off + format.CompactEndOffset)
}

func (Compact) WriteEnd(a arena.Arena, off uint64, v uint32) error {
	return a.WriteU32(off+format.CompactEndOffset, v)
}

func (Compact) ReadSuffixLink(a arena.Arena, off uint64) (int64, error) {
	v, err := a.ReadU32(off + format.CompactSuffixLinkOffset)
	if err != nil {
		return 0, err
	}
	if v == format.U32Null {
		return NullOffset, nil
	}
	return int64(v), nil
}

func (Compact) WriteSuffixLink(a arena.Arena, off uint64, v int64) error {
	if v == NullOffset {
		return a.WriteU32(off+format.CompactSuffixLinkOffset, format.U32Null)
	}
	return a.WriteU32(off+format.CompactSuffixLinkOffset, uint32(v))
}

func (Compact) ReadDepth(a arena.Arena, off uint64) (uint32, error) {
	return a.ReadU32(off + format.CompactDepthFromRootOffset)
}

func (Compact) WriteDepth(a arena.Arena, off uint64, v uint32) error {
	return a.WriteU32(off+format.CompactDepthFromRootOffset, v)
}

func (Compact) ReadLeafCount(a arena.Arena, off uint64) (uint32, error) {
	return a.ReadU32(off + format.CompactLeafCountOffset)
}

func (Compact) WriteLeafCount(a arena.Arena, off uint64, v uint32) error {
	return a.WriteU32(off+format.CompactLeafCountOffset, v)
}

func (Compact) ReadChildrenHeadAndCount(a arena.Arena, off uint64) (int64, int32, error) {
	head, err := a.ReadU32(off + format.CompactChildrenHeadOffset)
	if err != nil {
		return 0, 0, err
	}
	count, err := a.ReadI32(off + format.CompactChildCountOffset)
	if err != nil {
		return 0, 0, err
	}
	h := int64(head)
	if head == format.U32Null {
		h = NullOffset
	}
	return h, count, nil
}

func (Compact) WriteChildrenHeadAndCount(a arena.Arena, off uint64, head int64, rawCount int32) error {
	if head == NullOffset {
		if err := a.WriteU32(off+format.CompactChildrenHeadOffset, format.U32Null); err != nil {
			return err
		}
	} else if err := a.WriteU32(off+format.CompactChildrenHeadOffset, uint32(head)); err != nil {
		return err
	}
	return a.WriteI32(off+format.CompactChildCountOffset, rawCount)
}

func (Compact) ReadChildKey(a arena.Arena, base uint64, i int) (int32, error) {
	return a.ReadI32(base + uint64(i*format.CompactChildEntrySize) + format.CompactChildKeyOffset)
}

func (Compact) ReadChildOffset(a arena.Arena, base uint64, i int) (int64, error) {
	off := base + uint64(i*format.CompactChildEntrySize) + format.CompactChildOffsetOffset
	v, err := a.ReadU32(off)
	if err != nil {
		return 0, err
	}
	if v == format.U32Null {
		return NullOffset, nil
	}
	return int64(v), nil
}

func (Compact) WriteChildEntry(a arena.Arena, base uint64, i int, key int32, childOffset int64) error {
	entryOff := base + uint64(i*format.CompactChildEntrySize)
	if err := a.WriteI32(entryOff+format.CompactChildKeyOffset, key); err != nil {
		return err
	}
	co := uint32(childOffset)
	if childOffset == NullOffset {
		co = format.U32Null
	}
	return a.WriteU32(entryOff+format.CompactChildOffsetOffset, co)
}
