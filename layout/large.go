package layout

import (
	"github.com/AlexanderV/sstree/arena"
	"github.com/AlexanderV/sstree/internal/format"
)

// Large is the 64-bit offset node layout: 40-byte records, 12-byte child
// entries, native -1 as the null sentinel (spec §3, §4.2).
type Large struct{}

func (Large) Version() uint32     { return format.VersionLarge }
func (Large) NodeSize() int       { return format.LargeNodeSize }
func (Large) ChildEntrySize() int { return format.LargeChildEntrySize }

func (Large) ReadStart(a arena.Arena, off uint64) (uint32, error) {
	return a.ReadU32(off + format.LargeStartOffset)
}

func (Large) WriteStart(a arena.Arena, off uint64, v uint32) error {
	return a.WriteU32(off+format.LargeStartOffset, v)
}

func (Large) ReadEnd(a arena.Arena, off uint64) (uint32, error) {
	return a.ReadU32(off + format.LargeEndOffset)
}

func (Large) WriteEnd(a arena.Arena, off uint64, v uint32) error {
	return a.WriteU32(off+format.LargeEndOffset, v)
}

func (Large) ReadSuffixLink(a arena.Arena, off uint64) (int64, error) {
	return a.ReadI64(off + format.LargeSuffixLinkOffset)
}

func (Large) WriteSuffixLink(a arena.Arena, off uint64, v int64) error {
	return a.WriteI64(off+format.LargeSuffixLinkOffset, v)
}

func (Large) ReadDepth(a arena.Arena, off uint64) (uint32, error) {
	return a.ReadU32(off + format.LargeDepthFromRootOffset)
}

func (Large) WriteDepth(a arena.Arena, off uint64, v uint32) error {
	return a.WriteU32(off+format.LargeDepthFromRootOffset, v)
}

func (Large) ReadLeafCount(a arena.Arena, off uint64) (uint32, error) {
	return a.ReadU32(off + format.LargeLeafCountOffset)
}

func (Large) WriteLeafCount(a arena.Arena, off uint64, v uint32) error {
	return a.WriteU32(off+format.LargeLeafCountOffset, v)
}

func (Large) ReadChildrenHeadAndCount(a arena.Arena, off uint64) (int64, int32, error) {
	head, err := a.ReadI64(off + format.LargeChildrenHeadOffset)
	if err != nil {
		return 0, 0, err
	}
	count, err := a.ReadI32(off + format.LargeChildCountOffset)
	if err != nil {
		return 0, 0, err
	}
	return head, count, nil
}

func (Large) WriteChildrenHeadAndCount(a arena.Arena, off uint64, head int64, rawCount int32) error {
	if err := a.WriteI64(off+format.LargeChildrenHeadOffset, head); err != nil {
		return err
	}
	return a.WriteI32(off+format.LargeChildCountOffset, rawCount)
}

func (Large) ReadChildKey(a arena.Arena, base uint64, i int) (int32, error) {
	return a.ReadI32(base + uint64(i*format.LargeChildEntrySize) + format.LargeChildKeyOffset)
}

func (Large) ReadChildOffset(a arena.Arena, base uint64, i int) (int64, error) {
	return a.ReadI64(base + uint64(i*format.LargeChildEntrySize) + format.LargeChildOffsetOffset)
}

func (Large) WriteChildEntry(a arena.Arena, base uint64, i int, key int32, childOffset int64) error {
	entryOff := base + uint64(i*format.LargeChildEntrySize)
	if err := a.WriteI32(entryOff+format.LargeChildKeyOffset, key); err != nil {
		return err
	}
	return a.WriteI64(entryOff+format.LargeChildOffsetOffset, childOffset)
}
