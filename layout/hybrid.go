package layout

import (
	"fmt"

	"github.com/AlexanderV/sstree/arena"
	"github.com/AlexanderV/sstree/internal/format"
)

// HybridResolver carries the (base_layout, transition_offset, jump_start,
// jump_end) tuple of spec §4.3 and implements the three resolver
// operations that let a single read-side walk run over a tree that mixes
// Compact and Large zones.
type HybridResolver struct {
	BaseLayout       NodeLayout
	TransitionOffset int64 // < 0 means non-hybrid: always use BaseLayout
	JumpStart        uint64
	JumpEnd          uint64
}

// NonHybrid builds a resolver for a tree with no Compact/Large mixing.
func NonHybrid(base NodeLayout) HybridResolver {
	return HybridResolver{BaseLayout: base, TransitionOffset: -1}
}

// LayoutForOffset returns Compact or Large depending on which zone o falls
// in, or BaseLayout for a non-hybrid tree.
func (r HybridResolver) LayoutForOffset(o uint64) NodeLayout {
	if r.TransitionOffset < 0 {
		return r.BaseLayout
	}
	if int64(o) < r.TransitionOffset {
		return Compact{}
	}
	return Large{}
}

// ResolveJump dereferences a jump slot exactly once: if o falls within
// [JumpStart, JumpEnd) it reads the real int64 target stored there;
// otherwise o is already a real offset and is returned unchanged. Jumps
// are never chained (spec §4.3).
func (r HybridResolver) ResolveJump(a arena.Arena, o uint64) (uint64, error) {
	if r.TransitionOffset < 0 || o < r.JumpStart || o >= r.JumpEnd {
		return o, nil
	}
	target, err := a.ReadI64(o)
	if err != nil {
		return 0, fmt.Errorf("layout: resolve jump at %d: %w", o, err)
	}
	if target < 0 {
		return 0, fmt.Errorf("layout: resolve jump at %d: %w", o, format.ErrJumpOutOfRange)
	}
	return uint64(target), nil
}

// ReadChildArrayInfo reads a node's raw child_count field and decides, per
// spec §4.3, whether the children_head points at a plain contiguous array
// in the node's own layout, or (top bit set) at a jump slot pointing to a
// Large-format array elsewhere (all post-promotion arrays are Large).
func (r HybridResolver) ReadChildArrayInfo(a arena.Arena, parentOffset uint64, parentLayout NodeLayout) (base uint64, entryLayout NodeLayout, count int, err error) {
	head, rawCount, err := parentLayout.ReadChildrenHeadAndCount(a, parentOffset)
	if err != nil {
		return 0, nil, 0, err
	}
	if rawCount&format.JumpedBit != 0 {
		count = int(rawCount & format.ChildCountMask)
		if head < 0 {
			return 0, nil, 0, fmt.Errorf("layout: jumped node with null head: %w", format.ErrInvalidOffset)
		}
		target, err := r.ResolveJump(a, uint64(head))
		if err != nil {
			return 0, nil, 0, err
		}
		return target, Large{}, count, nil
	}
	count = int(rawCount)
	if head < 0 {
		return 0, r.LayoutForOffset(parentOffset), 0, nil
	}
	return uint64(head), r.LayoutForOffset(parentOffset), count, nil
}
