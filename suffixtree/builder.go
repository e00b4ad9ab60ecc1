package suffixtree

import (
	"fmt"
	"sort"

	"github.com/AlexanderV/sstree/arena"
	"github.com/AlexanderV/sstree/internal/format"
	"github.com/AlexanderV/sstree/layout"
	"github.com/AlexanderV/sstree/text"
)

// childEntry is one pending (key, child offset) pair tracked in memory for a
// node that has not yet had its child array flushed to the arena. Grounded
// on hivekit's builder holding an in-progress cell graph in Go maps/slices
// before a final "seal" pass writes it out (hive/builder).
type childEntry struct {
	key    int32
	offset uint64
}

// Builder implements Ukkonen's online suffix-tree construction directly
// against a storage arena (spec §4.4). A Builder is single-use: call Build
// once, then discard it.
type Builder struct {
	a        arena.Arena
	ownsArena bool
	opts     Options

	currentLayout layout.NodeLayout
	resolver      layout.HybridResolver
	compactLimit  uint64
	forceLarge    bool

	root uint64

	// Per-parent pending child lists, flushed to contiguous arrays at
	// finalization (spec §9 "auxiliary mid-build parent->children map").
	children map[uint64][]childEntry

	// Jump slots reserved at promotion time, keyed by the Compact-zone
	// node offset whose field will eventually need to reference a
	// Large-zone target (spec §4.4 step 3).
	suffixLinkJumpSlot map[uint64]uint64
	childArrayJumpSlot map[uint64]uint64
	jumpStart, jumpEnd uint64

	nodeCount uint32

	// Ukkonen state.
	text                text.TextSource
	pos                 int
	activeNode          uint64
	activeEdge          int
	activeLength        int
	remainder           int
	lastCreatedInternal int64

	used bool
}

// NewBuilder constructs a Builder over ts with the given options. A nil
// opts.Arena causes the Builder to own a freshly allocated MemoryArena.
func NewBuilder(ts text.TextSource, opts Options) (*Builder, error) {
	if ts == nil {
		return nil, fmt.Errorf("suffixtree: %w: nil text source", format.ErrInvalidArgument)
	}
	if opts.CompactOffsetLimit == 0 {
		opts.CompactOffsetLimit = defaultCompactOffsetLimit
	}

	b := &Builder{
		opts:                opts,
		compactLimit:        opts.CompactOffsetLimit,
		forceLarge:          opts.ForceLarge,
		children:            make(map[uint64][]childEntry),
		suffixLinkJumpSlot:  make(map[uint64]uint64),
		childArrayJumpSlot:  make(map[uint64]uint64),
		text:                ts,
		lastCreatedInternal: layout.NullOffset,
	}

	if opts.Arena != nil {
		b.a = opts.Arena
	} else {
		cap := opts.InitialArenaCapacity
		if cap == 0 {
			cap = 4096
		}
		b.a = arena.NewMemoryArena(cap)
		b.ownsArena = true
	}

	if b.forceLarge {
		b.currentLayout = layout.Large{}
		b.resolver = layout.NonHybrid(layout.Large{})
	} else {
		b.currentLayout = layout.Compact{}
		b.resolver = layout.NonHybrid(layout.Compact{})
	}
	return b, nil
}

// Build runs the full online construction and returns a validated, sealed
// Tree. Build may only be called once per Builder.
func (b *Builder) Build() (*Tree, error) {
	if b.used {
		return nil, format.ErrBuildMisuse
	}
	b.used = true

	n := b.text.Len()

	if _, err := b.a.Allocate(format.HeaderSize); err != nil {
		return nil, fmt.Errorf("suffixtree: reserve header: %w", err)
	}

	rootOff, err := b.createNode(0, 0, 0)
	if err != nil {
		return nil, err
	}
	b.root = rootOff
	b.activeNode = rootOff
	b.activeEdge = -1
	b.activeLength = 0
	b.remainder = 0

	for pos := 0; pos <= n; pos++ {
		b.pos = pos
		if err := b.extendPhase(pos); err != nil {
			return nil, err
		}
	}

	if err := b.flushChildren(); err != nil {
		return nil, err
	}

	textRegionStart, err := b.writeText(n)
	if err != nil {
		return nil, err
	}

	deepest, err := b.computeLeafCountsAndDeepest()
	if err != nil {
		return nil, err
	}

	version := format.VersionCompact
	if b.forceLarge {
		version = format.VersionLarge
	} else if b.resolver.TransitionOffset >= 0 {
		version = format.VersionHybrid
	}

	hdr := &format.Header{
		Version:         version,
		TextLength:      uint32(n),
		RootOffset:      b.root,
		TextRegionStart: textRegionStart,
		NodeCount:       b.nodeCount,
		TotalSize:       b.a.Size(),
	}
	if version == format.VersionHybrid {
		hdr.TransitionOffset = uint64(b.resolver.TransitionOffset)
		hdr.JumpTableStart = b.jumpStart
		hdr.JumpTableEnd = b.jumpEnd
		hdr.DeepestInternalNode = deepest
	}

	if err := format.WriteHeader(b.a.Bytes(), hdr); err != nil {
		return nil, fmt.Errorf("suffixtree: write header: %w", err)
	}

	return newTreeFromBuild(b.a, hdr, b.resolver, b.text)
}

// extendPhase runs all extensions of a single Ukkonen phase (one text
// position, including the terminator phase at pos == text length).
func (b *Builder) extendPhase(pos int) error {
	b.remainder++
	b.lastCreatedInternal = layout.NullOffset

	for b.remainder > 0 {
		if b.activeLength == 0 {
			b.activeEdge = pos
		}
		edgeKey := b.text.At(b.activeEdge)
		childOff, found := b.getChild(b.activeNode, edgeKey)

		ruleThree := false
		if !found {
			depth, err := b.stringDepth(b.activeNode)
			if err != nil {
				return err
			}
			leafOff, err := b.createNode(uint32(pos), format.EndOfText, depth)
			if err != nil {
				return err
			}
			b.setChild(b.activeNode, edgeKey, leafOff)
			if err := b.resolveLink(b.activeNode); err != nil {
				return err
			}
		} else {
			walked, err := b.walkDown(childOff)
			if err != nil {
				return err
			}
			if walked {
				continue
			}

			childStart, err := b.readStart(childOff)
			if err != nil {
				return err
			}
			existingKey := b.text.At(int(childStart) + b.activeLength)
			currentKey := b.text.At(pos)
			if existingKey == currentKey {
				b.activeLength++
				if err := b.resolveLink(b.activeNode); err != nil {
					return err
				}
				ruleThree = true
			} else {
				if err := b.splitEdge(childOff, edgeKey, pos); err != nil {
					return err
				}
			}
		}

		if ruleThree {
			break
		}

		b.remainder--
		if b.activeNode == b.root && b.activeLength > 0 {
			b.activeLength--
			b.activeEdge = pos - b.remainder + 1
		} else if b.activeNode != b.root {
			next, err := b.followSuffixLink(b.activeNode)
			if err != nil {
				return err
			}
			b.activeNode = next
		}
	}
	return nil
}

// splitEdge implements Ukkonen's rule 2 on an existing edge: a new internal
// node is inserted at the active point, carrying the old child as one
// branch and a fresh leaf for pos as the other (spec §4.4 "depth_from_root
// on creation of a new internal node").
func (b *Builder) splitEdge(childOff uint64, edgeKey int32, pos int) error {
	childStart, err := b.readStart(childOff)
	if err != nil {
		return err
	}
	childDepth, err := b.readDepth(childOff)
	if err != nil {
		return err
	}

	splitOff, err := b.createNode(childStart, childStart+uint32(b.activeLength), childDepth)
	if err != nil {
		return err
	}
	b.setChild(b.activeNode, edgeKey, splitOff)

	leafDepth := childDepth + uint32(b.activeLength)
	leafOff, err := b.createNode(uint32(pos), format.EndOfText, leafDepth)
	if err != nil {
		return err
	}
	b.setChild(splitOff, b.text.At(pos), leafOff)

	newChildStart := childStart + uint32(b.activeLength)
	cl := b.nodeLayout(childOff)
	if err := cl.WriteStart(b.a, childOff, newChildStart); err != nil {
		return err
	}
	if err := cl.WriteDepth(b.a, childOff, leafDepth); err != nil {
		return err
	}
	b.setChild(splitOff, b.text.At(int(newChildStart)), childOff)

	return b.resolveLink(splitOff)
}

// resolveLink implements the classic addSuffixLink(node): the previously
// pending internal node (if any) gets its suffix link set to node, and node
// becomes the new pending node awaiting a link from the next creation in
// this phase (or root, if the phase ends first).
func (b *Builder) resolveLink(node uint64) error {
	if b.lastCreatedInternal != layout.NullOffset {
		if err := b.setSuffixLink(uint64(b.lastCreatedInternal), int64(node)); err != nil {
			return err
		}
	}
	b.lastCreatedInternal = int64(node)
	return nil
}

func (b *Builder) walkDown(next uint64) (bool, error) {
	elen, err := b.edgeLength(next)
	if err != nil {
		return false, err
	}
	if b.activeLength >= elen {
		b.activeEdge += elen
		b.activeLength -= elen
		b.activeNode = next
		return true, nil
	}
	return false, nil
}

func (b *Builder) followSuffixLink(off uint64) (uint64, error) {
	raw, err := b.nodeLayout(off).ReadSuffixLink(b.a, off)
	if err != nil {
		return 0, err
	}
	if raw == layout.NullOffset {
		return b.root, nil
	}
	return b.resolver.ResolveJump(b.a, uint64(raw))
}

func (b *Builder) nodeLayout(off uint64) layout.NodeLayout {
	return b.resolver.LayoutForOffset(off)
}

func (b *Builder) readStart(off uint64) (uint32, error) {
	return b.nodeLayout(off).ReadStart(b.a, off)
}

func (b *Builder) readDepth(off uint64) (uint32, error) {
	return b.nodeLayout(off).ReadDepth(b.a, off)
}

func (b *Builder) readEnd(off uint64) (uint32, error) {
	return b.nodeLayout(off).ReadEnd(b.a, off)
}

// edgeLength computes the current length of the edge arriving at off, using
// the "global end" trick implicitly: a leaf's stored end is the EndOfText
// sentinel, so its length grows with b.pos rather than being rewritten on
// every phase (spec §4.4 "leaves store the sentinel end").
func (b *Builder) edgeLength(off uint64) (int, error) {
	start, err := b.readStart(off)
	if err != nil {
		return 0, err
	}
	end, err := b.readEnd(off)
	if err != nil {
		return 0, err
	}
	if end == format.EndOfText {
		return b.pos + 1 - int(start), nil
	}
	return int(end) - int(start), nil
}

func (b *Builder) stringDepth(off uint64) (uint32, error) {
	depth, err := b.readDepth(off)
	if err != nil {
		return 0, err
	}
	elen, err := b.edgeLength(off)
	if err != nil {
		return 0, err
	}
	return depth + uint32(elen), nil
}

func (b *Builder) getChild(parent uint64, key int32) (uint64, bool) {
	for _, e := range b.children[parent] {
		if e.key == key {
			return e.offset, true
		}
	}
	return 0, false
}

func (b *Builder) setChild(parent uint64, key int32, child uint64) {
	b.children[parent] = append(b.children[parent], childEntry{key: key, offset: child})
}

// createNode allocates and initializes one node record using whatever
// layout is currently active, promoting first if this allocation would
// cross the compact offset limit.
func (b *Builder) createNode(start, end, depth uint32) (uint64, error) {
	if err := b.maybePromote(); err != nil {
		return 0, err
	}
	l := b.currentLayout
	off, err := b.a.Allocate(uint32(l.NodeSize()))
	if err != nil {
		return 0, err
	}
	if err := l.WriteStart(b.a, off, start); err != nil {
		return 0, err
	}
	if err := l.WriteEnd(b.a, off, end); err != nil {
		return 0, err
	}
	if err := l.WriteSuffixLink(b.a, off, layout.NullOffset); err != nil {
		return 0, err
	}
	if err := l.WriteDepth(b.a, off, depth); err != nil {
		return 0, err
	}
	if err := l.WriteLeafCount(b.a, off, 0); err != nil {
		return 0, err
	}
	if err := l.WriteChildrenHeadAndCount(b.a, off, layout.NullOffset, 0); err != nil {
		return 0, err
	}
	b.nodeCount++
	return off, nil
}

// maybePromote checks the next node allocation against the compact offset
// limit and, if it would cross it, performs the one-time hybrid promotion
// (spec §4.4 "hybrid promotion").
func (b *Builder) maybePromote() error {
	if b.forceLarge || b.resolver.TransitionOffset >= 0 {
		return nil
	}
	projected := b.a.Size() + uint64(b.currentLayout.NodeSize())
	if projected <= b.compactLimit {
		return nil
	}
	return b.promote()
}

// promote performs the 5-step hybrid transition: record the boundary,
// switch new allocations to Large, and reserve jump slots for every
// still-reachable Compact reference that may yet need to address the Large
// zone (spec §4.4 step 3; spec §9 "top bit = jumped").
func (b *Builder) promote() error {
	transition := b.a.Size()
	b.resolver.TransitionOffset = int64(transition)
	b.currentLayout = layout.Large{}

	live := make(map[uint64]struct{}, len(b.children)+1)
	for off := range b.children {
		if off < transition {
			live[off] = struct{}{}
		}
	}
	if b.activeNode < transition {
		live[b.activeNode] = struct{}{}
	}

	offs := make([]uint64, 0, len(live))
	for off := range live {
		offs = append(offs, off)
	}
	sort.Slice(offs, func(i, j int) bool { return offs[i] < offs[j] })

	for _, off := range offs {
		slot, err := b.a.Allocate(format.JumpSlotSize)
		if err != nil {
			return err
		}
		b.childArrayJumpSlot[off] = slot
		b.trackJumpBounds(slot)
	}

	if b.lastCreatedInternal != layout.NullOffset && uint64(b.lastCreatedInternal) < transition {
		slot, err := b.a.Allocate(format.JumpSlotSize)
		if err != nil {
			return err
		}
		b.suffixLinkJumpSlot[uint64(b.lastCreatedInternal)] = slot
		b.trackJumpBounds(slot)
	}
	return nil
}

func (b *Builder) trackJumpBounds(slot uint64) {
	if b.jumpStart == 0 && b.jumpEnd == 0 {
		b.jumpStart, b.jumpEnd = slot, slot+format.JumpSlotSize
		return
	}
	if slot < b.jumpStart {
		b.jumpStart = slot
	}
	if end := slot + format.JumpSlotSize; end > b.jumpEnd {
		b.jumpEnd = end
	}
}

// setSuffixLink writes node's suffix link field, routing through a
// pre-reserved jump slot when node is a Compact-zone node whose 32-bit
// field cannot directly name a Large-zone target (spec §4.3, §4.4).
func (b *Builder) setSuffixLink(node uint64, target int64) error {
	l := b.nodeLayout(node)
	if _, isCompact := l.(layout.Compact); isCompact && b.resolver.TransitionOffset >= 0 && target >= b.resolver.TransitionOffset {
		slot, ok := b.suffixLinkJumpSlot[node]
		if !ok {
			var err error
			slot, err = b.a.Allocate(format.JumpSlotSize)
			if err != nil {
				return err
			}
			b.suffixLinkJumpSlot[node] = slot
			b.trackJumpBounds(slot)
		}
		if err := b.a.WriteI64(slot, target); err != nil {
			return err
		}
		return l.WriteSuffixLink(b.a, node, int64(slot))
	}
	return l.WriteSuffixLink(b.a, node, target)
}

// flushChildren writes every pending parent's child list to a contiguous,
// signed-key-sorted array in the arena, choosing Large entries (and jump
// indirection through a Compact parent's children_head) whenever any child
// lives in the Large zone (spec §4.3 "all post-promotion arrays are
// Large").
func (b *Builder) flushChildren() error {
	parents := make([]uint64, 0, len(b.children))
	for off := range b.children {
		parents = append(parents, off)
	}
	sort.Slice(parents, func(i, j int) bool { return parents[i] < parents[j] })

	for _, parentOff := range parents {
		entries := b.children[parentOff]
		sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

		parentLayout := b.nodeLayout(parentOff)
		needLarge := false
		if b.resolver.TransitionOffset >= 0 {
			for _, e := range entries {
				if int64(e.offset) >= b.resolver.TransitionOffset {
					needLarge = true
					break
				}
			}
		}
		entryLayout := parentLayout
		if needLarge {
			entryLayout = layout.Large{}
		}

		base, err := b.a.Allocate(uint32(len(entries) * entryLayout.ChildEntrySize()))
		if err != nil {
			return err
		}
		for i, e := range entries {
			if err := entryLayout.WriteChildEntry(b.a, base, i, e.key, int64(e.offset)); err != nil {
				return err
			}
		}

		count := int32(len(entries))
		_, parentIsCompact := parentLayout.(layout.Compact)
		if parentIsCompact && needLarge {
			slot, ok := b.childArrayJumpSlot[parentOff]
			if !ok {
				var err error
				slot, err = b.a.Allocate(format.JumpSlotSize)
				if err != nil {
					return err
				}
				b.childArrayJumpSlot[parentOff] = slot
				b.trackJumpBounds(slot)
			}
			if err := b.a.WriteI64(slot, int64(base)); err != nil {
				return err
			}
			if err := parentLayout.WriteChildrenHeadAndCount(b.a, parentOff, int64(slot), count|format.JumpedBit); err != nil {
				return err
			}
		} else {
			if err := parentLayout.WriteChildrenHeadAndCount(b.a, parentOff, int64(base), count); err != nil {
				return err
			}
		}
	}
	return nil
}

// childOffsets returns the already-flushed child offsets of off, in sorted
// key order.
func (b *Builder) childOffsets(off uint64) ([]uint64, error) {
	l := b.nodeLayout(off)
	base, entryLayout, count, err := b.resolver.ReadChildArrayInfo(b.a, off, l)
	if err != nil {
		return nil, err
	}
	out := make([]uint64, count)
	for i := 0; i < count; i++ {
		co, err := entryLayout.ReadChildOffset(b.a, base, i)
		if err != nil {
			return nil, err
		}
		out[i] = uint64(co)
	}
	return out, nil
}

// postOrderFrame tracks one node's traversal progress during the
// leaf-count pass, grounded on the teacher's StackEntry (hive/walker/core.go)
// iterative-DFS-with-explicit-state idiom.
type postOrderFrame struct {
	off      uint64
	children []uint64
	idx      int
	childSum uint32
}

// computeLeafCountsAndDeepest runs the post-build post-order pass: every
// node's leaf_count is the sum of its children's (1 for a leaf), and the
// offset of the internal node with the greatest total string depth is
// recorded for O(1) longest-repeated-substring lookups (spec §4.4, §4.5).
func (b *Builder) computeLeafCountsAndDeepest() (uint64, error) {
	rootChildren, err := b.childOffsets(b.root)
	if err != nil {
		return 0, err
	}
	stack := []*postOrderFrame{{off: b.root, children: rootChildren}}

	var deepestOff uint64
	deepestDepth := -1

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.idx < len(top.children) {
			childOff := top.children[top.idx]
			top.idx++
			kids, err := b.childOffsets(childOff)
			if err != nil {
				return 0, err
			}
			stack = append(stack, &postOrderFrame{off: childOff, children: kids})
			continue
		}

		var leafCount uint32
		if len(top.children) == 0 {
			leafCount = 1
		} else {
			leafCount = top.childSum
		}
		if err := b.nodeLayout(top.off).WriteLeafCount(b.a, top.off, leafCount); err != nil {
			return 0, err
		}

		if len(top.children) > 0 {
			sd, err := b.stringDepth(top.off)
			if err != nil {
				return 0, err
			}
			if int(sd) > deepestDepth {
				deepestDepth = int(sd)
				deepestOff = top.off
			}
		}

		stack = stack[:len(stack)-1]
		if len(stack) > 0 {
			stack[len(stack)-1].childSum += leafCount
		}
	}
	return deepestOff, nil
}

// writeText appends the decoded text as UTF-16LE bytes to the arena in
// fixed-size chunks, after every node and child array, and before the
// header (spec §4.4 "text is appended ... then the header is written
// last").
func (b *Builder) writeText(n int) (uint64, error) {
	const chunkUnits = 4096

	units, err := b.text.Slice(0, n)
	if err != nil {
		return 0, fmt.Errorf("suffixtree: read text: %w", err)
	}

	start, err := b.a.Allocate(uint32(n * 2))
	if err != nil {
		return 0, err
	}

	off := start
	for i := 0; i < len(units); i += chunkUnits {
		end := i + chunkUnits
		if end > len(units) {
			end = len(units)
		}
		chunk := units[i:end]
		buf := make([]byte, len(chunk)*2)
		for j, u := range chunk {
			buf[2*j] = byte(u)
			buf[2*j+1] = byte(u >> 8)
		}
		if err := b.a.WriteBytes(off, buf); err != nil {
			return 0, err
		}
		off += uint64(len(buf))
	}
	return start, nil
}
