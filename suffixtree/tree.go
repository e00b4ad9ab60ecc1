package suffixtree

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/AlexanderV/sstree/arena"
	"github.com/AlexanderV/sstree/internal/format"
	"github.com/AlexanderV/sstree/layout"
	"github.com/AlexanderV/sstree/text"
)

// Tree is a read object over a sealed suffix tree: an arena plus the text it
// indexes (spec §4.5 "construction/validation"). A Tree is immutable; all
// operations are safe for concurrent use once constructed.
type Tree struct {
	a        arena.Arena
	hdr      *format.Header
	resolver layout.HybridResolver
	nav      *Navigator
	txt      text.TextSource

	disposed atomic.Bool

	lrsOnce sync.Once
	lrsVal  string
	lrsErr  error
}

// newTreeFromBuild wraps a just-sealed arena without re-parsing the header
// bytes it was just given, then runs the same validation a loaded tree goes
// through.
func newTreeFromBuild(a arena.Arena, hdr *format.Header, resolver layout.HybridResolver, txt text.TextSource) (*Tree, error) {
	return newTree(a, hdr, resolver, txt)
}

// Open constructs a Tree over an existing, sealed arena by parsing its
// header and reconstructing the hybrid resolver from the recorded fields
// (spec §4.5 "construction/validation").
func Open(a arena.Arena, txt text.TextSource) (*Tree, error) {
	if a == nil || txt == nil {
		return nil, fmt.Errorf("suffixtree: %w: nil arena or text source", format.ErrInvalidArgument)
	}
	if a.Disposed() {
		return nil, format.ErrDisposed
	}

	hdr, err := format.ParseHeader(a.Bytes())
	if err != nil {
		return nil, fmt.Errorf("suffixtree: %w: %v", ErrValidation, err)
	}

	baseLayout, err := layout.LayoutForVersion(hdr.Version)
	if err != nil {
		return nil, fmt.Errorf("suffixtree: %w: %v", ErrValidation, err)
	}

	resolver := layout.NonHybrid(baseLayout)
	if hdr.Version == format.VersionHybrid {
		resolver.TransitionOffset = int64(hdr.TransitionOffset)
		resolver.JumpStart = hdr.JumpTableStart
		resolver.JumpEnd = hdr.JumpTableEnd
	}

	return newTree(a, hdr, resolver, txt)
}

// newTree is the common construction path: check that the text length
// matches the header, that the text region and root offset lie inside the
// arena, and, for a hybrid tree, that the jump table and transition offset
// are in bounds; then wire up a Navigator. Child-array order, leaf counts
// and suffix links are not checked here.
func newTree(a arena.Arena, hdr *format.Header, resolver layout.HybridResolver, txt text.TextSource) (*Tree, error) {
	if uint64(txt.Len()) != uint64(hdr.TextLength) {
		return nil, fmt.Errorf("suffixtree: %w: text length %d does not match header %d", ErrValidation, txt.Len(), hdr.TextLength)
	}
	textBytes := uint64(hdr.TextLength) * 2
	if hdr.TextRegionStart < format.HeaderSize || hdr.TextRegionStart+textBytes > hdr.TotalSize {
		return nil, fmt.Errorf("suffixtree: %w: text region out of bounds", ErrValidation)
	}
	if hdr.RootOffset < format.HeaderSize || hdr.RootOffset >= hdr.TotalSize {
		return nil, fmt.Errorf("suffixtree: %w: root offset out of bounds", ErrValidation)
	}
	if hdr.Version == format.VersionHybrid {
		if resolver.JumpEnd < resolver.JumpStart || resolver.JumpEnd > hdr.TotalSize {
			return nil, fmt.Errorf("suffixtree: %w: jump table bounds", ErrValidation)
		}
		if resolver.TransitionOffset < 0 || uint64(resolver.TransitionOffset) > hdr.TotalSize {
			return nil, fmt.Errorf("suffixtree: %w: transition offset out of bounds", ErrValidation)
		}
	}

	nav := newNavigator(a, resolver, hdr.RootOffset, txt)
	return &Tree{a: a, hdr: hdr, resolver: resolver, nav: nav, txt: txt}, nil
}

func (t *Tree) checkAlive() error {
	if t.disposed.Load() {
		return format.ErrDisposed
	}
	if t.a.Disposed() {
		return format.ErrDisposed
	}
	return nil
}

// Dispose releases the Tree's underlying arena. It does not dispose a
// caller-supplied text source.
func (t *Tree) Dispose() error {
	if !t.disposed.CompareAndSwap(false, true) {
		return nil
	}
	return t.a.Dispose()
}

// TextLength returns the number of code units indexed by the tree.
func (t *Tree) TextLength() int { return t.nav.textLen }

// Text exposes the tree's underlying text source, for callers that need to
// hash or re-export the exact code units the tree indexes.
func (t *Tree) Text() text.TextSource { return t.txt }

// NodeCount returns the total number of nodes (internal and leaf) recorded
// at build time.
func (t *Tree) NodeCount() uint32 { return t.hdr.NodeCount }

// Version reports the on-disk format version (3 Large, 4 Compact, 5 Hybrid).
func (t *Tree) Version() uint32 { return t.hdr.Version }

// LeafCount returns the number of real suffixes indexed by the tree: the
// root's raw leaf_count minus the one synthetic terminator-only suffix
// (spec §4.5 "the -1 terminator adjustment happens only for root's raw
// count exposed as leaf_count property"; spec §8 boundary behavior "Empty
// text: ... leaf_count == 0").
func (t *Tree) LeafCount() (int, error) {
	if err := t.checkAlive(); err != nil {
		return 0, err
	}
	lc, err := t.nav.LeafCount(t.nav.Root())
	if err != nil {
		return 0, err
	}
	return int(lc) - 1, nil
}

// TextRegionStart returns the byte offset, within the tree's own arena, of
// the UTF-16LE-encoded text region the builder wrote at finalization. A
// caller reopening a sealed FileArena from disk can use this together with
// TextLength to build a text.MappedTextSource over the same arena, rather
// than keeping a separate copy of the text around (spec §6 "a v5 file is
// byte-compatible as a hybrid").
func (t *Tree) TextRegionStart() uint64 { return t.hdr.TextRegionStart }

func toKeys(units []uint16) []int32 {
	out := make([]int32, len(units))
	for i, u := range units {
		out[i] = int32(u)
	}
	return out
}

// Contains reports whether pattern occurs anywhere in the indexed text. An
// empty pattern always matches (spec §4.5 edge-case policy).
func (t *Tree) Contains(pattern []uint16) (bool, error) {
	if err := t.checkAlive(); err != nil {
		return false, err
	}
	if len(pattern) == 0 {
		return true, nil
	}
	_, matched, err := t.nav.Descend(toKeys(pattern))
	return matched, err
}

// CountOccurrences returns how many positions in the text start an
// occurrence of pattern. An empty pattern matches at every position,
// returning the text length.
func (t *Tree) CountOccurrences(pattern []uint16) (int, error) {
	if err := t.checkAlive(); err != nil {
		return 0, err
	}
	if len(pattern) == 0 {
		return t.nav.textLen, nil
	}
	node, matched, err := t.nav.Descend(toKeys(pattern))
	if err != nil {
		return 0, err
	}
	if !matched {
		return 0, nil
	}
	lc, err := t.nav.LeafCount(node)
	if err != nil {
		return 0, err
	}
	return int(lc), nil
}

// FindAllOccurrences returns every starting position of pattern in the
// indexed text, in ascending order. An empty pattern matches at every
// position 0..text_length inclusive (spec §4.5); a nonempty pattern's
// matches at or past the text length, which would only arise from the
// synthetic terminator suffix, are discarded.
func (t *Tree) FindAllOccurrences(pattern []uint16) ([]int, error) {
	if err := t.checkAlive(); err != nil {
		return nil, err
	}
	textLen := t.nav.textLen
	if len(pattern) == 0 {
		out := make([]int, textLen+1)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}

	node, matched, err := t.nav.Descend(toKeys(pattern))
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, nil
	}
	leaves, err := t.nav.CollectLeaves(node)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(leaves))
	for _, lf := range leaves {
		sd, err := t.nav.StringDepth(lf)
		if err != nil {
			return nil, err
		}
		start := textLen + 1 - sd
		if start >= textLen {
			continue
		}
		out = append(out, start)
	}
	sort.Ints(out)
	return out, nil
}

// LongestRepeatedSubstring returns the longest substring that occurs at
// least twice in the indexed text, or "" if no substring repeats (spec §8
// boundary behaviors: empty text and single-code-unit text both yield "").
// The result is computed once and cached.
func (t *Tree) LongestRepeatedSubstring() (string, error) {
	if err := t.checkAlive(); err != nil {
		return "", err
	}
	t.lrsOnce.Do(func() {
		t.lrsVal, t.lrsErr = t.computeLRS()
	})
	return t.lrsVal, t.lrsErr
}

func (t *Tree) computeLRS() (string, error) {
	var deepest NodeRef
	var found bool
	if t.hdr.Version == format.VersionHybrid {
		deepest, found = NodeRef(t.hdr.DeepestInternalNode), true
	} else {
		d, ok, err := t.dfsDeepestInternal()
		if err != nil {
			return "", err
		}
		deepest, found = d, ok
	}
	if !found {
		return "", nil
	}

	sd, err := t.nav.StringDepth(deepest)
	if err != nil {
		return "", err
	}
	if sd == 0 {
		return "", nil
	}
	pos, err := t.nav.FindAnyLeafPosition(deepest)
	if err != nil {
		return "", err
	}
	units, err := t.txt.Slice(pos, pos+sd)
	if err != nil {
		return "", err
	}
	return text.UnitsToString(units)
}

// dfsDeepestInternal walks the whole tree to find the internal node with
// the greatest string depth. Used for non-hybrid trees, whose header does
// not record the answer: the builder writes the deepest-internal-node field
// for version 5 only (spec §3 "v5-only fields").
func (t *Tree) dfsDeepestInternal() (NodeRef, bool, error) {
	type frame struct {
		node     NodeRef
		children []ChildRef
		idx      int
	}

	root := t.nav.Root()
	kids, err := t.nav.Children(root)
	if err != nil {
		return NullNode, false, err
	}
	stack := []*frame{{node: root, children: kids}}

	var best NodeRef
	bestDepth := -1
	found := false

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.idx < len(top.children) {
			c := top.children[top.idx].Node
			top.idx++
			isLeaf, err := t.nav.IsLeaf(c)
			if err != nil {
				return NullNode, false, err
			}
			if isLeaf {
				continue
			}
			ck, err := t.nav.Children(c)
			if err != nil {
				return NullNode, false, err
			}
			stack = append(stack, &frame{node: c, children: ck})
			continue
		}

		if len(top.children) > 0 {
			sd, err := t.nav.StringDepth(top.node)
			if err != nil {
				return NullNode, false, err
			}
			if sd > bestDepth {
				bestDepth, best, found = sd, top.node, true
			}
		}
		stack = stack[:len(stack)-1]
	}
	return best, found, nil
}

// LongestCommonSubstring streams other's code units through the tree via
// suffix-link navigation and returns the longest substring the two texts
// share (spec §4.5, §4.7).
func (t *Tree) LongestCommonSubstring(other text.TextSource) (string, error) {
	if err := t.checkAlive(); err != nil {
		return "", err
	}
	n := other.Len()
	units := make([]int32, n)
	for i := 0; i < n; i++ {
		units[i] = other.At(i)
	}

	bestLen := 0
	bestEnd := -1
	err := t.nav.streamMatch(units, func(i, matchLen int, _ NodeRef) error {
		if matchLen > bestLen {
			bestLen, bestEnd = matchLen, i+1
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if bestLen == 0 {
		return "", nil
	}
	slice, err := other.Slice(bestEnd-bestLen, bestEnd)
	if err != nil {
		return "", err
	}
	return text.UnitsToString(slice)
}

// Anchor is one maximal exact match between a query and the indexed text
// whose length is at least the caller's minimum (spec §4.5
// find_exact_match_anchors).
type Anchor struct {
	// TreePosition is a starting position of the match in the tree's own
	// text (any one occurrence, if more than one exists).
	TreePosition int
	// QueryStart is the starting position of the match in the query.
	QueryStart int
	// Length is the length of the matched run.
	Length int
}

// FindExactMatchAnchors streams query through the tree, tracking runs whose
// matched length is at least minLength ("peaks"): each time the running
// match length crosses minLength and later falls back below it (or the
// query ends), one Anchor is emitted for the longest point reached during
// that run (spec §4.5).
func (t *Tree) FindExactMatchAnchors(query []uint16, minLength int) ([]Anchor, error) {
	if err := t.checkAlive(); err != nil {
		return nil, err
	}
	if minLength <= 0 {
		return nil, fmt.Errorf("suffixtree: %w: minLength must be positive", format.ErrInvalidArgument)
	}

	units := toKeys(query)

	var anchors []Anchor
	inPeak := false
	var peakLen, peakEnd int
	var peakNode NodeRef

	emit := func() error {
		if !inPeak {
			return nil
		}
		pos, err := t.nav.FindAnyLeafPosition(peakNode)
		if err != nil {
			return err
		}
		anchors = append(anchors, Anchor{
			TreePosition: pos,
			QueryStart:   peakEnd - peakLen + 1,
			Length:       peakLen,
		})
		inPeak = false
		return nil
	}

	err := t.nav.streamMatch(units, func(i, matchLen int, endNode NodeRef) error {
		if matchLen >= minLength {
			if !inPeak || matchLen >= peakLen {
				peakLen, peakEnd, peakNode = matchLen, i, endNode
			}
			inPeak = true
		} else if inPeak {
			if err := emit(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := emit(); err != nil {
		return nil, err
	}
	return anchors, nil
}
