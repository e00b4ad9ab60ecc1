package suffixtree

import (
	"fmt"

	"github.com/AlexanderV/sstree/arena"
	"github.com/AlexanderV/sstree/internal/format"
	"github.com/AlexanderV/sstree/layout"
	"github.com/AlexanderV/sstree/text"
)

// NodeRef is an opaque handle to a node: its absolute arena offset.
type NodeRef uint64

// NullNode is the "no such node" sentinel returned by operations that can
// fail to locate a node.
const NullNode NodeRef = NodeRef(^uint64(0))

// ChildRef is one entry of a sorted child-entry array, exposed with its key.
type ChildRef struct {
	Key  int32
	Node NodeRef
}

// Navigator is the zone-aware shim described in spec §4.6: every algorithm
// in this package is written once against this type, so it runs
// identically whether the tree is Compact, Large or Hybrid.
type Navigator struct {
	a        arena.Arena
	resolver layout.HybridResolver
	root     NodeRef
	txt      text.TextSource
	textLen  int
}

func newNavigator(a arena.Arena, resolver layout.HybridResolver, root uint64, txt text.TextSource) *Navigator {
	return &Navigator{a: a, resolver: resolver, root: NodeRef(root), txt: txt, textLen: txt.Len()}
}

func (nav *Navigator) Root() NodeRef          { return nav.root }
func (nav *Navigator) IsNull(n NodeRef) bool  { return n == NullNode }
func (nav *Navigator) IsRoot(n NodeRef) bool  { return n == nav.root }

func (nav *Navigator) layoutFor(n NodeRef) layout.NodeLayout {
	return nav.resolver.LayoutForOffset(uint64(n))
}

func (nav *Navigator) Start(n NodeRef) (uint32, error) {
	return nav.layoutFor(n).ReadStart(nav.a, uint64(n))
}

func (nav *Navigator) End(n NodeRef) (uint32, error) {
	return nav.layoutFor(n).ReadEnd(nav.a, uint64(n))
}

// LengthOf returns the edge length arriving at n, using the sentinel trick
// for leaves (spec §4.4): the edge "grows" with the tree's final text
// length rather than being rewritten per phase.
func (nav *Navigator) LengthOf(n NodeRef) (int, error) {
	start, err := nav.Start(n)
	if err != nil {
		return 0, err
	}
	end, err := nav.End(n)
	if err != nil {
		return 0, err
	}
	if end == format.EndOfText {
		return nav.textLen + 1 - int(start), nil
	}
	return int(end) - int(start), nil
}

// DepthFromRoot returns the node's stored depth_from_root field: the
// cumulative path length up to (but excluding) this node's own edge.
func (nav *Navigator) DepthFromRoot(n NodeRef) (uint32, error) {
	return nav.layoutFor(n).ReadDepth(nav.a, uint64(n))
}

// NodeDepth is a synonym for DepthFromRoot: spec §4.6 lists both names for
// the same stored quantity.
func (nav *Navigator) NodeDepth(n NodeRef) (uint32, error) { return nav.DepthFromRoot(n) }

// StringDepth returns the total path length through n, i.e. depth_from_root
// plus n's own edge length.
func (nav *Navigator) StringDepth(n NodeRef) (int, error) {
	d, err := nav.DepthFromRoot(n)
	if err != nil {
		return 0, err
	}
	l, err := nav.LengthOf(n)
	if err != nil {
		return 0, err
	}
	return int(d) + l, nil
}

func (nav *Navigator) LeafCount(n NodeRef) (uint32, error) {
	return nav.layoutFor(n).ReadLeafCount(nav.a, uint64(n))
}

func (nav *Navigator) IsLeaf(n NodeRef) (bool, error) {
	end, err := nav.End(n)
	if err != nil {
		return false, err
	}
	return end == format.EndOfText, nil
}

// EdgeSymbol returns the code unit `offset` positions into n's own edge, or
// -1 once past the virtual terminator position (spec §4.6).
func (nav *Navigator) EdgeSymbol(n NodeRef, offset int) (int32, error) {
	start, err := nav.Start(n)
	if err != nil {
		return 0, err
	}
	pos := int(start) + offset
	if pos > nav.textLen {
		return -1, nil
	}
	return nav.txt.At(pos), nil
}

// SuffixLink returns root when the raw link is null, otherwise the target
// after resolve_jump (spec §4.6).
func (nav *Navigator) SuffixLink(n NodeRef) (NodeRef, error) {
	raw, err := nav.layoutFor(n).ReadSuffixLink(nav.a, uint64(n))
	if err != nil {
		return NullNode, err
	}
	if raw == layout.NullOffset {
		return nav.root, nil
	}
	resolved, err := nav.resolver.ResolveJump(nav.a, uint64(raw))
	if err != nil {
		return NullNode, err
	}
	return NodeRef(resolved), nil
}

// TryGetChild binary-searches n's child-entry array for key.
func (nav *Navigator) TryGetChild(n NodeRef, key int32) (NodeRef, bool, error) {
	base, entryLayout, count, err := nav.resolver.ReadChildArrayInfo(nav.a, uint64(n), nav.layoutFor(n))
	if err != nil {
		return NullNode, false, err
	}
	off, found, err := layout.FindChild(nav.a, base, count, entryLayout, key)
	if err != nil {
		return NullNode, false, err
	}
	if !found {
		return NullNode, false, nil
	}
	return NodeRef(off), true, nil
}

// Children returns n's full child list in sorted key order.
func (nav *Navigator) Children(n NodeRef) ([]ChildRef, error) {
	base, entryLayout, count, err := nav.resolver.ReadChildArrayInfo(nav.a, uint64(n), nav.layoutFor(n))
	if err != nil {
		return nil, err
	}
	out := make([]ChildRef, count)
	for i := 0; i < count; i++ {
		k, err := entryLayout.ReadChildKey(nav.a, base, i)
		if err != nil {
			return nil, err
		}
		o, err := entryLayout.ReadChildOffset(nav.a, base, i)
		if err != nil {
			return nil, err
		}
		out[i] = ChildRef{Key: k, Node: NodeRef(o)}
	}
	return out, nil
}

// CollectLeaves gathers every leaf under n, n included if n is itself a leaf.
func (nav *Navigator) CollectLeaves(n NodeRef) ([]NodeRef, error) {
	var out []NodeRef
	stack := []NodeRef{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		isLeaf, err := nav.IsLeaf(cur)
		if err != nil {
			return nil, err
		}
		if isLeaf {
			out = append(out, cur)
			continue
		}
		children, err := nav.Children(cur)
		if err != nil {
			return nil, err
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i].Node)
		}
	}
	return out, nil
}

// FindAnyLeafPosition descends via each node's first child until it reaches
// a leaf, then converts that leaf's depth into a text position.
func (nav *Navigator) FindAnyLeafPosition(n NodeRef) (int, error) {
	cur := n
	for {
		isLeaf, err := nav.IsLeaf(cur)
		if err != nil {
			return 0, err
		}
		if isLeaf {
			break
		}
		children, err := nav.Children(cur)
		if err != nil {
			return 0, err
		}
		if len(children) == 0 {
			return 0, fmt.Errorf("suffixtree: internal node %d has no children", cur)
		}
		cur = children[0].Node
	}
	sd, err := nav.StringDepth(cur)
	if err != nil {
		return 0, err
	}
	return nav.textLen + 1 - sd, nil
}

// Descend walks pattern from root, matching code units edge by edge. It
// reports the node at or beneath which the pattern ends and whether the
// full pattern was matched (spec §4.5 "pattern matching rule").
func (nav *Navigator) Descend(pattern []int32) (NodeRef, bool, error) {
	cur := nav.root
	i := 0
	for i < len(pattern) {
		child, found, err := nav.TryGetChild(cur, pattern[i])
		if err != nil {
			return NullNode, false, err
		}
		if !found {
			return NullNode, false, nil
		}
		elen, err := nav.LengthOf(child)
		if err != nil {
			return NullNode, false, err
		}
		j := 0
		for j < elen {
			sym, err := nav.EdgeSymbol(child, j)
			if err != nil {
				return NullNode, false, err
			}
			if sym != pattern[i] {
				return NullNode, false, nil
			}
			i++
			j++
			if i == len(pattern) {
				return child, true, nil
			}
		}
		cur = child
	}
	return cur, true, nil
}

// reDescend walks from an explicit node, consuming exactly count code units
// of this tree's own text starting at refPos, using count-and-skip (no
// character comparisons: the path is known to exist). It returns the
// landing point in (anchor, edgeChild, l) form: l == 0 means landed exactly
// at anchor; l > 0 means l code units into edgeChild's edge.
func (nav *Navigator) reDescend(from NodeRef, refPos, count int) (anchor, edgeChild NodeRef, l int, err error) {
	if count == 0 {
		return from, NullNode, 0, nil
	}
	v := from
	consumed := 0
	for consumed < count {
		key := nav.txt.At(refPos + consumed)
		child, found, e := nav.TryGetChild(v, key)
		if e != nil {
			return NullNode, NullNode, 0, e
		}
		if !found {
			return NullNode, NullNode, 0, fmt.Errorf("suffixtree: re-descend: no child for key %d at %d", key, v)
		}
		elen, e := nav.LengthOf(child)
		if e != nil {
			return NullNode, NullNode, 0, e
		}
		remaining := count - consumed
		if elen <= remaining {
			consumed += elen
			v = child
			if consumed == count {
				return v, NullNode, 0, nil
			}
			continue
		}
		return v, child, remaining, nil
	}
	return v, NullNode, 0, nil
}

// matchState is the streaming analogue of the builder's active point: node
// is always an explicit node; l == 0 means the match sits exactly at node;
// l > 0 means it is l code units into edgeChild's edge.
type matchState struct {
	node      NodeRef
	edgeChild NodeRef
	l         int
}

// streamMatch feeds units through the tree one at a time, maintaining the
// longest suffix of the units seen so far that is also a substring of this
// tree's text (the "matching statistics" construction), calling onStep with
// the running match length and the node the match currently ends at or
// beneath. Grounded on spec §4.5's longest_common_substring /
// find_exact_match_anchors streaming description and the suffix-link
// machinery the builder itself uses.
func (nav *Navigator) streamMatch(units []int32, onStep func(i, matchLen int, endNode NodeRef) error) error {
	st := matchState{node: nav.root, edgeChild: NullNode, l: 0}

	for i, c := range units {
		for {
			if st.l == 0 {
				child, found, err := nav.TryGetChild(st.node, c)
				if err != nil {
					return err
				}
				if !found {
					if st.node == nav.root {
						break
					}
					next, err := nav.SuffixLink(st.node)
					if err != nil {
						return err
					}
					st.node, st.l, st.edgeChild = next, 0, NullNode
					continue
				}
				elen, err := nav.LengthOf(child)
				if err != nil {
					return err
				}
				if elen == 1 {
					st.node, st.l, st.edgeChild = child, 0, NullNode
				} else {
					st.edgeChild, st.l = child, 1
				}
				break
			}

			sym, err := nav.EdgeSymbol(st.edgeChild, st.l)
			if err != nil {
				return err
			}
			if sym == c {
				st.l++
				elen, err := nav.LengthOf(st.edgeChild)
				if err != nil {
					return err
				}
				if st.l == elen {
					st.node, st.l, st.edgeChild = st.edgeChild, 0, NullNode
				}
				break
			}

			depth, err := nav.StringDepth(st.node)
			if err != nil {
				return err
			}
			suffixStart, err := nav.FindAnyLeafPosition(st.edgeChild)
			if err != nil {
				return err
			}
			refPos := suffixStart + int(depth)

			// Root's suffix link is itself (spec §3 "Root" convention), so
			// following it would re-descend the same unchanged window and
			// loop forever. Mirror the builder's own active-point rule for
			// this case (suffixtree/builder.go extendPhase, activeNode ==
			// root): drop the first matched code unit and retry the
			// shortened window from root instead.
			if st.node == nav.root {
				anchor, edgeChild, l, err := nav.reDescend(nav.root, refPos+1, st.l-1)
				if err != nil {
					return err
				}
				st.node, st.edgeChild, st.l = anchor, edgeChild, l
				continue
			}

			q, err := nav.SuffixLink(st.node)
			if err != nil {
				return err
			}
			anchor, edgeChild, l, err := nav.reDescend(q, refPos, st.l)
			if err != nil {
				return err
			}
			st.node, st.edgeChild, st.l = anchor, edgeChild, l
		}

		var endNode NodeRef
		if st.l == 0 {
			endNode = st.node
		} else {
			endNode = st.edgeChild
		}
		depth, err := nav.StringDepth(st.node)
		if err != nil {
			return err
		}
		if err := onStep(i, depth+st.l, endNode); err != nil {
			return err
		}
	}
	return nil
}
