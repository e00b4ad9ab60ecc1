package suffixtree

// Visitor receives callbacks during an iterative, deterministic,
// depth-first Traverse (spec §4.5 "traverse").
type Visitor interface {
	// VisitNode is called once per node, including the root, in the order
	// the traversal reaches it.
	VisitNode(depth int, start, end uint32, leafCount uint32, childCount int) error
	// EnterBranch is called before descending into a child, naming the key
	// of the edge taken.
	EnterBranch(key int32) error
	// ExitBranch is called after a child subtree (and everything below it)
	// has been fully visited. Paired 1:1 with EnterBranch.
	ExitBranch() error
}

// traverseFrame is one node's traversal progress: its children (sorted) and
// how many have been descended into so far. isRoot suppresses the matching
// ExitBranch, since the root was never entered via a branch.
type traverseFrame struct {
	children []ChildRef
	idx      int
	depth    int
	isRoot   bool
}

// Traverse walks the whole tree depth-first, visiting children in sorted
// key order, using an explicit stack rather than recursion (spec §4.5: "an
// explicit stack of (array_base, entry_layout, child_count, index, depth)").
// This implementation threads the same state through the Navigator's
// Children accessor rather than raw array/layout tuples directly, since
// that accessor already performs the array_base/entry_layout resolution
// the prose describes.
func (t *Tree) Traverse(v Visitor) error {
	if err := t.checkAlive(); err != nil {
		return err
	}

	root := t.nav.Root()
	if err := t.visitNode(v, root, 0); err != nil {
		return err
	}
	rootKids, err := t.nav.Children(root)
	if err != nil {
		return err
	}

	stack := []*traverseFrame{{children: rootKids, depth: 0, isRoot: true}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.idx >= len(top.children) {
			stack = stack[:len(stack)-1]
			if !top.isRoot {
				if err := v.ExitBranch(); err != nil {
					return err
				}
			}
			continue
		}

		child := top.children[top.idx]
		top.idx++
		if err := v.EnterBranch(child.Key); err != nil {
			return err
		}
		if err := t.visitNode(v, child.Node, top.depth+1); err != nil {
			return err
		}
		grandKids, err := t.nav.Children(child.Node)
		if err != nil {
			return err
		}
		stack = append(stack, &traverseFrame{children: grandKids, depth: top.depth + 1})
	}
	return nil
}

func (t *Tree) visitNode(v Visitor, n NodeRef, depth int) error {
	start, err := t.nav.Start(n)
	if err != nil {
		return err
	}
	end, err := t.nav.End(n)
	if err != nil {
		return err
	}
	lc, err := t.nav.LeafCount(n)
	if err != nil {
		return err
	}
	children, err := t.nav.Children(n)
	if err != nil {
		return err
	}
	return v.VisitNode(depth, start, end, lc, len(children))
}
