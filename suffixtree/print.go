package suffixtree

import (
	"fmt"
	"io"
	"strings"

	"github.com/AlexanderV/sstree/internal/format"
)

// printVisitor renders one indented line per node, matching the edge key
// and [start,end) range that produced it. Diagnostic only; not used by any
// query operation.
type printVisitor struct {
	w     io.Writer
	stack []int32
	err   error
}

func (p *printVisitor) VisitNode(depth int, start, end uint32, leafCount uint32, childCount int) error {
	if p.err != nil {
		return p.err
	}
	indent := strings.Repeat("  ", depth)
	endStr := fmt.Sprintf("%d", end)
	if end == format.EndOfText {
		endStr = "$"
	}
	var label string
	if len(p.stack) > 0 {
		label = fmt.Sprintf("key=%d ", p.stack[len(p.stack)-1])
	}
	_, p.err = fmt.Fprintf(p.w, "%s%s[%d,%s) leaves=%d children=%d\n", indent, label, start, endStr, leafCount, childCount)
	return p.err
}

func (p *printVisitor) EnterBranch(key int32) error {
	p.stack = append(p.stack, key)
	return nil
}

func (p *printVisitor) ExitBranch() error {
	p.stack = p.stack[:len(p.stack)-1]
	return nil
}

// PrintTree writes a human-readable, indented dump of the tree's shape to
// w: one line per node, giving its edge range, leaf count and child count.
func (t *Tree) PrintTree(w io.Writer) error {
	return t.Traverse(&printVisitor{w: w})
}
