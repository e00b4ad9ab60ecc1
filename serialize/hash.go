// Package serialize implements the logical hash and the export/import
// rebuild-based serializer of spec §4.8: a structural digest independent of
// storage layout, and a compact stream that reconstructs a tree from its
// text rather than copying the arena bytes.
package serialize

import (
	"crypto/sha256"
	"encoding/binary"
	"io"

	"github.com/AlexanderV/sstree/suffixtree"
)

// exitSentinel is the value ExitBranch contributes to the hash stream,
// distinguishing "closed a branch" from any real edge key or field value.
const exitSentinel int32 = -999

// Hash computes tree's structural digest: SHA-256 over the indexed text (as
// little-endian 16-bit code units, chunked) followed by a deterministic
// tree-shape stream produced by Traverse. Two trees with identical text and
// identical shape hash identically regardless of Compact/Large/Hybrid
// layout or arena backing.
func Hash(tree *suffixtree.Tree) ([32]byte, error) {
	h := sha256.New()
	if err := hashText(h, tree); err != nil {
		return [32]byte{}, err
	}
	v := &hashVisitor{w: h}
	if err := tree.Traverse(v); err != nil {
		return [32]byte{}, err
	}
	if v.err != nil {
		return [32]byte{}, v.err
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

func hashText(w io.Writer, tree *suffixtree.Tree) error {
	const chunkUnits = 4096
	n := tree.TextLength()
	txt := tree.Text()
	for i := 0; i < n; i += chunkUnits {
		end := i + chunkUnits
		if end > n {
			end = n
		}
		units, err := txt.Slice(i, end)
		if err != nil {
			return err
		}
		buf := make([]byte, len(units)*2)
		for j, u := range units {
			binary.LittleEndian.PutUint16(buf[2*j:], u)
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// hashVisitor feeds Traverse's callbacks into the running hash, exactly per
// spec's byte encoding: visit_node emits four little-endian i32
// (start, end, leaf_count, child_count); enter_branch emits the key as a
// little-endian i32; exit_branch emits the sentinel -999.
type hashVisitor struct {
	w   io.Writer
	err error
}

func (v *hashVisitor) put(vals ...int32) {
	if v.err != nil {
		return
	}
	buf := make([]byte, 4*len(vals))
	for i, x := range vals {
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(x))
	}
	_, v.err = v.w.Write(buf)
}

func (v *hashVisitor) VisitNode(_ int, start, end uint32, leafCount uint32, childCount int) error {
	v.put(int32(start), int32(end), int32(leafCount), int32(childCount))
	return v.err
}

func (v *hashVisitor) EnterBranch(key int32) error {
	v.put(key)
	return v.err
}

func (v *hashVisitor) ExitBranch() error {
	v.put(exitSentinel)
	return v.err
}
