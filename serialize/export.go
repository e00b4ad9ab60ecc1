package serialize

import (
	"bufio"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/AlexanderV/sstree/internal/format"
	"github.com/AlexanderV/sstree/suffixtree"
	"github.com/AlexanderV/sstree/text"
)

// Export writes tree's logical export stream (spec §4.8, §6 "Logical
// export format (v2)"): magic, version, length-prefixed text, node count,
// hash length, hash bytes. The stream carries enough to rebuild the tree
// from scratch; it is not a copy of the arena.
func Export(w io.Writer, tree *suffixtree.Tree) error {
	hash, err := Hash(tree)
	if err != nil {
		return fmt.Errorf("serialize: export: %w", err)
	}

	head := make([]byte, 12)
	binary.LittleEndian.PutUint64(head[0:8], format.ExportMagic)
	binary.LittleEndian.PutUint32(head[8:12], uint32(format.ExportVersion))
	if _, err := w.Write(head); err != nil {
		return fmt.Errorf("serialize: export: %w", err)
	}

	n := tree.TextLength()
	lenBuf := make([]byte, binary.MaxVarintLen64)
	ln := binary.PutUvarint(lenBuf, uint64(n))
	if _, err := w.Write(lenBuf[:ln]); err != nil {
		return fmt.Errorf("serialize: export: %w", err)
	}

	units, err := tree.Text().Slice(0, n)
	if err != nil {
		return fmt.Errorf("serialize: export: %w", err)
	}
	textBuf := make([]byte, n*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(textBuf[2*i:], u)
	}
	if _, err := w.Write(textBuf); err != nil {
		return fmt.Errorf("serialize: export: %w", err)
	}

	tail := make([]byte, 4+4+len(hash))
	binary.LittleEndian.PutUint32(tail[0:4], tree.NodeCount())
	binary.LittleEndian.PutUint32(tail[4:8], uint32(len(hash)))
	copy(tail[8:], hash[:])
	if _, err := w.Write(tail); err != nil {
		return fmt.Errorf("serialize: export: %w", err)
	}
	return nil
}

// Import reads a logical export stream, rebuilds the tree from its embedded
// text via a fresh Builder, and rejects the result unless the rebuilt node
// count and recomputed hash match the stream's recorded values exactly
// (spec §4.8 "Import"). Truncated streams are reported distinctly, before
// any hash comparison is attempted.
func Import(r io.Reader, opts suffixtree.Options) (*suffixtree.Tree, error) {
	br := bufio.NewReader(r)

	head := make([]byte, 12)
	if _, err := io.ReadFull(br, head); err != nil {
		return nil, fmt.Errorf("serialize: import: %w: header: %v", format.ErrTruncated, err)
	}
	magic := binary.LittleEndian.Uint64(head[0:8])
	if magic != format.ExportMagic {
		return nil, fmt.Errorf("serialize: import: %w", format.ErrSignatureMismatch)
	}
	version := int32(binary.LittleEndian.Uint32(head[8:12]))
	if version != format.ExportVersion {
		return nil, fmt.Errorf("serialize: import: %w: version %d", format.ErrUnknownVersion, version)
	}

	textLen, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, fmt.Errorf("serialize: import: %w: text length: %v", format.ErrTruncated, err)
	}

	textBytes := make([]byte, textLen*2)
	if _, err := io.ReadFull(br, textBytes); err != nil {
		return nil, fmt.Errorf("serialize: import: %w: text: %v", format.ErrTruncated, err)
	}
	units := make([]uint16, textLen)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(textBytes[2*i:])
	}

	tail := make([]byte, 8)
	if _, err := io.ReadFull(br, tail); err != nil {
		return nil, fmt.Errorf("serialize: import: %w: trailer: %v", format.ErrTruncated, err)
	}
	wantNodeCount := binary.LittleEndian.Uint32(tail[0:4])
	hashLen := binary.LittleEndian.Uint32(tail[4:8])

	wantHash := make([]byte, hashLen)
	if _, err := io.ReadFull(br, wantHash); err != nil {
		return nil, fmt.Errorf("serialize: import: %w: hash: %v", format.ErrTruncated, err)
	}

	ts := text.NewUnitsTextSource(units)
	b, err := suffixtree.NewBuilder(ts, opts)
	if err != nil {
		return nil, fmt.Errorf("serialize: import: %w", err)
	}
	tree, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("serialize: import: %w", err)
	}

	if tree.NodeCount() != wantNodeCount {
		_ = tree.Dispose()
		return nil, fmt.Errorf("serialize: import: %w: node count %d != %d", format.ErrHashMismatch, tree.NodeCount(), wantNodeCount)
	}

	gotHash, err := Hash(tree)
	if err != nil {
		_ = tree.Dispose()
		return nil, fmt.Errorf("serialize: import: %w", err)
	}
	if len(gotHash) != int(hashLen) || subtle.ConstantTimeCompare(gotHash[:], wantHash) != 1 {
		_ = tree.Dispose()
		return nil, fmt.Errorf("serialize: import: %w", format.ErrHashMismatch)
	}

	return tree, nil
}
