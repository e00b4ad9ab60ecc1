package serialize_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AlexanderV/sstree/serialize"
	"github.com/AlexanderV/sstree/suffixtree"
	"github.com/AlexanderV/sstree/text"
)

func buildString(t *testing.T, s string) *suffixtree.Tree {
	t.Helper()
	ts, err := text.NewStringTextSource(s)
	require.NoError(t, err)
	b, err := suffixtree.NewBuilder(ts, suffixtree.DefaultOptions())
	require.NoError(t, err)
	tree, err := b.Build()
	require.NoError(t, err)
	return tree
}

func TestHashStableAcrossLayouts(t *testing.T) {
	const sample = "abracadabra abracadabra"

	compact := buildString(t, sample)

	largeOpts := suffixtree.DefaultOptions()
	largeOpts.ForceLarge = true
	ts, err := text.NewStringTextSource(sample)
	require.NoError(t, err)
	b, err := suffixtree.NewBuilder(ts, largeOpts)
	require.NoError(t, err)
	large, err := b.Build()
	require.NoError(t, err)

	h1, err := serialize.Hash(compact)
	require.NoError(t, err)
	h2, err := serialize.Hash(large)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}

func TestExportImportRoundTrip(t *testing.T) {
	tree := buildString(t, "the quick brown fox jumps over the lazy dog")

	var buf bytes.Buffer
	require.NoError(t, serialize.Export(&buf, tree))

	imported, err := serialize.Import(&buf, suffixtree.DefaultOptions())
	require.NoError(t, err)

	h1, err := serialize.Hash(tree)
	require.NoError(t, err)
	h2, err := serialize.Hash(imported)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
	require.Equal(t, tree.NodeCount(), imported.NodeCount())
}

func TestImportTruncatedStream(t *testing.T) {
	tree := buildString(t, "banana")

	var buf bytes.Buffer
	require.NoError(t, serialize.Export(&buf, tree))

	truncated := buf.Bytes()[:buf.Len()-4]
	_, err := serialize.Import(bytes.NewReader(truncated), suffixtree.DefaultOptions())
	require.Error(t, err)
}

func TestImportCorruptedHashFails(t *testing.T) {
	tree := buildString(t, "banana")

	var buf bytes.Buffer
	require.NoError(t, serialize.Export(&buf, tree))

	corrupted := append([]byte(nil), buf.Bytes()...)
	corrupted[len(corrupted)-1] ^= 0xFF

	_, err := serialize.Import(bytes.NewReader(corrupted), suffixtree.DefaultOptions())
	require.Error(t, err)
}
