package layout

import (
	"testing"

	"github.com/AlexanderV/sstree/arena"
	"github.com/AlexanderV/sstree/internal/format"
	"github.com/stretchr/testify/require"
)

func newArena(t *testing.T) arena.Arena {
	t.Helper()
	return arena.NewMemoryArena(256)
}

func TestCompactNodeRoundTrip(t *testing.T) {
	a := newArena(t)
	off, err := a.Allocate(uint32(Compact{}.NodeSize()))
	require.NoError(t, err)

	c := Compact{}
	require.NoError(t, c.WriteStart(a, off, 3))
	require.NoError(t, c.WriteEnd(a, off, 9))
	require.NoError(t, c.WriteSuffixLink(a, off, NullOffset))
	require.NoError(t, c.WriteDepth(a, off, 2))
	require.NoError(t, c.WriteLeafCount(a, off, 1))
	require.NoError(t, c.WriteChildrenHeadAndCount(a, off, NullOffset, 0))

	start, err := c.ReadStart(a, off)
	require.NoError(t, err)
	require.Equal(t, uint32(3), start)

	link, err := c.ReadSuffixLink(a, off)
	require.NoError(t, err)
	require.Equal(t, NullOffset, link)

	head, count, err := c.ReadChildrenHeadAndCount(a, off)
	require.NoError(t, err)
	require.Equal(t, NullOffset, head)
	require.Equal(t, int32(0), count)
}

func TestLargeNodeRoundTrip(t *testing.T) {
	a := newArena(t)
	l := Large{}
	off, err := a.Allocate(uint32(l.NodeSize()))
	require.NoError(t, err)

	require.NoError(t, l.WriteSuffixLink(a, off, 1<<40))
	link, err := l.ReadSuffixLink(a, off)
	require.NoError(t, err)
	require.Equal(t, int64(1<<40), link)

	require.NoError(t, l.WriteChildrenHeadAndCount(a, off, 777, 3))
	head, count, err := l.ReadChildrenHeadAndCount(a, off)
	require.NoError(t, err)
	require.Equal(t, int64(777), head)
	require.Equal(t, int32(3), count)
}

func TestLayoutForVersion(t *testing.T) {
	l, err := LayoutForVersion(3)
	require.NoError(t, err)
	require.IsType(t, Large{}, l)

	l, err = LayoutForVersion(4)
	require.NoError(t, err)
	require.IsType(t, Compact{}, l)

	l, err = LayoutForVersion(5)
	require.NoError(t, err)
	require.IsType(t, Compact{}, l)

	_, err = LayoutForVersion(99)
	require.Error(t, err)
}

func TestFindChildSignedOrdering(t *testing.T) {
	a := newArena(t)
	c := Compact{}
	base, err := a.Allocate(uint32(c.ChildEntrySize() * 4))
	require.NoError(t, err)

	// Terminator (-1) first, then ascending real keys.
	require.NoError(t, c.WriteChildEntry(a, base, 0, -1, 100))
	require.NoError(t, c.WriteChildEntry(a, base, 1, 5, 200))
	require.NoError(t, c.WriteChildEntry(a, base, 2, 10, 300))
	require.NoError(t, c.WriteChildEntry(a, base, 3, 20, 400))

	off, found, err := FindChild(a, base, 4, c, -1)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(100), off)

	off, found, err = FindChild(a, base, 4, c, 10)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(300), off)

	_, found, err = FindChild(a, base, 4, c, 6)
	require.NoError(t, err)
	require.False(t, found)
}

func TestHybridResolverNonHybrid(t *testing.T) {
	r := NonHybrid(Compact{})
	require.IsType(t, Compact{}, r.LayoutForOffset(1000))
	a := newArena(t)
	resolved, err := r.ResolveJump(a, 42)
	require.NoError(t, err)
	require.Equal(t, uint64(42), resolved)
}

func TestHybridResolverZoneSplit(t *testing.T) {
	r := HybridResolver{BaseLayout: Compact{}, TransitionOffset: 1000, JumpStart: 2000, JumpEnd: 2100}
	require.IsType(t, Compact{}, r.LayoutForOffset(500))
	require.IsType(t, Large{}, r.LayoutForOffset(1500))

	a := newArena(t)
	// Write a jump slot at offset 2000 pointing to real offset 9999.
	_, err := a.Allocate(2100)
	require.NoError(t, err)
	require.NoError(t, a.WriteI64(2000, 9999))

	resolved, err := r.ResolveJump(a, 2000)
	require.NoError(t, err)
	require.Equal(t, uint64(9999), resolved)

	// Offsets outside the jump range pass through unchanged.
	resolved, err = r.ResolveJump(a, 1500)
	require.NoError(t, err)
	require.Equal(t, uint64(1500), resolved)
}

func TestReadChildArrayInfoJumped(t *testing.T) {
	r := HybridResolver{BaseLayout: Compact{}, TransitionOffset: 1000, JumpStart: 2000, JumpEnd: 2100}
	a := newArena(t)
	_, err := a.Allocate(3000)
	require.NoError(t, err)

	c := Compact{}
	nodeOff := uint64(100)
	// jumped bit set, count = 2, head points at jump slot 2000
	require.NoError(t, c.WriteChildrenHeadAndCount(a, nodeOff, 2000, int32(2)|format.JumpedBit))
	require.NoError(t, a.WriteI64(2000, 2500))

	base, entryLayout, count, err := r.ReadChildArrayInfo(a, nodeOff, c)
	require.NoError(t, err)
	require.Equal(t, uint64(2500), base)
	require.IsType(t, Large{}, entryLayout)
	require.Equal(t, 2, count)
}

func TestReadChildArrayInfoPlain(t *testing.T) {
	r := NonHybrid(Compact{})
	a := newArena(t)
	_, err := a.Allocate(100)
	require.NoError(t, err)

	c := Compact{}
	nodeOff := uint64(0)
	require.NoError(t, c.WriteChildrenHeadAndCount(a, nodeOff, 40, 3))

	base, entryLayout, count, err := r.ReadChildArrayInfo(a, nodeOff, c)
	require.NoError(t, err)
	require.Equal(t, uint64(40), base)
	require.IsType(t, Compact{}, entryLayout)
	require.Equal(t, 3, count)
}
