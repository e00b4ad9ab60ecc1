package layout

import (
	"sort"

	"github.com/AlexanderV/sstree/arena"
)

// FindChild binary-searches a sorted, signed-key child-entry array for key,
// grounded on the teacher's zero-copy entry-accessor idiom generalized from
// a linear scan to sort.Search (spec §3 "Child entry", §4.4 "signed
// comparison"): keys are ordered by their *signed* int32 interpretation, so
// the terminator (-1) sorts before every real code unit.
func FindChild(a arena.Arena, base uint64, count int, entryLayout NodeLayout, key int32) (childOffset int64, found bool, err error) {
	var searchErr error
	idx := sort.Search(count, func(i int) bool {
		if searchErr != nil {
			return true
		}
		k, e := entryLayout.ReadChildKey(a, base, i)
		if e != nil {
			searchErr = e
			return true
		}
		return k >= key
	})
	if searchErr != nil {
		return 0, false, searchErr
	}
	if idx >= count {
		return 0, false, nil
	}
	k, err := entryLayout.ReadChildKey(a, base, idx)
	if err != nil {
		return 0, false, err
	}
	if k != key {
		return 0, false, nil
	}
	off, err := entryLayout.ReadChildOffset(a, base, idx)
	if err != nil {
		return 0, false, err
	}
	return off, true, nil
}
