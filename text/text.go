// Package text implements the text-source contract: an opaque,
// length-prefixed sequence of 16-bit code units that the builder indexes
// and every read-side algorithm walks. Two realizations are provided: an
// in-process StringTextSource and a MappedTextSource that borrows a region
// of a file-backed arena's mapping.
package text

// TerminatorKey is the virtual sentinel code unit returned by At at
// position == Len. It is never stored in the text itself; it exists only
// as a child-entry key (spec §3 "Text source").
const TerminatorKey int32 = -1

// TextSource is the read-only contract every tree walk and builder
// extension consumes.
type TextSource interface {
	// Len returns the number of real code units (excluding the terminator).
	Len() int

	// At returns the signed key of the code unit at position i. For
	// i == Len(), it returns TerminatorKey; i outside [0, Len()] panics.
	At(i int) int32

	// Slice returns a copy of the code units in [lo, hi).
	Slice(lo, hi int) ([]uint16, error)

	// Iterate calls fn for every real code unit in order, stopping early
	// if fn returns false.
	Iterate(fn func(i int, unit uint16) bool)
}
