package suffixtree

import "github.com/AlexanderV/sstree/arena"

// defaultCompactOffsetLimit is the full 32-bit address space: a build only
// promotes to the hybrid layout once a node allocation would land an offset
// that a Compact u32 field could no longer address.
const defaultCompactOffsetLimit = uint64(1) << 32

// Options configures a Builder. The zero value is not usable; call
// DefaultOptions and override individual fields.
type Options struct {
	// CompactOffsetLimit is the arena size, in bytes, above which the
	// builder promotes from Compact to the hybrid Compact/Large layout
	// (spec §4.4 "hybrid promotion"). Tests lower this to force promotion
	// on small inputs; production builds leave it at the default.
	CompactOffsetLimit uint64

	// InitialArenaCapacity sizes the first allocation of a Builder-owned
	// MemoryArena. Ignored when Arena is supplied.
	InitialArenaCapacity uint32

	// ForceLarge builds a non-hybrid, Large-only tree (format version 3)
	// regardless of CompactOffsetLimit, for exercising the Large-only code
	// paths directly (spec §8 "a non-hybrid tree (compact-only or
	// large-only)").
	ForceLarge bool

	// Arena, if non-nil, is used as the backing store instead of a
	// Builder-owned MemoryArena. Its current Size() must be 0.
	Arena arena.Arena
}

// DefaultOptions returns the options used when a caller has no special
// requirements: an owned in-memory arena, the full 32-bit compact offset
// limit, and no forced layout.
func DefaultOptions() Options {
	return Options{
		CompactOffsetLimit:   defaultCompactOffsetLimit,
		InitialArenaCapacity: 4096,
	}
}
