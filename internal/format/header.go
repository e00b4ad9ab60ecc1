package format

import "fmt"

// Header is the parsed, fixed 80-byte arena prefix (spec §3 "Header").
type Header struct {
	Version         uint32
	TextLength      uint32
	RootOffset      uint64
	TextRegionStart uint64
	NodeCount       uint32
	TotalSize       uint64

	// Hybrid-only fields (version 5); zero for Compact/Large arenas.
	TransitionOffset     uint64
	JumpTableStart       uint64
	JumpTableEnd         uint64
	DeepestInternalNode  uint64
}

// ParseHeader validates and decodes the header at the start of data.
//
// It checks the magic signature, the version byte, and that the recorded
// total size matches len(data) (spec invariants: "signature must match",
// "version must be 3, 4 or 5", "recorded size must equal arena length").
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("header: %w", ErrTruncated)
	}
	magic := U64(data, HeaderMagicOffset)
	if magic != Magic {
		return nil, fmt.Errorf("header: %w", ErrSignatureMismatch)
	}
	version := U32(data, HeaderVersionOffset)
	switch version {
	case VersionLarge, VersionCompact, VersionHybrid:
	default:
		return nil, fmt.Errorf("header: %w", ErrUnknownVersion)
	}

	h := &Header{
		Version:         version,
		TextLength:      U32(data, HeaderTextLengthOffset),
		RootOffset:      U64(data, HeaderRootOffset),
		TextRegionStart: U64(data, HeaderTextRegionOffset),
		NodeCount:       U32(data, HeaderNodeCountOffset),
		TotalSize:       U64(data, HeaderTotalSizeOffset),
	}
	if version == VersionHybrid {
		h.TransitionOffset = U64(data, HeaderTransitionOffset)
		h.JumpTableStart = U64(data, HeaderJumpStartOffset)
		h.JumpTableEnd = U64(data, HeaderJumpEndOffset)
		h.DeepestInternalNode = U64(data, HeaderDeepestInternalOffset)
	}

	if h.TotalSize != uint64(len(data)) {
		return nil, fmt.Errorf("header: %w", ErrSizeMismatch)
	}
	if h.RootOffset < HeaderSize || h.RootOffset >= h.TotalSize {
		return nil, fmt.Errorf("header: root offset: %w", ErrInvalidOffset)
	}
	return h, nil
}

// WriteHeader encodes h into data[0:HeaderSize]. Callers write the header
// last, once the node count and total size are final (builder "seal" step).
func WriteHeader(data []byte, h *Header) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("header: %w", ErrTruncated)
	}
	PutU64(data, HeaderMagicOffset, Magic)
	PutU32(data, HeaderVersionOffset, h.Version)
	PutU32(data, HeaderTextLengthOffset, h.TextLength)
	PutU64(data, HeaderRootOffset, h.RootOffset)
	PutU64(data, HeaderTextRegionOffset, h.TextRegionStart)
	PutU32(data, HeaderNodeCountOffset, h.NodeCount)
	PutU64(data, HeaderTotalSizeOffset, h.TotalSize)
	if h.Version == VersionHybrid {
		PutU64(data, HeaderTransitionOffset, h.TransitionOffset)
		PutU64(data, HeaderJumpStartOffset, h.JumpTableStart)
		PutU64(data, HeaderJumpEndOffset, h.JumpTableEnd)
		PutU64(data, HeaderDeepestInternalOffset, h.DeepestInternalNode)
	}
	return nil
}
