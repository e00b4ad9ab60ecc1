package format

import (
	"errors"
	"testing"
)

func makeValidHeader(version uint32, totalSize uint64) []byte {
	data := make([]byte, totalSize)
	h := &Header{
		Version:         version,
		TextLength:      4,
		RootOffset:      HeaderSize,
		TextRegionStart: HeaderSize + 100,
		NodeCount:       1,
		TotalSize:       totalSize,
	}
	if err := WriteHeader(data, h); err != nil {
		panic(err)
	}
	return data
}

func TestParseHeaderRoundTrip(t *testing.T) {
	data := makeValidHeader(VersionCompact, HeaderSize+200)
	h, err := ParseHeader(data)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.Version != VersionCompact {
		t.Fatalf("version = %d, want %d", h.Version, VersionCompact)
	}
	if h.RootOffset != HeaderSize {
		t.Fatalf("root offset = %d, want %d", h.RootOffset, HeaderSize)
	}
	if h.TextLength != 4 {
		t.Fatalf("text length = %d, want 4", h.TextLength)
	}
}

func TestParseHeaderHybridFields(t *testing.T) {
	totalSize := uint64(HeaderSize + 300)
	data := make([]byte, totalSize)
	h := &Header{
		Version:             VersionHybrid,
		TextLength:          8,
		RootOffset:          HeaderSize,
		TextRegionStart:     HeaderSize + 200,
		NodeCount:           5,
		TotalSize:           totalSize,
		TransitionOffset:    HeaderSize + 50,
		JumpTableStart:      HeaderSize + 60,
		JumpTableEnd:        HeaderSize + 100,
		DeepestInternalNode: HeaderSize + 10,
	}
	if err := WriteHeader(data, h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	got, err := ParseHeader(data)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if got.TransitionOffset != h.TransitionOffset || got.JumpTableStart != h.JumpTableStart ||
		got.JumpTableEnd != h.JumpTableEnd || got.DeepestInternalNode != h.DeepestInternalNode {
		t.Fatalf("hybrid fields mismatch: got %+v want %+v", got, h)
	}
}

func TestParseHeaderSignatureMismatch(t *testing.T) {
	data := makeValidHeader(VersionCompact, HeaderSize+10)
	PutU64(data, HeaderMagicOffset, 0)
	if _, err := ParseHeader(data); !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("err = %v, want ErrSignatureMismatch", err)
	}
}

func TestParseHeaderUnknownVersion(t *testing.T) {
	data := makeValidHeader(VersionCompact, HeaderSize+10)
	PutU32(data, HeaderVersionOffset, 99)
	if _, err := ParseHeader(data); !errors.Is(err, ErrUnknownVersion) {
		t.Fatalf("err = %v, want ErrUnknownVersion", err)
	}
}

func TestParseHeaderTruncated(t *testing.T) {
	data := make([]byte, HeaderSize-1)
	if _, err := ParseHeader(data); !errors.Is(err, ErrTruncated) {
		t.Fatalf("err = %v, want ErrTruncated", err)
	}
}

func TestParseHeaderSizeMismatch(t *testing.T) {
	data := makeValidHeader(VersionCompact, HeaderSize+10)
	// Truncate the slice so recorded TotalSize no longer matches len(data).
	data = data[:len(data)-1]
	if _, err := ParseHeader(data); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("err = %v, want ErrSizeMismatch", err)
	}
}

func TestParseHeaderInvalidRootOffset(t *testing.T) {
	totalSize := uint64(HeaderSize + 10)
	data := make([]byte, totalSize)
	h := &Header{
		Version:    VersionCompact,
		RootOffset: 4, // below HeaderSize
		TotalSize:  totalSize,
	}
	if err := WriteHeader(data, h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if _, err := ParseHeader(data); !errors.Is(err, ErrInvalidOffset) {
		t.Fatalf("err = %v, want ErrInvalidOffset", err)
	}
}
