package text

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// StringTextSource owns a decoded []uint16 in memory. It is the realization
// used by MemoryArena-backed trees and by tests.
type StringTextSource struct {
	units []uint16
}

// NewStringTextSource decodes a Go string (UTF-8) into UTF-16LE code units.
// Characters outside the basic multilingual plane become surrogate pairs,
// each occupying one code unit, matching the wire format's 16-bit units.
func NewStringTextSource(s string) (*StringTextSource, error) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	encoded, _, err := transform.String(enc.NewEncoder(), s)
	if err != nil {
		return nil, fmt.Errorf("text: encode utf-16le: %w", err)
	}
	if len(encoded)%2 != 0 {
		return nil, fmt.Errorf("text: odd-length utf-16le output")
	}
	units := make([]uint16, len(encoded)/2)
	for i := range units {
		units[i] = uint16(encoded[2*i]) | uint16(encoded[2*i+1])<<8
	}
	return &StringTextSource{units: units}, nil
}

// NewUnitsTextSource wraps an already-decoded []uint16 sequence directly,
// with no encoding step.
func NewUnitsTextSource(units []uint16) *StringTextSource {
	cp := make([]uint16, len(units))
	copy(cp, units)
	return &StringTextSource{units: cp}
}

func (s *StringTextSource) Len() int { return len(s.units) }

func (s *StringTextSource) At(i int) int32 {
	if i == len(s.units) {
		return TerminatorKey
	}
	if i < 0 || i > len(s.units) {
		panic(fmt.Sprintf("text: index %d out of range [0, %d]", i, len(s.units)))
	}
	return int32(s.units[i])
}

func (s *StringTextSource) Slice(lo, hi int) ([]uint16, error) {
	if lo < 0 || hi < lo || hi > len(s.units) {
		return nil, ErrOutOfRange
	}
	out := make([]uint16, hi-lo)
	copy(out, s.units[lo:hi])
	return out, nil
}

func (s *StringTextSource) Iterate(fn func(i int, unit uint16) bool) {
	for i, u := range s.units {
		if !fn(i, u) {
			return
		}
	}
}

// String decodes the stored UTF-16LE units back to a Go string, primarily
// for tests and diagnostic printing.
func (s *StringTextSource) String() (string, error) {
	return UnitsToString(s.units)
}

// UnitsToString decodes a slice of UTF-16LE code units back to a Go string.
// Used anywhere a substring extracted from a tree's text needs to be
// reported back to a caller as ordinary Go text.
func UnitsToString(units []uint16) (string, error) {
	buf := make([]byte, len(units)*2)
	for i, u := range units {
		buf[2*i] = byte(u)
		buf[2*i+1] = byte(u >> 8)
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	out, _, err := transform.Bytes(dec.NewDecoder(), buf)
	if err != nil {
		return "", fmt.Errorf("text: decode utf-16le: %w", err)
	}
	return string(out), nil
}
