package format

import "errors"

var (
	// ErrSignatureMismatch indicates the arena's magic bytes did not match.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrUnknownVersion indicates an unrecognized format version byte.
	ErrUnknownVersion = errors.New("format: unknown version")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrSizeMismatch indicates the header's recorded size does not match the arena.
	ErrSizeMismatch = errors.New("format: recorded size does not match arena size")
	// ErrBoundsCheck indicates an offset or length fell outside the arena.
	ErrBoundsCheck = errors.New("format: buffer bounds exceeded")
	// ErrInvalidOffset indicates a field referenced an out-of-range or malformed offset.
	ErrInvalidOffset = errors.New("format: invalid offset")
	// ErrJumpOutOfRange indicates a dereferenced jump slot fell outside [jump_start, jump_end).
	ErrJumpOutOfRange = errors.New("format: jump slot out of range")
	// ErrDisposed indicates an operation on a disposed arena, text source, or tree.
	ErrDisposed = errors.New("format: disposed")
	// ErrCapacityExceeded indicates a growth request exceeded an arena's ceiling.
	ErrCapacityExceeded = errors.New("format: capacity exceeded")
	// ErrInvalidArgument indicates a null/missing input or an out-of-range index.
	ErrInvalidArgument = errors.New("format: invalid argument")
	// ErrBuildMisuse indicates a builder instance was reused after Build.
	ErrBuildMisuse = errors.New("format: builder already used")
	// ErrHashMismatch indicates a rebuilt tree's structural hash or node count
	// disagreed with the exported values.
	ErrHashMismatch = errors.New("format: structural hash mismatch")
)
