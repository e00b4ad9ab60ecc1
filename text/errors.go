package text

import "errors"

var (
	// ErrOutOfRange indicates a Slice call's bounds fell outside the text.
	ErrOutOfRange = errors.New("text: slice out of range")
	// ErrDisposed indicates an operation against a MappedTextSource whose
	// backing arena has already been disposed.
	ErrDisposed = errors.New("text: disposed")
)
