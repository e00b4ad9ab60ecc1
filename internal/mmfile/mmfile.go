// Package mmfile provides platform-specific helpers for memory-mapping the
// arena file backing a file-based storage arena. Unlike a read-only mapping
// of an already-sealed file, a builder needs a *writable, growable* mapping:
// the arena is extended repeatedly during construction, so Grow must be able
// to remap in place without losing the file handle.
package mmfile

import "errors"

// ErrClosed is returned by any Mapping method after Close has run.
var ErrClosed = errors.New("mmfile: mapping is closed")
