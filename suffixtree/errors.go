package suffixtree

import "errors"

var (
	// ErrValidation wraps a structural problem found while constructing a
	// Tree over an existing arena (spec §4.5 "construction/validation").
	ErrValidation = errors.New("suffixtree: validation failed")
)
