package srs

import "errors"

// Sentinel errors for the srs package.
// Use errors.Is to check: errors.Is(err, srs.ErrSuspendedWord)
var (
	ErrInvalidParams = errors.New("srs: parameters out of bounds")
	ErrSuspendedWord = errors.New("srs: word is suspended")
)
