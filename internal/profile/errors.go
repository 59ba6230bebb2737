package profile

import "errors"

// ErrInvalidInput is returned for an empty point sequence.
var ErrInvalidInput = errors.New("invalid input")
