package smooth

import "errors"

var (
	// ErrInsufficientData means the series is shorter than the smoothing window.
	ErrInsufficientData = errors.New("insufficient data for smoothing window")
	// ErrInvalidWindow means the window/order pair cannot define a filter.
	ErrInvalidWindow = errors.New("invalid smoothing window")
)
