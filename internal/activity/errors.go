package activity

import "errors"

var (
	// ErrUnknownGroup is returned for a cumulative grouping other than type or year.
	ErrUnknownGroup = errors.New("unknown activity grouping")

	// ErrUnknownColumn is returned when a trend names a column that has no numeric value.
	ErrUnknownColumn = errors.New("unknown activity column")

	// ErrTooFewActivities is returned when a trend has fewer than two activities to fit.
	ErrTooFewActivities = errors.New("too few activities for a trend")
)
