package slice

import "errors"

var (
	// ErrInvalidAxis is returned when an axis is not one of AxisX, AxisY or AxisZ.
	ErrInvalidAxis = errors.New("slice: invalid axis")

	// ErrSliceOutOfRange is returned when a slice index lies outside the volume.
	ErrSliceOutOfRange = errors.New("slice: slice index out of range")

	// ErrInvalidComponents is returned when a component count is not positive or does not
	// match what an operation requires.
	ErrInvalidComponents = errors.New("slice: invalid component count")

	// ErrNilSource is returned when a filter is built on top of a nil source.
	ErrNilSource = errors.New("slice: nil source")
)
