package texture

import "errors"

var (
	// ErrNoSource is returned by Update and the draw calls when no source is bound.
	ErrNoSource = errors.New("texture: no source bound")

	// ErrNilSource is returned by SetSource when given a nil source.
	ErrNilSource = errors.New("texture: nil source")

	// ErrEmptyRegion is returned when the source slice has zero area.
	ErrEmptyRegion = errors.New("texture: slice region has zero area")

	// ErrInvalidInterpolation is returned by SetInterpolation for an unknown mode.
	ErrInvalidInterpolation = errors.New("texture: invalid interpolation mode")

	// ErrInvalidFormat is returned by SetFormat for a format with no components.
	ErrInvalidFormat = errors.New("texture: invalid pixel format")

	// ErrReleased is returned by every operation after Release.
	ErrReleased = errors.New("texture: released")
)
