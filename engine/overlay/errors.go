package overlay

import "errors"

var (
	// ErrInvalidFacing is returned when a facing is not +1 or -1.
	ErrInvalidFacing = errors.New("overlay: facing must be +1 or -1")

	// ErrInvalidComponent is returned when a projected component index is negative or
	// beyond the slice's component count.
	ErrInvalidComponent = errors.New("overlay: invalid vector component index")

	// ErrReleased is returned by Draw after Release.
	ErrReleased = errors.New("overlay: released")
)
