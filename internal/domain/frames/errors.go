package frames

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrAlignment       = errors.New("alignment failed")
	ErrInvalidStep     = errors.New("frame step must be positive")
	ErrTooManySpeakers = errors.New("too many speakers")
)
