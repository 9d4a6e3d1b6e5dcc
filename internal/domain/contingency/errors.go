package contingency

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrLengthMismatch = errors.New("label sequences differ in length")
	ErrEmpty          = errors.New("no labels")
	ErrInvalidCounts  = errors.New("invalid contingency counts")
)
