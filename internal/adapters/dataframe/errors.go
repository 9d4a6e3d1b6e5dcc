package dataframe

import "errors"

// ErrInvalidColumns is returned for an additional column pair without '='.
var ErrInvalidColumns = errors.New("invalid additional columns")
