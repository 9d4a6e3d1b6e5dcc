package der

import "errors"

// ErrScorerFailure is returned when the external scorer cannot produce a DER.
var ErrScorerFailure = errors.New("der scorer failure")
