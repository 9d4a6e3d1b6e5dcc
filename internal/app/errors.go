package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoFileIDs = errors.New("no file ids to score")
)
