package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrEmptyFileID = errors.New("empty file id")
)
