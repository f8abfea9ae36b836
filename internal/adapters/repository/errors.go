package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrPersist = errors.New("persist failed")
	ErrLoad    = errors.New("load failed")
)
