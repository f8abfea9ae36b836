package sahha

import "errors"

// Sentinel kinds for API client errors.
var (
	ErrNoToken   = errors.New("token response missing accountToken")
	ErrAPIStatus = errors.New("api request failed")
)
