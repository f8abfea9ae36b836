package event

import (
	"errors"
	"fmt"
)

// Sentinel kinds for event parsing errors.
var (
	ErrMalformedPayload = errors.New("malformed event payload")
)

// WrapMalformed tags a decode error as a malformed-payload kind so the HTTP
// layer can map it to a caller error.
func WrapMalformed(err error) error {
	return fmt.Errorf("%w: %w", ErrMalformedPayload, err)
}
