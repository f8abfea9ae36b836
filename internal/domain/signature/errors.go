package signature

import "errors"

// Sentinel kinds for verification failures. ErrNoSecret is a deployment
// fault; the other two are caller faults and map to 4xx responses.
var (
	ErrNoSecret         = errors.New("webhook secret not configured")
	ErrMissingSignature = errors.New("missing signature")
	ErrMismatch         = errors.New("invalid signature")
)
