// Package signature verifies webhook payload authenticity.
//
// The upstream platform signs the raw request body with HMAC-SHA256 and
// sends the hex digest in a header. Verification must run over the exact
// bytes as received; parsing and re-serializing the JSON would change the
// byte content and invalidate the hash.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Verifier checks caller-supplied signatures against a shared secret.
// The zero value has no secret and fails every verification with
// ErrNoSecret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier for the given shared secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Configured reports whether a non-empty secret is present.
func (v *Verifier) Configured() bool {
	return len(v.secret) > 0
}

// Verify compares sig against the HMAC-SHA256 hex digest of body.
//
// The provider is known to vary digest casing, so the comparison is
// case-insensitive. It is deliberately not constant-time: the source
// protocol specifies a plain case-insensitive compare, and matching that
// behavior is the contract here.
func (v *Verifier) Verify(body []byte, sig string) error {
	if !v.Configured() {
		return ErrNoSecret
	}
	if sig == "" {
		return ErrMissingSignature
	}
	if !strings.EqualFold(Compute(v.secret, body), sig) {
		return ErrMismatch
	}
	return nil
}

// Compute returns the lowercase hex HMAC-SHA256 digest of body under secret.
func Compute(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
