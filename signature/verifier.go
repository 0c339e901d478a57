package signature

import (
	"crypto/hmac"
	"encoding/base64"
	"errors"
	"hash"
	"strings"
)

// ErrInvalidSignature is returned when a claimed signature does not match the payload.
var ErrInvalidSignature = errors.New("signature: invalid signature")

// Verifier validates the authenticity of raw payloads.
type Verifier interface {
	Verify(payload []byte, signature string, secret []byte) error
}

// VerifierFunc lifts bare functions into [Verifier].
type VerifierFunc func(payload []byte, signature string, secret []byte) error

// Verify delegates to the wrapped function.
func (f VerifierFunc) Verify(payload []byte, signature string, secret []byte) error {
	return f(payload, signature, secret)
}

// HMACVerifier checks base64url (unpadded) HMAC signatures over the exact bytes
// that were received. Signatures sent with standard base64 padding are accepted.
type HMACVerifier struct {
	// Key is used whenever Verify is called with an empty secret.
	Key []byte
	// Hash defaults to SHA-256.
	Hash func() hash.Hash
}

// Verify implements [Verifier].
func (v HMACVerifier) Verify(payload []byte, signature string, secret []byte) error {
	key := secret
	if len(key) == 0 {
		key = v.Key
	}
	if len(key) == 0 {
		return errors.New("signature: HMACVerifier requires a non-empty key")
	}
	mac := hmac.New(hashOrDefault(v.Hash), key)
	_, _ = mac.Write(payload)
	expected := []byte(base64.RawURLEncoding.EncodeToString(mac.Sum(nil)))

	if hmac.Equal(expected, []byte(signature)) {
		return nil
	}
	if hmac.Equal(expected, []byte(strings.TrimRight(signature, "="))) {
		return nil
	}
	return ErrInvalidSignature
}
