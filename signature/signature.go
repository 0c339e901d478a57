// Package signature implements the request signing scheme used by ACP
// clients: canonical JSON, HMAC signatures over a method/path/timestamp/request
// id envelope, and constant-time verification of raw webhook bodies.
package signature

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"hash"
	"reflect"
	"strings"
)

// Material captures the inputs bound together by a request signature.
type Material struct {
	Method    string
	Path      string
	Timestamp string
	RequestID string
	// Body is the canonical JSON body, or nil when the request carries no payload.
	Body []byte
}

// Signer produces request signatures.
type Signer interface {
	Sign(method, path string, payload any, timestamp, requestID string) (string, error)
}

// SignerFunc lifts bare functions into [Signer].
type SignerFunc func(method, path string, payload any, timestamp, requestID string) (string, error)

// Sign delegates to the wrapped function.
func (f SignerFunc) Sign(method, path string, payload any, timestamp, requestID string) (string, error) {
	return f(method, path, payload, timestamp, requestID)
}

// HMACSigner signs requests with the base64url (unpadded) HMAC of
// `METHOD\nPATH\nTIMESTAMP\nREQUEST_ID\nBODY`, where BODY is the canonical JSON
// of the payload or empty when there is none.
type HMACSigner struct {
	Key []byte
	// Hash defaults to SHA-256.
	Hash func() hash.Hash
}

// Sign implements [Signer].
func (s HMACSigner) Sign(method, path string, payload any, timestamp, requestID string) (string, error) {
	if len(s.Key) == 0 {
		return "", errors.New("signature: HMACSigner requires a non-empty key")
	}
	material := Material{
		Method:    method,
		Path:      path,
		Timestamp: timestamp,
		RequestID: requestID,
	}
	if !isAbsent(payload) {
		body, err := Canonicalize(payload)
		if err != nil {
			return "", err
		}
		material.Body = body
	}
	mac := hmac.New(hashOrDefault(s.Hash), s.Key)
	if _, err := mac.Write(BuildSigningPayload(material)); err != nil {
		return "", fmt.Errorf("signature: compute signature: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
}

// BuildSigningPayload constructs the canonical string that is HMAC-signed.
func BuildSigningPayload(m Material) []byte {
	var buf bytes.Buffer
	buf.WriteString(strings.ToUpper(m.Method))
	buf.WriteByte('\n')
	buf.WriteString(m.Path)
	buf.WriteByte('\n')
	buf.WriteString(m.Timestamp)
	buf.WriteByte('\n')
	buf.WriteString(m.RequestID)
	buf.WriteByte('\n')
	buf.Write(m.Body)
	return buf.Bytes()
}

// SignPayload returns the base64url (unpadded) HMAC-SHA256 of a raw body, the
// format expected by [HMACVerifier].
func SignPayload(secret, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write(payload)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func hashOrDefault(h func() hash.Hash) func() hash.Hash {
	if h == nil {
		return sha256.New
	}
	return h
}

func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
