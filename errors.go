package acp

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopbridge/acp/signature"
)

// ErrorType mirrors the ACP error.type field.
type ErrorType string

const (
	InvalidRequest       ErrorType = "invalid_request"        // Missing or malformed field.
	ProcessingError      ErrorType = "processing_error"       // Downstream gateway or network failure.
	RateLimitExceeded    ErrorType = "rate_limit_exceeded"    // Too many requests.
	ServiceUnavailable   ErrorType = "service_unavailable"    // Temporary outage or maintenance.
	RequestNotIdempotent ErrorType = "request_not_idempotent" // Retried request does not match the original.
)

// ErrorCode is a machine-readable identifier for the specific failure.
type ErrorCode string

const (
	CodeOutOfStock           ErrorCode = "out_of_stock"
	CodePaymentDeclined      ErrorCode = "payment_declined"
	CodeRequiresSignIn       ErrorCode = "requires_sign_in"
	CodeRequires3DS          ErrorCode = "requires_3ds"
	CodeIdempotencyConflict  ErrorCode = "idempotency_conflict" // Same idempotency key but different parameters.
	CodeInvalidCheckoutState ErrorCode = "invalid_checkout_state"
)

// ErrorKind classifies API failures. Kinds are comparable with errors.Is:
//
//	if errors.Is(err, acp.ErrOutOfStock) { ... }
type ErrorKind string

func (k ErrorKind) Error() string { return string(k) }

const (
	ErrOutOfStock           ErrorKind = "acp: out of stock"
	ErrPaymentDeclined      ErrorKind = "acp: payment declined"
	ErrActionRequired       ErrorKind = "acp: buyer action required"
	ErrIdempotencyConflict  ErrorKind = "acp: idempotency conflict"
	ErrInvalidCheckoutState ErrorKind = "acp: invalid checkout state"
	ErrRateLimit            ErrorKind = "acp: rate limit exceeded"
	ErrProcessing           ErrorKind = "acp: processing error"
	ErrServiceUnavailable   ErrorKind = "acp: service unavailable"
	ErrRequestNotIdempotent ErrorKind = "acp: request not idempotent"
	ErrCheckoutNotFound     ErrorKind = "acp: checkout session not found"
	ErrInvalidRequest       ErrorKind = "acp: invalid request"
)

// ErrInvalidSignature is returned when a webhook signature does not match its payload.
var ErrInvalidSignature = signature.ErrInvalidSignature

const defaultErrorMessage = "Unhandled error response."

// Error represents an error response returned by the ACP API.
type Error struct {
	Kind       ErrorKind
	Type       ErrorType
	Code       ErrorCode
	Message    string
	Param      *string
	StatusCode int
	// RequestID is taken from the response Request-Id header.
	RequestID  string
	retryAfter time.Duration
}

// Error makes *Error satisfy the stdlib error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(e.Message)
	b.WriteString(" (status ")
	b.WriteString(strconv.Itoa(e.StatusCode))
	if e.Code != "" {
		b.WriteString(", code ")
		b.WriteString(string(e.Code))
	}
	if e.RequestID != "" {
		b.WriteString(", request ")
		b.WriteString(e.RequestID)
	}
	b.WriteByte(')')
	return b.String()
}

// Is reports whether target is the [ErrorKind] of e.
func (e *Error) Is(target error) bool {
	kind, ok := target.(ErrorKind)
	return ok && e != nil && e.Kind == kind
}

// RetryAfter returns the duration advertised by the Retry-After header, if any.
func (e *Error) RetryAfter() time.Duration {
	if e == nil {
		return 0
	}
	return e.retryAfter
}

// ValidationError reports a value that violates a model invariant.
type ValidationError struct {
	// Field is the JSON name of the offending field, when known.
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + " " + e.Message
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// TransportError reports a failure to encode a request or decode a response.
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "acp: " + e.Message
	}
	return "acp: " + e.Message + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// mapError classifies an error response. The error code wins over the error
// type, which wins over the HTTP status.
func mapError(status int, header http.Header, body map[string]any) *Error {
	apiErr := &Error{
		Type:       ErrorType(stringValue(body, "type")),
		Code:       ErrorCode(stringValue(body, "code")),
		Message:    stringValue(body, "message"),
		Param:      optionalString(body, "param"),
		StatusCode: status,
		RequestID:  header.Get("Request-Id"),
		retryAfter: parseRetryAfter(header.Get("Retry-After")),
	}
	if apiErr.Message == "" {
		apiErr.Message = defaultErrorMessage
	}

	switch apiErr.Code {
	case CodeOutOfStock:
		apiErr.Kind = ErrOutOfStock
	case CodePaymentDeclined:
		apiErr.Kind = ErrPaymentDeclined
	case CodeRequiresSignIn, CodeRequires3DS:
		apiErr.Kind = ErrActionRequired
	case CodeIdempotencyConflict:
		apiErr.Kind = ErrIdempotencyConflict
	case CodeInvalidCheckoutState:
		apiErr.Kind = ErrInvalidCheckoutState
	default:
		switch apiErr.Type {
		case RateLimitExceeded:
			apiErr.Kind = ErrRateLimit
		case ProcessingError:
			apiErr.Kind = ErrProcessing
		case ServiceUnavailable:
			apiErr.Kind = ErrServiceUnavailable
		case RequestNotIdempotent:
			apiErr.Kind = ErrRequestNotIdempotent
		default:
			apiErr.Kind = kindForStatus(status)
		}
	}
	return apiErr
}

func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusTooManyRequests:
		return ErrRateLimit
	case http.StatusInternalServerError:
		return ErrProcessing
	case http.StatusServiceUnavailable:
		return ErrServiceUnavailable
	case http.StatusNotFound:
		return ErrCheckoutNotFound
	default:
		return ErrInvalidRequest
	}
}

func parseRetryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
