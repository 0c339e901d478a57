package acp

import (
	"context"
	"net/http"
)

// RequestContext overrides the generated header values of a single client call.
// Empty fields fall back to the client defaults.
type RequestContext struct {
	// Formatted as an RFC 3339 string.
	//
	// Example: 2025-09-25T10:30:00.000+00:00
	Timestamp string
	// Unique key for each request for tracing purposes
	//
	// Example: request_id_123
	RequestID string
	// Key used to ensure requests are idempotent. Ignored for GET requests.
	//
	// Example: idempotency_key_123
	IdempotencyKey string
	// The preferred locale for content like messages and errors
	//
	// Example: en-US
	AcceptLanguage string
	// Information about the client making this request
	//
	// Example: ShopBridge-Go/1.0.0
	UserAgent string
	// Header is applied after every generated header and may replace any of them.
	Header http.Header
}

type requestContextKey struct{}

// ContextWithRequestContext attaches per-call header overrides to ctx.
func ContextWithRequestContext(ctx context.Context, requestCtx *RequestContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if requestCtx == nil {
		return ctx
	}
	return context.WithValue(ctx, requestContextKey{}, requestCtx)
}

// RequestContextFromContext extracts the overrides previously stored in the context.
func RequestContextFromContext(ctx context.Context) *RequestContext {
	if ctx == nil {
		return nil
	}
	if requestCtx, ok := ctx.Value(requestContextKey{}).(*RequestContext); ok {
		return requestCtx
	}
	return nil
}
