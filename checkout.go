package acp

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopbridge/acp/signature"
)

// TimestampLayout formats the Timestamp header: RFC 3339 with milliseconds and
// a numeric UTC offset.
const TimestampLayout = "2006-01-02T15:04:05.000-07:00"

const checkoutSessionsPath = "/checkout_sessions"

// CheckoutProvider is implemented by anything that manages checkout sessions,
// including [Client]. Accept it in application code to substitute fakes in tests.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, req CheckoutSessionCreateRequest) (*CheckoutSession, error)
	UpdateSession(ctx context.Context, id string, req CheckoutSessionUpdateRequest) (*CheckoutSession, error)
	GetSession(ctx context.Context, id string) (*CheckoutSession, error)
	CompleteSession(ctx context.Context, id string, req CheckoutSessionCompleteRequest) (*CheckoutSession, error)
	CancelSession(ctx context.Context, id string) (*CheckoutSession, error)
}

var _ CheckoutProvider = (*Client)(nil)

// Client issues signed checkout session requests against an ACP merchant.
// A Client is safe for concurrent use; every call sends exactly one request.
type Client struct {
	transport Transport
	signer    signature.Signer
	cfg       config
	metrics   *clientMetrics
}

// New builds a Client that talks to cfg.BaseURL over HTTP and signs requests
// with cfg.SigningSecret.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	var defaults []Option
	if cfg.AcceptLanguage != "" {
		defaults = append(defaults, WithAcceptLanguage(cfg.AcceptLanguage))
	}
	if cfg.APIVersion != "" {
		defaults = append(defaults, WithAPIVersion(cfg.APIVersion))
	}
	opts = append(defaults, opts...)

	resolved := resolveConfig(opts)
	transport := resolved.transport
	if transport == nil {
		httpClient := resolved.httpClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: cfg.Timeout}
		}
		transport = &HTTPTransport{
			BaseURL:    cfg.BaseURL,
			APIKey:     cfg.APIKey,
			APIVersion: resolved.apiVersion,
			Client:     httpClient,
		}
	}
	signer := resolved.signer
	if signer == nil {
		signer = signature.HMACSigner{Key: []byte(cfg.SigningSecret)}
	}
	return NewClient(transport, signer, opts...), nil
}

// NewClient builds a Client on top of an existing transport and signer.
func NewClient(transport Transport, signer signature.Signer, opts ...Option) *Client {
	if transport == nil {
		panic("acp: transport is required")
	}
	if signer == nil {
		panic("acp: signer is required")
	}
	cfg := resolveConfig(opts)
	c := &Client{
		transport: transport,
		signer:    signer,
		cfg:       cfg,
	}
	if cfg.registerer != nil {
		c.metrics = newClientMetrics(cfg.registerer)
	}
	return c
}

func resolveConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}

// CreateSession opens a checkout session for the requested items.
func (c *Client) CreateSession(ctx context.Context, req CheckoutSessionCreateRequest) (*CheckoutSession, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.do(ctx, "create_session", http.MethodPost, checkoutSessionsPath, req.Payload())
}

// UpdateSession changes items, buyer, address or the selected fulfillment option.
func (c *Client) UpdateSession(ctx context.Context, id string, req CheckoutSessionUpdateRequest) (*CheckoutSession, error) {
	path, err := sessionPath(id, "")
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.do(ctx, "update_session", http.MethodPost, path, req.Payload())
}

// GetSession fetches the current state of a session. GET requests carry no
// body and no idempotency key.
func (c *Client) GetSession(ctx context.Context, id string) (*CheckoutSession, error) {
	path, err := sessionPath(id, "")
	if err != nil {
		return nil, err
	}
	return c.do(ctx, "get_session", http.MethodGet, path, nil)
}

// CompleteSession submits payment data and places the order.
func (c *Client) CompleteSession(ctx context.Context, id string, req CheckoutSessionCompleteRequest) (*CheckoutSession, error) {
	path, err := sessionPath(id, "/complete")
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.do(ctx, "complete_session", http.MethodPost, path, req.Payload())
}

// CancelSession cancels a session. The request body is an empty JSON object.
func (c *Client) CancelSession(ctx context.Context, id string) (*CheckoutSession, error) {
	path, err := sessionPath(id, "/cancel")
	if err != nil {
		return nil, err
	}
	return c.do(ctx, "cancel_session", http.MethodPost, path, map[string]any{})
}

func sessionPath(id, suffix string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", &ValidationError{Field: "checkout_session_id", Message: "cannot be blank"}
	}
	return checkoutSessionsPath + "/" + url.PathEscape(id) + suffix, nil
}

func (c *Client) do(ctx context.Context, operation, method, path string, payload map[string]any) (*CheckoutSession, error) {
	var body any
	if payload != nil {
		body = payload
	}
	header, err := c.buildHeaders(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	requestID := header.Get("Request-Id")

	start := time.Now()
	resp, err := c.transport.Send(ctx, &TransportRequest{
		Method: method,
		Path:   path,
		Header: header,
		Body:   body,
	})
	elapsed := time.Since(start)
	if err == nil && resp == nil {
		err = &TransportError{Message: "transport returned no response"}
	}
	if err != nil {
		c.metrics.observe(operation, 0, elapsed)
		c.cfg.logger.Warn().
			Err(err).
			Str("operation", operation).
			Str("method", method).
			Str("path", path).
			Str("request_id", requestID).
			Dur("duration", elapsed).
			Msg("acp request failed")
		return nil, err
	}
	c.metrics.observe(operation, resp.StatusCode, elapsed)
	c.cfg.logger.Debug().
		Str("operation", operation).
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", elapsed).
		Msg("acp request")

	decoded, err := decodeObject(resp.Body)
	if err != nil {
		return nil, &TransportError{Message: "decode response payload", Err: err}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, mapError(resp.StatusCode, resp.Header, decoded)
	}
	return ParseCheckoutSession(decoded)
}

func (c *Client) buildHeaders(ctx context.Context, method, path string, body any) (http.Header, error) {
	rc := RequestContextFromContext(ctx)
	if rc == nil {
		rc = &RequestContext{}
	}

	timestamp := rc.Timestamp
	if timestamp == "" {
		timestamp = c.cfg.clock().UTC().Format(TimestampLayout)
	}
	requestID := rc.RequestID
	if requestID == "" {
		requestID = c.cfg.ids.NewID()
	}

	header := http.Header{}
	header.Set("Request-Id", requestID)
	header.Set("Timestamp", timestamp)
	if method != http.MethodGet {
		key := rc.IdempotencyKey
		if key == "" {
			key = c.cfg.ids.NewID()
		}
		header.Set("Idempotency-Key", key)
	}
	header.Set("Accept-Language", firstNonEmpty(rc.AcceptLanguage, c.cfg.acceptLanguage, DefaultAcceptLanguage))
	header.Set("User-Agent", firstNonEmpty(rc.UserAgent, c.cfg.userAgent, DefaultUserAgent()))

	sig, err := c.signer.Sign(method, path, body, timestamp, requestID)
	if err != nil {
		return nil, &TransportError{Message: "sign request", Err: err}
	}
	header.Set("Signature", sig)

	for name, values := range rc.Header {
		header[http.CanonicalHeaderKey(name)] = append([]string(nil), values...)
	}
	return header, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
