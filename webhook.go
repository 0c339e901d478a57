package acp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shopbridge/acp/signature"
)

// DefaultWebhookSignatureHeader carries the webhook body signature.
const DefaultWebhookSignatureHeader = "Signature"

const defaultWebhookMaxBodyBytes = 1 << 20

// WebhookService verifies and parses inbound webhook deliveries.
type WebhookService struct {
	verifier signature.Verifier
}

// NewWebhookService builds a WebhookService. A nil verifier selects
// [signature.HMACVerifier] with no default key.
func NewWebhookService(verifier signature.Verifier) *WebhookService {
	if verifier == nil {
		verifier = signature.HMACVerifier{}
	}
	return &WebhookService{verifier: verifier}
}

// ParseWebhook checks sig against the raw payload bytes and then decodes the
// event. Signature failures return [ErrInvalidSignature]; malformed JSON
// returns a [*TransportError].
func (s *WebhookService) ParseWebhook(payload []byte, sig string, secret []byte) (*WebhookEvent, error) {
	if err := s.verifier.Verify(payload, sig, secret); err != nil {
		return nil, err
	}
	decoded, err := decodeObject(payload)
	if err != nil {
		return nil, &TransportError{Message: "decode webhook payload", Err: err}
	}
	return ParseWebhookEvent(decoded)
}

// WebhookResponse is a ready-to-send reply to a webhook delivery.
type WebhookResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// Render sends the response on w.
func (r WebhookResponse) Render(w http.ResponseWriter) {
	for name, values := range r.Header {
		w.Header()[name] = append([]string(nil), values...)
	}
	w.WriteHeader(r.Status)
	_, _ = w.Write(r.Body)
}

// WebhookAcknowledge builds the 200 reply confirming receipt.
func WebhookAcknowledge(requestID string) WebhookResponse {
	body := map[string]any{"received": true}
	if requestID != "" {
		body["request_id"] = requestID
	}
	return newWebhookResponse(http.StatusOK, body)
}

// WebhookErrorResponse builds an error reply describing err.
func WebhookErrorResponse(status int, err error, requestID string) WebhookResponse {
	body := map[string]any{"error": webhookErrorBody(err)}
	if requestID != "" {
		body["request_id"] = requestID
	}
	return newWebhookResponse(status, body)
}

func newWebhookResponse(status int, body map[string]any) WebhookResponse {
	encoded, err := json.Marshal(body)
	if err != nil {
		encoded = []byte(`{"error":{"message":"Invalid webhook response body"}}`)
	}
	return WebhookResponse{
		Status: status,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   encoded,
	}
}

func webhookErrorBody(err error) map[string]any {
	var (
		apiErr        *Error
		validationErr *ValidationError
		transportErr  *TransportError
	)
	switch {
	case err == nil:
		return map[string]any{"type": string(ProcessingError), "message": "unknown error"}
	case errors.Is(err, ErrInvalidSignature):
		return map[string]any{"type": string(InvalidRequest), "code": "invalid_signature", "message": "signature verification failed"}
	case errors.As(err, &apiErr):
		body := map[string]any{"type": string(apiErr.Type), "message": apiErr.Message}
		if apiErr.Code != "" {
			body["code"] = string(apiErr.Code)
		}
		if apiErr.Param != nil {
			body["param"] = *apiErr.Param
		}
		return body
	case errors.As(err, &validationErr):
		body := map[string]any{"type": string(InvalidRequest), "code": "invalid", "message": validationErr.Error()}
		if validationErr.Field != "" {
			body["param"] = "$." + validationErr.Field
		}
		return body
	case errors.As(err, &transportErr):
		return map[string]any{"type": string(InvalidRequest), "code": "invalid", "message": "request body must be a valid JSON object"}
	default:
		return map[string]any{"type": string(ProcessingError), "message": "internal server error"}
	}
}

// WebhookReceiver handles verified webhook events.
type WebhookReceiver interface {
	ReceiveWebhook(ctx context.Context, event *WebhookEvent) error
}

// WebhookReceiverFunc lifts bare functions into [WebhookReceiver].
type WebhookReceiverFunc func(ctx context.Context, event *WebhookEvent) error

// ReceiveWebhook delegates to the wrapped function.
func (f WebhookReceiverFunc) ReceiveWebhook(ctx context.Context, event *WebhookEvent) error {
	return f(ctx, event)
}

type webhookConfig struct {
	verifier     signature.Verifier
	header       string
	maxBodyBytes int64
	logger       zerolog.Logger
}

// WebhookOption customizes a [WebhookHandler].
type WebhookOption func(*webhookConfig)

// WithWebhookVerifier replaces the HMAC verifier.
func WithWebhookVerifier(verifier signature.Verifier) WebhookOption {
	return func(cfg *webhookConfig) {
		cfg.verifier = verifier
	}
}

// WithWebhookSignatureHeader reads the signature from a merchant-specific header.
func WithWebhookSignatureHeader(name string) WebhookOption {
	if strings.TrimSpace(name) == "" {
		panic("acp: webhook signature header must not be empty")
	}
	return func(cfg *webhookConfig) {
		cfg.header = name
	}
}

// WithWebhookMaxBodyBytes limits the accepted delivery size.
func WithWebhookMaxBodyBytes(n int64) WebhookOption {
	if n <= 0 {
		panic("acp: webhook max body size must be positive")
	}
	return func(cfg *webhookConfig) {
		cfg.maxBodyBytes = n
	}
}

// WithWebhookLogger logs rejected and accepted deliveries.
func WithWebhookLogger(logger zerolog.Logger) WebhookOption {
	return func(cfg *webhookConfig) {
		cfg.logger = logger
	}
}

// WebhookHandler is an http.Handler that verifies deliveries and hands parsed
// events to a [WebhookReceiver].
type WebhookHandler struct {
	service  *WebhookService
	receiver WebhookReceiver
	secret   []byte
	cfg      webhookConfig
}

// NewWebhookHandler builds a handler verifying deliveries with secret.
func NewWebhookHandler(receiver WebhookReceiver, secret []byte, opts ...WebhookOption) *WebhookHandler {
	if receiver == nil {
		panic("acp: webhook receiver is required")
	}
	cfg := webhookConfig{
		header:       DefaultWebhookSignatureHeader,
		maxBodyBytes: defaultWebhookMaxBodyBytes,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return &WebhookHandler{
		service:  NewWebhookService(cfg.verifier),
		receiver: receiver,
		secret:   secret,
		cfg:      cfg,
	}
}

// ServeHTTP satisfies http.Handler.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := strings.TrimSpace(r.Header.Get("Request-Id"))
	logger := h.cfg.logger.With().Str("request_id", requestID).Logger()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		WebhookErrorResponse(http.StatusMethodNotAllowed, &ValidationError{Message: "method not allowed"}, requestID).Render(w)
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.cfg.maxBodyBytes))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		logger.Warn().Err(err).Msg("webhook body unreadable")
		WebhookErrorResponse(status, &ValidationError{Message: "unable to read request body"}, requestID).Render(w)
		return
	}

	sig := strings.TrimSpace(r.Header.Get(h.cfg.header))
	event, err := h.service.ParseWebhook(raw, sig, h.secret)
	if err != nil {
		status := webhookRejectStatus(err)
		logger.Warn().Err(err).Int("status", status).Msg("webhook rejected")
		WebhookErrorResponse(status, err, requestID).Render(w)
		return
	}

	if err := h.receiver.ReceiveWebhook(r.Context(), event); err != nil {
		logger.Error().Err(err).Str("event_type", string(event.Type())).Msg("webhook receiver failed")
		WebhookErrorResponse(http.StatusInternalServerError, err, requestID).Render(w)
		return
	}

	logger.Debug().
		Str("event_type", string(event.Type())).
		Str("checkout_session_id", event.Data().CheckoutSessionID()).
		Msg("webhook received")
	WebhookAcknowledge(requestID).Render(w)
}

func webhookRejectStatus(err error) int {
	var (
		validationErr *ValidationError
		transportErr  *TransportError
	)
	switch {
	case errors.Is(err, ErrInvalidSignature),
		errors.As(err, &validationErr),
		errors.As(err, &transportErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
