package acp

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/shopbridge/acp/signature"
)

type config struct {
	transport      Transport
	httpClient     *http.Client
	apiVersion     string
	signer         signature.Signer
	logger         zerolog.Logger
	clock          func() time.Time
	ids            IDGenerator
	acceptLanguage string
	userAgent      string
	registerer     prometheus.Registerer
}

func defaultConfig() config {
	return config{
		logger:         zerolog.Nop(),
		clock:          time.Now,
		ids:            IDGeneratorFunc(NewRandomID),
		acceptLanguage: DefaultAcceptLanguage,
	}
}

// Option customizes the client behavior.
type Option func(*config)

// WithTransport replaces the HTTP transport, e.g. with a [TransportFunc] in tests.
func WithTransport(transport Transport) Option {
	return func(cfg *config) {
		cfg.transport = transport
	}
}

// WithHTTPClient sets the client used by the default [HTTPTransport].
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *config) {
		cfg.httpClient = client
	}
}

// WithAPIVersion overrides the API-Version header.
func WithAPIVersion(version string) Option {
	if version == "" {
		panic("acp: api version must not be empty")
	}
	return func(cfg *config) {
		cfg.apiVersion = version
	}
}

// WithSigner replaces the HMAC signer built from the signing secret.
func WithSigner(signer signature.Signer) Option {
	return func(cfg *config) {
		cfg.signer = signer
	}
}

// WithLogger enables debug logging of API calls. Secrets, signatures and
// bodies are never logged.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithClock provides deterministic time in tests.
func WithClock(fn func() time.Time) Option {
	if fn == nil {
		panic("acp: clock must not be nil")
	}
	return func(cfg *config) {
		cfg.clock = fn
	}
}

// WithIDGenerator replaces the generator of request ids and idempotency keys.
func WithIDGenerator(ids IDGenerator) Option {
	if ids == nil {
		panic("acp: id generator must not be nil")
	}
	return func(cfg *config) {
		cfg.ids = ids
	}
}

// WithAcceptLanguage sets the default Accept-Language header.
func WithAcceptLanguage(lang string) Option {
	return func(cfg *config) {
		cfg.acceptLanguage = lang
	}
}

// WithUserAgent sets the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cfg *config) {
		cfg.userAgent = ua
	}
}

// WithMetrics registers client call counters and latency histograms.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(cfg *config) {
		cfg.registerer = reg
	}
}
