package acp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// TransportRequest is a single API call handed to a [Transport].
type TransportRequest struct {
	Method string
	// Path is relative to the API base URL and may carry a query string.
	Path   string
	Header http.Header
	// Body is JSON-encoded when non-nil.
	Body any
}

// TransportResponse is the undecoded result of a [Transport] call.
type TransportResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport sends requests to the ACP API. Implementations own timeouts,
// retries and connection reuse.
type Transport interface {
	Send(ctx context.Context, req *TransportRequest) (*TransportResponse, error)
}

// TransportFunc lifts bare functions into [Transport].
type TransportFunc func(ctx context.Context, req *TransportRequest) (*TransportResponse, error)

// Send delegates to the wrapped function.
func (f TransportFunc) Send(ctx context.Context, req *TransportRequest) (*TransportResponse, error) {
	return f(ctx, req)
}

// HTTPTransport is the net/http implementation of [Transport].
type HTTPTransport struct {
	BaseURL    string
	APIKey     string
	APIVersion string
	Client     *http.Client
}

// Send implements [Transport].
func (t *HTTPTransport) Send(ctx context.Context, req *TransportRequest) (*TransportResponse, error) {
	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &TransportError{Message: "encode request payload", Err: err}
		}
		body = bytes.NewReader(encoded)
	}

	url := strings.TrimRight(t.BaseURL, "/") + req.Path
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, body)
	if err != nil {
		return nil, fmt.Errorf("acp: build request: %w", err)
	}

	apiVersion := t.APIVersion
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	httpReq.Header.Set("Authorization", "Bearer "+t.APIKey)
	httpReq.Header.Set("API-Version", apiVersion)
	httpReq.Header.Set("Accept", "application/json")
	for name, values := range req.Header {
		httpReq.Header[http.CanonicalHeaderKey(name)] = append([]string(nil), values...)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("acp: send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("acp: read response: %w", err)
	}
	return &TransportResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       raw,
	}, nil
}

func unmarshalUseNumber(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("body required")
		}
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}
