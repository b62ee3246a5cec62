package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds a single exchange when none is configured.
	DefaultTimeout = 2 * time.Minute

	chatPath     = "/chat"
	maxBodyBytes = 4 << 20
)

// Transport performs one exchange with the assistant service. A non-nil
// error means no HTTP response was received; otherwise status and body are
// whatever the service returned.
type Transport interface {
	Send(ctx context.Context, payload Payload) (status int, body []byte, err error)
}

// HTTPTransport posts payloads as JSON to <baseURL>/chat.
type HTTPTransport struct {
	httpClient *http.Client
	endpoint   string
}

// NewHTTPTransport creates an HTTPTransport for the service at baseURL.
func NewHTTPTransport(baseURL string, timeout time.Duration) (*HTTPTransport, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid assistant base url: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPTransport{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   strings.TrimRight(baseURL, "/") + chatPath,
	}, nil
}

// Send implements Transport.
func (t *HTTPTransport) Send(ctx context.Context, payload Payload) (int, []byte, error) {
	req, err := t.buildRequest(ctx, payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (t *HTTPTransport) buildRequest(ctx context.Context, payload Payload) (*http.Request, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}
