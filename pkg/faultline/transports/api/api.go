// Package api provides the HTTP transport that delivers item batches to a
// faultline collector endpoint.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/faultlinehq/faultline-go/pkg/faultline"
)

// DefaultEndpoint is the hosted collector's batch ingestion URL.
const DefaultEndpoint = "https://collect.faultline.dev/api/1/items/"

const defaultTimeout = 10 * time.Second

// Option configures the API transport.
type Option func(*transportConfig)

type transportConfig struct {
	endpoint   string
	httpClient *http.Client
}

// WithEndpoint overrides the collector URL.
func WithEndpoint(url string) Option {
	return func(c *transportConfig) {
		if url != "" {
			c.endpoint = url
		}
	}
}

// WithHTTPClient sets a custom HTTP client (proxies, custom TLS, timeouts).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *transportConfig) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// apiTransport posts batches as JSON to the collector.
type apiTransport struct {
	token      string
	endpoint   string
	httpClient *http.Client
}

// New creates a transport that posts batches to the collector.
func New(token string, opts ...Option) faultline.Transport {
	cfg := &transportConfig{
		endpoint:   DefaultEndpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &apiTransport{
		token:      token,
		endpoint:   cfg.endpoint,
		httpClient: cfg.httpClient,
	}
}

// batchPayload is the wire envelope for one PostBatch call.
type batchPayload struct {
	AccessToken string            `json:"access_token"`
	Items       []*faultline.Item `json:"items"`
}

// apiResponse is the collector's reply envelope.
type apiResponse struct {
	Err     int    `json:"err"`
	Message string `json:"message,omitempty"`
	Result  struct {
		UUID string `json:"uuid"`
	} `json:"result"`
}

// PostBatch delivers the items in one HTTP POST. Non-2xx statuses and
// collector-reported errors both fail the batch.
func (t *apiTransport) PostBatch(ctx context.Context, items []*faultline.Item) (*faultline.Response, error) {
	body, err := json.Marshal(batchPayload{
		AccessToken: t.token,
		Items:       items,
	})
	if err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Access-Token", t.token)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post batch: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("collector returned status %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	var decoded apiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if decoded.Err != 0 {
		return nil, fmt.Errorf("collector rejected batch (err=%d): %s", decoded.Err, decoded.Message)
	}

	return &faultline.Response{
		Err:     decoded.Err,
		UUID:    decoded.Result.UUID,
		Message: decoded.Message,
	}, nil
}

// Close releases idle connections held by the HTTP client.
func (t *apiTransport) Close() error {
	t.httpClient.CloseIdleConnections()
	return nil
}
