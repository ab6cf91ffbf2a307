// Package api is the HTTP client for the remote course/auth API. Every
// network call the app makes goes through here: JSON bodies, bearer token
// attachment, the API's error envelope, and retries for idempotent reads.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/cursolab/cursolab/pkg/retry"
	"github.com/cursolab/cursolab/pkg/telemetry"
)

// Error is a non-2xx answer from the remote API. The message comes from
// the API's {"error": "..."} envelope when one is present.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: HTTP %d", e.Status)
}

// IsStatus reports whether err is (or wraps) an API error with the given
// status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client talks to the remote API.
type Client struct {
	baseURL string
	http    *http.Client
	retrier *retry.Retrier
}

// NewClient creates a client for the API at baseURL. maxRetries bounds the
// retry budget for GETs; writes are never retried.
func NewClient(baseURL string, timeout time.Duration, maxRetries int) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cfg := retry.DefaultConfig()
	if maxRetries >= 0 {
		cfg.MaxRetries = maxRetries
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		retrier: retry.New(cfg),
	}
}

// Get performs a GET, decoding the response into out (may be nil). GETs
// are idempotent, so transient failures and 5xx answers are retried.
func (c *Client) Get(ctx context.Context, path, token string, out interface{}) error {
	return c.retrier.Do(ctx, func(ctx context.Context) error {
		err := c.do(ctx, http.MethodGet, path, token, nil, out)
		if apiErr, ok := err.(*Error); ok && apiErr.Status < 500 {
			// Client errors will not heal on retry.
			return retry.Permanent(err)
		}
		return err
	})
}

// Post performs a POST with a JSON body. Never retried.
func (c *Client) Post(ctx context.Context, path, token string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, token, body, out)
}

// Put performs a PUT with a JSON body. Never retried.
func (c *Client) Put(ctx context.Context, path, token string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, token, body, out)
}

// Delete performs a DELETE. Never retried.
func (c *Client) Delete(ctx context.Context, path, token string) error {
	return c.do(ctx, http.MethodDelete, path, token, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	ctx, span := telemetry.StartSpan(ctx, "api.request")
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("api.path", path),
	)

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("api: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// No token means no header at all, never an empty one.
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		var envelope struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr == nil && envelope.Error != "" {
			apiErr.Message = envelope.Error
		}
		span.SetStatus(codes.Error, apiErr.Error())
		return apiErr
	}

	span.SetStatus(codes.Ok, "")

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}
