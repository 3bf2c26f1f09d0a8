// Package gateway is the HTTP client for the upstream marketplace API.
//
// Every data access in this service goes through it. Endpoints follow the
// upstream convention {service}/api/{resource}; responses arrive wrapped in
// a {success, message, data} envelope which is unwrapped here so handlers
// only ever see their typed payload.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pitstop/internal/models"
)

// APIError is a failed upstream call. Message follows the priority order
// upstream envelope message, then HTTP status text, then a generic string.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// StatusOf returns the HTTP status to relay for err, defaulting to 502 for
// anything that is not an APIError (transport failures, bad JSON).
func StatusOf(err error) int {
	if ae, ok := err.(*APIError); ok && ae.Status >= 400 {
		return ae.Status
	}
	return http.StatusBadGateway
}

// Client issues REST calls against the upstream base URL.
type Client struct {
	base       string
	httpClient *http.Client
}

func New(base string) *Client {
	return &Client{
		base:       strings.TrimSuffix(base, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Get(ctx context.Context, token, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, token, path, nil, out)
}

func (c *Client) Post(ctx context.Context, token, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, token, path, body, out)
}

// PostIdempotent is Post with an Idempotency-Key header, used for create
// forwards so a dropped response followed by a user retry cannot mint a
// duplicate record on an upstream that honors the key.
func (c *Client) PostIdempotent(ctx context.Context, token, path, key string, body, out interface{}) error {
	return c.doWithKey(ctx, http.MethodPost, token, path, key, body, out)
}

func (c *Client) Put(ctx context.Context, token, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, token, path, body, out)
}

func (c *Client) Patch(ctx context.Context, token, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPatch, token, path, body, out)
}

func (c *Client) Delete(ctx context.Context, token, path string) error {
	return c.do(ctx, http.MethodDelete, token, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, token, path string, body, out interface{}) error {
	return c.doWithKey(ctx, method, token, path, "", body, out)
}

func (c *Client) doWithKey(ctx context.Context, method, token, path, idempotencyKey string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gateway: encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+"/"+strings.TrimPrefix(path, "/"), reader)
	if err != nil {
		return fmt.Errorf("gateway: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("gateway: read response: %w", err)
	}

	var env models.Envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= 400 || (decodeErr == nil && len(raw) > 0 && !env.Success) {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, env)}
	}
	if decodeErr != nil {
		return fmt.Errorf("gateway: decode envelope: %w", decodeErr)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("gateway: decode data: %w", err)
		}
	}
	return nil
}

func errorMessage(status int, env models.Envelope) string {
	if env.Message != "" {
		return env.Message
	}
	if text := http.StatusText(status); status >= 400 && text != "" {
		return text
	}
	return "request to upstream API failed"
}
