// Package api wraps the SAPCCA backend's REST surface: bearer credential
// attachment, JSON codec and uniform error handling including the global
// 401 path.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"sapcca/client/internal/config"
)

// ErrUnauthorized is returned when any endpoint answers 401. By the time a
// caller sees it the unauthorized hook has already fired and the stored
// credential is gone.
var ErrUnauthorized = errors.New("api: session expired")

// APIError is a non-2xx, non-401 response, carrying the backend's error
// message when it sent one. Never retried; callers stay on their current
// view and surface the message as a notification.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("api: request failed with status %d", e.Status)
}

// TokenSource supplies the current bearer credential; the session store
// implements it.
type TokenSource interface {
	Token() string
}

// Client is the gateway to the REST API. All methods are safe for
// concurrent use.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource

	// onUnauthorized runs once per 401 response, before the error is
	// returned. The caller wires it to session invalidation plus the
	// redirect to the login surface.
	onUnauthorized func()
}

// New builds a gateway client for the given base URL. tokens may not be
// nil; onUnauthorized may be.
func New(base string, tokens TokenSource, onUnauthorized func()) *Client {
	return &Client{
		base:           base,
		http:           &http.Client{Timeout: config.RequestTimeout},
		tokens:         tokens,
		onUnauthorized: onUnauthorized,
	}
}

// errorEnvelope is the backend's uniform error body.
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do performs one round-trip: encodes body (when non-nil), attaches the
// bearer token (when present) and decodes a 2xx response into out (when
// non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope errorEnvelope
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		msg := envelope.Error
		if msg == "" {
			msg = envelope.Message
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}
