// Package client is the typed HTTP client for the buildsite REST API.
//
// Every call attaches the bearer token from the configured CredentialProvider,
// decodes the {success, data, message} envelope, and converts failures into
// *NetworkError, *ValidationError or *NotFoundError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client talks to one buildsite API base URL.
type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialProvider
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCredentials sets the bearer token source.
func WithCredentials(p CredentialProvider) Option {
	return func(c *Client) { c.creds = p }
}

// WithTimeout bounds every request (default 10s).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying http.Client. Its Timeout is kept.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for baseURL, e.g. "https://example.com/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		creds:   StaticToken(""),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	op := method + " " + path
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	token, err := c.creds.Token(ctx)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "op", op, "err", err)
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	c.logger.Debug("request", "op", op, "status", resp.StatusCode, "latency", time.Since(start))

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 500 {
			return &NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{Resource: path, Message: env.Message}
	case resp.StatusCode >= 500:
		return &NetworkError{Op: op, Status: resp.StatusCode}
	case resp.StatusCode >= 400:
		return &ValidationError{Status: resp.StatusCode, Message: env.Message, Fields: env.Errors}
	case !env.Success:
		return &ValidationError{Status: resp.StatusCode, Message: env.Message, Fields: env.Errors}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

// Login exchanges the admin password for a bearer token.
func (c *Client) Login(ctx context.Context, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", map[string]string{"password": password}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// ResumeURL returns the download URL for a stored resume. Only the
// server-issued filename is a valid key.
func (c *Client) ResumeURL(filename string) string {
	return c.baseURL + "/uploads/resumes/" + url.PathEscape(filename)
}

func escape(id string) string { return url.PathEscape(id) }
