// Package api talks to the shop's Laravel admin REST API.
package api

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

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const userAgent = "atelier-admin/1.0"

// Observer receives one call per backend round-trip.
type Observer interface {
	ObserveBackend(method, resource string, status int, elapsed time.Duration)
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	Observer   Observer
}

// Client wraps the admin API. Requests are not retried.
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	logger     *slog.Logger
	observer   Observer
}

// Envelope is the JSON shape every admin endpoint answers with.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api: base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: invalid base URL: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    base,
		token:      cfg.Token,
		httpClient: httpClient,
		logger:     logger,
		observer:   cfg.Observer,
	}, nil
}

// Get fetches path with query parameters and decodes the envelope data into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

// Post sends body as JSON.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, body, out)
}

// Put sends body as JSON.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, nil, body, out)
}

// Patch sends body as JSON.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete removes the resource at path.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, out)
}

// PostMultipart sends form as multipart/form-data.
func (c *Client) PostMultipart(ctx context.Context, path string, form *Multipart, out any) error {
	if form == nil {
		form = NewMultipart()
	}
	body, contentType, err := form.encode()
	if err != nil {
		return fmt.Errorf("api: encode multipart: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, nil, body, contentType, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: marshal body: %w", err)
		}
		reader = bytes.NewReader(payload)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, query, reader, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	target := c.resolve(path, query)
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}
	if method == http.MethodPost {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.observe(method, path, 0, elapsed)
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.observe(method, path, resp.StatusCode, elapsed)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: read body: %w", err)
	}
	c.logger.Debug("backend call", "method", method, "path", path, "status", resp.StatusCode, "elapsed", elapsed)
	return decodeResponse(resp.StatusCode, raw, out)
}

func (c *Client) resolve(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = u.Path + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) observe(method, path string, status int, elapsed time.Duration) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveBackend(method, Resource(path), status, elapsed)
}

// Resource reduces a request path to its first segment for metric labels.
func Resource(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "root"
	}
	if idx := strings.IndexByte(trimmed, '/'); idx >= 0 {
		return trimmed[:idx]
	}
	return trimmed
}

func decodeResponse(status int, raw []byte, out any) error {
	var env Envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if status >= http.StatusBadRequest {
				return &Error{Status: status, Message: http.StatusText(status)}
			}
			return fmt.Errorf("api: decode envelope: %w", err)
		}
	}

	if status == http.StatusUnprocessableEntity {
		return &ValidationError{Message: env.Message, Fields: decodeFieldErrors(env.Errors)}
	}
	if status >= http.StatusBadRequest {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(status)
		}
		return &Error{Status: status, Message: msg}
	}
	// 204 and empty bodies carry no envelope.
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if !env.Success {
		if fields := decodeFieldErrors(env.Errors); len(fields) > 0 {
			return &ValidationError{Message: env.Message, Fields: fields}
		}
		return &Error{Status: status, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("api: decode data: %w", err)
	}
	return nil
}

// decodeFieldErrors tolerates the PHP habit of serialising an empty map as [].
func decodeFieldErrors(raw json.RawMessage) map[string][]string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var fields map[string][]string
	if err := json.Unmarshal(trimmed, &fields); err == nil {
		return fields
	}
	var single map[string]string
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil
	}
	fields = make(map[string][]string, len(single))
	for k, v := range single {
		fields[k] = []string{v}
	}
	return fields
}
