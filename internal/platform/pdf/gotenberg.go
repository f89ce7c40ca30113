// Package pdf renders HTML documents to PDF through a Gotenberg service.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// ErrDisabled is returned when no Gotenberg URL is configured.
var ErrDisabled = errors.New("pdf rendering disabled")

// Client wraps interactions with the Gotenberg API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Options are the Chromium conversion settings. Sizes are in inches, the
// Gotenberg default unit.
type Options struct {
	PaperWidth   float64
	PaperHeight  float64
	MarginTop    float64
	MarginBottom float64
	Landscape    bool
}

// A4 is the default order sheet layout.
var A4 = Options{PaperWidth: 8.27, PaperHeight: 11.7, MarginTop: 0.4, MarginBottom: 0.4}

// NewClient constructs a new client. An empty baseURL gives a client whose
// calls return ErrDisabled.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a Gotenberg URL is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// Ping checks if the remote Gotenberg service is available.
func (c *Client) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

// RenderHTML converts a standalone HTML document into a PDF.
func (c *Client) RenderHTML(ctx context.Context, html string, opts Options) ([]byte, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, strings.NewReader(html)); err != nil {
		return nil, err
	}
	for name, value := range opts.fields() {
		if err := writer.WriteField(name, value); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gotenberg: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("render failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (o Options) fields() map[string]string {
	out := map[string]string{"printBackground": "true"}
	put := func(name string, v float64) {
		if v > 0 {
			out[name] = fmt.Sprintf("%g", v)
		}
	}
	put("paperWidth", o.PaperWidth)
	put("paperHeight", o.PaperHeight)
	put("marginTop", o.MarginTop)
	put("marginBottom", o.MarginBottom)
	if o.Landscape {
		out["landscape"] = "true"
	}
	return out
}
