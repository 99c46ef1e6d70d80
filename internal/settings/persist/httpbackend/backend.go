// Package httpbackend reaches the authoritative settings service over HTTP.
//
// The service exposes a single document resource: GET returns the stored
// blob (404 when none exists), PUT replaces it. Failures are reported as
// errors to the caller; the client never retries on its own.
package httpbackend

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client is a Backend implementation over HTTP JSON.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithInsecureTLS disables certificate verification.
func WithInsecureTLS() Option {
	return func(c *Client) {
		c.http.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// New creates a client for the settings document resource at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the stored settings blob. A 404 reports absence, not an
// error.
func (c *Client) Load(ctx context.Context) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.documentURL(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("building load request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("loading settings: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		blob, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, false, fmt.Errorf("reading settings response: %w", err)
		}
		return blob, true, nil
	case http.StatusNotFound:
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("loading settings: unexpected status %s", resp.Status)
	}
}

// Save replaces the stored settings blob.
func (c *Client) Save(ctx context.Context, blob []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.documentURL(), bytes.NewReader(blob))
	if err != nil {
		return fmt.Errorf("building save request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("saving settings: unexpected status %s", resp.Status)
	}
	return nil
}

func (c *Client) documentURL() string {
	return c.baseURL + "/v1/settings/document"
}
