// Package api provides the HTTP client used to communicate with the Sonarr
// v3 API. It handles authentication via the X-Api-Key header and JSON
// serialization; everything above it works with untyped Resource maps.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Client is an HTTP client for the Sonarr API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Config contains configuration options for creating a new Client.
type Config struct {
	// BaseURL is the base URL of the instance (e.g. "http://sonarr:8989").
	BaseURL string

	// APIKey is the API key for authentication. May be empty for the
	// unauthenticated endpoints used during API key retrieval.
	APIKey string

	// InsecureSkipVerify disables TLS certificate verification.
	// Warning: Only use this for self-signed certificates in trusted environments
	InsecureSkipVerify bool

	// Timeout is the HTTP request timeout (defaults to DefaultTimeout if zero)
	Timeout time.Duration
}

// New creates a new HTTP client with the given configuration.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	hc := &http.Client{
		Timeout: timeout,
	}

	if cfg.InsecureSkipVerify {
		hc.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // User explicitly requested insecure
		}
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: hc,
	}
}

// BaseURL returns the base URL configured for this client.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request and decodes the JSON response into result.
func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req, false)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

// Post performs a POST request with a JSON body and optionally decodes the response.
func (c *Client) Post(ctx context.Context, path string, body, result interface{}) error {
	bodyReader, err := encodeBody(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	c.setHeaders(req, body != nil)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError(resp)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// Put performs a PUT request with a JSON body and optionally decodes the response.
func (c *Client) Put(ctx context.Context, path string, body, result interface{}) error {
	bodyReader, err := encodeBody(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	c.setHeaders(req, body != nil)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return statusError(resp)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req, false)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusError(resp)
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
}

func encodeBody(body interface{}) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return &Error{
		StatusCode: resp.StatusCode,
		Message:    string(body),
	}
}

// Error is returned for any non-2xx response from the remote instance.
// The StatusCode field carries the HTTP status for callers that need to
// distinguish, for example, an unauthorized response.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("sonarr API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("sonarr API error: status %d: %s", e.StatusCode, e.Message)
}
