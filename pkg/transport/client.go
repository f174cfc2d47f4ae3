// Package transport provides the HTTP client shared by every source and
// target during a run.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// Version is reported in the User-Agent header.
var Version = "dev"

// Client wraps an http.Client with a fixed User-Agent.
type Client struct {
	http      *http.Client
	userAgent string
}

// New creates a client with the default timeout.
func New() *Client {
	return NewWithHTTPClient(&http.Client{Timeout: DefaultTimeout})
}

// NewWithHTTPClient wraps an existing http.Client (useful in tests).
func NewWithHTTPClient(hc *http.Client) *Client {
	return &Client{
		http:      hc,
		userAgent: fmt.Sprintf("stars/%s", Version),
	}
}

// Do sends req after applying auth and common headers. Non-2xx responses are
// returned as-is; use Check to turn them into errors.
func (c *Client) Do(req *http.Request, auth Authenticator) (*http.Response, error) {
	if auth == nil {
		auth = NoAuth{}
	}
	auth.Apply(req)

	req.Header.Set("User-Agent", c.userAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	return c.http.Do(req)
}

// Send builds and sends a bodiless request, returning an *APIError for any
// status outside 2xx unless it is listed in ok.
func (c *Client) Send(ctx context.Context, method, url string, auth Authenticator, ok ...int) error {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", method, err)
	}
	if method == http.MethodPut {
		req.Header.Set("Content-Length", "0")
	}

	resp, err := c.Do(req, auth)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	return Check(resp, ok...)
}

// GetJSON fetches url and decodes a 2xx JSON body into out.
func (c *Client) GetJSON(ctx context.Context, url string, auth Authenticator, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating GET request: %w", err)
	}

	resp, err := c.Do(req, auth)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if err := Check(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", url, err)
	}
	return nil
}

// Check returns nil for 2xx responses (and any extra accepted codes) and an
// *APIError carrying a snippet of the body otherwise.
func Check(resp *http.Response, ok ...int) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	for _, code := range ok {
		if resp.StatusCode == code {
			return nil
		}
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &APIError{
		StatusCode: resp.StatusCode,
		Endpoint:   resp.Request.Method + " " + resp.Request.URL.String(),
		Message:    string(body),
	}
}
