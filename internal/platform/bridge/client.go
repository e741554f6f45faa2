// Package bridge is the HTTP client for the external spreadsheet-backed
// scripting endpoint that stores patients and visits. The endpoint speaks two
// request shapes: GET ?action=<name>&... returning a JSON document, and POST
// {"action": <name>, "data": <record>} whose response body is not observed.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Action names the scripting endpoint understands.
const (
	ActionGetPatient  = "getPatient"
	ActionSavePatient = "savePatient"
	ActionSaveVisit   = "saveVisit"
)

// Failure kinds callers distinguish: a missing endpoint URL is a
// configuration problem detected before any network call; everything on the
// wire (transport, status, malformed body) is the endpoint being unavailable.
var (
	ErrNotConfigured = errors.New("bridge endpoint is not configured")
	ErrUnavailable   = errors.New("bridge endpoint unavailable")
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client used for endpoint calls.
func WithHTTPClient(c *http.Client) Option {
	return func(b *Client) { b.httpClient = c }
}

// Client issues the two documented request shapes against a single endpoint
// URL. An empty URL builds a client whose calls fail with ErrNotConfigured,
// mirroring a desk that has not been connected to its sheet yet.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// New constructs a Client. rawURL may be empty; timeout controls the request
// timeout of the default HTTP client.
func New(rawURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
	if rawURL != "" {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("invalid bridge url: %w", err)
		}
		c.baseURL = u
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Configured reports whether an endpoint URL has been set.
func (c *Client) Configured() bool {
	return c.baseURL != nil
}

// Get issues GET <endpoint>?action=<action>&<params> and returns the raw JSON
// body. Interpretation of the document (status fields, record shapes) belongs
// to the caller.
func (c *Client) Get(ctx context.Context, action string, params url.Values) (json.RawMessage, error) {
	if c.baseURL == nil {
		return nil, ErrNotConfigured
	}

	u := *c.baseURL // copy
	q := u.Query()
	q.Set("action", action)
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	return json.RawMessage(body), nil
}

// Post issues POST <endpoint> with body {"action": <action>, "data": <data>}.
// The response body is discarded; the write is accepted on any 2xx.
func (c *Client) Post(ctx context.Context, action string, data any) error {
	if c.baseURL == nil {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(map[string]any{
		"action": action,
		"data":   data,
	})
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	// Drain a bounded amount so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}
