package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultPageSize     = 100
	defaultProbeTimeout = 2 * time.Second
)

// TokenSource supplies the bearer credential attached to every request.
// The client treats the token as opaque; issuing and refreshing it is the
// auth layer's problem.
type TokenSource func() string

// Config holds the settings for a remote API client.
type Config struct {
	BaseURL      string
	Token        TokenSource
	HTTPClient   *http.Client
	PageSize     int
	ProbeTimeout time.Duration
}

// Client talks to the remote finance API. Entity operations are grouped the
// way the endpoints are, one group per resource.
type Client struct {
	baseURL      string
	http         *http.Client
	token        TokenSource
	pageSize     int
	probeTimeout time.Duration

	Members      *MembersAPI
	Transactions *TransactionsAPI
	Categories   *CategoriesAPI
}

// New creates a client for the given configuration. Zero values fall back
// to defaults (shared http.Client, page size 100, 2s probe timeout).
func New(cfg Config) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		http:         cfg.HTTPClient,
		token:        cfg.Token,
		pageSize:     cfg.PageSize,
		probeTimeout: cfg.ProbeTimeout,
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.pageSize <= 0 {
		c.pageSize = defaultPageSize
	}
	if c.probeTimeout <= 0 {
		c.probeTimeout = defaultProbeTimeout
	}
	c.Members = &MembersAPI{c: c}
	c.Transactions = &TransactionsAPI{c: c}
	c.Categories = &CategoriesAPI{c: c}
	return c
}

// StatusError is returned for non-2xx responses. Message carries the server
// supplied error body when there was one.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("http error: status %d", e.StatusCode)
}

// CheckAvailability issues one lightweight read with a bounded wait. Any
// error, timeout or non-2xx status counts as unavailable.
func (c *Client) CheckAvailability(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/members", nil)
	if err != nil {
		return false
	}
	c.authorize(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
}

// do issues one authenticated JSON call and decodes the response into out.
// A 204 is success with no result. A non-2xx status becomes a StatusError
// carrying the response body text.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(text))}
	}
	if resp.StatusCode == http.StatusNoContent || out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
