// Package httpc is a client for the player server's REST API, built on a
// shared HTTP client with timeouts set.
package httpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/teslashibe/go-panorama/pkg/protocol"
	"github.com/teslashibe/go-panorama/pkg/relay"
)

// Default timeouts for HTTP operations.
const (
	DefaultTimeout         = 10 * time.Second
	DefaultConnectTimeout  = 5 * time.Second
	DefaultKeepAlive       = 30 * time.Second
	DefaultIdleConnTimeout = 90 * time.Second
)

// ErrNotFound is returned when the server has no session with the given ID.
var ErrNotFound = errors.New("httpc: session not found")

// HTTP is the shared client. Use this instead of http.DefaultClient.
var HTTP = NewHTTPClient(DefaultTimeout)

// NewHTTPClient creates an HTTP client with the specified timeout
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DefaultConnectTimeout,
				KeepAlive: DefaultKeepAlive,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       DefaultIdleConnTimeout,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// APIError is a non-2xx response from the server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// SessionList is the body of GET /api/sessions/
type SessionList struct {
	Sessions []relay.SessionInfo `json:"sessions"`
	Count    int                 `json:"count"`
}

// Client calls the /api/sessions endpoints of a player server
type Client struct {
	base string
	http *http.Client
}

// New creates a client for a server such as http://localhost:8080
func New(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: HTTP,
	}
}

// WithHTTPClient returns a copy of c that uses hc
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	cp := *c
	cp.http = hc
	return &cp
}

// Sessions lists connected players
func (c *Client) Sessions(ctx context.Context) (*SessionList, error) {
	var out SessionList
	if err := c.do(ctx, http.MethodGet, "/api/sessions/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Session returns one connected player
func (c *Client) Session(ctx context.Context, id string) (*relay.SessionInfo, error) {
	var out relay.SessionInfo
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns relay counters
func (c *Client) Stats(ctx context.Context) (*relay.Stats, error) {
	var out relay.Stats
	if err := c.do(ctx, http.MethodGet, "/api/sessions/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Load sets the source URL of a session
func (c *Client) Load(ctx context.Context, id, src string) error {
	body := map[string]string{"url": src}
	return c.do(ctx, http.MethodPost, "/api/sessions/"+url.PathEscape(id)+"/load", body, nil)
}

// Skip jumps a session forward
func (c *Client) Skip(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/sessions/"+url.PathEscape(id)+"/skip", nil, nil)
}

// Control sends a transport control action to a session
func (c *Client) Control(ctx context.Context, id, action, value string) error {
	body := protocol.ControlData{Action: action, Value: value}
	return c.do(ctx, http.MethodPost, "/api/sessions/"+url.PathEscape(id)+"/control", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode/100 != 2 {
		var e struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(data))
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
