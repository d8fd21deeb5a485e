// Package remote is the typed client for the commerce backend's REST API.
// It is a stateless transport: every operation is one request/response round
// trip, credentials come from the session store, and failures map onto the
// storefront error taxonomy at this boundary. Response-shape normalization
// also happens here; nothing deeper in the call stack branches on wire shape.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"
)

// CredentialSource supplies the current bearer credential and receives the
// teardown signal when the backend reports it invalid. Satisfied by the
// session store.
type CredentialSource interface {
	Token() string
	Invalidate()
}

// Doer executes an HTTP request. Implemented by *http.Client directly and by
// the circuit breaker decorator.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds remote client configuration.
type Config struct {
	// Origin is the backend's base URL, e.g. "https://api.shop.example.com".
	Origin string

	// Timeout bounds every round trip. An expired wait surfaces as a
	// network error, never as a hang: no cancellation plumbing exists above
	// this layer to recover a stuck caller.
	Timeout time.Duration

	MaxConnsPerHost int
}

// DefaultConfig returns sensible defaults for the remote client.
func DefaultConfig(origin string) Config {
	return Config{
		Origin:          origin,
		Timeout:         15 * time.Second,
		MaxConnsPerHost: 100,
	}
}

// Client is the Remote Resource Client. It holds no commerce state.
type Client struct {
	baseURL *url.URL
	doer    Doer
	creds   CredentialSource
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a remote client against the configured backend origin.
func New(cfg Config, creds CredentialSource, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(cfg.Origin)
	if err != nil {
		return nil, fmt.Errorf("parse backend origin %q: %w", cfg.Origin, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend origin %q must be an absolute URL", cfg.Origin)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL: base,
		doer:    &http.Client{Transport: transport},
		creds:   creds,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Origin returns the backend origin string, used for image URL resolution.
func (c *Client) Origin() string {
	return c.baseURL.Scheme + "://" + c.baseURL.Host
}

// UseDoer replaces the underlying transport, e.g. to interpose the circuit
// breaker decorator.
func (c *Client) UseDoer(d Doer) {
	c.doer = d
}

// EnableBreaker interposes a circuit breaker between the client and its
// transport.
func (c *Client) EnableBreaker(cfg BreakerConfig, logger *slog.Logger) {
	c.doer = NewBreakerDoer(c.doer, cfg, logger)
}

// Ping performs an unauthenticated reachability probe, used by readiness
// checks.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/v1/products", url.Values{"limit": {"1"}}, nil, nil)
}

// do executes one round trip: marshal, attach credential, bound the wait,
// translate the outcome. out may be nil when the caller ignores the body.
// No retries here; retry policy belongs to callers, and the core has none.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.baseURL
	u.Path = joinPath(c.baseURL.Path, path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s request: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return c.transportError(ctx, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(ctx, method, path, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return c.transportError(ctx, method, path, err)
	}
	if err := decodeEnvelope(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// get is a convenience for GET round trips.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// envelope matches the backend's {data: ...} wrapper. Some endpoints return
// payloads bare; decodeEnvelope accepts both and hands callers one shape.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

func decodeEnvelope(raw []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return json.Unmarshal(raw, out)
}

func joinPath(base, p string) string {
	if base == "" || base == "/" {
		return p
	}
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + p
}
