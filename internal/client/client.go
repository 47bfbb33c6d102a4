// Package client is a typed HTTP client for the ride-hailing REST API. Each
// method is exactly one request: nothing is retried and an expired token is
// never refreshed behind the caller's back.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/aditya/bakshish/internal/errors"
	"github.com/aditya/bakshish/internal/session"
	"github.com/aditya/bakshish/pkg/utils"
	"github.com/newrelic/go-agent/v3/newrelic"
)

const (
	RequestIDHeader   = "X-Request-ID"
	IdempotencyHeader = "Idempotency-Key"

	maxErrorBody = 64 << 10
)

type Client struct {
	baseURL *url.URL
	http    *http.Client
	session *session.Session
	logger  *log.Logger
}

type Option func(*Client)

// WithHTTPClient uses a copy of hc, so later options such as WithTimeout
// never change a client shared with the rest of the process.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		copied := *hc
		c.http = &copied
	}
}

// WithTimeout sets an overall per-request timeout. Zero keeps the transport
// default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithNewRelic records every request as an external segment of the
// transaction carried by the request context.
func WithNewRelic(app *newrelic.Application) Option {
	return func(c *Client) {
		if app == nil {
			return
		}
		c.http.Transport = newrelic.NewRoundTripper(c.http.Transport)
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

func New(baseURL string, sess *session.Session, opts ...Option) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http(s): %q", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{},
		session: sess,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Session returns the session the client reads its bearer token from.
func (c *Client) Session() *session.Session {
	return c.session
}

type request struct {
	method     string
	path       string
	query      url.Values
	body       interface{}
	auth       bool
	idempotent bool
}

func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	endpoint := c.baseURL.ResolveReference(&url.URL{Path: r.path})
	if len(r.query) > 0 {
		endpoint.RawQuery = r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", r.path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint.String(), body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", r.path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, utils.GenerateID())
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.idempotent {
		req.Header.Set(IdempotencyHeader, utils.GenerateID())
	}

	// Without a token the call goes out unauthenticated and the server's
	// 401 tells the caller it is not logged in.
	if r.auth && c.session != nil {
		token, ok, err := c.session.AccessToken(ctx)
		if err != nil {
			return err
		}
		if ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("%s %s failed after %s: %v", r.method, endpoint.Path, time.Since(start), err)
		return fmt.Errorf("%w: %w", apperrors.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	c.logger.Printf("%s %s %d %s", r.method, endpoint.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return apperrors.FromResponse(resp.StatusCode, data)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", apperrors.ErrRequestFailed, r.path, err)
	}
	return nil
}
