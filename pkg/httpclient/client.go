package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/samvad-hq/authprobe/pkg/schema"
)

// JSONClient issues JSON requests against a single base address. It is meant
// for sequential use; one request is in flight at a time.
type JSONClient struct {
	baseURL string
	headers map[string]string
	doer    Doer
	session *RestyClient
	log     Logger
}

// Option customizes a JSONClient.
type Option func(*JSONClient)

// WithDoer replaces the resty session with a custom transport.
func WithDoer(d Doer) Option {
	return func(c *JSONClient) {
		if d != nil {
			c.doer = d
		}
	}
}

// WithLogger sets the logger used for request/response diagnostics.
func WithLogger(log Logger) Option {
	return func(c *JSONClient) { c.log = EnsureLogger(log) }
}

// WithHeaders adds headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *JSONClient) {
		if len(headers) == 0 {
			return
		}
		if c.headers == nil {
			c.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// NewJSONClient builds a client for baseURL. Trailing slashes are dropped.
func NewJSONClient(baseURL string, opts ...Option) *JSONClient {
	c := &JSONClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		log:     NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.doer == nil {
		c.session = NewRestyClient(map[string]string{"Content-Type": "application/json"})
		c.doer = c.session
	}
	return c
}

// BaseURL returns the normalized base address.
func (c *JSONClient) BaseURL() string { return c.baseURL }

// Post sends body as JSON to path and returns the response JSON, or nil when
// the response body is empty.
func (c *JSONClient) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, Request{Method: http.MethodPost, URL: c.baseURL + path, Body: body})
}

// Get requests path with the given query parameters.
func (c *JSONClient) Get(ctx context.Context, path string, params map[string]string) (json.RawMessage, error) {
	return c.do(ctx, Request{Method: http.MethodGet, URL: c.baseURL + path, Query: params})
}

// Send issues method against path with body encoded as JSON. It shares the
// contract of Post.
func (c *JSONClient) Send(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	if method == "" {
		method = http.MethodPost
	}
	return c.do(ctx, Request{Method: method, URL: c.baseURL + path, Body: body})
}

// Close tears down the underlying session. Custom doers are left untouched.
func (c *JSONClient) Close() {
	if c == nil {
		return
	}
	c.session.Close()
}

func (c *JSONClient) do(ctx context.Context, req Request) (json.RawMessage, error) {
	if c == nil || c.doer == nil {
		return nil, errors.New("http client is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if len(c.headers) > 0 && req.Headers == nil {
		req.Headers = c.headers
	}

	c.logRequest(req)

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		c.log.ErrorObj("http request failed", "http_error", map[string]any{
			"method": req.Method,
			"url":    req.URL,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}

	respBody := resp.Body()
	c.logResponse(req, resp.StatusCode(), respBody)

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, &HTTPError{
			Method:     req.Method,
			URL:        req.URL,
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       append([]byte(nil), respBody...),
		}
	}

	trimmed := bytes.TrimSpace(respBody)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("%s %s: decode response body: invalid JSON: %s", req.Method, req.URL, readBodySnippet(trimmed))
	}
	return json.RawMessage(append([]byte(nil), trimmed...)), nil
}

func (c *JSONClient) logRequest(req Request) {
	fields := map[string]any{
		"method": req.Method,
		"url":    req.URL,
	}
	if len(req.Query) > 0 {
		fields["query"] = req.Query
	}
	if req.Body != nil {
		if raw, err := schema.Pretty(req.Body); err == nil {
			fields["body"] = string(raw)
		}
	}
	c.log.InfoObj("http request", "http_request", fields)
}

func (c *JSONClient) logResponse(req Request, status int, body []byte) {
	fields := map[string]any{
		"method": req.Method,
		"url":    req.URL,
		"status": status,
	}
	if len(body) > 0 {
		fields["body"] = string(body)
	}
	c.log.InfoObj("http response", "http_response", fields)
}
