package typedclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samvad-hq/authprobe/pkg/schema"
)

// Poster is the transport capability the typed client is built on.
type Poster interface {
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
}

// Client marshals structured requests and validates structured responses on
// top of a Poster.
type Client struct {
	transport  Poster
	decodeOpts []schema.DecodeOption
}

// Option customizes a Client.
type Option func(*Client)

// WithLenientDecoding accepts response fields the target type does not declare.
func WithLenientDecoding() Option {
	return func(c *Client) {
		c.decodeOpts = append(c.decodeOpts, schema.AllowUnknownFields())
	}
}

// New wraps transport.
func New(transport Poster, opts ...Option) *Client {
	c := &Client{transport: transport}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostTyped converts req (unless it is nil or a nil pointer) to a plain mapping, posts it to path
// and, when out is non-nil and the response is not empty, decodes the
// response into out. The raw response JSON is returned in every case; it is
// nil for an empty body.
func (c *Client) PostTyped(ctx context.Context, path string, req any, out any) (json.RawMessage, error) {
	if c == nil || c.transport == nil {
		return nil, errors.New("typed client is not initialized")
	}

	var body any
	m, err := schema.ToMap(req)
	if err != nil {
		return nil, fmt.Errorf("encode request for %s: %w", path, err)
	}
	if m != nil {
		body = m
	}

	raw, err := c.transport.Post(ctx, path, body)
	if err != nil {
		return nil, err
	}

	if out != nil && len(raw) > 0 {
		if err := schema.Decode(raw, out, c.decodeOpts...); err != nil {
			return raw, fmt.Errorf("parse response from %s: %w", path, err)
		}
	}
	return raw, nil
}

// TypedPoster is satisfied by Client and by the layers that wrap it.
type TypedPoster interface {
	PostTyped(ctx context.Context, path string, req any, out any) (json.RawMessage, error)
}

// PostAs posts req and decodes the response into a new T. It returns nil
// without error when the service answers with an empty body.
func PostAs[T any](ctx context.Context, c TypedPoster, path string, req any) (*T, error) {
	out := new(T)
	raw, err := c.PostTyped(ctx, path, req, out)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return out, nil
}
