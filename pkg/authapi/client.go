// Package authapi is the reporting client for the authentication service.
//
// Client wraps a typed poster and records every call as a report step with
// the request and response bodies attached. Register and Login are the named
// domain calls.
package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samvad-hq/authprobe/pkg/httpclient"
	"github.com/samvad-hq/authprobe/pkg/report"
	"github.com/samvad-hq/authprobe/pkg/schema"
	"github.com/samvad-hq/authprobe/pkg/typedclient"
)

// Endpoints of the authentication service.
const (
	RegisterPath = "/api/auth/register"
	LoginPath    = "/api/auth/login"
)

// Attachment names used on every step.
const (
	RequestBodyAttachment   = "Request Body"
	ResponseBodyAttachment  = "Response Body"
	ErrorResponseAttachment = "Error Response"
)

// ErrEmptyResponse is returned by Register and Login when the service answers
// with an empty body.
var ErrEmptyResponse = errors.New("empty response body")

// Client adds report steps around typed calls.
type Client struct {
	typed typedclient.TypedPoster
	sink  report.Sink
}

// NewClient wraps typed. A nil sink disables reporting.
func NewClient(typed typedclient.TypedPoster, sink report.Sink) *Client {
	if sink == nil {
		sink = report.Nop{}
	}
	return &Client{typed: typed, sink: sink}
}

// PostTyped performs the typed call inside a report step. stepTitle defaults
// to "POST <path>". A nil or nil-pointer req sends no body and gets no
// request attachment.
func (c *Client) PostTyped(ctx context.Context, path string, req any, out any, stepTitle string) (json.RawMessage, error) {
	if c == nil || c.typed == nil {
		return nil, errors.New("auth api client is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	title := stepTitle
	if title == "" {
		title = "POST " + path
	}

	var raw json.RawMessage
	err := c.sink.Step(ctx, title, func(ctx context.Context) error {
		if !schema.IsNil(req) {
			c.attachJSON(ctx, RequestBodyAttachment, req)
		}

		var err error
		raw, err = c.typed.PostTyped(ctx, path, req, out)

		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) && len(httpErr.Body) > 0 {
			c.sink.Attach(ctx, ErrorResponseAttachment, report.AttachmentText, httpErr.Body)
		}
		if len(raw) > 0 {
			c.attachJSON(ctx, ResponseBodyAttachment, raw)
		}
		return err
	})
	return raw, err
}

// Register creates a user.
func (c *Client) Register(ctx context.Context, req RegistrationRequest) (UserResponse, error) {
	var out UserResponse
	raw, err := c.PostTyped(ctx, RegisterPath, req, &out, fmt.Sprintf("Register user: %s", req.Username))
	if err != nil {
		return UserResponse{}, err
	}
	if len(raw) == 0 {
		return UserResponse{}, fmt.Errorf("register %s: %w", req.Username, ErrEmptyResponse)
	}
	return out, nil
}

// Login authenticates a user and returns the issued token.
func (c *Client) Login(ctx context.Context, req AuthRequest) (AuthResponse, error) {
	var out AuthResponse
	raw, err := c.PostTyped(ctx, LoginPath, req, &out, fmt.Sprintf("Log in user: %s", req.Username))
	if err != nil {
		return AuthResponse{}, err
	}
	if len(raw) == 0 {
		return AuthResponse{}, fmt.Errorf("login %s: %w", req.Username, ErrEmptyResponse)
	}
	return out, nil
}

func (c *Client) attachJSON(ctx context.Context, name string, v any) {
	body, err := schema.Pretty(v)
	if err != nil {
		c.sink.Attach(ctx, name, report.AttachmentText, []byte(fmt.Sprintf("%v", v)))
		return
	}
	c.sink.Attach(ctx, name, report.AttachmentJSON, body)
}
