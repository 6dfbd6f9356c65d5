package typedclient

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/samvad-hq/authprobe/pkg/schema"
)

type fakeTransport struct {
	resp   json.RawMessage
	err    error
	path   string
	body   any
	called int
}

func (f *fakeTransport) Post(_ context.Context, path string, body any) (json.RawMessage, error) {
	f.called++
	f.path = path
	f.body = body
	return f.resp, f.err
}

type signup struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
}

type account struct {
	ID       int64  `json:"id" validate:"required"`
	Username string `json:"username" validate:"required"`
}

func TestPostTypedSendsMappingAndDecodes(t *testing.T) {
	tr := &fakeTransport{resp: json.RawMessage(`{"id":5,"username":"bob1234"}`)}
	c := New(tr)

	var out account
	raw, err := c.PostTyped(context.Background(), "/api/auth/register", signup{Username: "bob1234", Email: "bob@example.com"}, &out)
	if err != nil {
		t.Fatalf("PostTyped: %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("expected raw body to be returned")
	}
	m, ok := tr.body.(map[string]any)
	if !ok {
		t.Fatalf("expected plain mapping, got %T", tr.body)
	}
	if m["username"] != "bob1234" || m["email"] != "bob@example.com" {
		t.Fatalf("unexpected mapping %v", m)
	}
	if out.ID != 5 || out.Username != "bob1234" {
		t.Fatalf("unexpected decoded value %+v", out)
	}
}

func TestPostTypedNilRequestSendsNoBody(t *testing.T) {
	tr := &fakeTransport{}
	c := New(tr)

	raw, err := c.PostTyped(context.Background(), "/ping", nil, nil)
	if err != nil {
		t.Fatalf("PostTyped: %v", err)
	}
	if raw != nil || tr.body != nil {
		t.Fatalf("expected no body and nil result, got body=%v raw=%s", tr.body, raw)
	}
}

func TestPostTypedNilPointerRequestSendsNoBody(t *testing.T) {
	tr := &fakeTransport{}
	var req *signup

	if _, err := New(tr).PostTyped(context.Background(), "/ping", req, nil); err != nil {
		t.Fatalf("PostTyped: %v", err)
	}
	if tr.called != 1 || tr.body != nil {
		t.Fatalf("expected a call without body, got called=%d body=%#v", tr.called, tr.body)
	}
}

func TestPostTypedEmptyBodyWithResponseTypeIsNotAnError(t *testing.T) {
	c := New(&fakeTransport{})

	var out account
	raw, err := c.PostTyped(context.Background(), "/x", nil, &out)
	if err != nil {
		t.Fatalf("expected no error for empty body, got %v", err)
	}
	if raw != nil {
		t.Fatalf("expected nil result")
	}
}

func TestPostTypedShapeMismatch(t *testing.T) {
	c := New(&fakeTransport{resp: json.RawMessage(`{"id":5}`)})

	var out account
	_, err := c.PostTyped(context.Background(), "/x", nil, &out)
	var vErr *schema.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *schema.ValidationError, got %v", err)
	}
}

func TestPostTypedLenientDecoding(t *testing.T) {
	c := New(&fakeTransport{resp: json.RawMessage(`{"id":5,"username":"bob","extra":true}`)}, WithLenientDecoding())

	var out account
	if _, err := c.PostTyped(context.Background(), "/x", nil, &out); err != nil {
		t.Fatalf("PostTyped: %v", err)
	}
}

func TestPostTypedPropagatesTransportError(t *testing.T) {
	boom := errors.New("boom")
	c := New(&fakeTransport{err: boom})

	if _, err := c.PostTyped(context.Background(), "/x", nil, nil); !errors.Is(err, boom) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestPostAs(t *testing.T) {
	c := New(&fakeTransport{resp: json.RawMessage(`{"id":9,"username":"amy"}`)})
	got, err := PostAs[account](context.Background(), c, "/x", nil)
	if err != nil {
		t.Fatalf("PostAs: %v", err)
	}
	if got == nil || got.ID != 9 {
		t.Fatalf("unexpected result %+v", got)
	}

	empty, err := PostAs[account](context.Background(), New(&fakeTransport{}), "/x", nil)
	if err != nil || empty != nil {
		t.Fatalf("expected nil, nil for empty body; got %+v, %v", empty, err)
	}
}
