package publishers

import (
	"context"
	"fmt"

	"github.com/samvad-hq/authprobe/pkg/httpclient"
)

// httpPublisher delivers events through the JSON transport client, so a
// rejected delivery surfaces as *httpclient.HTTPError.
type httpPublisher struct {
	id     string
	method string
	client *httpclient.JSONClient
}

func newHTTPPublisher(_ context.Context, cfg Config, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}
	client := httpclient.NewJSONClient(cfg.HTTP.URL,
		httpclient.WithLogger(log),
		httpclient.WithHeaders(cfg.HTTP.Headers),
	)
	return &httpPublisher{id: cfg.ID, method: cfg.HTTP.Method, client: client}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return TypeHTTP }

func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	if _, err := h.client.Send(ctx, h.method, "", evt); err != nil {
		return fmt.Errorf("deliver run %s: %w", evt.RunID, err)
	}
	return nil
}

func (h *httpPublisher) Close() error {
	h.client.Close()
	return nil
}
