package httpclient

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// RestyClient adapts resty.Client to the httpclient.Doer interface. The
// underlying session is created once and reused, so keep-alive connections
// are shared across calls.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a RestyClient with library default timeouts.
func NewRestyClient(headers map[string]string) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(headers)}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(headers map[string]string) *resty.Client {
	return newRestyBaseClient(headers)
}

func newRestyBaseClient(headers map[string]string) *resty.Client {
	c := resty.New()
	if len(headers) > 0 {
		c.SetHeaders(headers)
	}
	return c
}

// Do performs the request described by req.
func (r *RestyClient) Do(ctx context.Context, req Request) (Response, error) {
	rr := r.client.R().SetContext(ctx)
	if len(req.Headers) > 0 {
		rr.SetHeaders(req.Headers)
	}
	if len(req.Query) > 0 {
		rr.SetQueryParams(req.Query)
	}
	if req.Body != nil {
		rr.SetBody(req.Body)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	resp, err := rr.Execute(method, req.URL)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// Close releases idle keep-alive connections held by the session.
func (r *RestyClient) Close() {
	if r == nil || r.client == nil {
		return
	}
	r.client.GetClient().CloseIdleConnections()
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Status() string  { return r.resp.Status() }
