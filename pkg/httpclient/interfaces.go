package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Status() string
}

// Request describes a single outbound call. Body is marshalled as JSON when non-nil.
type Request struct {
	Method  string
	URL     string
	Body    any
	Query   map[string]string
	Headers map[string]string
}

// Doer abstracts HTTP calls so callers can inject mocks or different transports.
type Doer interface {
	Do(ctx context.Context, req Request) (Response, error)
}

// Logger defines the logging surface the client relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// NopLogger discards all log output.
type NopLogger struct{}

func (NopLogger) InfoObj(string, string, interface{})  {}
func (NopLogger) DebugObj(string, string, interface{}) {}
func (NopLogger) WarnObj(string, string, interface{})  {}
func (NopLogger) ErrorObj(string, string, interface{}) {}

// EnsureLogger returns log, or a NopLogger when log is nil.
func EnsureLogger(log Logger) Logger {
	if log == nil {
		return NopLogger{}
	}
	return log
}
