package httpclient

import (
	"fmt"
	"strings"
)

const maxErrorBodyBytes = 512

// HTTPError is returned when the remote side answers with a 4xx or 5xx status.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       []byte
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	snippet := readBodySnippet(e.Body)
	if snippet == "" {
		return fmt.Sprintf("%s %s: http status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: http status %d: %s", e.Method, e.URL, e.StatusCode, snippet)
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxErrorBodyBytes {
		body = body[:maxErrorBodyBytes]
	}
	return strings.TrimSpace(string(body))
}
