package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxErrorBody = 4 << 10

// StatusError describes a non-2xx response from an upstream.
type StatusError struct {
	Upstream   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Upstream, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Upstream, e.StatusCode, e.Body)
}

// CheckStatus returns nil for 2xx responses. Otherwise it drains and closes
// the body and returns a *StatusError carrying a trimmed prefix of it.
func CheckStatus(resp *http.Response, upstream string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_, _ = io.Copy(io.Discard, resp.Body)

	return &StatusError{
		Upstream:   upstream,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

// IsClientError reports whether status is a 4xx code.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
