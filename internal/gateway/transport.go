package gateway

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// retryBudget is the number of retries beyond the initial attempt.
const retryBudget = 3

// retryTransport retries a request a fixed number of times on network errors
// and 5xx responses. It sits below the rate-limit waiter and the oauth2
// transport, so retried requests keep their Authorization header.
type retryTransport struct {
	base http.RoundTripper
}

func newRetryTransport(base http.RoundTripper) *retryTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &retryTransport{base: base}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Buffer the body so it can be replayed on each attempt.
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to buffer request body: %w", err)
		}
	}

	// One initial attempt plus retryBudget retries.
	var resp *http.Response
	var err error
	for attempt := 0; ; attempt++ {
		if body != nil {
			req.Body = io.NopCloser(bytes.NewReader(body))
		}
		resp, err = t.base.RoundTrip(req)
		if err == nil && resp.StatusCode < http.StatusInternalServerError {
			return resp, nil
		}
		if attempt == retryBudget {
			break
		}
		if err == nil {
			// Drain the failed response so the connection can be reused.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("transport failed after %d retries: %w", retryBudget, err)
	}
	return resp, nil
}
