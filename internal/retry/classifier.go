package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	openai "github.com/sashabaranov/go-openai"

	"github.com/vvka-141/csv2pg/pkg/csv2pg"
)

// APIErrorClassifier implements csv2pg.ErrorClassifier for inference
// provider calls over HTTP.
//
// Rate limits, server-side failures, and network-level faults are transient.
// Authentication failures, bad requests, and malformed model output are
// fatal: repeating the identical request cannot fix them, and the caller's
// heuristic fallback handles them instead.
type APIErrorClassifier struct{}

// NewAPIErrorClassifier creates a new API error classifier.
func NewAPIErrorClassifier() *APIErrorClassifier {
	return &APIErrorClassifier{}
}

// IsTransient determines if an error is temporary and retryable.
func (c *APIErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	// Cancellation is the caller's decision, never retried. A deadline hit
	// inside one attempt usually is a slow upstream, so it stays retryable.
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	if errors.Is(err, csv2pg.ErrMalformedResponse) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return transientStatusCode(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if transientStatusCode(reqErr.HTTPStatusCode) {
			return true
		}
		// A RequestError with no status code wraps a transport failure.
		if reqErr.HTTPStatusCode == 0 && reqErr.Err != nil {
			return c.isNetworkError(reqErr.Err) || c.isConnectionError(reqErr.Err)
		}
		return false
	}

	if c.isNetworkError(err) {
		return true
	}

	return c.isConnectionError(err)
}

// transientStatusCode reports whether an HTTP status warrants a retry:
// request timeout, rate limiting, and all server-side failures.
func transientStatusCode(code int) bool {
	switch {
	case code == 408:
		return true
	case code == 429:
		return true
	case code >= 500 && code <= 599:
		return true
	}
	return false
}

// isNetworkError checks for network-level errors.
func (c *APIErrorClassifier) isNetworkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() || dnsErr.Timeout()
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Temporary() || opErr.Timeout() {
			return true
		}
		if opErr.Err != nil {
			switch {
			case errors.Is(opErr.Err, syscall.ECONNREFUSED),
				errors.Is(opErr.Err, syscall.ECONNRESET),
				errors.Is(opErr.Err, syscall.ENETUNREACH),
				errors.Is(opErr.Err, syscall.EHOSTUNREACH):
				return true
			}
		}
	}

	return false
}

// isConnectionError checks error text for connection-level failures that
// arrive as plain wrapped errors rather than typed net errors.
func (c *APIErrorClassifier) isConnectionError(err error) bool {
	errMsg := strings.ToLower(err.Error())

	transientPatterns := []string{
		"connection refused",
		"connection reset",
		"connection timeout",
		"no such host",
		"network is unreachable",
		"i/o timeout",
		"broken pipe",
		"unexpected eof",
		"server closed the connection",
	}

	for _, pattern := range transientPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return false
}
