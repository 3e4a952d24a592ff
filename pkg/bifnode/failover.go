package bifnode

import (
	"context"
	"errors"
	"net"
	"strings"
)

// shouldRetryWithNextEndpoint determines if a failed request may succeed on another node
func shouldRetryWithNextEndpoint(err error) bool {
	if err == nil {
		return false
	}

	// The caller gave up; no other endpoint will help
	if errors.Is(err, context.Canceled) {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.IsServerError() || httpErr.IsNotFound()
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errStr := err.Error()

	// Retry on network/infrastructure errors
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "EOF") {
		return true
	}

	// Don't retry on malformed requests or undecodable payloads
	return false
}
