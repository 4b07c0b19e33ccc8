// Package resilience contains the shared error-containment helpers used by
// every external call site (search, scrape, AI, transport).
package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// IsTransient reports whether an error looks like a transient external
// failure (network timeout, connection reset, DNS hiccup) rather than a
// programming or configuration error. Used only to pick a log level; the
// pipeline never retries within a cycle.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection reset by peer",
		"broken pipe",
		"no such host",
		"i/o timeout",
		"tls handshake timeout",
		"context deadline exceeded",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
