package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d from %s", e.StatusCode, e.URL)
}

// NewStatusError returns a StatusError for the given code and URL.
func NewStatusError(statusCode int, url string) *StatusError {
	return &StatusError{StatusCode: statusCode, URL: url}
}

// transientPatterns match transport errors whose message indicates a
// dropped or unreachable socket.
var transientPatterns = []string{
	"connection reset",
	"connection refused",
	"connection aborted",
	"connection closed",
	"broken pipe",
	"socket hang up",
	"network is unreachable",
	"host is unreachable",
	"no route to host",
	"no such host",
	"temporary failure in name resolution",
	"server misbehaving",
	"server closed idle connection",
	"transport connection broken",
	"unexpected eof",
	"deadline exceeded",
	"context canceled",
	"timeout",
}

// IsTransient reports whether err is safe to retry. HTTP 5xx, timeouts,
// aborted attempts, connection resets and refusals, name resolution
// failures and dropped sockets are transient. HTTP 4xx and everything
// else are terminal.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// Classify returns "transient" or "terminal" for logging.
func Classify(err error) string {
	if IsTransient(err) {
		return "transient"
	}
	return "terminal"
}
