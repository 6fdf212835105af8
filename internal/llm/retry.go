package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const maxRetries = 3

// Backoff holds the waits between attempts, indexed by attempt number.
type Backoff struct {
	RateLimit   []time.Duration
	ServerError []time.Duration
}

// DefaultBackoff waits out a full rate-limit window before retrying.
var DefaultBackoff = Backoff{
	RateLimit:   []time.Duration{65 * time.Second, 100 * time.Second, 135 * time.Second},
	ServerError: []time.Duration{5 * time.Second, 30 * time.Second, 60 * time.Second},
}

// InteractiveBackoff is for calls a user is waiting on. It gives up long
// before an HTTP write deadline.
var InteractiveBackoff = Backoff{
	RateLimit:   []time.Duration{time.Second, 2 * time.Second},
	ServerError: []time.Duration{500 * time.Millisecond, time.Second},
}

// callWithRetry retries fn on rate-limit and server errors. Any other error
// is returned immediately.
func callWithRetry[T any](ctx context.Context, b Backoff, fn func() (T, error)) (T, error) {
	var zero T
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := fn()
		if err == nil {
			return resp, nil
		}

		var waits []time.Duration
		switch {
		case isRateLimitError(err):
			waits = b.RateLimit
		case isServerError(err):
			waits = b.ServerError
		default:
			return zero, err
		}
		if attempt >= maxRetries-1 {
			return zero, err
		}

		var wait time.Duration
		if attempt < len(waits) {
			wait = waits[attempt]
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(wait):
		}
	}
	return zero, fmt.Errorf("failed after %d attempts due to provider issues", maxRetries)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

func isServerError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}
