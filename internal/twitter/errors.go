package twitter

import (
	"fmt"
	"time"
)

// AuthError indicates the API rejected the supplied credentials. Callers
// should not retry without fixing the token.
type AuthError struct {
	Status int
	Detail string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (status %d): %s", e.Status, e.Detail)
}

// RateLimitError indicates the API throttled the request. RetryAfter is
// zero when the API did not say how long to back off.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}
