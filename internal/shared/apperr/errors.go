// Package apperr defines the error taxonomy shared by the resume engine and its HTTP edge.
package apperr

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrConfiguration means the deployment is missing something required (fatal, not retried).
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation means caller input was insufficient.
	ErrValidation = errors.New("validation error")

	// ErrNotFound means the entity does not exist or does not belong to the caller.
	ErrNotFound = errors.New("not found")

	// ErrGeneration means the generative service answered with unusable content.
	ErrGeneration = errors.New("generation error")

	// ErrUpstream means the generative service call itself failed.
	ErrUpstream = errors.New("upstream service error")

	// ErrRender means the layout engine could not produce a document.
	ErrRender = errors.New("render error")
)

// Validation wraps ErrValidation with a caller-facing message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound with the missing entity name.
func NotFound(entity string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, entity)
}

// Configuration wraps ErrConfiguration with a caller-facing message.
func Configuration(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// RateLimitError is returned when a user is still inside an operation's cooldown window.
type RateLimitError struct {
	Operation  string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: %s available again in %d seconds", e.Operation, e.RemainingSeconds())
}

// RemainingSeconds rounds the wait up so a denied caller is never told zero.
func (e *RateLimitError) RemainingSeconds() int {
	if e == nil || e.RetryAfter <= 0 {
		return 1
	}
	secs := int(math.Ceil(e.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

// AsRateLimit unwraps a *RateLimitError from err.
func AsRateLimit(err error) (*RateLimitError, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}
