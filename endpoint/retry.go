package endpoint

import (
	"errors"
	"time"

	"github.com/c360studio/semstreams/pkg/retry"
)

// DefaultRetryConfig returns retry defaults suited to a local Ontop endpoint.
func DefaultRetryConfig() retry.Config {
	return retry.Config{
		MaxAttempts:  3,
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		AddJitter:    true,
	}
}

// singleAttempt runs a request once with no backoff.
var singleAttempt = retry.Config{MaxAttempts: 1}

// markNonRetryable hands fatal errors to retry.Do as non-retryable.
func markNonRetryable(err error) error {
	if IsFatal(err) {
		return retry.NonRetryable(err)
	}
	return err
}

// unwrapNonRetryable returns the error inside a retry.NonRetryable wrapper.
func unwrapNonRetryable(err error) error {
	var nre *retry.NonRetryableError
	if errors.As(err, &nre) {
		return nre.Err
	}
	return err
}
