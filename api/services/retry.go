package services

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// retryPolicy is a reusable (attempts, backoff schedule) pair. Model calls
// block with no mid-call cancellation, so the wrapper runs on the background
// context.
type retryPolicy struct {
	attempts int
	base     time.Duration
	cap      time.Duration
}

// run invokes op up to p.attempts times with exponential backoff between
// attempts. The returned error is the last error op produced.
func (p retryPolicy) run(op func() error) error {
	backoff := retry.WithMaxRetries(uint64(p.attempts-1),
		retry.WithCappedDuration(p.cap, retry.NewExponential(p.base)))

	// retry.Do unwraps the retryable marker itself on exhaustion, so the
	// operation's error comes back with its own chain intact.
	return retry.Do(context.Background(), backoff, func(_ context.Context) error {
		if opErr := op(); opErr != nil {
			return retry.RetryableError(opErr)
		}
		return nil
	})
}
