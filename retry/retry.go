// Package retry implements the exponential-backoff policy used for every
// outbound service call made by the ingestion pipeline.
package retry

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"
)

// Policy retries a failing call up to MaxAttempts times, sleeping
// BaseDelay * Factor^attempt between attempts. A nil Retryable predicate
// treats every error as transient.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Factor      float64
	Retryable   func(error) bool
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 10,
		BaseDelay:   5 * time.Second,
		Factor:      2,
	}
}

// ExhaustedError is returned once every attempt has failed. It is fatal
// to the run that issued the call.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("exhausted %d attempts, last error: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Do runs fn until it succeeds, the attempts run out, the error is marked
// non-retryable, or ctx is cancelled during a backoff sleep.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	var last error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		last = err
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == p.MaxAttempts {
			break
		}
		wait := time.Duration(float64(p.BaseDelay) * math.Pow(p.Factor, float64(attempt)))
		log.Printf("[RETRY] attempt %d/%d failed: %v, retry after %s", attempt, p.MaxAttempts, err, wait)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return &ExhaustedError{Attempts: p.MaxAttempts, Last: last}
}

// DoValue is Do for calls that return a value alongside the error.
func DoValue[T any](ctx context.Context, p Policy, fn func() (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, func() error {
		var ferr error
		out, ferr = fn()
		return ferr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
