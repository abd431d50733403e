// Package retry runs an operation with exponential backoff. It is used for
// connecting to external services such as the telemetry NATS server.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// PermanentError marks a failure that must not be retried.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent: %v", e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps err so that Do stops immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// Policy describes the backoff schedule.
type Policy struct {
	Attempts   int           // total attempts, at least one
	Initial    time.Duration // delay after the first failure
	Max        time.Duration // delay cap
	Multiplier float64
	Jitter     bool // add up to 25% to each delay
}

// DefaultPolicy is used for telemetry connections.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:   3,
		Initial:    100 * time.Millisecond,
		Max:        2 * time.Second,
		Multiplier: 2.0,
		Jitter:     true,
	}
}

// Once runs the operation a single time.
func Once() Policy {
	return Policy{Attempts: 1}
}

func (p Policy) normalized() (Policy, error) {
	if p.Initial < 0 || p.Max < 0 || p.Multiplier < 0 {
		return p, errors.New("retry: negative policy value")
	}
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	if p.Initial == 0 {
		p.Initial = 100 * time.Millisecond
	}
	if p.Max == 0 {
		p.Max = 5 * time.Second
	}
	if p.Multiplier < 1 {
		p.Multiplier = 2.0
	}
	if p.Max < p.Initial {
		return p, errors.New("retry: Max must be >= Initial")
	}
	return p, nil
}

// Delay returns the wait before attempt n+1, where n counts from 1.
// Jitter is not applied.
func (p Policy) Delay(n int) time.Duration {
	d := float64(p.Initial)
	for range n - 1 {
		d *= p.Multiplier
		if d >= float64(p.Max) {
			return p.Max
		}
	}
	return time.Duration(d)
}

// Do calls fn until it succeeds, returns a permanent error, the attempts
// run out, or ctx is done.
func Do[T any](ctx context.Context, p Policy, fn func() (T, error)) (T, error) {
	var zero T
	p, err := p.normalized()
	if err != nil {
		return zero, err
	}

	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if IsPermanent(err) {
			return zero, err
		}
		lastErr = err

		if attempt == p.Attempts {
			break
		}

		wait := p.Delay(attempt)
		if p.Jitter && wait >= 4 {
			wait += rand.N(wait / 4)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("retry cancelled before attempt %d: %w", attempt+1, ctx.Err())
		case <-timer.C:
		}
	}

	return zero, fmt.Errorf("retry failed after %d attempts: %w", p.Attempts, lastErr)
}
