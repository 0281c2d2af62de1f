package announce

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RetryPolicy decides whether a failed publish is attempted again
type RetryPolicy interface {
	// ShouldRetry reports whether attempt (zero based) may be followed by
	// another one, and how long to wait first.
	ShouldRetry(attempt int, err error) (bool, time.Duration)
}

// ExponentialBackoff retries with exponentially growing delays
type ExponentialBackoff struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxAttempts     int
	Jitter          bool
}

// NewExponentialBackoff creates a jittered exponential backoff policy
func NewExponentialBackoff(initial, max time.Duration, multiplier float64, maxRetries int) *ExponentialBackoff {
	return &ExponentialBackoff{
		InitialInterval: initial,
		MaxInterval:     max,
		Multiplier:      multiplier,
		MaxAttempts:     maxRetries,
		Jitter:          true,
	}
}

// ShouldRetry implements RetryPolicy
func (e *ExponentialBackoff) ShouldRetry(attempt int, err error) (bool, time.Duration) {
	if attempt >= e.MaxAttempts || !retryable(err) {
		return false, 0
	}
	return true, e.NextDelay(attempt)
}

// NextDelay returns the wait before the retry following attempt
func (e *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	delay := float64(e.InitialInterval) * math.Pow(e.Multiplier, float64(attempt))
	if delay > float64(e.MaxInterval) {
		delay = float64(e.MaxInterval)
	}

	// ±15%
	if e.Jitter {
		delay += rand.Float64()*0.3*delay - 0.15*delay
	}
	return time.Duration(delay)
}

// retryable treats broker errors flagged as unrecoverable and cancellation
// as final.
func retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var amqpErr *amqp.Error
	if errors.As(err, &amqpErr) {
		return amqpErr.Recover
	}
	return true
}

// withRetry runs fn until it succeeds, the policy gives up or ctx ends. A nil
// policy runs fn once.
func withRetry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil || policy == nil {
			return err
		}

		again, delay := policy.ShouldRetry(attempt, err)
		if !again {
			return err
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return err
		}
	}
}
