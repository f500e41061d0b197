package resilient

import (
	"context"
	"time"

	"github.com/gkv-io/gkv/lib/fault"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("resilient")

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

// Config holds the resilience parameters for one executor.
type Config struct {
	// Timeout bounds every single attempt. Zero means unbounded.
	Timeout time.Duration

	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int

	// InitialDelay is the backoff unit: the wait before retry n is
	// InitialDelay * n (linear increase).
	InitialDelay time.Duration
}

// DefaultConfig returns the default resilience parameters.
func DefaultConfig() Config {
	return Config{
		Timeout:      30 * time.Second,
		MaxRetries:   3,
		InitialDelay: 1000 * time.Millisecond,
	}
}

// --------------------------------------------------------------------------
// Executor
// --------------------------------------------------------------------------

// Executor drives operations through the bounded-time and retry wrappers.
type Executor struct {
	cfg       Config
	retryable func(error) bool
	sleep     func(time.Duration)
}

// NewExecutor creates an executor with the given config and the default
// retryable-failure predicate.
func NewExecutor(cfg Config) *Executor {
	return &Executor{
		cfg:       cfg,
		retryable: fault.Retryable,
		sleep:     time.Sleep,
	}
}

// SetRetryPredicate replaces the predicate deciding which failures are
// retried. Intended for tests and special-purpose sinks.
func (e *Executor) SetRetryPredicate(pred func(error) bool) {
	e.retryable = pred
}

// Config returns the executor's resilience parameters.
func (e *Executor) Config() Config {
	return e.cfg
}

// Do runs op, bounding each attempt by the configured timeout and retrying
// transient failures up to MaxRetries times with linearly increasing delay.
// A failure the predicate rejects propagates immediately. When the retry
// budget is exhausted, the last error is wrapped in a max-retries condition.
func (e *Executor) Do(ctx context.Context, op func() error) error {
	var lastErr error

	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			e.sleep(e.cfg.InitialDelay * time.Duration(attempt))
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		err := e.bounded(ctx, op)
		if err == nil {
			return nil
		}

		if !e.retryable(err) {
			return err
		}

		lastErr = err
		log.Debugf("attempt %d/%d failed: %v", attempt+1, e.cfg.MaxRetries+1, err)
	}

	return fault.Newf(fault.KindRetriesExhausted,
		"operation failed after %d attempts", e.cfg.MaxRetries+1).WithCause(lastErr)
}

// bounded runs op with the per-attempt timeout. On timeout the goroutine
// running op is disowned; no partial result is observed.
func (e *Executor) bounded(ctx context.Context, op func() error) error {
	if e.cfg.Timeout <= 0 {
		return op()
	}

	done := make(chan error, 1)
	go func() {
		done <- op()
	}()

	timer := time.NewTimer(e.cfg.Timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fault.Newf(fault.KindTimeout, "operation timed out after %v", e.cfg.Timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DoValue is Do for operations producing a value. The returned value is only
// valid when the error is nil. Results travel over a buffered channel so a
// disowned (timed-out) attempt finishing late never races a live one.
func DoValue[T any](ctx context.Context, e *Executor, op func() (T, error)) (T, error) {
	results := make(chan T, e.cfg.MaxRetries+1)
	err := e.Do(ctx, func() error {
		v, opErr := op()
		if opErr == nil {
			results <- v
		}
		return opErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return <-results, nil
}
