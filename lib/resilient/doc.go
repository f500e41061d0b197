// Package resilient implements a generic retry-with-backoff wrapper and a
// bounded-time wrapper for operations against unreliable byte sinks and
// sources. It is a resilience pattern, not a transport: there is no socket
// or connection management here, only the machinery to bound an attempt in
// time and to retry transient failures.
//
// The retry loop is an explicit state machine (attempt counter, computed
// delay) rather than control flow by panic/recover. Which failures are
// retryable is decided by a predicate, defaulting to fault.Retryable: the
// closed set of transient conditions (operation timeout, connection
// reset/aborted, interrupted, resource-temporarily-unavailable, transport
// timeout). Everything else propagates immediately.
//
// Timeout semantics:
//
//	Each attempt runs in its own goroutine and is abandoned when it exceeds
//	the configured per-attempt timeout. The underlying blocking work may
//	continue running in the background but is disowned; the caller must not
//	assume it stopped. A timed-out attempt counts against the retry budget
//	and never yields a partial result.
package resilient
