// Package fault implements the typed condition system used by all gKV
// subsystems. A Condition is a structured error value that carries, next to
// the human-readable message, the source location where it was raised, a
// timestamp, and an optional point-in-time snapshot of the container it was
// raised for. Every condition can be rendered as JSON for log ingestion.
//
// The package focuses on:
//   - A closed taxonomy of failure kinds (Kind) so callers can branch on the
//     class of a failure instead of parsing messages
//   - Retryability classification: the closed set of transient failures that
//     the resilient executor is allowed to retry
//   - Wrapping support (Unwrap) so conditions compose with errors.Is/errors.As
//
// Taxonomy:
//
//	Input-validation failures (KindNullKey, KindUninitializedFunc,
//	KindInvalidIterator) are always fatal to the current call and never
//	retried. Resource-pressure failures (KindMemoryLimit, KindAllocation)
//	are mitigated locally by the guard façade before being surfaced.
//	Transient I/O failures (KindTimeout plus a fixed set of recoverable
//	syscall errors) are retried up to a configured bound. Data-integrity
//	failures (KindIntegrity) are never retried: retrying corrupted input
//	cannot help.
//
// Thread Safety:
//
//	Conditions are immutable after construction and safe to share between
//	goroutines. The With* builders return the receiver for chaining and must
//	only be called before the condition is published.
package fault
