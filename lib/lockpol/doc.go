// Package lockpol provides the pluggable locking discipline of the guard
// façade. A Policy hands out scoped Tokens representing a held read or write
// capability; the façade acquires a token at the start of every operation and
// releases it on every exit path, normally via defer.
//
// Three interchangeable strategies are provided:
//
//   - Shared: readers never block other readers, a writer blocks until all
//     current readers and any other writer have released. Built on
//     xsync.RBMutex, a reader-biased reader/writer lock whose per-reader
//     tokens map directly onto the scoped-token model.
//
//   - Exclusive: a single mutual-exclusion capability for both reads and
//     writes. Used when write-heavy workloads make the read/write
//     distinction not worth the overhead.
//
//   - NoOp: tokens are acquired and released with zero synchronization cost.
//     Valid only when the caller guarantees single-threaded use; this is a
//     documented contract, not an enforced one.
//
// Thread Safety:
//
//	All policies are safe for concurrent use (the NoOp policy trivially so,
//	by doing nothing). Token.Release is idempotent; releasing twice is a
//	no-op. Acquiring the same policy's write capability twice from one
//	goroutine deadlocks, as with any Go mutex; callers must not do that.
package lockpol
