// Package memory implements the bookkeeping side of the guarded container:
// a byte ledger with a configurable limit, a fragmentation detector, a
// least-recently-used eviction tracker and a manager that composes them into
// the admission/eviction policy the container façade drives.
//
// Components:
//
//   - Accountant: tracks current usage plus lifetime allocated/freed totals.
//     Every fragmentationCheckInterval allocations it recomputes the ratio
//     freed / (allocated + freed) and latches a needs-defragmentation flag
//     once the ratio passes the configured threshold.
//
//   - Tracker: an O(1) recency list over container keys. Touch moves a key
//     to the front, NextEvictionCandidate pops the least recently used key.
//
//   - Manager: the single entry point the façade talks to. It forwards
//     accounting events to the ledger and the tracker, answers admission
//     questions (WouldExceed) and hands out eviction candidates in batches.
//
//   - SizeHistogram: an exponential-bucket histogram of entry footprints,
//     used for cheap size statistics without scanning the container.
//
// Thread safety: all components are safe for concurrent use on their own.
// The façade still serializes mutations through its lock policy, so the
// manager never has to coordinate eviction decisions across writers.
package memory
