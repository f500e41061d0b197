// Package guard wraps the ordered container with the three protection
// layers of gKV: pluggable locking, bounded-memory accounting with
// least-recently-used eviction, and resilient checksummed persistence.
//
// Operation protocol:
//
//	Every public operation follows the same sequence. The key is validated
//	(nil keys of pointer-like types are rejected), the configured hasher
//	and equality functions are checked for presence, the appropriate lock
//	token is acquired from the policy, the call is delegated to the inner
//	container, and for mutations the memory manager is updated. When an
//	insert would push usage past the configured limit, least recently used
//	entries are evicted in batches until the new entry fits; if nothing is
//	left to evict, the operation fails with a memory-limit condition that
//	carries a snapshot of the container state. When the ledger reports
//	fragmentation after a mutation, one compaction pass runs before the
//	operation returns.
//
// Iterators:
//
//	Iter returns a read-token iterator, IterMut a write-token one that
//	additionally supports erasing the current entry. The token is held
//	until Close, so other operations on the same container block (or, for
//	readers under the shared policy, proceed concurrently) for the
//	iterator's lifetime. Erasing through an iterator invalidates it; an
//	invalidated iterator fails every subsequent call with an
//	invalid-iterator condition. Invalidation is terminal.
//
// Persistence:
//
//	Save and Load drive the codec package's container protocol under a
//	read or write token respectively. Transient sink/source failures are
//	retried by the resilient executor; checksum mismatches are surfaced
//	immediately as data-integrity conditions.
//
// Thread-safety: determined by the configured lock policy. The shared
// policy allows concurrent readers, the exclusive policy serializes
// everything, the none policy leaves synchronization to the caller.
package guard
