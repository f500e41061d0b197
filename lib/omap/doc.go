// Package omap implements an insertion-order-preserving hash map. It is the
// container collaborator wrapped by the guard façade: a plain data structure
// exposing the standard map operations (Insert, Find, Erase, Range, Size,
// BucketCount, LoadFactor, Clear, Swap) while guaranteeing that iteration
// visits entries in the order they were first inserted.
//
// Implementation Approach:
//
//	Entries live in a slice in insertion order; a Go map indexes each key to
//	its slice position. Lookup is O(1), insertion amortized O(1), ordered
//	erase is O(n) in the number of entries behind the erased position
//	(positions of later entries shift down and are re-indexed). The bucket
//	count is tracked as the power-of-two capacity the index has grown to,
//	so load factor and reserve semantics survive a serialize/deserialize
//	round trip.
//
// Thread Safety:
//
//	None. The map is deliberately unsynchronized; the guard façade owns all
//	locking and never exposes the raw map to concurrent callers.
package omap
