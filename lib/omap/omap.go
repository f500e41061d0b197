package omap

import "math"

// minBuckets is the bucket count of a fresh map. Kept a power of two so
// growth doubles cleanly.
const minBuckets = 16

// Entry is a single key-value pair in insertion order.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// Map is an insertion-order-preserving hash map. The zero value is not
// usable; create instances with New or WithCapacity.
type Map[K comparable, V any] struct {
	index   map[K]int
	entries []Entry[K, V]
	buckets uint64
}

// New creates an empty ordered map.
func New[K comparable, V any]() *Map[K, V] {
	return WithCapacity[K, V](0)
}

// WithCapacity creates an empty ordered map with at least n buckets reserved.
func WithCapacity[K comparable, V any](n uint64) *Map[K, V] {
	m := &Map[K, V]{
		index:   make(map[K]int, n),
		buckets: minBuckets,
	}
	m.Reserve(n)
	return m
}

// --------------------------------------------------------------------------
// Write Operations
// --------------------------------------------------------------------------

// Insert adds or replaces the value for key. The boolean return value
// reports whether an existing entry was replaced; a replaced entry keeps
// its original position in the insertion order.
func (m *Map[K, V]) Insert(key K, value V) bool {
	if pos, ok := m.index[key]; ok {
		m.entries[pos].Value = value
		return true
	}

	m.entries = append(m.entries, Entry[K, V]{Key: key, Value: value})
	m.index[key] = len(m.entries) - 1
	m.grow()
	return false
}

// Erase removes the entry for key, preserving the relative order of all
// remaining entries. It returns the removed value and whether the key was
// present.
func (m *Map[K, V]) Erase(key K) (V, bool) {
	pos, ok := m.index[key]
	if !ok {
		var zero V
		return zero, false
	}

	removed := m.entries[pos].Value
	delete(m.index, key)

	// Shift later entries down and fix their index positions.
	copy(m.entries[pos:], m.entries[pos+1:])
	m.entries = m.entries[:len(m.entries)-1]
	for i := pos; i < len(m.entries); i++ {
		m.index[m.entries[i].Key] = i
	}

	return removed, true
}

// Clear removes all entries. The bucket count is kept so a cleared map does
// not immediately re-grow on refill.
func (m *Map[K, V]) Clear() {
	m.index = make(map[K]int, m.buckets)
	m.entries = m.entries[:0]
}

// Swap exchanges the full contents of two maps, including their bucket
// counts. Callers are responsible for any locking.
func (m *Map[K, V]) Swap(other *Map[K, V]) {
	m.index, other.index = other.index, m.index
	m.entries, other.entries = other.entries, m.entries
	m.buckets, other.buckets = other.buckets, m.buckets
}

// Reserve grows the bucket count so the map can hold at least n entries
// without re-growing. Shrinking is not supported.
func (m *Map[K, V]) Reserve(n uint64) {
	for m.buckets < n {
		m.buckets *= 2
	}
	if cap(m.entries) < int(n) {
		grown := make([]Entry[K, V], len(m.entries), n)
		copy(grown, m.entries)
		m.entries = grown
	}
}

// Compact reallocates the backing storage to fit the current entry count,
// releasing capacity retained by earlier erases.
func (m *Map[K, V]) Compact() {
	if cap(m.entries) == len(m.entries) {
		return
	}
	shrunk := make([]Entry[K, V], len(m.entries))
	copy(shrunk, m.entries)
	m.entries = shrunk
}

// grow doubles the bucket count whenever the entry count has caught up with
// it, mirroring power-of-two growth of a hash table.
func (m *Map[K, V]) grow() {
	for uint64(len(m.entries)) > m.buckets {
		m.buckets *= 2
	}
}

// --------------------------------------------------------------------------
// Read Operations
// --------------------------------------------------------------------------

// Find returns the value for key and whether it was present.
func (m *Map[K, V]) Find(key K) (V, bool) {
	if pos, ok := m.index[key]; ok {
		return m.entries[pos].Value, true
	}
	var zero V
	return zero, false
}

// Has reports whether key is present.
func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.index[key]
	return ok
}

// EntryAt returns the entry at position i in insertion order. The boolean
// return value is false when i is out of range.
func (m *Map[K, V]) EntryAt(i int) (Entry[K, V], bool) {
	if i < 0 || i >= len(m.entries) {
		return Entry[K, V]{}, false
	}
	return m.entries[i], true
}

// Range calls fn for every entry in insertion order until fn returns false.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	for _, e := range m.entries {
		if !fn(e.Key, e.Value) {
			return
		}
	}
}

// Keys returns all keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys
}

// --------------------------------------------------------------------------
// Capacity and Statistics
// --------------------------------------------------------------------------

// Size returns the number of entries.
func (m *Map[K, V]) Size() uint64 {
	return uint64(len(m.entries))
}

// MaxSize returns the theoretical maximum number of entries.
func (m *Map[K, V]) MaxSize() uint64 {
	return math.MaxUint32
}

// BucketCount returns the current power-of-two bucket capacity.
func (m *Map[K, V]) BucketCount() uint64 {
	return m.buckets
}

// LoadFactor returns the ratio of entries to buckets.
func (m *Map[K, V]) LoadFactor() float64 {
	return float64(len(m.entries)) / float64(m.buckets)
}
