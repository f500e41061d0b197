package memory

// DefaultEvictionBatch is the number of eviction candidates handed out per
// round when the caller does not configure a batch size.
const DefaultEvictionBatch = 10

// --------------------------------------------------------------------------
// Manager
// --------------------------------------------------------------------------

// Manager composes the ledger, the recency tracker and the size histogram
// into the single accounting surface the container façade drives. The
// façade reports every insert, replace, access and erase; the manager
// answers admission questions and hands out eviction candidates.
//
// Thread-safety: all methods are safe for concurrent use, but eviction
// rounds (NextEvictionCandidate followed by NoteEvicted) assume the façade
// holds its write lock so no two writers evict at once.
type Manager[K comparable] struct {
	acc   *Accountant
	lru   *Tracker[K]
	hist  *SizeHistogram
	batch int
}

// NewManager creates a manager. limit zero means unbounded, threshold zero
// selects the default fragmentation threshold, batch zero or below selects
// DefaultEvictionBatch.
func NewManager[K comparable](limit uint64, threshold float64, batch int) *Manager[K] {
	if batch <= 0 {
		batch = DefaultEvictionBatch
	}
	return &Manager[K]{
		acc:   NewAccountant(limit, threshold),
		lru:   NewTracker[K](),
		hist:  NewSizeHistogram(),
		batch: batch,
	}
}

// EvictionBatch returns the configured candidates-per-round count.
func (m *Manager[K]) EvictionBatch() int {
	return m.batch
}

// Used returns current ledger usage in bytes.
func (m *Manager[K]) Used() uint64 {
	return m.acc.Used()
}

// Limit returns the byte limit, zero when unbounded.
func (m *Manager[K]) Limit() uint64 {
	return m.acc.Limit()
}

// WouldExceed reports whether admitting n more bytes would pass the limit.
func (m *Manager[K]) WouldExceed(n uint64) bool {
	return m.acc.WouldExceed(n)
}

// NoteInsert records a freshly inserted entry of the given footprint.
func (m *Manager[K]) NoteInsert(key K, size uint64) {
	m.acc.RecordAllocation(size)
	m.lru.Touch(key)
	m.hist.AddSample(size)
}

// NoteReplace records an in-place value replacement.
func (m *Manager[K]) NoteReplace(key K, oldSize, newSize uint64) {
	m.acc.RecordDeallocation(oldSize)
	m.acc.RecordAllocation(newSize)
	m.lru.Touch(key)
	m.hist.AddSample(newSize)
}

// NoteAccess marks key as recently used.
func (m *Manager[K]) NoteAccess(key K) {
	m.lru.Touch(key)
}

// NoteErase records removal of an entry of the given footprint.
func (m *Manager[K]) NoteErase(key K, size uint64) {
	m.acc.RecordDeallocation(size)
	m.lru.Remove(key)
}

// NextEvictionCandidate pops the least recently used key. The façade erases
// the entry and reports the reclaimed bytes via NoteEvicted.
func (m *Manager[K]) NextEvictionCandidate() (K, bool) {
	return m.lru.NextEvictionCandidate()
}

// NoteEvicted records the bytes reclaimed by evicting an entry whose key
// was already popped from the tracker.
func (m *Manager[K]) NoteEvicted(size uint64) {
	m.acc.RecordDeallocation(size)
}

// Fragmented reports the ledger's latched needs-defragmentation flag.
func (m *Manager[K]) Fragmented() bool {
	return m.acc.Fragmented()
}

// FragmentationRatio exposes the ledger's current churn ratio.
func (m *Manager[K]) FragmentationRatio() float64 {
	return m.acc.FragmentationRatio()
}

// Defragment acknowledges a completed compaction pass.
func (m *Manager[K]) Defragment() {
	m.acc.Defragment()
}

// Histogram returns the entry footprint histogram.
func (m *Manager[K]) Histogram() *SizeHistogram {
	return m.hist
}

// Reset returns ledger, tracker and histogram to their empty state.
func (m *Manager[K]) Reset() {
	m.acc.Reset()
	m.lru.Clear()
	m.hist.Reset()
}
