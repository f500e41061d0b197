package guard

import (
	"reflect"
	"sync/atomic"

	"github.com/lni/dragonboat/v4/logger"

	"github.com/gkv-io/gkv/lib/fault"
	"github.com/gkv-io/gkv/lib/guard/memory"
	"github.com/gkv-io/gkv/lib/lockpol"
	"github.com/gkv-io/gkv/lib/omap"
	"github.com/gkv-io/gkv/lib/resilient"
)

var log = logger.GetLogger("guard")

// instanceIDs hands out the identity used to order lock acquisition when
// two maps are involved in one operation.
var instanceIDs atomic.Uint64

// --------------------------------------------------------------------------
// Guarded Map
// --------------------------------------------------------------------------

// Map is the guarded container façade: an insertion-order-preserving map
// protected by a lock policy, a memory ledger with LRU eviction and a
// resilient persistence pipeline.
type Map[K comparable, V any] struct {
	id     uint64
	cfg    Config[K, V]
	policy lockpol.Policy
	inner  *omap.Map[K, V]
	mem    *memory.Manager[K]
	exec   *resilient.Executor

	keyNullable bool
}

// NewMap creates a guarded map from cfg. Missing size estimator falls back
// to the default; missing hasher or equality function is tolerated here and
// rejected per-operation.
func NewMap[K comparable, V any](cfg Config[K, V]) *Map[K, V] {
	if cfg.SizeOf == nil {
		cfg.SizeOf = defaultSizeOf[K, V]()
	}

	keyKind := reflect.TypeOf((*K)(nil)).Elem().Kind()

	return &Map[K, V]{
		id:          instanceIDs.Add(1),
		cfg:         cfg,
		policy:      lockpol.ForMode(cfg.LockMode),
		inner:       omap.New[K, V](),
		mem:         memory.NewManager[K](cfg.MemoryLimit, cfg.FragmentationThreshold, cfg.EvictionBatch),
		exec:        resilient.NewExecutor(cfg.Resilience),
		keyNullable: nullableKeyKind(keyKind),
	}
}

// --------------------------------------------------------------------------
// Validation
// --------------------------------------------------------------------------

func (m *Map[K, V]) validateKey(key K) error {
	if !m.keyNullable {
		return nil
	}
	rv := reflect.ValueOf(key)
	if !rv.IsValid() || rv.IsNil() {
		return fault.New(fault.KindNullKey, "operation received a nil key").
			WithSnapshot(m.snapshotLocked())
	}
	return nil
}

func (m *Map[K, V]) validateFuncs() error {
	if m.cfg.Hasher == nil {
		return fault.New(fault.KindUninitializedFunc, "no hash function configured")
	}
	if m.cfg.Equal == nil {
		return fault.New(fault.KindUninitializedFunc, "no equality function configured")
	}
	return nil
}

func (m *Map[K, V]) validate(key K) error {
	if err := m.validateFuncs(); err != nil {
		return err
	}
	return m.validateKey(key)
}

// snapshotLocked captures the container state for condition reporting.
// Callers either hold a token or accept a racy snapshot on the validation
// path.
func (m *Map[K, V]) snapshotLocked() fault.Snapshot {
	return fault.Snapshot{
		Size:        m.inner.Size(),
		MaxSize:     m.inner.MaxSize(),
		LoadFactor:  m.inner.LoadFactor(),
		BucketCount: m.inner.BucketCount(),
	}
}

// --------------------------------------------------------------------------
// Write Operations
// --------------------------------------------------------------------------

// Insert adds or replaces the value for key. A replaced entry keeps its
// insertion-order position. When the new entry would push memory usage past
// the limit, least recently used entries are evicted first; if that cannot
// make room, a memory-limit condition is returned and the container is
// unchanged except for the evictions already performed.
func (m *Map[K, V]) Insert(key K, value V) error {
	if err := m.validate(key); err != nil {
		return err
	}

	tok := m.policy.AcquireWrite()
	defer tok.Release()

	newSize := m.cfg.SizeOf(key, value)

	if oldValue, exists := m.inner.Find(key); exists {
		oldSize := m.cfg.SizeOf(key, oldValue)
		m.mem.NoteAccess(key)

		if newSize > oldSize {
			if err := m.ensureRoomLocked(newSize - oldSize); err != nil {
				return err
			}
		}

		// the entry may have been evicted while making room
		if m.inner.Has(key) {
			m.inner.Insert(key, value)
			m.mem.NoteReplace(key, oldSize, newSize)
			return nil
		}
	}

	if err := m.ensureRoomLocked(newSize); err != nil {
		return err
	}

	m.inner.Insert(key, value)
	m.mem.NoteInsert(key, newSize)

	if m.mem.Fragmented() {
		m.defragmentLocked()
	}
	return nil
}

// Erase removes the entry for key, returning the removed value and whether
// the key was present.
func (m *Map[K, V]) Erase(key K) (V, bool, error) {
	var zero V
	if err := m.validate(key); err != nil {
		return zero, false, err
	}

	tok := m.policy.AcquireWrite()
	defer tok.Release()

	value, ok := m.inner.Erase(key)
	if !ok {
		return zero, false, nil
	}

	m.mem.NoteErase(key, m.cfg.SizeOf(key, value))
	if m.mem.Fragmented() {
		m.defragmentLocked()
	}
	return value, true, nil
}

// Clear removes all entries and resets the ledger and recency tracker.
func (m *Map[K, V]) Clear() error {
	if err := m.validateFuncs(); err != nil {
		return err
	}

	tok := m.policy.AcquireWrite()
	defer tok.Release()

	m.inner.Clear()
	m.mem.Reset()
	return nil
}

// Swap exchanges the contents and ledgers of two maps. Both write tokens
// are acquired in instance-identity order so concurrent swaps of the same
// pair cannot deadlock. Configurations stay with their instances.
func (m *Map[K, V]) Swap(other *Map[K, V]) error {
	if err := m.validateFuncs(); err != nil {
		return err
	}
	if m == other {
		return nil
	}

	first, second := m, other
	if first.id > second.id {
		first, second = second, first
	}

	t1 := first.policy.AcquireWrite()
	defer t1.Release()
	t2 := second.policy.AcquireWrite()
	defer t2.Release()

	m.inner.Swap(other.inner)
	m.mem, other.mem = other.mem, m.mem
	return nil
}

// ensureRoomLocked evicts least recently used entries in batches until n
// more bytes fit under the limit. Called with the write token held.
func (m *Map[K, V]) ensureRoomLocked(n uint64) error {
	for m.mem.WouldExceed(n) {
		evicted := 0
		for i := 0; i < m.mem.EvictionBatch() && m.mem.WouldExceed(n); i++ {
			key, ok := m.mem.NextEvictionCandidate()
			if !ok {
				break
			}
			value, removed := m.inner.Erase(key)
			if !removed {
				continue
			}
			m.mem.NoteEvicted(m.cfg.SizeOf(key, value))
			evictionsTotal.Inc()
			evicted++
		}

		if evicted == 0 {
			memoryLimitHitsTotal.Inc()
			return fault.Newf(fault.KindMemoryLimit,
				"admitting %d bytes would exceed the limit of %d", n, m.mem.Limit()).
				WithSnapshot(m.snapshotLocked())
		}
	}
	return nil
}

// defragmentLocked runs one compaction pass and acknowledges it to the
// ledger. Called with the write token held.
func (m *Map[K, V]) defragmentLocked() {
	log.Debugf("fragmentation ratio %.2f, compacting", m.mem.FragmentationRatio())
	m.inner.Compact()
	m.mem.Defragment()
	defragPassesTotal.Inc()
}

// --------------------------------------------------------------------------
// Read Operations
// --------------------------------------------------------------------------

// Find returns the value for key and whether it was present. A hit marks
// the key as recently used.
func (m *Map[K, V]) Find(key K) (V, bool, error) {
	var zero V
	if err := m.validate(key); err != nil {
		return zero, false, err
	}

	tok := m.policy.AcquireRead()
	defer tok.Release()

	value, ok := m.inner.Find(key)
	if ok {
		m.mem.NoteAccess(key)
	}
	return value, ok, nil
}

// At returns the value for key. A missing key is a not-found condition
// carrying a snapshot of the container at lookup time.
func (m *Map[K, V]) At(key K) (V, error) {
	var zero V
	if err := m.validate(key); err != nil {
		return zero, err
	}

	tok := m.policy.AcquireRead()
	defer tok.Release()

	value, ok := m.inner.Find(key)
	if !ok {
		return zero, fault.New(fault.KindNotFound, "key not present").
			WithSnapshot(m.snapshotLocked())
	}

	m.mem.NoteAccess(key)
	return value, nil
}

// Has reports whether key is present without touching recency.
func (m *Map[K, V]) Has(key K) (bool, error) {
	if err := m.validate(key); err != nil {
		return false, err
	}

	tok := m.policy.AcquireRead()
	defer tok.Release()

	return m.inner.Has(key), nil
}

// Size returns the number of entries.
func (m *Map[K, V]) Size() uint64 {
	tok := m.policy.AcquireRead()
	defer tok.Release()
	return m.inner.Size()
}

// Keys returns all keys in insertion order.
func (m *Map[K, V]) Keys() ([]K, error) {
	if err := m.validateFuncs(); err != nil {
		return nil, err
	}

	tok := m.policy.AcquireRead()
	defer tok.Release()

	return m.inner.Keys(), nil
}

// MemoryUsed returns the ledger's current usage in bytes.
func (m *Map[K, V]) MemoryUsed() uint64 {
	return m.mem.Used()
}

// --------------------------------------------------------------------------
// Statistics
// --------------------------------------------------------------------------

// keyspaceShards is the number of virtual shards the configured hasher
// spreads keys over for the distribution-quality score.
const keyspaceShards = 16

// Stats is a point-in-time summary of container and ledger state.
type Stats struct {
	Size               uint64  `json:"size"`
	BucketCount        uint64  `json:"bucket_count"`
	LoadFactor         float64 `json:"load_factor"`
	MemoryUsed         uint64  `json:"memory_used"`
	MemoryLimit        uint64  `json:"memory_limit"`
	FragmentationRatio float64 `json:"fragmentation_ratio"`
	AverageEntrySize   uint64  `json:"average_entry_size"`
	MedianEntrySize    uint64  `json:"median_entry_size"`
	KeyspaceQuality    float64 `json:"keyspace_quality"`
}

// Stats scans the container once and returns a summary. The keyspace
// quality score reflects how evenly the configured hasher spreads the
// current keys over virtual shards.
func (m *Map[K, V]) Stats() (Stats, error) {
	if err := m.validateFuncs(); err != nil {
		return Stats{}, err
	}

	tok := m.policy.AcquireRead()
	defer tok.Release()

	shards := make([]float64, keyspaceShards)
	m.inner.Range(func(key K, _ V) bool {
		shards[m.cfg.Hasher(key)%keyspaceShards]++
		return true
	})

	var quality float64
	if m.inner.Size() > 0 {
		quality = memory.NewDistributionStats(shards).DistributionQuality
	}

	hist := m.mem.Histogram()
	return Stats{
		Size:               m.inner.Size(),
		BucketCount:        m.inner.BucketCount(),
		LoadFactor:         m.inner.LoadFactor(),
		MemoryUsed:         m.mem.Used(),
		MemoryLimit:        m.mem.Limit(),
		FragmentationRatio: m.mem.FragmentationRatio(),
		AverageEntrySize:   hist.Average(),
		MedianEntrySize:    hist.MedianEstimate(),
		KeyspaceQuality:    quality,
	}, nil
}
