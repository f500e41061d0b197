package guard

import (
	"context"
	"io"
	"math"

	"github.com/gkv-io/gkv/lib/codec"
	"github.com/gkv-io/gkv/lib/fault"
	"github.com/gkv-io/gkv/lib/omap"
)

// --------------------------------------------------------------------------
// Resilient Persistence
// --------------------------------------------------------------------------

// Save streams the full container to w under a read token: size, memory
// limit and bucket count as checksummed scalar frames, then one frame per
// entry in insertion order. Transient write failures are retried per the
// configured resilience parameters.
func (m *Map[K, V]) Save(ctx context.Context, w io.Writer) error {
	if err := m.persistable(); err != nil {
		return err
	}

	tok := m.policy.AcquireRead()
	defer tok.Release()

	src := &persistSource[K, V]{inner: m.inner, limit: m.mem.Limit()}
	if err := codec.Serialize(ctx, w, m.exec, m.cfg.Codec, src); err != nil {
		return m.notePersistErr(err)
	}

	savesTotal.Inc()
	return nil
}

// Load replaces the container contents from a stream produced by Save,
// under a write token. Entries are inserted in stream order, which restores
// the original insertion order; the memory limit is enforced during the
// load, evicting earlier stream entries if the stream does not fit.
func (m *Map[K, V]) Load(ctx context.Context, r io.Reader) error {
	if err := m.persistable(); err != nil {
		return err
	}

	tok := m.policy.AcquireWrite()
	defer tok.Release()

	if err := codec.Deserialize(ctx, r, m.exec, m.cfg.Codec, &persistSink[K, V]{m: m}); err != nil {
		return m.notePersistErr(err)
	}

	loadsTotal.Inc()
	return nil
}

func (m *Map[K, V]) persistable() error {
	if err := m.validateFuncs(); err != nil {
		return err
	}
	if m.cfg.Codec == nil {
		return fault.New(fault.KindUninitializedFunc, "no entry codec configured")
	}
	return nil
}

func (m *Map[K, V]) notePersistErr(err error) error {
	if fault.Is(err, fault.KindIntegrity) {
		integrityFailuresTotal.Inc()
	}
	return err
}

// --------------------------------------------------------------------------
// Codec Adapters
// --------------------------------------------------------------------------

// persistSource exposes the inner container to the serializer. The
// max_size scalar carries the configured memory limit, or the full uint64
// range when unbounded.
type persistSource[K comparable, V any] struct {
	inner *omap.Map[K, V]
	limit uint64
}

func (s *persistSource[K, V]) Size() uint64 {
	return s.inner.Size()
}

func (s *persistSource[K, V]) MaxSize() uint64 {
	if s.limit == 0 {
		return math.MaxUint64
	}
	return s.limit
}

func (s *persistSource[K, V]) BucketCount() uint64 {
	return s.inner.BucketCount()
}

func (s *persistSource[K, V]) Range(fn func(key K, value V) bool) {
	s.inner.Range(fn)
}

// persistSink fills the container from the deserializer, keeping the
// ledger and recency tracker in step with every insert. The façade's write
// token is already held.
type persistSink[K comparable, V any] struct {
	m *Map[K, V]
}

func (s *persistSink[K, V]) Clear() {
	s.m.inner.Clear()
	s.m.mem.Reset()
}

func (s *persistSink[K, V]) Reserve(n uint64) {
	s.m.inner.Reserve(n)
}

func (s *persistSink[K, V]) Insert(key K, value V) error {
	size := s.m.cfg.SizeOf(key, value)
	if err := s.m.ensureRoomLocked(size); err != nil {
		return err
	}
	s.m.inner.Insert(key, value)
	s.m.mem.NoteInsert(key, size)
	return nil
}
