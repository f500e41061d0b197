package guard

import (
	"github.com/gkv-io/gkv/lib/fault"
	"github.com/gkv-io/gkv/lib/lockpol"
	"github.com/gkv-io/gkv/lib/omap"
)

// --------------------------------------------------------------------------
// Lock-carrying Iterator
// --------------------------------------------------------------------------

// Iterator walks the container in insertion order while holding a lock
// token. The token is released by Close, by Erase and by any internal
// invalidation; invalidation is terminal.
//
// Thread-safety: an iterator is a single-goroutine handle. Concurrency
// between iterators and other operations is governed by the lock policy.
type Iterator[K comparable, V any] struct {
	m       *Map[K, V]
	tok     lockpol.Token
	mutable bool

	pos         int
	cur         omap.Entry[K, V]
	hasCurrent  bool
	invalidated bool
}

// Iter returns a read-token iterator positioned before the first entry.
func (m *Map[K, V]) Iter() (*Iterator[K, V], error) {
	if err := m.validateFuncs(); err != nil {
		return nil, err
	}
	return &Iterator[K, V]{
		m:   m,
		tok: m.policy.AcquireRead(),
		pos: -1,
	}, nil
}

// IterMut returns a write-token iterator that additionally supports
// erasing the current entry.
func (m *Map[K, V]) IterMut() (*Iterator[K, V], error) {
	if err := m.validateFuncs(); err != nil {
		return nil, err
	}
	return &Iterator[K, V]{
		m:       m,
		tok:     m.policy.AcquireWrite(),
		mutable: true,
		pos:     -1,
	}, nil
}

// Next advances to the next entry. It returns false when the iterator is
// exhausted or invalidated.
func (i *Iterator[K, V]) Next() bool {
	if i.invalidated {
		return false
	}

	i.pos++
	entry, ok := i.m.inner.EntryAt(i.pos)
	if !ok {
		i.hasCurrent = false
		return false
	}

	i.cur = entry
	i.hasCurrent = true
	return true
}

// Key returns the current entry's key.
func (i *Iterator[K, V]) Key() (K, error) {
	if err := i.usable(); err != nil {
		var zero K
		return zero, err
	}
	return i.cur.Key, nil
}

// Value returns the current entry's value.
func (i *Iterator[K, V]) Value() (V, error) {
	if err := i.usable(); err != nil {
		var zero V
		return zero, err
	}
	return i.cur.Value, nil
}

// Erase removes the current entry and invalidates the iterator, releasing
// its token. Only write-token iterators may erase.
func (i *Iterator[K, V]) Erase() error {
	if err := i.usable(); err != nil {
		return err
	}
	if !i.mutable {
		return fault.New(fault.KindInvalidIterator, "erase requires a write iterator")
	}

	// position can drift only under the none policy; treat drift as
	// invalidation rather than erasing the wrong entry
	entry, ok := i.m.inner.EntryAt(i.pos)
	if !ok || !i.m.cfg.Equal(entry.Key, i.cur.Key) {
		i.invalidate()
		return fault.New(fault.KindInvalidIterator, "iterator position no longer matches its entry")
	}

	value, removed := i.m.inner.Erase(i.cur.Key)
	if removed {
		i.m.mem.NoteErase(i.cur.Key, i.m.cfg.SizeOf(i.cur.Key, value))
	}

	i.invalidate()
	return nil
}

// Close releases the iterator's token and invalidates it. Safe to call
// more than once.
func (i *Iterator[K, V]) Close() {
	i.invalidate()
}

func (i *Iterator[K, V]) usable() error {
	if i.invalidated {
		return fault.New(fault.KindInvalidIterator, "iterator has been invalidated")
	}
	if !i.hasCurrent {
		return fault.New(fault.KindInvalidIterator, "iterator has no current entry")
	}
	return nil
}

func (i *Iterator[K, V]) invalidate() {
	i.invalidated = true
	i.hasCurrent = false
	i.tok.Release()
}
