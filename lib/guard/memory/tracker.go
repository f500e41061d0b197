package memory

import (
	"container/list"
	"sync"
)

// --------------------------------------------------------------------------
// LRU Tracker
// --------------------------------------------------------------------------

// Tracker maintains key recency for eviction. The front of the list holds
// the most recently used key, the back the least recently used one.
//
// Thread-safety: all methods are safe for concurrent use.
type Tracker[K comparable] struct {
	mu    sync.Mutex
	order *list.List
	index map[K]*list.Element
}

// NewTracker creates an empty recency tracker.
func NewTracker[K comparable]() *Tracker[K] {
	return &Tracker[K]{
		order: list.New(),
		index: make(map[K]*list.Element),
	}
}

// Touch marks key as most recently used, inserting it if unknown.
func (t *Tracker[K]) Touch(key K) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if el, ok := t.index[key]; ok {
		t.order.MoveToFront(el)
		return
	}
	t.index[key] = t.order.PushFront(key)
}

// NextEvictionCandidate removes and returns the least recently used key.
// The second result is false when the tracker is empty.
func (t *Tracker[K]) NextEvictionCandidate() (K, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	el := t.order.Back()
	if el == nil {
		var zero K
		return zero, false
	}

	t.order.Remove(el)
	key := el.Value.(K)
	delete(t.index, key)
	return key, true
}

// Remove drops key from the tracker. Unknown keys are ignored.
func (t *Tracker[K]) Remove(key K) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if el, ok := t.index[key]; ok {
		t.order.Remove(el)
		delete(t.index, key)
	}
}

// Len returns the number of tracked keys.
func (t *Tracker[K]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.order.Len()
}

// Clear drops all tracked keys.
func (t *Tracker[K]) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.order.Init()
	t.index = make(map[K]*list.Element)
}
