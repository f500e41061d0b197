package guard

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/gkv-io/gkv/lib/fault"
	"github.com/gkv-io/gkv/lib/lockpol"
)

func asCondition(err error, target **fault.Condition) bool {
	return errors.As(err, target)
}

// fixedSizeConfig gives every entry a footprint of exactly size bytes so
// eviction tests are deterministic.
func fixedSizeConfig(limit uint64, size uint64) Config[string, string] {
	cfg := DefaultConfig[string, string]()
	cfg.MemoryLimit = limit
	cfg.SizeOf = func(string, string) uint64 { return size }
	return cfg
}

func TestInsertFindErase(t *testing.T) {
	m := NewMap(DefaultConfig[string, string]())

	if err := m.Insert("alpha", "1"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	v, ok, err := m.Find("alpha")
	if err != nil || !ok || v != "1" {
		t.Errorf("Expected to find alpha=1, got %q (ok=%v, err=%v)", v, ok, err)
	}

	v, removed, err := m.Erase("alpha")
	if err != nil || !removed || v != "1" {
		t.Errorf("Expected to erase alpha=1, got %q (removed=%v, err=%v)", v, removed, err)
	}
	if m.Size() != 0 {
		t.Errorf("Expected empty map, got size %d", m.Size())
	}
}

func TestReplaceKeepsInsertionOrder(t *testing.T) {
	m := NewMap(DefaultConfig[string, string]())
	m.Insert("a", "1")
	m.Insert("b", "2")
	m.Insert("c", "3")
	m.Insert("b", "replaced")

	keys, err := m.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	want := []string{"a", "b", "c"}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("Expected key %q at position %d, got %q", k, i, keys[i])
		}
	}
}

func TestMemoryLimitEnforcedViaEviction(t *testing.T) {
	// 10 entries of 100 bytes fit under the 1000 byte limit
	m := NewMap(fixedSizeConfig(1000, 100))

	for i := 0; i < 20; i++ {
		if err := m.Insert(fmt.Sprintf("k%02d", i), "v"); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
		if m.MemoryUsed() > 1000 {
			t.Fatalf("Usage %d exceeded limit after insert %d", m.MemoryUsed(), i)
		}
	}

	if got := m.Size(); got != 10 {
		t.Fatalf("Expected 10 surviving entries, got %d", got)
	}

	// the oldest ten were evicted, the newest ten survive
	for i := 0; i < 10; i++ {
		if ok, _ := m.Has(fmt.Sprintf("k%02d", i)); ok {
			t.Errorf("Expected k%02d to be evicted", i)
		}
	}
	for i := 10; i < 20; i++ {
		if ok, _ := m.Has(fmt.Sprintf("k%02d", i)); !ok {
			t.Errorf("Expected k%02d to survive", i)
		}
	}
}

func TestKilobyteValuesUnderTenKilobyteLimit(t *testing.T) {
	cfg := DefaultConfig[string, []byte]()
	cfg.MemoryLimit = 10 * 1024
	m := NewMap(cfg)

	payload := make([]byte, 1024)
	for i := 0; i < 20; i++ {
		if err := m.Insert(fmt.Sprintf("entry-%02d", i), payload); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
	}

	if got := m.Size(); got >= 20 || got == 0 {
		t.Errorf("Expected evictions to keep size below 20, got %d", got)
	}
	if used := m.MemoryUsed(); used > 10*1024 {
		t.Errorf("Expected usage within the 10 KiB limit, got %d", used)
	}
	// the newest entry always survives
	if ok, _ := m.Has("entry-19"); !ok {
		t.Errorf("Expected the most recent entry to survive")
	}
}

func TestFindRefreshesRecency(t *testing.T) {
	m := NewMap(fixedSizeConfig(300, 100))
	m.Insert("a", "1")
	m.Insert("b", "2")
	m.Insert("c", "3")

	// touching a makes b the eviction candidate
	if _, ok, _ := m.Find("a"); !ok {
		t.Fatalf("Expected to find a")
	}

	m.Insert("d", "4")

	if ok, _ := m.Has("b"); ok {
		t.Errorf("Expected b to be evicted as least recently used")
	}
	if ok, _ := m.Has("a"); !ok {
		t.Errorf("Expected a to survive after being touched")
	}
}

func TestOversizedInsertFailsWithSnapshot(t *testing.T) {
	big := NewMap(fixedSizeConfig(100, 500))
	err := big.Insert("huge", "x")
	if !fault.Is(err, fault.KindMemoryLimit) {
		t.Fatalf("Expected memory-limit condition, got %v", err)
	}

	var cond *fault.Condition
	if !asCondition(err, &cond) || cond.Snapshot == nil {
		t.Errorf("Expected condition to carry a container snapshot")
	}
	if big.Size() != 0 {
		t.Errorf("Expected container unchanged after rejected insert, got size %d", big.Size())
	}
}

func TestNilPointerKeyRejected(t *testing.T) {
	cfg := DefaultConfig[*int, string]()
	m := NewMap(cfg)

	err := m.Insert(nil, "x")
	if !fault.Is(err, fault.KindNullKey) {
		t.Fatalf("Expected null-key condition, got %v", err)
	}
	if m.Size() != 0 {
		t.Errorf("Expected size unchanged after rejected insert, got %d", m.Size())
	}

	k := 42
	if err := m.Insert(&k, "x"); err != nil {
		t.Errorf("Expected non-nil pointer key to be accepted, got %v", err)
	}
}

func TestAtMissingKeyCarriesTrueSnapshot(t *testing.T) {
	m := NewMap(DefaultConfig[string, string]())
	for i := 0; i < 7; i++ {
		m.Insert(fmt.Sprintf("k%d", i), "v")
	}

	_, err := m.At("missing")
	if !fault.Is(err, fault.KindNotFound) {
		t.Fatalf("Expected not-found condition, got %v", err)
	}

	var cond *fault.Condition
	if !asCondition(err, &cond) || cond.Snapshot == nil {
		t.Fatalf("Expected condition to carry a snapshot")
	}
	if cond.Snapshot.Size != 7 {
		t.Errorf("Expected snapshot size 7, got %d", cond.Snapshot.Size)
	}
}

func TestUninitializedFunctionsRejected(t *testing.T) {
	cfg := DefaultConfig[string, string]()
	cfg.Hasher = nil
	m := NewMap(cfg)

	if err := m.Insert("a", "1"); !fault.Is(err, fault.KindUninitializedFunc) {
		t.Errorf("Expected uninitialized-function condition for nil hasher, got %v", err)
	}

	cfg = DefaultConfig[string, string]()
	cfg.Equal = nil
	m = NewMap(cfg)

	if _, _, err := m.Find("a"); !fault.Is(err, fault.KindUninitializedFunc) {
		t.Errorf("Expected uninitialized-function condition for nil equality, got %v", err)
	}
}

func TestConcurrentDisjointInserts(t *testing.T) {
	const writers = 8
	const perWriter = 200

	cfg := DefaultConfig[string, string]()
	cfg.LockMode = lockpol.ModeShared
	m := NewMap(cfg)

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				key := fmt.Sprintf("w%d-k%d", w, i)
				if err := m.Insert(key, "v"); err != nil {
					t.Errorf("Insert %s failed: %v", key, err)
				}
			}
		}(w)
	}
	wg.Wait()

	if got := m.Size(); got != writers*perWriter {
		t.Errorf("Expected %d entries after concurrent inserts, got %d", writers*perWriter, got)
	}
}

func TestSwapExchangesContents(t *testing.T) {
	a := NewMap(DefaultConfig[string, string]())
	b := NewMap(DefaultConfig[string, string]())
	a.Insert("a1", "1")
	a.Insert("a2", "2")
	b.Insert("b1", "1")

	if err := a.Swap(b); err != nil {
		t.Fatalf("Swap failed: %v", err)
	}

	if a.Size() != 1 || b.Size() != 2 {
		t.Errorf("Expected sizes 1/2 after swap, got %d/%d", a.Size(), b.Size())
	}
	if ok, _ := a.Has("b1"); !ok {
		t.Errorf("Expected a to hold b's entries after swap")
	}
	if ok, _ := b.Has("a1"); !ok {
		t.Errorf("Expected b to hold a's entries after swap")
	}
}

func TestClearResetsLedger(t *testing.T) {
	m := NewMap(fixedSizeConfig(1000, 100))
	for i := 0; i < 5; i++ {
		m.Insert(fmt.Sprintf("k%d", i), "v")
	}

	if err := m.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if m.Size() != 0 || m.MemoryUsed() != 0 {
		t.Errorf("Expected empty map and ledger, got size %d used %d", m.Size(), m.MemoryUsed())
	}

	// a full refill must fit again without evictions of fresh entries
	for i := 0; i < 10; i++ {
		if err := m.Insert(fmt.Sprintf("n%d", i), "v"); err != nil {
			t.Fatalf("Insert after Clear failed: %v", err)
		}
	}
	if m.Size() != 10 {
		t.Errorf("Expected 10 entries after refill, got %d", m.Size())
	}
}

func TestStats(t *testing.T) {
	m := NewMap(DefaultConfig[string, string]())
	for i := 0; i < 32; i++ {
		m.Insert(fmt.Sprintf("key-%d", i), "value")
	}

	stats, err := m.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Size != 32 {
		t.Errorf("Expected size 32, got %d", stats.Size)
	}
	if stats.MemoryUsed == 0 {
		t.Errorf("Expected nonzero memory usage")
	}
	if stats.AverageEntrySize == 0 {
		t.Errorf("Expected nonzero average entry size")
	}
	if stats.KeyspaceQuality <= 0 || stats.KeyspaceQuality > 1 {
		t.Errorf("Expected keyspace quality in (0,1], got %f", stats.KeyspaceQuality)
	}
}
