package guard

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/gkv-io/gkv/lib/fault"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := NewMap(DefaultStringConfig())
	for i := 0; i < 50; i++ {
		src.Insert(fmt.Sprintf("key-%02d", i), []byte(fmt.Sprintf("value-%02d", i)))
	}

	var buf bytes.Buffer
	if err := src.Save(ctx, &buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	dst := NewMap(DefaultStringConfig())
	dst.Insert("stale", []byte("gone after load"))
	if err := dst.Load(ctx, &buf); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if dst.Size() != 50 {
		t.Fatalf("Expected 50 entries after load, got %d", dst.Size())
	}
	if ok, _ := dst.Has("stale"); ok {
		t.Errorf("Expected pre-existing entries to be cleared by Load")
	}
	if dst.MemoryUsed() == 0 {
		t.Errorf("Expected the ledger to account loaded entries")
	}

	srcKeys, _ := src.Keys()
	dstKeys, _ := dst.Keys()
	for i := range srcKeys {
		if srcKeys[i] != dstKeys[i] {
			t.Fatalf("Insertion order diverged at %d: %s vs %s", i, srcKeys[i], dstKeys[i])
		}
	}
}

func TestSaveLoadBoundedMapWithManyEntries(t *testing.T) {
	ctx := context.Background()

	// with a free size estimator the container legitimately holds far
	// more entries than the byte limit has bytes
	cfg := DefaultStringConfig()
	cfg.MemoryLimit = 100
	cfg.SizeOf = func(string, []byte) uint64 { return 0 }

	src := NewMap(cfg)
	for i := 0; i < 200; i++ {
		if err := src.Insert(fmt.Sprintf("k%03d", i), []byte("v")); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
	}

	var buf bytes.Buffer
	if err := src.Save(ctx, &buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	dstCfg := DefaultStringConfig()
	dstCfg.MemoryLimit = 100
	dstCfg.SizeOf = func(string, []byte) uint64 { return 0 }
	dst := NewMap(dstCfg)

	if err := dst.Load(ctx, &buf); err != nil {
		t.Fatalf("Expected own Save output to load back, got %v", err)
	}
	if dst.Size() != 200 {
		t.Errorf("Expected 200 entries after load, got %d", dst.Size())
	}
}

func TestLoadCorruptedStream(t *testing.T) {
	ctx := context.Background()
	src := NewMap(DefaultStringConfig())
	src.Insert("a", []byte("payload"))

	var buf bytes.Buffer
	if err := src.Save(ctx, &buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	corrupted := buf.Bytes()
	corrupted[len(corrupted)-1] ^= 0xFF

	dst := NewMap(DefaultStringConfig())
	err := dst.Load(ctx, bytes.NewReader(corrupted))
	if !fault.Is(err, fault.KindIntegrity) {
		t.Errorf("Expected data-integrity condition, got %v", err)
	}
}

func TestLoadEnforcesMemoryLimit(t *testing.T) {
	ctx := context.Background()
	src := NewMap(DefaultStringConfig())
	for i := 0; i < 20; i++ {
		src.Insert(fmt.Sprintf("k%02d", i), bytes.Repeat([]byte("x"), 100))
	}

	var buf bytes.Buffer
	if err := src.Save(ctx, &buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	cfg := DefaultStringConfig()
	cfg.MemoryLimit = 1000
	cfg.SizeOf = func(string, []byte) uint64 { return 200 }
	dst := NewMap(cfg)

	if err := dst.Load(ctx, &buf); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if dst.MemoryUsed() > 1000 {
		t.Errorf("Expected usage within limit after load, got %d", dst.MemoryUsed())
	}
	if dst.Size() != 5 {
		t.Errorf("Expected 5 surviving entries under the limit, got %d", dst.Size())
	}

	// the newest stream entries win, earlier ones were evicted
	if ok, _ := dst.Has("k19"); !ok {
		t.Errorf("Expected the last stream entry to survive")
	}
	if ok, _ := dst.Has("k00"); ok {
		t.Errorf("Expected the first stream entry to be evicted")
	}
}

func TestPersistWithoutCodec(t *testing.T) {
	m := NewMap(DefaultConfig[string, []byte]())

	var buf bytes.Buffer
	if err := m.Save(context.Background(), &buf); !fault.Is(err, fault.KindUninitializedFunc) {
		t.Errorf("Expected uninitialized-function condition without codec, got %v", err)
	}
	if err := m.Load(context.Background(), &buf); !fault.Is(err, fault.KindUninitializedFunc) {
		t.Errorf("Expected uninitialized-function condition without codec, got %v", err)
	}
}
