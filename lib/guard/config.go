package guard

import (
	"fmt"
	"hash/maphash"
	"reflect"

	"github.com/gkv-io/gkv/lib/codec"
	"github.com/gkv-io/gkv/lib/guard/memory"
	"github.com/gkv-io/gkv/lib/lockpol"
	"github.com/gkv-io/gkv/lib/resilient"
)

// Hasher maps a key to a 64-bit hash, used for keyspace statistics.
type Hasher[K comparable] func(K) uint64

// EqualFunc reports whether two keys are the same key.
type EqualFunc[K comparable] func(a, b K) bool

// SizeFunc estimates the memory footprint of one entry in bytes.
type SizeFunc[K comparable, V any] func(key K, value V) uint64

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

// Config carries all tunables of a guarded map. The zero value is not
// usable; start from DefaultConfig and override.
type Config[K comparable, V any] struct {
	// LockMode selects the lock policy strategy.
	LockMode lockpol.Mode

	// MemoryLimit is the usage ceiling in bytes, zero for unbounded.
	MemoryLimit uint64

	// FragmentationThreshold is the freed/(allocated+freed) ratio above
	// which a compaction pass is scheduled. Zero selects the default.
	FragmentationThreshold float64

	// EvictionBatch is the number of eviction candidates tried per round.
	// Zero selects the default.
	EvictionBatch int

	// Hasher and Equal are the key functions. Leaving either nil makes
	// every operation fail with an uninitialized-function condition.
	Hasher Hasher[K]
	Equal  EqualFunc[K]

	// SizeOf estimates entry footprints for the ledger. Nil selects the
	// reflection-based default estimator.
	SizeOf SizeFunc[K, V]

	// Codec converts entries to frame payloads for Save and Load. Nil is
	// allowed as long as neither is called.
	Codec codec.EntryCodec[K, V]

	// Resilience parametrizes the retry/timeout executor used by Save and
	// Load.
	Resilience resilient.Config
}

// DefaultConfig returns a config with shared locking, unbounded memory and
// the default key and size functions.
func DefaultConfig[K comparable, V any]() Config[K, V] {
	return Config[K, V]{
		LockMode:               lockpol.ModeShared,
		FragmentationThreshold: memory.DefaultFragmentationThreshold,
		EvictionBatch:          memory.DefaultEvictionBatch,
		Hasher:                 defaultHasher[K](),
		Equal:                  func(a, b K) bool { return a == b },
		SizeOf:                 defaultSizeOf[K, V](),
		Resilience:             resilient.DefaultConfig(),
	}
}

// DefaultStringConfig is DefaultConfig specialized for string keys and byte
// values, with the frame codec preset. This is the configuration the CLI
// uses.
func DefaultStringConfig() Config[string, []byte] {
	cfg := DefaultConfig[string, []byte]()
	cfg.Codec = codec.NewStringBytesCodec()
	return cfg
}

// --------------------------------------------------------------------------
// Default Key and Size Functions
// --------------------------------------------------------------------------

var hashSeed = maphash.MakeSeed()

// defaultHasher hashes the key's string rendering. Good enough for
// distribution statistics, not meant for cryptographic use.
func defaultHasher[K comparable]() Hasher[K] {
	return func(key K) uint64 {
		var h maphash.Hash
		h.SetSeed(hashSeed)
		fmt.Fprintf(&h, "%v", key)
		return h.Sum64()
	}
}

// entryOverhead approximates the per-entry bookkeeping cost of the index
// map and the entry slice.
const entryOverhead = 48

func defaultSizeOf[K comparable, V any]() SizeFunc[K, V] {
	return func(key K, value V) uint64 {
		return estimateSize(reflect.ValueOf(key)) +
			estimateSize(reflect.ValueOf(value)) +
			entryOverhead
	}
}

// estimateSize walks one level of indirection and sizes the value. It keeps
// to a cheap approximation, footprints feed eviction decisions and do not
// have to be exact.
func estimateSize(v reflect.Value) uint64 {
	if !v.IsValid() {
		return 0
	}
	switch v.Kind() {
	case reflect.String:
		return uint64(v.Len()) + 16
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return uint64(v.Len()) + 24
		}
		return uint64(v.Len())*uint64(v.Type().Elem().Size()) + 24
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return 8
		}
		return 8 + estimateSize(v.Elem())
	case reflect.Map:
		return uint64(v.Len()) * 64
	default:
		return uint64(v.Type().Size())
	}
}

// nullableKeyKind reports whether keys of this kind have a nil state that
// must be rejected before use.
func nullableKeyKind(k reflect.Kind) bool {
	switch k {
	case reflect.Ptr, reflect.Interface, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}
