package codec

import (
	"context"
	"io"
	"math"

	"github.com/gkv-io/gkv/lib/fault"
	"github.com/gkv-io/gkv/lib/resilient"
)

// --------------------------------------------------------------------------
// Container Views
// --------------------------------------------------------------------------

// Source is the read-only view of a container the serializer needs.
type Source[K comparable, V any] interface {
	Size() uint64
	MaxSize() uint64
	BucketCount() uint64
	// Range visits entries in iteration (insertion) order.
	Range(fn func(key K, value V) bool)
}

// Sink is the view of a container the deserializer fills. Insert is called
// once per decoded entry, in the order read from the stream.
type Sink[K comparable, V any] interface {
	Clear()
	Reserve(n uint64)
	Insert(key K, value V) error
}

// --------------------------------------------------------------------------
// Container Protocol
// --------------------------------------------------------------------------

// maxEntryCount bounds the entry count a stream may declare, matching the
// container's count domain. A corrupted size scalar past this bound would
// otherwise drive an absurdly long read loop.
const maxEntryCount = math.MaxUint32

// Serialize writes the full container stream: size, max_size and
// bucket_count as checksummed scalar frames, then one frame per entry in
// iteration order.
func Serialize[K comparable, V any](ctx context.Context, w io.Writer,
	exec *resilient.Executor, ec EntryCodec[K, V], src Source[K, V]) error {

	fw := NewFrameWriter(w, exec)

	if err := fw.WriteScalar(ctx, src.Size()); err != nil {
		return err
	}
	if err := fw.WriteScalar(ctx, src.MaxSize()); err != nil {
		return err
	}
	if err := fw.WriteScalar(ctx, src.BucketCount()); err != nil {
		return err
	}

	var rangeErr error
	src.Range(func(key K, value V) bool {
		payload, err := ec.EncodeEntry(key, value)
		if err != nil {
			rangeErr = err
			return false
		}
		rangeErr = fw.WriteFrame(ctx, payload)
		return rangeErr == nil
	})

	return rangeErr
}

// Deserialize reads a container stream produced by Serialize into sink.
// The sink is cleared first, capacity for bucket_count is reserved, and
// entries are inserted in the order read, which reconstructs the original
// insertion order.
func Deserialize[K comparable, V any](ctx context.Context, r io.Reader,
	exec *resilient.Executor, ec EntryCodec[K, V], sink Sink[K, V]) error {

	fr := NewFrameReader(r, exec)

	size, err := fr.ReadScalar(ctx)
	if err != nil {
		return err
	}
	if size > maxEntryCount {
		return fault.Newf(fault.KindIntegrity,
			"malformed stream: entry count %d exceeds maximum", size)
	}

	// max_size describes the producer's bound, in the producer's own
	// units; it is carried for diagnostics, not validated against size
	if _, err := fr.ReadScalar(ctx); err != nil {
		return err
	}

	bucketCount, err := fr.ReadScalar(ctx)
	if err != nil {
		return err
	}

	sink.Clear()
	sink.Reserve(bucketCount)

	for i := uint64(0); i < size; i++ {
		payload, err := fr.ReadFrame(ctx)
		if err != nil {
			return err
		}
		key, value, err := ec.DecodeEntry(payload)
		if err != nil {
			return err
		}
		if err := sink.Insert(key, value); err != nil {
			return err
		}
	}

	return nil
}
