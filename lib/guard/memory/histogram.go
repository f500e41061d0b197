package memory

import (
	"math"
	"sync"
)

// --------------------------------------------------------------------------
// SizeHistogram
// --------------------------------------------------------------------------

// SizeHistogram tracks the distribution of entry footprints in exponential
// buckets, covering a few bytes up to multiple gigabytes with constant
// memory. It trades exactness for never having to rescan the container.
//
// Thread-safety: all methods are safe for concurrent use.
type SizeHistogram struct {
	mu         sync.RWMutex
	boundaries []uint64
	buckets    []uint64
	count      uint64
	sum        uint64
}

// NewSizeHistogram creates a histogram with the default bucket boundaries.
func NewSizeHistogram() *SizeHistogram {
	boundaries := []uint64{
		16, 64, 256, 1024, 4096,
		16384, 65536, 262144, 1048576,
		4194304, 16777216, 67108864,
		268435456, 1073741824, 4294967296,
	}
	return &SizeHistogram{
		boundaries: boundaries,
		// one extra bucket catches everything past the last boundary
		buckets: make([]uint64, len(boundaries)+1),
	}
}

// AddSample records one entry footprint.
func (h *SizeHistogram) AddSample(size uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	idx := len(h.boundaries)
	for i, boundary := range h.boundaries {
		if size <= boundary {
			idx = i
			break
		}
	}

	h.buckets[idx]++
	h.count++
	h.sum += size
}

// Count returns the number of recorded samples.
func (h *SizeHistogram) Count() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Average returns the mean footprint, zero when empty.
func (h *SizeHistogram) Average() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.count == 0 {
		return 0
	}
	return h.sum / h.count
}

// MedianEstimate estimates the median footprint from the bucket counts.
func (h *SizeHistogram) MedianEstimate() uint64 {
	return h.PercentileEstimate(50)
}

// PercentileEstimate estimates the given percentile (0-100) from the bucket
// counts. The estimate is the midpoint of the bucket the percentile falls
// into, or twice the last boundary for the overflow bucket.
func (h *SizeHistogram) PercentileEstimate(percentile int) uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.count == 0 || percentile < 0 || percentile > 100 {
		return 0
	}

	target := uint64(math.Ceil(float64(h.count) * float64(percentile) / 100.0))
	var cumulative uint64

	for i, n := range h.buckets {
		cumulative += n
		if cumulative >= target {
			switch {
			case i == 0:
				return h.boundaries[0] / 2
			case i < len(h.boundaries):
				return (h.boundaries[i-1] + h.boundaries[i]) / 2
			default:
				return h.boundaries[len(h.boundaries)-1] * 2
			}
		}
	}

	return h.sum / h.count
}

// Distribution returns the bucket boundaries and the share of samples in
// each bucket, in percent.
func (h *SizeHistogram) Distribution() ([]uint64, []float64) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	shares := make([]float64, len(h.buckets))
	if h.count == 0 {
		return h.boundaries, shares
	}
	for i, n := range h.buckets {
		shares[i] = float64(n) * 100.0 / float64(h.count)
	}
	return h.boundaries, shares
}

// Reset clears all samples.
func (h *SizeHistogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.count = 0
	h.sum = 0
	for i := range h.buckets {
		h.buckets[i] = 0
	}
}
