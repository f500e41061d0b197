package memory

import (
	"sync/atomic"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var log = logger.GetLogger("memory")

const (
	// fragmentationCheckInterval is the number of allocations between two
	// recomputations of the fragmentation ratio.
	fragmentationCheckInterval = 1000

	// DefaultFragmentationThreshold is the freed/(allocated+freed) ratio
	// above which the ledger reports fragmentation.
	DefaultFragmentationThreshold = 0.20
)

// --------------------------------------------------------------------------
// Accountant
// --------------------------------------------------------------------------

// Accountant is the memory ledger: it tracks current usage against an
// optional limit and watches the allocation/free churn for fragmentation.
//
// Thread-safety: all methods are safe for concurrent use.
type Accountant struct {
	limit     uint64
	threshold float64

	used      *xsync.Counter
	allocated *xsync.Counter
	freed     *xsync.Counter

	allocations atomic.Uint64
	fragmented  atomic.Bool
}

// NewAccountant creates a ledger. A limit of zero means unbounded. A
// threshold of zero or below selects DefaultFragmentationThreshold.
func NewAccountant(limit uint64, threshold float64) *Accountant {
	if threshold <= 0 {
		threshold = DefaultFragmentationThreshold
	}
	return &Accountant{
		limit:     limit,
		threshold: threshold,
		used:      xsync.NewCounter(),
		allocated: xsync.NewCounter(),
		freed:     xsync.NewCounter(),
	}
}

// Limit returns the configured byte limit, zero when unbounded.
func (a *Accountant) Limit() uint64 {
	return a.limit
}

// Used returns the current usage. A negative internal value (a bookkeeping
// bug) is clamped to zero.
func (a *Accountant) Used() uint64 {
	v := a.used.Value()
	if v < 0 {
		return 0
	}
	return uint64(v)
}

// WouldExceed reports whether adding n bytes would push usage past the
// limit. Always false when unbounded.
func (a *Accountant) WouldExceed(n uint64) bool {
	if a.limit == 0 {
		return false
	}
	return a.Used()+n > a.limit
}

// RecordAllocation adds n bytes to the ledger. Every
// fragmentationCheckInterval calls the fragmentation ratio is recomputed
// and the needs-defragmentation flag latched accordingly.
func (a *Accountant) RecordAllocation(n uint64) {
	a.used.Add(int64(n))
	a.allocated.Add(int64(n))

	if a.allocations.Add(1)%fragmentationCheckInterval == 0 {
		a.fragmented.Store(a.FragmentationRatio() > a.threshold)
	}
}

// RecordDeallocation subtracts n bytes from the ledger. Underflow is
// clamped back to zero and logged, it indicates unbalanced accounting in
// the caller.
func (a *Accountant) RecordDeallocation(n uint64) {
	a.used.Add(-int64(n))
	a.freed.Add(int64(n))

	if a.used.Value() < 0 {
		log.Warningf("ledger underflow after freeing %d bytes, clamping to zero", n)
		a.used.Reset()
	}
}

// FragmentationRatio returns freed / (allocated + freed) over the lifetime
// totals, zero when nothing happened yet.
func (a *Accountant) FragmentationRatio() float64 {
	alloc := a.allocated.Value()
	freed := a.freed.Value()
	total := alloc + freed
	if total <= 0 {
		return 0
	}
	return float64(freed) / float64(total)
}

// Fragmented reports the latched needs-defragmentation flag. The flag only
// changes at check intervals and on Defragment.
func (a *Accountant) Fragmented() bool {
	return a.fragmented.Load()
}

// Defragment acknowledges a completed compaction pass: the flag is cleared
// and the freed total reset so the ratio starts fresh.
func (a *Accountant) Defragment() {
	a.fragmented.Store(false)
	a.freed.Reset()
}

// Reset returns the ledger to its initial empty state.
func (a *Accountant) Reset() {
	a.used.Reset()
	a.allocated.Reset()
	a.freed.Reset()
	a.allocations.Store(0)
	a.fragmented.Store(false)
}
