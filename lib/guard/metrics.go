package guard

import "github.com/VictoriaMetrics/metrics"

// Operation counters, exposed through the default metrics set.
var (
	evictionsTotal         = metrics.NewCounter("gkv_guard_evictions_total")
	memoryLimitHitsTotal   = metrics.NewCounter("gkv_guard_memory_limit_hits_total")
	defragPassesTotal      = metrics.NewCounter("gkv_guard_defrag_passes_total")
	integrityFailuresTotal = metrics.NewCounter("gkv_guard_integrity_failures_total")
	savesTotal             = metrics.NewCounter("gkv_guard_saves_total")
	loadsTotal             = metrics.NewCounter("gkv_guard_loads_total")
)
