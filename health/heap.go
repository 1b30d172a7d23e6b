package health

import (
	"context"
	"fmt"
	"runtime"
)

// HeapChecker watches heap usage, which grows with the number of resident
// account entries.
type HeapChecker struct {
	maxHeap  uint64
	warn     float64
	critical float64
	read     func(*runtime.MemStats)
}

// NewHeapChecker checks heap allocation against maxHeap bytes. Usage at or
// above warn (a fraction of maxHeap) is degraded and at or above critical
// is unhealthy. A zero maxHeap compares against memory obtained from the OS.
// Out-of-range fractions fall back to 0.8 and 0.95.
func NewHeapChecker(maxHeap uint64, warn, critical float64) *HeapChecker {
	if warn <= 0 || warn >= 1 {
		warn = 0.8
	}
	if critical <= 0 || critical >= 1 || critical < warn {
		critical = max(warn, 0.95)
	}
	return &HeapChecker{maxHeap: maxHeap, warn: warn, critical: critical, read: runtime.ReadMemStats}
}

// Name returns "heap".
func (h *HeapChecker) Name() string {
	return "heap"
}

// Check compares the live heap with the configured limit.
func (h *HeapChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	var stats runtime.MemStats
	h.read(&stats)

	limit := h.maxHeap
	if limit == 0 {
		limit = stats.Sys
	}
	details := map[string]any{
		"heap_alloc":   stats.HeapAlloc,
		"heap_objects": stats.HeapObjects,
		"limit":        limit,
		"num_gc":       stats.NumGC,
	}
	if limit == 0 {
		return Healthy("heap stats unavailable").WithDetails(details)
	}

	usage := float64(stats.HeapAlloc) / float64(limit)
	details["usage_percent"] = usage * 100

	switch {
	case usage >= h.critical:
		return Unhealthy(fmt.Sprintf("heap usage critical: %.1f%%", usage*100), ErrCheckFailed).WithDetails(details)
	case usage >= h.warn:
		return Degraded(fmt.Sprintf("heap usage high: %.1f%%", usage*100)).WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("heap usage normal: %.1f%%", usage*100)).WithDetails(details)
	}
}

var _ Checker = (*HeapChecker)(nil)
