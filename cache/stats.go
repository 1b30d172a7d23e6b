package cache

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jonwraymond/accountkit/health"
	"github.com/jonwraymond/accountkit/resilience"
)

type counters struct {
	hits            atomic.Int64
	misses          atomic.Int64
	diskLoads       atomic.Int64
	decodes         atomic.Int64
	fieldErrors     atomic.Int64
	persists        atomic.Int64
	persistFailures atomic.Int64
	superseded      atomic.Int64
	clears          atomic.Int64
}

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Hits            int64 // LoadEntry served from memory
	Misses          int64 // LoadEntry found nothing usable
	DiskLoads       int64 // entries promoted from the store
	Decodes         int64 // persisted blobs opened and decoded
	FieldErrors     int64 // persisted fields that failed to decode
	Persists        int64 // successful store writes
	PersistFailures int64 // store writes that failed after retries
	Superseded      int64 // writes skipped for a newer version
	Clears          int64
	Resident        int // entries held in memory
	Dirty           int // entries whose latest version is not yet on disk
}

// Stats returns current counters and entry gauges.
func (c *Cache) Stats() Stats {
	st := Stats{
		Hits:            c.counters.hits.Load(),
		Misses:          c.counters.misses.Load(),
		DiskLoads:       c.counters.diskLoads.Load(),
		Decodes:         c.counters.decodes.Load(),
		FieldErrors:     c.counters.fieldErrors.Load(),
		Persists:        c.counters.persists.Load(),
		PersistFailures: c.counters.persistFailures.Load(),
		Superseded:      c.counters.superseded.Load(),
		Clears:          c.counters.clears.Load(),
	}
	for _, id := range c.ids() {
		s := c.acquire(id, false)
		if s == nil {
			continue
		}
		s.mu.RLock()
		if s.entry != nil {
			st.Resident++
		}
		s.mu.RUnlock()
		if s.dirty() {
			st.Dirty++
		}
		c.releaseSlot(id, s)
	}
	return st
}

// HealthChecker reports the cache as unhealthy when the store cannot be
// pinged or the write circuit is open, and degraded while entries are dirty.
func (c *Cache) HealthChecker() health.Checker {
	return health.NewCheckerFunc("cache", func(ctx context.Context) health.Result {
		st := c.Stats()
		details := map[string]any{
			"store":            c.store.Kind(),
			"resident":         st.Resident,
			"dirty":            st.Dirty,
			"persist_failures": st.PersistFailures,
		}

		if err := c.store.Ping(ctx); err != nil {
			return health.Unhealthy("store unreachable", err).WithDetails(details)
		}
		if cb := c.exec.CircuitBreaker(); cb != nil && cb.State() == resilience.StateOpen {
			return health.Unhealthy("store writes suspended", resilience.ErrCircuitOpen).WithDetails(details)
		}
		if st.Dirty > 0 {
			return health.Degraded(fmt.Sprintf("%d entries not yet persisted", st.Dirty)).WithDetails(details)
		}
		return health.Healthy("cache operational").WithDetails(details)
	})
}
