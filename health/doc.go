// Package health reports whether the account cache and its store can serve.
//
// A Checker reports a Result with a Status: Healthy, Degraded or Unhealthy.
// The cache exposes its own checker (see cache.Cache.HealthChecker); stores
// are checked by ping and the process heap by HeapChecker.
//
//	agg := health.NewAggregator()
//	agg.Register("cache", c.HealthChecker())
//	agg.Register("store", health.NewPingChecker("store", store.Ping))
//
//	report := agg.Report(ctx)
//	if report.Status == health.StatusUnhealthy {
//	    log.Printf("accountkit unhealthy: %v", report.Checks)
//	}
package health
