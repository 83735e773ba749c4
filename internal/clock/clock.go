// Package clock wraps github.com/agilira/go-timecache so /stats
// responses can be stamped without a clock_gettime syscall on every
// call (log lines keep zerolog's own timestamp), the same trade-off agilira/lethe makes for its own
// rotation bookkeeping (see lethe.go's timeCache.CachedTime() calls).
//
// The Start orchestrator's linear_ns/cxadc_ns measurements (spec.md
// §4.4 step 7/8) do NOT go through this package: a cached clock with
// millisecond resolution cannot resolve the sub-millisecond skew those
// two numbers report, so that one measurement uses time.Now() directly.
package clock

import (
	"time"

	timecache "github.com/agilira/go-timecache"
)

// Cache is a low-overhead time source, refreshed at the resolution
// given to New, suitable for high-frequency telemetry stamping.
type Cache struct {
	tc *timecache.TimeCache
}

// New starts a cache refreshed at the given resolution.
func New(resolution time.Duration) *Cache {
	return &Cache{tc: timecache.NewWithResolution(resolution)}
}

// Now returns the most recently cached time.
func (c *Cache) Now() time.Time { return c.tc.CachedTime() }

// Stop releases the cache's background refresh.
func (c *Cache) Stop() {
	if c.tc != nil {
		c.tc.Stop()
	}
}
