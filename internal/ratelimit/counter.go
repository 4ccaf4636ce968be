// Package ratelimit throttles repetitive log lines.
package ratelimit

import (
	"sync/atomic"
	"time"
)

// Counter accumulates a quantity (events, bytes) and allows one report per
// interval. The zero value reports every time. It is safe for concurrent use.
type Counter struct {
	interval time.Duration
	last     atomic.Int64
	total    atomic.Uint64
}

// NewCounter returns a Counter that allows a report at most once per interval.
func NewCounter(interval time.Duration) *Counter {
	return &Counter{interval: interval}
}

// Add adds n to the running total. It returns the new total and whether the
// caller should report now.
func (c *Counter) Add(n uint64) (uint64, bool) {
	if c == nil {
		return 0, false
	}
	total := c.total.Add(n)
	if c.interval <= 0 {
		return total, true
	}
	now := time.Now().UnixNano()
	last := c.last.Load()
	if last != 0 && now-last < c.interval.Nanoseconds() {
		return total, false
	}
	return total, c.last.CompareAndSwap(last, now)
}

// Total returns the running total.
func (c *Counter) Total() uint64 {
	if c == nil {
		return 0
	}
	return c.total.Load()
}
