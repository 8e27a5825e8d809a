package timing

import "time"

// Clock is a monotonic nanosecond time source.
type Clock interface {
	NowNanos() uint64
}

// MonotonicClock reads the runtime's monotonic clock, relative to the moment
// it was created.
type MonotonicClock struct {
	start time.Time
}

func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

func (c *MonotonicClock) NowNanos() uint64 {
	return uint64(time.Since(c.start))
}

// ManualClock is a clock advanced by hand, used by tests and headless runs
// that need deterministic pacing.
type ManualClock struct {
	now uint64
}

func (c *ManualClock) NowNanos() uint64 {
	return c.now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.now += uint64(d)
}
