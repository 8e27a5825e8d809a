package timing

import "time"

// Timer fires an action every time the accumulated elapsed time crosses its
// interval. The remainder is carried over, so a timer updated with irregular
// chunks of time still fires at the right average rate and never drifts.
type Timer struct {
	interval    uint64
	accumulated uint64
	action      func()
}

// NewTimer creates a timer firing action once per interval.
// An interval below one nanosecond is treated as one nanosecond.
func NewTimer(interval time.Duration, action func()) *Timer {
	ns := uint64(1)
	if interval > 0 {
		ns = uint64(interval)
	}
	return &Timer{
		interval: ns,
		action:   action,
	}
}

// Update adds elapsed nanoseconds and fires the action once for every full
// interval contained in the accumulated time. A long stall fires the action
// several times in a row.
func (t *Timer) Update(elapsed uint64) {
	t.accumulated += elapsed
	for t.accumulated >= t.interval {
		t.accumulated -= t.interval
		if t.action != nil {
			t.action()
		}
	}
}

// Interval returns the firing interval in nanoseconds.
func (t *Timer) Interval() uint64 {
	return t.interval
}

// Accumulated returns the time carried towards the next firing.
func (t *Timer) Accumulated() uint64 {
	return t.accumulated
}

// Reset drops any carried time.
func (t *Timer) Reset() {
	t.accumulated = 0
}
