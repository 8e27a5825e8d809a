package audio

import "sync/atomic"

// RingBuffer is a single producer, single consumer frame queue. The machine
// pushes from the host goroutine and the device pops from its own, without
// locks. When full, new frames are dropped.
type RingBuffer struct {
	frames []Frame
	mask   uint64
	head   atomic.Uint64 // next pop
	tail   atomic.Uint64 // next push
}

// NewRingBuffer creates a buffer holding at least size frames; the capacity
// is rounded up to a power of two.
func NewRingBuffer(size int) *RingBuffer {
	n := uint64(1)
	for n < uint64(size) {
		n <<= 1
	}
	return &RingBuffer{
		frames: make([]Frame, n),
		mask:   n - 1,
	}
}

// Push appends a frame and reports whether there was room for it.
func (r *RingBuffer) Push(f Frame) bool {
	tail := r.tail.Load()
	if tail-r.head.Load() == uint64(len(r.frames)) {
		return false
	}
	r.frames[tail&r.mask] = f
	r.tail.Store(tail + 1)
	return true
}

// Pop implements SampleSource.
func (r *RingBuffer) Pop(prev Frame) Frame {
	head := r.head.Load()
	if head == r.tail.Load() {
		return prev
	}
	f := r.frames[head&r.mask]
	r.head.Store(head + 1)
	return f
}

// Len returns the number of queued frames.
func (r *RingBuffer) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

// Cap returns the buffer capacity.
func (r *RingBuffer) Cap() int {
	return len(r.frames)
}
