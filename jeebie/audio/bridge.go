package audio

import (
	"encoding/binary"
	"io"
	"math"
	"sync/atomic"
)

// Bridge fills device buffers from a SampleSource.
//
// Fill and Read run on the device goroutine and own lastGood and the
// scratch buffer. SetPlaying and IsPlaying may be called from anywhere.
type Bridge struct {
	src      SampleSource
	volume   int32
	lastGood Frame
	scratch  []int16

	device  Device
	playing atomic.Bool
	tap     atomic.Pointer[tapHolder]
}

type tapHolder struct{ tap Tap }

// NewBridge creates a bridge scaling samples by volume. It starts out
// playing.
func NewBridge(src SampleSource, volume int) *Bridge {
	b := &Bridge{
		src:    src,
		volume: int32(volume),
	}
	b.playing.Store(true)
	return b
}

// AttachDevice sets the device paused and resumed by SetPlaying. It must be
// called before the device starts pulling.
func (b *Bridge) AttachDevice(d Device) {
	b.device = d
}

// SetTap installs a tap receiving every filled buffer, or removes it when t
// is nil.
func (b *Bridge) SetTap(t Tap) {
	if t == nil {
		b.tap.Store(nil)
		return
	}
	b.tap.Store(&tapHolder{tap: t})
}

// Fill writes frames interleaved stereo frames into buf, which must hold at
// least 2*frames samples. The source is asked exactly once per frame, each
// time with the last frame it returned.
func (b *Bridge) Fill(buf []int16, frames int) {
	for i := 0; i < frames; i++ {
		b.lastGood = b.src.Pop(b.lastGood)
		buf[2*i] = b.scale(b.lastGood.Left)
		buf[2*i+1] = b.scale(b.lastGood.Right)
	}
	if h := b.tap.Load(); h != nil {
		h.tap.Push(buf[:2*frames])
	}
}

// Read implements io.Reader for pull-based players, producing signed 16 bit
// little endian interleaved stereo. Only whole frames are written; a
// non-empty buffer shorter than one frame is rejected with io.ErrShortBuffer.
func (b *Bridge) Read(p []byte) (int, error) {
	frames := len(p) / BytesPerFrame
	if frames == 0 && len(p) > 0 {
		return 0, io.ErrShortBuffer
	}
	if cap(b.scratch) < 2*frames {
		b.scratch = make([]int16, 2*frames)
	}
	samples := b.scratch[:2*frames]
	b.Fill(samples, frames)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(p[2*i:], uint16(s))
	}
	return frames * BytesPerFrame, nil
}

// SetPlaying pauses or resumes the device. Repeating the current state does
// nothing.
func (b *Bridge) SetPlaying(playing bool) {
	if b.playing.Swap(playing) == playing {
		return
	}
	if b.device == nil {
		return
	}
	if playing {
		b.device.Play()
	} else {
		b.device.Pause()
	}
}

// IsPlaying reports the last requested state.
func (b *Bridge) IsPlaying() bool {
	return b.playing.Load()
}

func (b *Bridge) scale(s int16) int16 {
	v := int32(s) * b.volume
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}
