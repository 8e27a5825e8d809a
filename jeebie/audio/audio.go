// Package audio moves samples from the emulated machine to the output
// device.
//
// The device pulls samples on its own realtime goroutine. Nothing in this
// package blocks that goroutine on a lock held by the host or UI.
package audio

// Output format shared by the device and the recorder.
const (
	SampleRate     = 48000
	ChannelCount   = 2
	BytesPerSample = 2
	BytesPerFrame  = ChannelCount * BytesPerSample

	// DefaultVolume scales the machine's quiet raw samples to a
	// comfortable level.
	DefaultVolume = 15
)

// Frame is one stereo sample.
type Frame struct {
	Left  int16
	Right int16
}

// SampleSource hands out produced samples. Pop returns the next frame, or
// prev when nothing new is available, so an underrun repeats the last good
// frame instead of producing a click.
type SampleSource interface {
	Pop(prev Frame) Frame
}

// Device is an output that can be paused without being torn down.
type Device interface {
	Play()
	Pause()
}

// Tap observes produced samples. Push must not block.
type Tap interface {
	Push(samples []int16)
}
