// Package core defines what the host loop needs from an emulated machine.
package core

import (
	"github.com/valerio/go-jeebie/jeebie/audio"
	"github.com/valerio/go-jeebie/jeebie/input/action"
	"github.com/valerio/go-jeebie/jeebie/video"
)

// ChannelCount is the number of sound channels that can be muted.
const ChannelCount = 4

// Core is an emulated machine driven one step at a time.
//
// All methods are called from the host goroutine, except Samples whose
// source is drained from the audio device goroutine.
type Core interface {
	// Step advances the machine by one CPU step. A machine running ahead of
	// the wall clock may do nothing.
	Step()

	IsCartridgeLoaded() bool
	// LoadCartridge returns a *LoadError on failure.
	LoadCartridge(path string) error
	// LoadedPath returns the path of the loaded program, or "".
	LoadedPath() string

	// Battery-backed RAM and real-time clock. Failures are *IOError or
	// *FormatError. Loading a missing file returns an error satisfying
	// IsNotExist.
	SaveRAM(path string) error
	LoadRAM(path string) error
	SaveRTC(path string) error
	LoadRTC(path string) error

	SaveState(path string) bool
	LoadState(path string) bool

	Reset()

	// Frame returns the framebuffer and whether a frame was completed since
	// the previous call.
	Frame() (*video.FrameBuffer, bool)

	// Samples returns the source the audio bridge pulls from.
	Samples() audio.SampleSource

	SetButtons(action.Buttons)

	EmulationSpeed() float64
	SetEmulationSpeed(multiplier float64)
	// MaxSpeedup reports how many times faster than real time the machine
	// could run over the last measurement window.
	MaxSpeedup() float64

	MuteChannel(channel int, muted bool)
	IsChannelMuted(channel int) bool
}
