// Package testpattern is a stand-in machine that draws test patterns and
// plays tones instead of running a real program. It exercises every part of
// the host layer: frames, samples, buttons, battery RAM, the clock file and
// save states.
package testpattern

import (
	"fmt"
	"hash/crc32"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/valerio/go-jeebie/jeebie/audio"
	"github.com/valerio/go-jeebie/jeebie/core"
	"github.com/valerio/go-jeebie/jeebie/display"
	"github.com/valerio/go-jeebie/jeebie/input/action"
	"github.com/valerio/go-jeebie/jeebie/timing"
	"github.com/valerio/go-jeebie/jeebie/video"
)

const (
	// CyclesPerStep is one scanline.
	CyclesPerStep = 456
	// RAMSize is the size of the battery-backed RAM.
	RAMSize = 0x2000

	maxProgramSize = 8 << 20
	sampleBuffer   = 4096
)

// Machine implements core.Core.
//
// Emulated time is paced against the clock: when the machine is ahead of
// wall time scaled by the speed multiplier, Step returns without doing
// anything. Those idle steps feed MaxSpeedup.
type Machine struct {
	fs    afero.Fs
	clock timing.Clock

	loaded     bool
	loadedPath string
	checksum   uint32

	frame      *video.FrameBuffer
	frameReady bool
	pattern    int
	frames     uint64
	scrollX    int
	scrollY    int

	cycles      uint64
	frameCycles uint64
	speed       float64
	anchorWall  uint64
	anchorEmu   uint64

	activeSteps uint64
	totalSteps  uint64

	samples     *audio.RingBuffer
	sampleAcc   uint64
	phases      [core.ChannelCount]uint32
	muted       [core.ChannelCount]bool
	buttons     action.Buttons
	prevButtons action.Buttons

	ram []byte
	rtc rtcClock
}

// New creates a machine with no program loaded. Files go through fsys.
func New(fsys afero.Fs, clock timing.Clock) *Machine {
	if clock == nil {
		clock = timing.NewMonotonicClock()
	}
	m := &Machine{
		fs:      fsys,
		clock:   clock,
		frame:   video.NewFrameBuffer(video.FramebufferWidth, video.FramebufferHeight),
		speed:   1.0,
		samples: audio.NewRingBuffer(sampleBuffer),
		ram:     make([]byte, RAMSize),
	}
	m.drawPattern()
	return m
}

func (m *Machine) IsCartridgeLoaded() bool { return m.loaded }
func (m *Machine) LoadedPath() string      { return m.loadedPath }

// LoadCartridge accepts any non-empty file up to 8MB. Its checksum picks the
// starting pattern.
func (m *Machine) LoadCartridge(path string) error {
	info, err := m.fs.Stat(path)
	if err != nil {
		return &core.LoadError{Path: path, Err: err}
	}
	if info.IsDir() {
		return &core.LoadError{Path: path, Err: fmt.Errorf("is a directory")}
	}
	if info.Size() == 0 || info.Size() > maxProgramSize {
		return &core.LoadError{Path: path, Err: fmt.Errorf("unsupported program size %d", info.Size())}
	}
	data, err := afero.ReadFile(m.fs, path)
	if err != nil {
		return &core.LoadError{Path: path, Err: err}
	}

	m.checksum = crc32.ChecksumIEEE(data)
	m.loaded = true
	m.loadedPath = path
	for i := range m.ram {
		m.ram[i] = 0
	}
	m.rtc = rtcClock{}
	m.Reset()
	slog.Info("Program loaded", "path", path, "size", len(data), "crc32", fmt.Sprintf("%08x", m.checksum))
	return nil
}

// Reset restarts the program. Battery RAM survives.
func (m *Machine) Reset() {
	m.cycles = 0
	m.frameCycles = 0
	m.frames = 0
	m.scrollX, m.scrollY = 0, 0
	m.pattern = int(m.checksum % display.TestPatternCount)
	m.sampleAcc = 0
	m.phases = [core.ChannelCount]uint32{}
	m.reanchor()
	m.drawPattern()
}

func (m *Machine) Step() {
	if !m.loaded {
		return
	}
	m.totalSteps++

	wall := m.clock.NowNanos() - m.anchorWall
	target := m.anchorEmu + uint64(float64(wall)*m.speed)
	if uint64(timing.CyclesToDuration(m.cycles)) > target {
		return
	}
	m.activeSteps++

	m.cycles += CyclesPerStep
	m.frameCycles += CyclesPerStep
	m.produceSamples(CyclesPerStep)

	if m.frameCycles >= timing.CyclesPerFrame {
		m.frameCycles -= timing.CyclesPerFrame
		m.endFrame()
	}
}

func (m *Machine) Frame() (*video.FrameBuffer, bool) {
	ready := m.frameReady
	m.frameReady = false
	return m.frame, ready
}

func (m *Machine) Samples() audio.SampleSource {
	return m.samples
}

func (m *Machine) SetButtons(b action.Buttons) {
	m.buttons = b
}

func (m *Machine) EmulationSpeed() float64 {
	return m.speed
}

func (m *Machine) SetEmulationSpeed(multiplier float64) {
	if multiplier <= 0 {
		multiplier = 1
	}
	m.reanchor()
	m.speed = multiplier
}

// MaxSpeedup estimates how fast the machine could run from the share of
// steps that did work since the previous call.
func (m *Machine) MaxSpeedup() float64 {
	total, active := m.totalSteps, m.activeSteps
	m.totalSteps, m.activeSteps = 0, 0
	if active == 0 {
		return 0
	}
	return m.speed * float64(total) / float64(active)
}

func (m *Machine) MuteChannel(channel int, muted bool) {
	if channel >= 0 && channel < core.ChannelCount {
		m.muted[channel] = muted
	}
}

func (m *Machine) IsChannelMuted(channel int) bool {
	return channel >= 0 && channel < core.ChannelCount && m.muted[channel]
}

func (m *Machine) reanchor() {
	m.anchorWall = m.clock.NowNanos()
	m.anchorEmu = uint64(timing.CyclesToDuration(m.cycles))
}

func (m *Machine) endFrame() {
	m.frames++
	m.rtc.tick()

	pressed := m.buttons &^ m.prevButtons
	m.prevButtons = m.buttons
	if pressed.Pressed(action.ButtonSelect) {
		m.pattern = (m.pattern + 1) % display.TestPatternCount
	}
	switch {
	case m.buttons.Pressed(action.DPadLeft):
		m.scrollX--
	case m.buttons.Pressed(action.DPadRight):
		m.scrollX++
	}
	switch {
	case m.buttons.Pressed(action.DPadUp):
		m.scrollY--
	case m.buttons.Pressed(action.DPadDown):
		m.scrollY++
	}

	// The first RAM bytes hold a frame counter so saves have visible content.
	for i := 0; i < 8; i++ {
		m.ram[i] = byte(m.frames >> (8 * i))
	}

	m.drawPattern()
	m.frameReady = true
}
