package testpattern

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-jeebie/jeebie/audio"
	"github.com/valerio/go-jeebie/jeebie/core"
	"github.com/valerio/go-jeebie/jeebie/input/action"
	"github.com/valerio/go-jeebie/jeebie/timing"
)

func newLoaded(t *testing.T) (*Machine, afero.Fs, *timing.ManualClock) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "roms/demo.gb", []byte("demo program"), 0o644))
	clock := &timing.ManualClock{}
	m := New(fsys, clock)
	require.NoError(t, m.LoadCartridge("roms/demo.gb"))
	return m, fsys, clock
}

func runSteps(m *Machine, n int) {
	for i := 0; i < n; i++ {
		m.Step()
	}
}

func TestLoadCartridge_Errors(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "empty.gb", nil, 0o644))
	require.NoError(t, fsys.MkdirAll("dir.gb", 0o755))
	m := New(fsys, &timing.ManualClock{})

	for _, path := range []string{"missing.gb", "empty.gb", "dir.gb"} {
		t.Run(path, func(t *testing.T) {
			err := m.LoadCartridge(path)
			var loadErr *core.LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, path, loadErr.Path)
			assert.False(t, m.IsCartridgeLoaded())
		})
	}
}

func TestStep_NothingLoaded(t *testing.T) {
	m := New(afero.NewMemMapFs(), &timing.ManualClock{})
	runSteps(m, 10)
	_, ready := m.Frame()
	assert.False(t, ready)
	assert.Zero(t, m.MaxSpeedup())
}

func TestStep_PacedByClock(t *testing.T) {
	m, _, clock := newLoaded(t)
	assert.Equal(t, "roms/demo.gb", m.LoadedPath())

	runSteps(m, 1000)
	_, ready := m.Frame()
	assert.False(t, ready, "no wall time has passed")
	assert.InDelta(t, 1000.0, m.MaxSpeedup(), 0.001)

	clock.Advance(timing.FrameDuration())
	runSteps(m, 1000)
	fb, ready := m.Frame()
	assert.True(t, ready)
	assert.NotNil(t, fb)

	_, ready = m.Frame()
	assert.False(t, ready, "frame readiness is consumed")
}

func TestStep_SpeedMultiplier(t *testing.T) {
	m, _, clock := newLoaded(t)
	m.SetEmulationSpeed(5)
	assert.Equal(t, 5.0, m.EmulationSpeed())

	clock.Advance(timing.FrameDuration())
	frames := 0
	for i := 0; i < 2000; i++ {
		m.Step()
		if _, ready := m.Frame(); ready {
			frames++
		}
	}
	assert.Equal(t, 5, frames)

	m.SetEmulationSpeed(0)
	assert.Equal(t, 1.0, m.EmulationSpeed())
}

func TestSamples(t *testing.T) {
	m, _, clock := newLoaded(t)
	src := m.Samples()

	m.SetButtons(action.Buttons(0).With(action.ButtonA))
	clock.Advance(timing.FrameDuration())
	runSteps(m, 200)

	ring := src.(*audio.RingBuffer)
	assert.InDelta(t, audio.SampleRate/timing.TargetFPS(), ring.Len(), 8)

	f := src.Pop(audio.Frame{})
	assert.Equal(t, int16(toneAmplitude), f.Left)
	assert.Equal(t, f.Left, f.Right)
}

func TestMuteSilencesChannel(t *testing.T) {
	m, _, clock := newLoaded(t)
	m.MuteChannel(0, true)
	assert.True(t, m.IsChannelMuted(0))
	assert.False(t, m.IsChannelMuted(1))
	assert.False(t, m.IsChannelMuted(7))

	m.SetButtons(action.Buttons(0).With(action.ButtonA))
	clock.Advance(timing.FrameDuration())
	runSteps(m, 200)

	src := m.Samples()
	for i := 0; i < 100; i++ {
		assert.Zero(t, src.Pop(audio.Frame{}).Left)
	}
}

func TestRAMRoundTrip(t *testing.T) {
	m, fsys, clock := newLoaded(t)
	clock.Advance(timing.FrameDuration())
	runSteps(m, 200)
	require.Equal(t, byte(1), m.RAM()[0])

	require.NoError(t, m.SaveRAM("ram.bin"))
	m.RAM()[0] = 0
	require.NoError(t, m.LoadRAM("ram.bin"))
	assert.Equal(t, byte(1), m.RAM()[0])

	err := m.LoadRAM("missing.bin")
	assert.True(t, core.IsNotExist(err))

	require.NoError(t, afero.WriteFile(fsys, "short.bin", []byte{1, 2}, 0o644))
	var formatErr *core.FormatError
	assert.True(t, errors.As(m.LoadRAM("short.bin"), &formatErr))
}

func TestSaveRAM_Failure(t *testing.T) {
	m, _, _ := newLoaded(t)
	m.fs = afero.NewReadOnlyFs(m.fs)

	var ioErr *core.IOError
	require.True(t, errors.As(m.SaveRAM("ram.bin"), &ioErr))
	assert.Equal(t, "ram.bin", ioErr.Path)
}

func TestRTCRoundTrip(t *testing.T) {
	m, _, _ := newLoaded(t)
	m.rtc = rtcClock{Seconds: 42, Frames: 7}
	require.NoError(t, m.SaveRTC("rtc.bin"))

	m.rtc = rtcClock{}
	require.NoError(t, m.LoadRTC("rtc.bin"))
	assert.Equal(t, uint64(42), m.ClockSeconds())

	var formatErr *core.FormatError
	require.NoError(t, m.SaveRAM("ram.bin"))
	assert.True(t, errors.As(m.LoadRTC("ram.bin"), &formatErr))
}

func TestStateRoundTrip(t *testing.T) {
	m, fsys, clock := newLoaded(t)
	clock.Advance(3 * timing.FrameDuration())
	runSteps(m, 1000)
	frames := m.frames
	require.NotZero(t, frames)

	require.True(t, m.SaveState("state.bin"))

	m.Reset()
	assert.Zero(t, m.frames)

	require.True(t, m.LoadState("state.bin"))
	assert.Equal(t, frames, m.frames)
	_, ready := m.Frame()
	assert.True(t, ready, "a restored state shows its frame")

	assert.False(t, m.LoadState("missing.bin"))
	require.NoError(t, afero.WriteFile(fsys, "junk.bin", []byte("junk"), 0o644))
	assert.False(t, m.LoadState("junk.bin"))
}

func TestState_RejectsOtherProgram(t *testing.T) {
	m, fsys, _ := newLoaded(t)
	require.True(t, m.SaveState("state.bin"))

	require.NoError(t, afero.WriteFile(fsys, "roms/other.gb", []byte("another program"), 0o644))
	require.NoError(t, m.LoadCartridge("roms/other.gb"))
	assert.False(t, m.LoadState("state.bin"))
}

func TestSelectCyclesPattern(t *testing.T) {
	m, _, clock := newLoaded(t)
	start := m.PatternName()

	m.SetButtons(action.Buttons(0).With(action.ButtonSelect))
	clock.Advance(timing.FrameDuration())
	runSteps(m, 200)

	assert.NotEqual(t, start, m.PatternName())
}

func TestImplementsCore(t *testing.T) {
	var _ core.Core = (*Machine)(nil)
}
