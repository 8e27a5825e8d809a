package host

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/valerio/go-jeebie/jeebie/audio"
	"github.com/valerio/go-jeebie/jeebie/config"
	"github.com/valerio/go-jeebie/jeebie/core"
	"github.com/valerio/go-jeebie/jeebie/input/action"
	"github.com/valerio/go-jeebie/jeebie/savedata"
	"github.com/valerio/go-jeebie/jeebie/video"
)

// fakeCore records what the loop asks of it. Save files are written to fs
// so the rotation sees them.
type fakeCore struct {
	fs afero.Fs

	loaded  bool
	path    string
	loadErr error
	saveErr error

	steps      int
	frameEvery int
	onStep     func(steps int)
	onWrite    func(op string)
	frame      *video.FrameBuffer

	calls   []string
	speed   float64
	speedup float64
	muted   [core.ChannelCount]bool
	buttons action.Buttons
	resets  int

	stateOK bool
}

func newFakeCore(fs afero.Fs) *fakeCore {
	return &fakeCore{
		fs:      fs,
		speed:   1.0,
		speedup: 1.0,
		frame:   video.NewFrameBuffer(video.FramebufferWidth, video.FramebufferHeight),
		stateOK: true,
	}
}

func (c *fakeCore) record(format string, args ...any) {
	c.calls = append(c.calls, fmt.Sprintf(format, args...))
}

func (c *fakeCore) Step() {
	c.steps++
	if c.onStep != nil {
		c.onStep(c.steps)
	}
}

func (c *fakeCore) IsCartridgeLoaded() bool { return c.loaded }
func (c *fakeCore) LoadedPath() string      { return c.path }

func (c *fakeCore) LoadCartridge(path string) error {
	c.record("load %s", path)
	if c.loadErr != nil {
		return &core.LoadError{Path: path, Err: c.loadErr}
	}
	c.loaded = true
	c.path = path
	return nil
}

func (c *fakeCore) write(op, path string) error {
	c.record("%s %s", op, filepath.Base(path))
	if c.onWrite != nil {
		c.onWrite(op)
	}
	if c.saveErr != nil {
		return core.NewIOError("write", path, c.saveErr)
	}
	return afero.WriteFile(c.fs, path, []byte(op), 0o644)
}

func (c *fakeCore) read(op, path string) error {
	c.record("%s %s", op, filepath.Base(path))
	if _, err := c.fs.Stat(path); err != nil {
		return core.NewIOError("read", path, err)
	}
	return nil
}

func (c *fakeCore) SaveRAM(path string) error { return c.write("saveRAM", path) }
func (c *fakeCore) SaveRTC(path string) error { return c.write("saveRTC", path) }
func (c *fakeCore) LoadRAM(path string) error { return c.read("loadRAM", path) }
func (c *fakeCore) LoadRTC(path string) error { return c.read("loadRTC", path) }

func (c *fakeCore) SaveState(path string) bool {
	c.record("saveState %s", filepath.Base(path))
	return c.stateOK && afero.WriteFile(c.fs, path, []byte("state"), 0o644) == nil
}

func (c *fakeCore) LoadState(path string) bool {
	c.record("loadState %s", filepath.Base(path))
	return c.stateOK
}

func (c *fakeCore) Reset() { c.resets++ }

func (c *fakeCore) Frame() (*video.FrameBuffer, bool) {
	return c.frame, c.frameEvery > 0 && c.steps%c.frameEvery == 0
}

func (c *fakeCore) Samples() audio.SampleSource    { return audio.NewRingBuffer(16) }
func (c *fakeCore) SetButtons(b action.Buttons)    { c.buttons = b }
func (c *fakeCore) EmulationSpeed() float64        { return c.speed }
func (c *fakeCore) SetEmulationSpeed(m float64)    { c.speed = m }
func (c *fakeCore) MaxSpeedup() float64            { return c.speedup }
func (c *fakeCore) MuteChannel(ch int, muted bool) { c.muted[ch] = muted }
func (c *fakeCore) IsChannelMuted(ch int) bool     { return c.muted[ch] }

// tickClock advances by a fixed amount on every reading, so an idle loop
// still sees time pass.
type tickClock struct {
	now  uint64
	tick uint64
}

func (c *tickClock) NowNanos() uint64 {
	c.now += c.tick
	return c.now
}

type fakeAudio struct {
	playing bool
}

func (a *fakeAudio) SetPlaying(p bool) { a.playing = p }
func (a *fakeAudio) IsPlaying() bool   { return a.playing }

type rig struct {
	fs    afero.Fs
	core  *fakeCore
	audio *fakeAudio
	loop  *Loop
}

func testConfig() config.Config {
	return config.Config{
		DataDir:              "/data",
		StateDir:             "/states",
		SnapshotDir:          "/snaps",
		StepsPerBatch:        20,
		SpeedReportInterval:  config.Duration(10 * time.Millisecond),
		InputDrainInterval:   config.Duration(time.Millisecond),
		RequestCheckInterval: config.Duration(5 * time.Millisecond),
		FrameSkip:            1,
		TurboSpeed:           5.0,
	}
}

func newRig() *rig {
	fs := afero.NewMemMapFs()
	c := newFakeCore(fs)
	a := &fakeAudio{playing: true}
	cfg := testConfig()
	l := New(c, Options{
		Config:   cfg,
		SaveData: savedata.New(fs, cfg.SaveData()),
		Audio:    a,
		Clock:    &tickClock{tick: uint64(time.Millisecond)},
		Fs:       fs,
	})
	return &rig{fs: fs, core: c, audio: a, loop: l}
}

func drainWarnings(n *Notifier) []string {
	var out []string
	for {
		select {
		case w := <-n.Warnings():
			out = append(out, w)
		default:
			return out
		}
	}
}

func savedataOn(fs afero.Fs) *savedata.Manager {
	return savedata.New(fs, testConfig().SaveData())
}
