// Package host drives an emulated machine: it steps the core in batches,
// runs the periodic timers, services load and quit requests and moves
// frames, sound and input between the core and the front-end.
package host

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/spf13/afero"
	"github.com/valerio/go-jeebie/jeebie/config"
	"github.com/valerio/go-jeebie/jeebie/core"
	"github.com/valerio/go-jeebie/jeebie/input"
	"github.com/valerio/go-jeebie/jeebie/savedata"
	"github.com/valerio/go-jeebie/jeebie/timing"
	"github.com/valerio/go-jeebie/jeebie/video"
)

// AudioControl pauses and resumes sound output.
type AudioControl interface {
	SetPlaying(playing bool)
	IsPlaying() bool
}

// Stager turns a user supplied path into a loadable program file, for
// example by extracting it from an archive.
type Stager interface {
	Stage(path string) (string, error)
}

// Options wires the loop to its collaborators. Nil fields get defaults
// built from Config.
type Options struct {
	Config   config.Config
	SaveData *savedata.Manager
	Input    *input.Bridge
	Frames   *video.FrameSink
	Audio    AudioControl
	Clock    timing.Clock
	Notifier *Notifier
	Stager   Stager
	// Fs is where snapshots are written.
	Fs afero.Fs
}

// Loop is the host loop. Run executes on a dedicated goroutine; the Post
// and Request methods, State and the Notifier channels are safe from any
// goroutine.
type Loop struct {
	core     core.Core
	cfg      config.Config
	saves    *savedata.Manager
	input    *input.Bridge
	frames   *video.FrameSink
	audio    AudioControl
	clock    timing.Clock
	notifier *Notifier
	stager   Stager
	fs       afero.Fs

	state   atomic.Int32
	started atomic.Bool

	reqMu         sync.Mutex
	pendingLoad   string
	quitRequested bool

	// Owned by the Run goroutine.
	ctx       context.Context
	running   bool
	timers    []*timing.Timer
	requests  *timing.Timer
	lastImage *image.RGBA
}

func New(c core.Core, opts Options) *Loop {
	cfg := withDefaults(opts.Config)

	l := &Loop{
		core:     c,
		cfg:      cfg,
		saves:    opts.SaveData,
		input:    opts.Input,
		frames:   opts.Frames,
		audio:    opts.Audio,
		clock:    opts.Clock,
		notifier: opts.Notifier,
		stager:   opts.Stager,
		fs:       opts.Fs,
	}
	if l.saves == nil {
		l.saves = savedata.New(nil, cfg.SaveData())
	}
	if l.input == nil {
		l.input = input.NewBridge(nil)
	}
	if l.frames == nil {
		l.frames = video.NewFrameSink(video.FramebufferWidth, video.FramebufferHeight)
		l.frames.SetFrameSkip(cfg.FrameSkip)
	}
	if l.clock == nil {
		l.clock = timing.NewMonotonicClock()
	}
	if l.notifier == nil {
		l.notifier = NewNotifier()
	}
	if l.fs == nil {
		l.fs = afero.NewOsFs()
	}

	l.requests = timing.NewTimer(cfg.RequestCheckInterval.Std(), l.checkRequests)
	l.timers = []*timing.Timer{
		timing.NewTimer(cfg.SpeedReportInterval.Std(), l.reportSpeed),
		timing.NewTimer(cfg.InputDrainInterval.Std(), l.input.DrainAndApply),
		l.requests,
	}

	if c != nil {
		l.input.SetSink(c)
	}
	l.bindHotkeys()
	return l
}

func withDefaults(cfg config.Config) config.Config {
	def := config.Default()
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.StateDir == "" {
		cfg.StateDir = def.StateDir
	}
	if cfg.StepsPerBatch <= 0 {
		cfg.StepsPerBatch = def.StepsPerBatch
	}
	if cfg.SpeedReportInterval <= 0 {
		cfg.SpeedReportInterval = def.SpeedReportInterval
	}
	if cfg.InputDrainInterval <= 0 {
		cfg.InputDrainInterval = def.InputDrainInterval
	}
	if cfg.RequestCheckInterval <= 0 {
		cfg.RequestCheckInterval = def.RequestCheckInterval
	}
	if cfg.FrameSkip < 1 {
		cfg.FrameSkip = def.FrameSkip
	}
	if cfg.TurboSpeed <= 0 {
		cfg.TurboSpeed = def.TurboSpeed
	}
	return cfg
}

// Notifier returns the outbound event channels.
func (l *Loop) Notifier() *Notifier {
	return l.notifier
}

// Input returns the input bridge, for binding extra keys or controllers.
func (l *Loop) Input() *input.Bridge {
	return l.input
}

// State returns the current lifecycle phase.
func (l *Loop) State() State {
	return State(l.state.Load())
}

func (l *Loop) setState(s State) {
	if old := State(l.state.Swap(int32(s))); old != s {
		slog.Debug("Host state changed", "from", old, "to", s)
	}
}

// PostKeyEvent queues a key transition for the next input drain.
func (l *Loop) PostKeyEvent(code input.KeyID, pressed bool) {
	l.input.PostEvent(code, pressed)
}

// RequestLoadProgram asks the loop to load a program at the next request
// check. A later request before that replaces an earlier one.
func (l *Loop) RequestLoadProgram(path string) {
	l.reqMu.Lock()
	l.pendingLoad = path
	l.reqMu.Unlock()
}

// RequestQuit asks the loop to flush save data and return.
func (l *Loop) RequestQuit() {
	l.reqMu.Lock()
	l.quitRequested = true
	l.reqMu.Unlock()
}

// Run drives the machine until quit is requested or ctx is cancelled. The
// loop never sleeps; a machine ahead of wall time idles inside Step.
func (l *Loop) Run(ctx context.Context) error {
	if l.core == nil {
		return errors.New("host: no core")
	}
	if !l.started.CompareAndSwap(false, true) {
		return fmt.Errorf("host: loop already ran (state %s)", l.State())
	}

	l.ctx = ctx
	l.running = true
	last := l.clock.NowNanos()
	idled := false

	for l.running {
		if !l.core.IsCartridgeLoaded() {
			l.setState(Idle)
			idled = true
			now := l.clock.NowNanos()
			l.requests.Update(now - last)
			last = now
			runtime.Gosched()
			continue
		}

		// Keys pressed with nothing loaded must not replay as hotkeys
		// against the program that was just loaded.
		if idled {
			idled = false
			if n := l.input.Discard(); n > 0 {
				slog.Debug("Dropped key events queued while idle", "count", n)
			}
		}
		l.setState(Running)
		for i := 0; i < l.cfg.StepsPerBatch; i++ {
			l.core.Step()
			if fb, ok := l.core.Frame(); ok {
				l.frames.Submit(fb)
				if l.frames.HasNewImage() {
					img := l.frames.TakeImage()
					l.lastImage = img
					l.notifier.publishFrame(img)
				}
			}
		}

		now := l.clock.NowNanos()
		elapsed := now - last
		last = now
		for _, t := range l.timers {
			t.Update(elapsed)
			if !l.running {
				break
			}
		}
	}

	l.setState(Draining)
	l.flushSaveData()
	l.setState(Terminated)
	slog.Info("Host loop terminated")
	return nil
}

func (l *Loop) checkRequests() {
	l.reqMu.Lock()
	quit := l.quitRequested
	path := l.pendingLoad
	l.pendingLoad = ""
	l.reqMu.Unlock()

	if l.ctx != nil && l.ctx.Err() != nil {
		quit = true
	}
	if quit {
		l.running = false
		return
	}
	if path != "" {
		l.loadProgram(path)
	}
}

func (l *Loop) reportSpeed() {
	l.notifier.publishSpeed(l.core.MaxSpeedup())
}

func (l *Loop) loadProgram(path string) {
	staged := path
	if l.stager != nil {
		var err error
		staged, err = l.stager.Stage(path)
		if err != nil {
			l.warn(fmt.Sprintf("Unable to load '%s': %v", path, err), "path", path, "error", err)
			return
		}
	}

	l.flushSaveData()
	if err := l.core.LoadCartridge(staged); err != nil {
		l.warn(fmt.Sprintf("Unable to load '%s': %v", path, err), "path", staged, "error", err)
		return
	}
	l.loadSaveData()
}

// warn reports a problem to the UI and the log.
func (l *Loop) warn(msg string, args ...any) {
	slog.Warn(msg, args...)
	l.notifier.publishWarning(msg)
}
