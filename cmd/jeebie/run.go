package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/afero"
	"github.com/urfave/cli"
	"github.com/valerio/go-jeebie/jeebie/audio"
	"github.com/valerio/go-jeebie/jeebie/audio/device"
	"github.com/valerio/go-jeebie/jeebie/backend"
	"github.com/valerio/go-jeebie/jeebie/backend/headless"
	"github.com/valerio/go-jeebie/jeebie/backend/terminal"
	"github.com/valerio/go-jeebie/jeebie/config"
	"github.com/valerio/go-jeebie/jeebie/host"
	"github.com/valerio/go-jeebie/jeebie/input"
	"github.com/valerio/go-jeebie/jeebie/input/joystick"
	"github.com/valerio/go-jeebie/jeebie/input/sdlpad"
	"github.com/valerio/go-jeebie/jeebie/romloader"
	"github.com/valerio/go-jeebie/jeebie/savedata"
	"github.com/valerio/go-jeebie/jeebie/testpattern"
	"github.com/valerio/go-jeebie/jeebie/timing"
	"github.com/valerio/go-jeebie/jeebie/video"
)

func runEmulator(c *cli.Context) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.String("log-level"))); err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	console := tint.NewHandler(os.Stderr, &tint.Options{Level: level, TimeFormat: time.TimeOnly})
	slog.SetDefault(slog.New(console))

	if c.Bool("write-config") {
		return writeConfig(c)
	}

	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() == 0 {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
		romPath = c.Args().Get(0)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ui, err := newBackend(c, romPath)
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	machine := testpattern.New(fs, timing.NewMonotonicClock())

	in := input.NewBridge(nil)
	if hub := openControllers(cfg); hub != nil {
		in.SetControllers(hub)
		defer hub.Close()
	}

	frames := video.NewFrameSink(video.FramebufferWidth, video.FramebufferHeight)
	frames.SetFrameSkip(cfg.FrameSkip)

	opts := host.Options{
		Config:   cfg,
		SaveData: savedata.New(fs, cfg.SaveData()),
		Input:    in,
		Frames:   frames,
		Clock:    timing.NewMonotonicClock(),
		Stager:   romloader.NewStager(fs, cfg.CacheDir),
		Fs:       fs,
	}
	if sound, closeSound := openAudio(c, cfg, fs, machine.Samples()); sound != nil {
		opts.Audio = sound
		defer closeSound()
	}
	loop := host.New(machine, opts)

	title := filepath.Base(romPath)
	if err := ui.Init(backend.BackendConfig{Title: title, LogLevel: level.String(), LogHandler: console}); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	uiCtx, cancelUI := context.WithCancel(context.Background())
	defer cancelUI()

	loop.RequestLoadProgram(romPath)
	done := make(chan error, 1)
	go func() {
		done <- loop.Run(ctx)
		cancelUI()
	}()

	uiErr := ui.Run(uiCtx, loop)
	if uiErr != nil {
		loop.RequestQuit()
	}
	loopErr := <-done

	cleanupErr := ui.Cleanup()
	slog.SetDefault(slog.New(console))
	slog.Info("Emulator stopped", "state", loop.State())
	return errors.Join(uiErr, loopErr, cleanupErr)
}

func newBackend(c *cli.Context, romPath string) (backend.Backend, error) {
	if !c.Bool("headless") {
		return terminal.New(), nil
	}
	frames := c.Int("frames")
	if frames <= 0 {
		return nil, errors.New("headless mode requires --frames option with a positive value")
	}
	snapshots, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
	if err != nil {
		return nil, err
	}
	return headless.New(frames, snapshots, nil), nil
}

func configPath(c *cli.Context) (string, error) {
	if path := c.String("config"); path != "" {
		return path, nil
	}
	path, err := config.DefaultPath()
	if err != nil {
		return "", fmt.Errorf("locate config file: %w", err)
	}
	return path, nil
}

// writeConfig saves the config file merged with the command line overrides.
func writeConfig(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	path, err := configPath(c)
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	slog.Info("Configuration written", "path", path)
	return nil
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	path, err := configPath(c)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if c.IsSet("data-dir") {
		cfg.DataDir = c.String("data-dir")
	}
	if c.IsSet("state-dir") {
		cfg.StateDir = c.String("state-dir")
	}
	if c.IsSet("snapshot-dir") {
		cfg.SnapshotDir = c.String("snapshot-dir")
	}
	if c.IsSet("frame-skip") {
		cfg.FrameSkip = c.Int("frame-skip")
	}
	if c.IsSet("volume") {
		cfg.Volume = c.Int("volume")
	}
	if c.IsSet("controller") {
		cfg.Controller = c.String("controller")
	}
	return cfg, cfg.Validate()
}

func openControllers(cfg config.Config) *input.ControllerHub {
	var source input.ControllerSource
	switch cfg.Controller {
	case config.ControllerJoystick:
		source = joystick.New(joystick.DefaultLayout)
	case config.ControllerSDL:
		src, err := sdlpad.New()
		if err != nil {
			slog.Warn("Controllers unavailable", "source", cfg.Controller, "error", err)
			return nil
		}
		source = src
	default:
		return nil
	}
	return input.NewControllerHub(source, cfg.Deadzone)
}

// wantAudio reports whether a device should be opened. Headless runs stay
// silent unless they record, since the recorder is fed by the device pulling.
func wantAudio(headless, noAudio bool, recordPath string) bool {
	if noAudio {
		return false
	}
	return !headless || recordPath != ""
}

// openAudio starts sound output and the optional WAV recorder. Failing to
// open the device is not fatal; the emulator runs silent.
func openAudio(c *cli.Context, cfg config.Config, fs afero.Fs, src audio.SampleSource) (*audio.Bridge, func()) {
	if !wantAudio(c.Bool("headless"), c.Bool("no-audio"), c.String("record-audio")) {
		return nil, nil
	}
	bridge := audio.NewBridge(src, cfg.Volume)

	var recorder *audio.Recorder
	if path := c.String("record-audio"); path != "" {
		rec, err := audio.NewRecorder(fs, path)
		if err != nil {
			slog.Warn("Audio recording disabled", "path", path, "error", err)
		} else {
			recorder = rec
			bridge.SetTap(rec)
		}
	}

	dev, err := device.Open(bridge, cfg.AudioBuffer.Std())
	if err != nil {
		slog.Warn("Audio unavailable, running silent", "error", err)
		if recorder != nil {
			_ = recorder.Close()
		}
		return nil, nil
	}
	bridge.AttachDevice(dev)

	return bridge, func() {
		if err := dev.Close(); err != nil {
			slog.Warn("Closing audio device failed", "error", err)
		}
		if recorder != nil {
			bridge.SetTap(nil)
			if err := recorder.Close(); err != nil {
				slog.Warn("Closing audio recording failed", "error", err)
			}
			slog.Info("Audio recording saved", "dropped_chunks", recorder.Dropped())
		}
	}
}
