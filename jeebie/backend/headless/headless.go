// Package headless runs the host loop without a display, for scripted runs
// and automated checks.
package headless

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/valerio/go-jeebie/jeebie/backend"
	"github.com/valerio/go-jeebie/jeebie/debug"
	"github.com/valerio/go-jeebie/jeebie/display"
)

// Backend counts frames, saves periodic snapshots and asks the host to quit
// after a fixed number of frames.
type Backend struct {
	config         backend.BackendConfig
	fs             afero.Fs
	frameCount     int
	maxFrames      int
	snapshotConfig SnapshotConfig
	warnings       []string
	lastSpeed      float64
	quitSent       bool
}

// SnapshotConfig holds configuration for frame snapshots
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // Save snapshot every N frames
	Directory string // Directory to save snapshots
	ROMName   string // ROM name for snapshot filenames
}

// New creates a headless backend. Snapshots are written through fsys; nil
// means the OS filesystem.
func New(maxFrames int, snapshotConfig SnapshotConfig, fsys afero.Fs) *Backend {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Backend{
		fs:             fsys,
		maxFrames:      maxFrames,
		snapshotConfig: snapshotConfig,
	}
}

func (h *Backend) Init(config backend.BackendConfig) error {
	h.config = config

	level := slog.LevelDebug
	if config.LogLevel != "" {
		if err := level.UnmarshalText([]byte(config.LogLevel)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", config.LogLevel, err)
		}
	}
	handler := config.LogHandler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("Running headless mode",
		"frames", h.maxFrames,
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory)
	return nil
}

func (h *Backend) Run(ctx context.Context, host backend.Host) error {
	notifier := host.Notifier()
	for {
		select {
		case <-ctx.Done():
			slog.Info("Headless execution completed", "frames", h.frameCount, "speed", h.lastSpeed, "warnings", len(h.warnings))
			return nil
		case img := <-notifier.Frames():
			h.frameCount++
			if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval == 0 {
				h.saveSnapshot(img)
			}
			if h.frameCount%10 == 0 {
				slog.Debug("Frame progress", "completed", h.frameCount, "total", h.maxFrames)
			}
			if h.maxFrames > 0 && h.frameCount >= h.maxFrames && !h.quitSent {
				h.quitSent = true
				host.RequestQuit()
			}
		case v := <-notifier.Speed():
			h.lastSpeed = v
			slog.Info("Speed", "max_speedup", v)
		case w := <-notifier.Warnings():
			h.warnings = append(h.warnings, w)
		}
	}
}

func (h *Backend) Cleanup() error {
	return nil
}

// FrameCount returns the number of frames received.
func (h *Backend) FrameCount() int {
	return h.frameCount
}

// Warnings returns every warning the host reported.
func (h *Backend) Warnings() []string {
	return h.warnings
}

// CreateSnapshotConfig creates a snapshot configuration from CLI parameters
func CreateSnapshotConfig(interval int, directory, romPath string) (SnapshotConfig, error) {
	config := SnapshotConfig{
		Enabled:  interval > 0,
		Interval: interval,
	}

	if !config.Enabled {
		return config, nil
	}

	if directory == "" {
		tempDir, err := os.MkdirTemp("", "jeebie-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		directory = tempDir
	}
	config.Directory = directory

	config.ROMName = filepath.Base(romPath)
	config.ROMName = strings.TrimSuffix(config.ROMName, filepath.Ext(config.ROMName))

	return config, nil
}

func (h *Backend) saveSnapshot(img *image.RGBA) {
	baseName := fmt.Sprintf("%s_frame_%d", h.snapshotConfig.ROMName, h.frameCount)
	if _, err := debug.SavePNG(h.fs, img, baseName, h.snapshotConfig.Directory, display.DefaultPixelScale); err != nil {
		slog.Error("Failed to save PNG snapshot", "frame", h.frameCount, "error", err)
	}
}
