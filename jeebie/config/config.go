// Package config holds the runtime settings of the emulator host.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/valerio/go-jeebie/jeebie/audio"
	"github.com/valerio/go-jeebie/jeebie/input"
	"github.com/valerio/go-jeebie/jeebie/savedata"
	"github.com/valerio/go-jeebie/jeebie/timing"
)

const (
	appName        = "jeebie"
	configFileName = "config.json"
)

// Config is the complete host configuration. Defaults come from Default,
// are overlaid by an optional JSON file, then by command line flags.
type Config struct {
	DataDir  string `json:"data_dir"`
	StateDir string `json:"state_dir"`
	CacheDir string `json:"cache_dir"`
	// SnapshotDir receives PNG snapshots; empty means the working directory.
	SnapshotDir string `json:"snapshot_dir"`

	StepsPerBatch        int      `json:"steps_per_batch"`
	SpeedReportInterval  Duration `json:"speed_report_interval"`
	InputDrainInterval   Duration `json:"input_drain_interval"`
	RequestCheckInterval Duration `json:"request_check_interval"`

	Volume      int      `json:"volume"`
	AudioBuffer Duration `json:"audio_buffer"`
	FrameSkip   int      `json:"frame_skip"`
	TurboSpeed  float64  `json:"turbo_speed"`
	Deadzone    int      `json:"deadzone"`
	Controller  string   `json:"controller"`
}

// Controller sources.
const (
	ControllerNone     = "none"
	ControllerJoystick = "joystick"
	ControllerSDL      = "sdl2"
)

// Default returns the configuration used when nothing is overridden. Save
// data lives under the XDG data home.
func Default() Config {
	base := filepath.Join(xdg.DataHome, appName)
	return Config{
		DataDir:  filepath.Join(base, savedata.DefaultDataDir),
		StateDir: filepath.Join(base, savedata.DefaultStateDir),
		CacheDir: filepath.Join(xdg.CacheHome, appName),

		StepsPerBatch:        timing.StepsPerBatch,
		SpeedReportInterval:  Duration(timing.SpeedReportInterval),
		InputDrainInterval:   Duration(timing.InputDrainInterval),
		RequestCheckInterval: Duration(timing.RequestCheckInterval),

		Volume:      audio.DefaultVolume,
		AudioBuffer: Duration(40 * time.Millisecond),
		FrameSkip:   1,
		TurboSpeed:  5.0,
		Deadzone:    input.DefaultDeadzone,
		Controller:  ControllerJoystick,
	}
}

// DefaultPath returns the config file location under the XDG config home.
func DefaultPath() (string, error) {
	return xdg.ConfigFile(filepath.Join(appName, configFileName))
}

// Load overlays the JSON file at path onto the defaults. A missing file
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Save writes the configuration as indented JSON.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate rejects values the host loop cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is empty"))
	}
	if c.StateDir == "" {
		errs = append(errs, errors.New("state_dir is empty"))
	}
	if c.StepsPerBatch <= 0 {
		errs = append(errs, fmt.Errorf("steps_per_batch must be positive, got %d", c.StepsPerBatch))
	}
	for name, d := range map[string]Duration{
		"speed_report_interval":  c.SpeedReportInterval,
		"input_drain_interval":   c.InputDrainInterval,
		"request_check_interval": c.RequestCheckInterval,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, time.Duration(d)))
		}
	}
	if c.Volume < 0 {
		errs = append(errs, fmt.Errorf("volume must not be negative, got %d", c.Volume))
	}
	if c.FrameSkip < 1 {
		errs = append(errs, fmt.Errorf("frame_skip must be at least 1, got %d", c.FrameSkip))
	}
	if c.TurboSpeed <= 0 {
		errs = append(errs, fmt.Errorf("turbo_speed must be positive, got %g", c.TurboSpeed))
	}
	switch c.Controller {
	case ControllerNone, ControllerJoystick, ControllerSDL:
	default:
		errs = append(errs, fmt.Errorf("unknown controller source %q", c.Controller))
	}
	return errors.Join(errs...)
}

// SaveData returns the directories for the save data manager.
func (c Config) SaveData() savedata.Config {
	return savedata.Config{DataDir: c.DataDir, StateDir: c.StateDir}
}

// Duration is a time.Duration written as a string like "10ms" in JSON.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
