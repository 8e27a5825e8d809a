// Package savedata decides where battery RAM, clock data and save states
// live on disk.
//
// Battery RAM and clock data rotate between two files per game. A save
// always goes to the older file, so a write that dies half way leaves the
// previous good copy untouched; a load always picks the newest.
package savedata

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/valerio/go-jeebie/jeebie/core"
)

const (
	// DefaultDataDir holds battery RAM and clock files.
	DefaultDataDir = "CARTRIDGE_DATA"
	// DefaultStateDir holds save states.
	DefaultStateDir = "Savestates"

	fileExt      = ".bin"
	stateNameFmt = "Savestate%d" + fileExt
)

// Kind selects the file family of a game.
type Kind int

const (
	KindRAM Kind = iota
	KindRTC
)

func (k Kind) Suffix() string {
	switch k {
	case KindRTC:
		return "_RTC"
	default:
		return "_ram"
	}
}

func (k Kind) String() string {
	switch k {
	case KindRTC:
		return "real time clock"
	default:
		return "ram"
	}
}

// SlotFile is a matching file found on disk.
type SlotFile struct {
	Path    string
	ModTime time.Time
}

// Config holds the directories the manager works in.
type Config struct {
	DataDir  string
	StateDir string
}

// Manager resolves save paths. It keeps no state between calls: every
// decision is taken from a fresh directory listing.
type Manager struct {
	fs  afero.Fs
	cfg Config
}

func New(fsys afero.Fs, cfg Config) *Manager {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	if cfg.StateDir == "" {
		cfg.StateDir = DefaultStateDir
	}
	return &Manager{fs: fsys, cfg: cfg}
}

func (m *Manager) Config() Config {
	return m.cfg
}

// GameName returns the stem of a program path, the key all save files of
// that program share.
func GameName(programPath string) (string, error) {
	base := filepath.Base(programPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if programPath == "" || stem == "" || stem == "." || stem == string(filepath.Separator) {
		return "", fmt.Errorf("no valid file name in program path %q", programPath)
	}
	return stem, nil
}

// ListSlots returns the regular files in baseDir whose stem is exactly
// gameName+suffix followed by one or more digits, newest first. A missing
// baseDir yields an empty list.
func (m *Manager) ListSlots(baseDir, gameName, suffix string) ([]SlotFile, error) {
	entries, err := afero.ReadDir(m.fs, baseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, core.NewIOError("list", baseDir, err)
	}

	pattern, err := regexp.Compile("^" + regexp.QuoteMeta(gameName+suffix) + `\d+$`)
	if err != nil {
		return nil, fmt.Errorf("compile slot pattern: %w", err)
	}

	var files []SlotFile
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}
		name := entry.Name()
		if !pattern.MatchString(strings.TrimSuffix(name, filepath.Ext(name))) {
			continue
		}
		files = append(files, SlotFile{
			Path:    filepath.Join(baseDir, name),
			ModTime: entry.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Path < files[j].Path
		}
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}

// PathForLoad returns the newest file of the given kind, if any.
func (m *Manager) PathForLoad(gameName string, kind Kind) (string, bool) {
	files, err := m.ListSlots(m.cfg.DataDir, gameName, kind.Suffix())
	if err != nil {
		slog.Warn("Unable to list save files", "dir", m.cfg.DataDir, "error", err)
		return "", false
	}
	if len(files) == 0 {
		return "", false
	}
	return files[0].Path, true
}

// PathForSave returns the file the next save of the given kind should
// overwrite, creating the data directory if needed. With fewer than two
// files the unused slot name is chosen; otherwise the oldest file.
func (m *Manager) PathForSave(gameName string, kind Kind) (string, error) {
	if err := m.fs.MkdirAll(m.cfg.DataDir, 0o755); err != nil {
		return "", core.NewIOError("create directory", m.cfg.DataDir, err)
	}

	files, err := m.ListSlots(m.cfg.DataDir, gameName, kind.Suffix())
	if err != nil {
		return "", err
	}

	if len(files) >= 2 {
		return files[len(files)-1].Path, nil
	}

	first := m.slotPath(gameName, kind, 0)
	if len(files) == 1 && files[0].Path == first {
		return m.slotPath(gameName, kind, 1), nil
	}
	return first, nil
}

func (m *Manager) slotPath(gameName string, kind Kind, index int) string {
	return filepath.Join(m.cfg.DataDir, fmt.Sprintf("%s%s%d%s", gameName, kind.Suffix(), index, fileExt))
}

// StatePath returns the save state file of a 1-based slot.
func (m *Manager) StatePath(slot int) string {
	return filepath.Join(m.cfg.StateDir, fmt.Sprintf(stateNameFmt, slot))
}

// PrepareStateSave creates the save state directory and returns the slot's
// file path.
func (m *Manager) PrepareStateSave(slot int) (string, error) {
	if err := m.fs.MkdirAll(m.cfg.StateDir, 0o755); err != nil {
		return "", core.NewIOError("create directory", m.cfg.StateDir, err)
	}
	return m.StatePath(slot), nil
}

// StateExists reports whether a save state file exists for the slot.
func (m *Manager) StateExists(slot int) bool {
	info, err := m.fs.Stat(m.StatePath(slot))
	return err == nil && info.Mode().IsRegular()
}
