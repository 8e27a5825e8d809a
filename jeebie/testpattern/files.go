package testpattern

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/valerio/go-jeebie/jeebie/core"
	"github.com/valerio/go-jeebie/jeebie/timing"
)

const (
	rtcFileSize  = 16
	stateVersion = 1
)

// rtcClock counts emulated seconds, advanced once per ~60 frames.
type rtcClock struct {
	Seconds uint64
	Frames  uint64
}

func (c *rtcClock) tick() {
	c.Frames++
	if c.Frames >= 60 {
		c.Frames = 0
		c.Seconds++
	}
}

func (m *Machine) SaveRAM(path string) error {
	return core.NewIOError("write", path, afero.WriteFile(m.fs, path, m.ram, 0o644))
}

func (m *Machine) LoadRAM(path string) error {
	data, err := afero.ReadFile(m.fs, path)
	if err != nil {
		return core.NewIOError("read", path, err)
	}
	if len(data) != RAMSize {
		return &core.FormatError{Path: path, Err: fmt.Errorf("ram size %d, want %d", len(data), RAMSize)}
	}
	copy(m.ram, data)
	return nil
}

func (m *Machine) SaveRTC(path string) error {
	buf := make([]byte, rtcFileSize)
	binary.LittleEndian.PutUint64(buf, m.rtc.Seconds)
	binary.LittleEndian.PutUint64(buf[8:], m.rtc.Frames)
	return core.NewIOError("write", path, afero.WriteFile(m.fs, path, buf, 0o644))
}

func (m *Machine) LoadRTC(path string) error {
	data, err := afero.ReadFile(m.fs, path)
	if err != nil {
		return core.NewIOError("read", path, err)
	}
	if len(data) != rtcFileSize {
		return &core.FormatError{Path: path, Err: fmt.Errorf("clock size %d, want %d", len(data), rtcFileSize)}
	}
	m.rtc.Seconds = binary.LittleEndian.Uint64(data)
	m.rtc.Frames = binary.LittleEndian.Uint64(data[8:])
	return nil
}

// RAM exposes the battery RAM for inspection.
func (m *Machine) RAM() []byte {
	return m.ram
}

// ClockSeconds returns the emulated real-time clock.
func (m *Machine) ClockSeconds() uint64 {
	return m.rtc.Seconds
}

type snapshot struct {
	Version  int
	Checksum uint32
	Cycles   uint64
	Frames   uint64
	Pattern  int
	ScrollX  int
	ScrollY  int
	RAM      []byte
	RTC      rtcClock
}

func (m *Machine) SaveState(path string) bool {
	if !m.loaded {
		return false
	}
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(snapshot{
		Version:  stateVersion,
		Checksum: m.checksum,
		Cycles:   m.cycles,
		Frames:   m.frames,
		Pattern:  m.pattern,
		ScrollX:  m.scrollX,
		ScrollY:  m.scrollY,
		RAM:      m.ram,
		RTC:      m.rtc,
	})
	if err != nil {
		slog.Error("Failed to encode state", "error", err)
		return false
	}
	if err := afero.WriteFile(m.fs, path, buf.Bytes(), 0o644); err != nil {
		slog.Error("Failed to write state", "path", path, "error", err)
		return false
	}
	return true
}

// LoadState restores a state saved by the same program.
func (m *Machine) LoadState(path string) bool {
	if !m.loaded {
		return false
	}
	data, err := afero.ReadFile(m.fs, path)
	if err != nil {
		slog.Error("Failed to read state", "path", path, "error", err)
		return false
	}
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		slog.Error("Failed to decode state", "path", path, "error", err)
		return false
	}
	if s.Version != stateVersion || s.Checksum != m.checksum || len(s.RAM) != RAMSize {
		slog.Error("State does not match the loaded program", "path", path)
		return false
	}

	m.cycles = s.Cycles
	m.frames = s.Frames
	m.pattern = s.Pattern
	m.scrollX, m.scrollY = s.ScrollX, s.ScrollY
	copy(m.ram, s.RAM)
	m.rtc = s.RTC
	m.frameCycles = m.cycles % timing.CyclesPerFrame
	m.reanchor()
	m.drawPattern()
	m.frameReady = true
	return true
}
