package host

import (
	"fmt"

	"github.com/valerio/go-jeebie/jeebie/core"
	"github.com/valerio/go-jeebie/jeebie/debug"
	"github.com/valerio/go-jeebie/jeebie/display"
	"github.com/valerio/go-jeebie/jeebie/input/action"
)

const snapshotBaseName = "jeebie_snapshot"

// Hotkeys run on the host goroutine during an input drain, between batches.
func (l *Loop) bindHotkeys() {
	l.input.On(action.EmulatorReset, l.reset)
	for slot := 1; slot <= 4; slot++ {
		l.input.On(action.SaveStateAction(slot), func() { l.saveState(slot) })
		l.input.On(action.LoadStateAction(slot), func() { l.loadState(slot) })
	}
	for ch := 0; ch < core.ChannelCount; ch++ {
		l.input.On(action.AudioToggleAction(ch), func() { l.toggleChannel(ch) })
	}
	l.input.On(action.EmulatorTurboToggle, l.toggleTurbo)
	l.input.On(action.EmulatorSnapshot, l.snapshot)
	l.input.On(action.EmulatorQuit, l.RequestQuit)
}

func (l *Loop) reset() {
	if l.core.IsCartridgeLoaded() {
		l.core.Reset()
	}
}

func (l *Loop) saveState(slot int) {
	path, err := l.saves.PrepareStateSave(slot)
	if err != nil {
		l.warn(fmt.Sprintf("Unable to save savestate%d: %v", slot, err), "slot", slot, "error", err)
		return
	}
	if !l.core.SaveState(path) {
		l.warn(fmt.Sprintf("Unable to save savestate%d", slot), "slot", slot, "path", path)
	}
}

func (l *Loop) loadState(slot int) {
	if !l.saves.StateExists(slot) {
		l.warn(fmt.Sprintf("Savestate %d does not exist", slot), "slot", slot)
		return
	}
	path := l.saves.StatePath(slot)
	if !l.core.LoadState(path) {
		l.warn(fmt.Sprintf("Unable to load savestate%d", slot), "slot", slot, "path", path)
	}
}

func (l *Loop) toggleChannel(ch int) {
	l.core.MuteChannel(ch, !l.core.IsChannelMuted(ch))
}

// toggleTurbo switches between normal and turbo speed. Sound is paused
// while in turbo.
func (l *Loop) toggleTurbo() {
	if l.core.EmulationSpeed() == 1.0 {
		l.core.SetEmulationSpeed(l.cfg.TurboSpeed)
		if l.audio != nil {
			l.audio.SetPlaying(false)
		}
		return
	}
	l.core.SetEmulationSpeed(1.0)
	if l.audio != nil {
		l.audio.SetPlaying(true)
	}
}

func (l *Loop) snapshot() {
	if l.lastImage == nil {
		l.warn("Unable to take snapshot, no frame available")
		return
	}
	if _, err := debug.SavePNG(l.fs, l.lastImage, snapshotBaseName, l.cfg.SnapshotDir, display.DefaultPixelScale); err != nil {
		l.warn(fmt.Sprintf("Unable to save snapshot: %v", err), "error", err)
	}
}
