package input

import "github.com/valerio/go-jeebie/jeebie/input/action"

// KeyID names a physical key independently of the UI toolkit. Front-ends
// translate their native key codes into these names.
type KeyID string

// KeyEvent is a single key transition posted by a front-end.
type KeyEvent struct {
	Code    KeyID
	Pressed bool
}

// KeyStates holds the last known pressed state of every key that has
// appeared in an event. Keys never seen are absent and read as released.
type KeyStates map[KeyID]bool

// DefaultKeyMap provides default key bindings that work across front-ends.
var DefaultKeyMap = map[KeyID]action.Action{
	// Emulated buttons
	"o":     action.ButtonA,
	"p":     action.ButtonB,
	"Space": action.ButtonStart,
	"Enter": action.ButtonSelect,
	"w":     action.DPadUp,
	"s":     action.DPadDown,
	"a":     action.DPadLeft,
	"d":     action.DPadRight,

	// Emulator controls
	"r":      action.EmulatorReset,
	"F1":     action.EmulatorSaveState1,
	"F2":     action.EmulatorSaveState2,
	"F3":     action.EmulatorSaveState3,
	"F4":     action.EmulatorSaveState4,
	"F5":     action.EmulatorLoadState1,
	"F6":     action.EmulatorLoadState2,
	"F7":     action.EmulatorLoadState3,
	"F8":     action.EmulatorLoadState4,
	"F9":     action.AudioToggleChannel1,
	"F10":    action.AudioToggleChannel2,
	"F11":    action.AudioToggleChannel3,
	"F12":    action.AudioToggleChannel4,
	"t":      action.EmulatorTurboToggle,
	"c":      action.EmulatorSnapshot,
	"Escape": action.EmulatorQuit,
}

// GetDefaultMapping returns the default action for a key, if one exists
func GetDefaultMapping(key KeyID) (action.Action, bool) {
	act, ok := DefaultKeyMap[key]
	return act, ok
}

// DefaultBindings returns a fresh copy of DefaultKeyMap that callers may
// modify.
func DefaultBindings() map[KeyID]action.Action {
	out := make(map[KeyID]action.Action, len(DefaultKeyMap))
	for k, v := range DefaultKeyMap {
		out[k] = v
	}
	return out
}
