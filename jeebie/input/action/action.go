package action

import "fmt"

// Action represents input actions that can be performed in the emulator
type Action int

const (
	None Action = iota

	// Emulated hardware controls
	ButtonA
	ButtonB
	ButtonStart
	ButtonSelect
	DPadUp
	DPadDown
	DPadLeft
	DPadRight

	// Emulator features, fired on a fresh key press
	EmulatorReset
	EmulatorSaveState1
	EmulatorSaveState2
	EmulatorSaveState3
	EmulatorSaveState4
	EmulatorLoadState1
	EmulatorLoadState2
	EmulatorLoadState3
	EmulatorLoadState4
	AudioToggleChannel1
	AudioToggleChannel2
	AudioToggleChannel3
	AudioToggleChannel4
	EmulatorTurboToggle
	EmulatorSnapshot
	EmulatorQuit
)

var names = map[Action]string{
	None:                "none",
	ButtonA:             "A",
	ButtonB:             "B",
	ButtonStart:         "Start",
	ButtonSelect:        "Select",
	DPadUp:              "Up",
	DPadDown:            "Down",
	DPadLeft:            "Left",
	DPadRight:           "Right",
	EmulatorReset:       "reset",
	EmulatorSaveState1:  "save state 1",
	EmulatorSaveState2:  "save state 2",
	EmulatorSaveState3:  "save state 3",
	EmulatorSaveState4:  "save state 4",
	EmulatorLoadState1:  "load state 1",
	EmulatorLoadState2:  "load state 2",
	EmulatorLoadState3:  "load state 3",
	EmulatorLoadState4:  "load state 4",
	AudioToggleChannel1: "toggle channel 1",
	AudioToggleChannel2: "toggle channel 2",
	AudioToggleChannel3: "toggle channel 3",
	AudioToggleChannel4: "toggle channel 4",
	EmulatorTurboToggle: "turbo",
	EmulatorSnapshot:    "snapshot",
	EmulatorQuit:        "quit",
}

func (a Action) String() string {
	if n, ok := names[a]; ok {
		return n
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// IsButton reports whether the action maps to one of the emulated buttons.
func (a Action) IsButton() bool {
	return a >= ButtonA && a <= DPadRight
}

// SaveStateSlot returns the 1-based slot of a save state action.
func (a Action) SaveStateSlot() (int, bool) {
	if a >= EmulatorSaveState1 && a <= EmulatorSaveState4 {
		return int(a-EmulatorSaveState1) + 1, true
	}
	return 0, false
}

// LoadStateSlot returns the 1-based slot of a load state action.
func (a Action) LoadStateSlot() (int, bool) {
	if a >= EmulatorLoadState1 && a <= EmulatorLoadState4 {
		return int(a-EmulatorLoadState1) + 1, true
	}
	return 0, false
}

// AudioChannel returns the 0-based channel of a mute toggle action.
func (a Action) AudioChannel() (int, bool) {
	if a >= AudioToggleChannel1 && a <= AudioToggleChannel4 {
		return int(a - AudioToggleChannel1), true
	}
	return 0, false
}

// SaveStateAction returns the save state action for a 1-based slot, or None.
func SaveStateAction(slot int) Action {
	if slot < 1 || slot > 4 {
		return None
	}
	return EmulatorSaveState1 + Action(slot-1)
}

// LoadStateAction returns the load state action for a 1-based slot, or None.
func LoadStateAction(slot int) Action {
	if slot < 1 || slot > 4 {
		return None
	}
	return EmulatorLoadState1 + Action(slot-1)
}

// AudioToggleAction returns the mute toggle for a 0-based channel, or None.
func AudioToggleAction(channel int) Action {
	if channel < 0 || channel > 3 {
		return None
	}
	return AudioToggleChannel1 + Action(channel)
}

// Buttons is the logical button state handed to the emulated machine.
type Buttons uint8

func buttonBit(a Action) Buttons {
	if !a.IsButton() {
		return 0
	}
	return 1 << uint(a-ButtonA)
}

// With returns b with the button for a pressed.
func (b Buttons) With(a Action) Buttons {
	return b | buttonBit(a)
}

// Pressed reports whether the button for a is held.
func (b Buttons) Pressed(a Action) bool {
	bit := buttonBit(a)
	return bit != 0 && b&bit != 0
}

// AllButtons lists the emulated buttons in bit order.
var AllButtons = []Action{
	ButtonA, ButtonB, ButtonStart, ButtonSelect,
	DPadUp, DPadDown, DPadLeft, DPadRight,
}
