//go:build sdl2

// Package sdlpad provides controllers through SDL's game controller API,
// which maps most pads to a common layout.
// Note: building this requires SDL2 development libraries installed.
package sdlpad

import (
	"fmt"

	"github.com/valerio/go-jeebie/jeebie/input"
	"github.com/valerio/go-jeebie/jeebie/input/action"
	"github.com/veandco/go-sdl2/sdl"
)

// Source pumps SDL controller events. Added events carry a device index,
// removed events an instance id; pads report their instance id so removals
// match the bound pad.
type Source struct{}

func New() (*Source, error) {
	if err := sdl.Init(sdl.INIT_GAMECONTROLLER); err != nil {
		return nil, fmt.Errorf("initialize SDL game controllers: %w", err)
	}
	return &Source{}, nil
}

func (s *Source) Events() []input.DeviceEvent {
	var events []input.DeviceEvent
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		cev, ok := ev.(*sdl.ControllerDeviceEvent)
		if !ok {
			continue
		}
		switch cev.Type {
		case sdl.CONTROLLERDEVICEADDED:
			events = append(events, input.DeviceEvent{ID: int(cev.Which), Connected: true})
		case sdl.CONTROLLERDEVICEREMOVED:
			events = append(events, input.DeviceEvent{ID: int(cev.Which), Connected: false})
		}
	}
	return events
}

func (s *Source) Enumerate() []int {
	var ids []int
	for i := 0; i < sdl.NumJoysticks(); i++ {
		if sdl.IsGameController(i) {
			ids = append(ids, i)
		}
	}
	return ids
}

func (s *Source) Open(index int) (input.Pad, error) {
	gc := sdl.GameControllerOpen(index)
	if gc == nil {
		return nil, fmt.Errorf("open game controller %d: %w", index, sdl.GetError())
	}
	return &pad{gc: gc, id: int(gc.Joystick().InstanceID())}, nil
}

func (s *Source) Close() error {
	sdl.QuitSubSystem(sdl.INIT_GAMECONTROLLER)
	return nil
}

type pad struct {
	gc *sdl.GameController
	id int
}

func (p *pad) ID() int      { return p.id }
func (p *pad) Name() string { return p.gc.Name() }

func (p *pad) Close() error {
	p.gc.Close()
	return nil
}

var buttonMap = []struct {
	button sdl.GameControllerButton
	act    action.Action
}{
	{sdl.CONTROLLER_BUTTON_A, action.ButtonA},
	{sdl.CONTROLLER_BUTTON_B, action.ButtonB},
	{sdl.CONTROLLER_BUTTON_START, action.ButtonStart},
	{sdl.CONTROLLER_BUTTON_BACK, action.ButtonSelect},
	{sdl.CONTROLLER_BUTTON_DPAD_UP, action.DPadUp},
	{sdl.CONTROLLER_BUTTON_DPAD_DOWN, action.DPadDown},
	{sdl.CONTROLLER_BUTTON_DPAD_LEFT, action.DPadLeft},
	{sdl.CONTROLLER_BUTTON_DPAD_RIGHT, action.DPadRight},
}

func (p *pad) Read() (input.PadState, error) {
	if !p.gc.Attached() {
		return input.PadState{}, fmt.Errorf("game controller %d detached", p.id)
	}
	var state input.PadState
	for _, m := range buttonMap {
		if p.gc.Button(m.button) != 0 {
			state.Buttons = state.Buttons.With(m.act)
		}
	}
	state.AxisX = int(p.gc.Axis(sdl.CONTROLLER_AXIS_LEFTX))
	state.AxisY = int(p.gc.Axis(sdl.CONTROLLER_AXIS_LEFTY))
	return state, nil
}
