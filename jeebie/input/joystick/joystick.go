// Package joystick provides controllers through the operating system's
// joystick interface. It needs no cgo, which makes it the default source on
// builds without SDL.
package joystick

import (
	"fmt"
	"sort"
	"time"

	"github.com/0xcafed00d/joystick"
	"github.com/valerio/go-jeebie/jeebie/input"
	"github.com/valerio/go-jeebie/jeebie/input/action"
)

const (
	maxDevices    = 8
	probeInterval = time.Second
)

// Layout maps raw button bits and axes to emulated buttons. The defaults
// follow the common xpad layout.
type Layout struct {
	A, B, Select, Start int
	StickX, StickY      int
	HatX, HatY          int
}

var DefaultLayout = Layout{
	A: 0, B: 1, Select: 6, Start: 7,
	StickX: 0, StickY: 1,
	HatX: 6, HatY: 7,
}

type openFunc func(id int) (joystick.Joystick, error)

// Source discovers joysticks by probing device indices. The OS interface has
// no hot-plug notifications, so they are synthesized by comparing probes at
// most once per second.
type Source struct {
	layout    Layout
	open      openFunc
	present   map[int]bool
	lastProbe time.Time
	now       func() time.Time
}

func New(layout Layout) *Source {
	return &Source{
		layout:  layout,
		open:    joystick.Open,
		present: make(map[int]bool),
		now:     time.Now,
	}
}

func (s *Source) Events() []input.DeviceEvent {
	now := s.now()
	if !s.lastProbe.IsZero() && now.Sub(s.lastProbe) < probeInterval {
		return nil
	}
	s.lastProbe = now

	var events []input.DeviceEvent
	for id := 0; id < maxDevices; id++ {
		js, err := s.open(id)
		attached := err == nil
		if attached {
			js.Close()
		}
		if attached != s.present[id] {
			events = append(events, input.DeviceEvent{ID: id, Connected: attached})
		}
		if attached {
			s.present[id] = true
		} else {
			delete(s.present, id)
		}
	}
	return events
}

func (s *Source) Enumerate() []int {
	ids := make([]int, 0, len(s.present))
	for id := range s.present {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (s *Source) Open(id int) (input.Pad, error) {
	js, err := s.open(id)
	if err != nil {
		return nil, fmt.Errorf("open joystick %d: %w", id, err)
	}
	return &pad{id: id, js: js, layout: s.layout}, nil
}

func (s *Source) Close() error {
	return nil
}

type pad struct {
	id     int
	js     joystick.Joystick
	layout Layout
}

func (p *pad) ID() int      { return p.id }
func (p *pad) Name() string { return p.js.Name() }

func (p *pad) Close() error {
	p.js.Close()
	return nil
}

func (p *pad) Read() (input.PadState, error) {
	raw, err := p.js.Read()
	if err != nil {
		return input.PadState{}, fmt.Errorf("read joystick %d: %w", p.id, err)
	}
	return translate(raw, p.layout), nil
}

func translate(raw joystick.State, l Layout) input.PadState {
	var state input.PadState
	bit := func(n int) bool { return n >= 0 && n < 32 && raw.Buttons&(1<<uint(n)) != 0 }
	axis := func(n int) int {
		if n >= 0 && n < len(raw.AxisData) {
			return raw.AxisData[n]
		}
		return 0
	}

	if bit(l.A) {
		state.Buttons = state.Buttons.With(action.ButtonA)
	}
	if bit(l.B) {
		state.Buttons = state.Buttons.With(action.ButtonB)
	}
	if bit(l.Select) {
		state.Buttons = state.Buttons.With(action.ButtonSelect)
	}
	if bit(l.Start) {
		state.Buttons = state.Buttons.With(action.ButtonStart)
	}

	// The hat reports full deflection only.
	switch hx := axis(l.HatX); {
	case hx < 0:
		state.Buttons = state.Buttons.With(action.DPadLeft)
	case hx > 0:
		state.Buttons = state.Buttons.With(action.DPadRight)
	}
	switch hy := axis(l.HatY); {
	case hy < 0:
		state.Buttons = state.Buttons.With(action.DPadUp)
	case hy > 0:
		state.Buttons = state.Buttons.With(action.DPadDown)
	}

	state.AxisX = axis(l.StickX)
	state.AxisY = axis(l.StickY)
	return state
}
