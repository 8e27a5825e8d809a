package input

import (
	"log/slog"
	"sync"

	"github.com/valerio/go-jeebie/jeebie/input/action"
)

// ButtonSink receives the logical button state computed on every drain.
type ButtonSink interface {
	SetButtons(action.Buttons)
}

// Bridge carries key events from UI goroutines to the host goroutine.
//
// PostEvent may be called from any goroutine and only holds the queue lock
// long enough to append. Everything else belongs to the host goroutine: the
// key state map, the bindings, the hotkey handlers and the controller hub.
type Bridge struct {
	mu      sync.Mutex
	pending []KeyEvent
	spare   []KeyEvent

	keys        KeyStates
	bindings    map[KeyID]action.Action
	handlers    map[action.Action][]func()
	controllers *ControllerHub
	sink        ButtonSink
	buttons     action.Buttons
}

// NewBridge creates a bridge using the given key bindings. A nil map means
// DefaultBindings.
func NewBridge(bindings map[KeyID]action.Action) *Bridge {
	if bindings == nil {
		bindings = DefaultBindings()
	}
	return &Bridge{
		keys:     make(KeyStates),
		bindings: bindings,
		handlers: make(map[action.Action][]func()),
	}
}

// PostEvent queues a key transition. It never blocks on host progress and
// never drops events.
func (b *Bridge) PostEvent(code KeyID, pressed bool) {
	b.mu.Lock()
	b.pending = append(b.pending, KeyEvent{Code: code, Pressed: pressed})
	b.mu.Unlock()
}

// Pending returns the number of queued events.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Discard drops the queued events without applying them and returns how
// many there were. The key state is left as it is.
func (b *Bridge) Discard() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.pending)
	b.pending = b.pending[:0]
	return n
}

// On registers a callback for a hotkey action. Several callbacks may be
// registered for the same action; they run in registration order.
func (b *Bridge) On(act action.Action, callback func()) {
	b.handlers[act] = append(b.handlers[act], callback)
}

// Bind maps a key to an action, replacing any previous binding.
func (b *Bridge) Bind(code KeyID, act action.Action) {
	b.bindings[code] = act
}

// SetSink sets where the derived button state is pushed after each drain.
func (b *Bridge) SetSink(sink ButtonSink) {
	b.sink = sink
}

// SetControllers attaches a controller hub whose state is merged with the
// keyboard on every drain.
func (b *Bridge) SetControllers(hub *ControllerHub) {
	b.controllers = hub
}

// DrainAndApply replays every queued event in arrival order. A hotkey fires
// once for each press of a key that was released immediately before that
// event; key repeat and repeated presses without a release do nothing.
// Finally the derived buttons are pushed to the sink.
func (b *Bridge) DrainAndApply() {
	b.mu.Lock()
	events := b.pending
	b.pending = b.spare[:0]
	b.mu.Unlock()

	for _, ev := range events {
		wasPressed := b.keys[ev.Code]
		b.keys[ev.Code] = ev.Pressed
		if ev.Pressed && !wasPressed {
			b.trigger(b.bindings[ev.Code])
		}
	}
	b.spare = events[:0]

	buttons := b.keyboardButtons()
	if b.controllers != nil {
		b.controllers.Refresh()
		buttons |= b.controllers.Buttons()
	}
	b.buttons = buttons
	if b.sink != nil {
		b.sink.SetButtons(buttons)
	}
}

// Buttons returns the button state computed by the last drain.
func (b *Bridge) Buttons() action.Buttons {
	return b.buttons
}

// IsPressed reports the last known state of a key.
func (b *Bridge) IsPressed(code KeyID) bool {
	return b.keys[code]
}

func (b *Bridge) trigger(act action.Action) {
	if act == action.None || act.IsButton() {
		return
	}
	callbacks := b.handlers[act]
	if len(callbacks) == 0 {
		slog.Debug("Unhandled hotkey", "action", act)
		return
	}
	for _, callback := range callbacks {
		callback()
	}
}

func (b *Bridge) keyboardButtons() action.Buttons {
	var buttons action.Buttons
	for code, act := range b.bindings {
		if act.IsButton() && b.keys[code] {
			buttons = buttons.With(act)
		}
	}
	return buttons
}
