package input

import (
	"log/slog"

	"github.com/valerio/go-jeebie/jeebie/input/action"
)

// DefaultDeadzone is the analog stick magnitude past which the stick counts
// as a D-pad press.
const DefaultDeadzone = 20000

// PadState is a snapshot of a controller. Buttons carries the digital
// buttons already translated to emulated buttons; the axes are the left
// stick in the range [-32768, 32767].
type PadState struct {
	Buttons action.Buttons
	AxisX   int
	AxisY   int
}

// DeviceEvent is a hot-plug notification.
type DeviceEvent struct {
	ID        int
	Connected bool
}

// Pad is an opened controller.
type Pad interface {
	ID() int
	Name() string
	Read() (PadState, error)
	Close() error
}

// ControllerSource is a platform controller API.
type ControllerSource interface {
	// Events drains the hot-plug notifications received since the last call.
	Events() []DeviceEvent
	// Enumerate lists the compatible controllers currently attached, in
	// platform order.
	Enumerate() []int
	Open(id int) (Pad, error)
	Close() error
}

// ControllerHub keeps at most one controller bound and merges its state into
// the emulated buttons. Like the key state it is owned by the host goroutine.
type ControllerHub struct {
	source   ControllerSource
	pad      Pad
	deadzone int
	state    PadState
	primed   bool
}

func NewControllerHub(source ControllerSource, deadzone int) *ControllerHub {
	if deadzone <= 0 {
		deadzone = DefaultDeadzone
	}
	return &ControllerHub{
		source:   source,
		deadzone: deadzone,
	}
}

// Refresh handles pending hot-plug notifications and reads the bound
// controller. When no controller is bound, the first compatible one is.
func (h *ControllerHub) Refresh() {
	if h.source == nil {
		return
	}

	events := h.source.Events()
	for _, ev := range events {
		if !ev.Connected && h.pad != nil && ev.ID == h.pad.ID() {
			slog.Info("Controller disconnected", "name", h.pad.Name())
			h.release()
		}
	}
	if h.pad == nil && (len(events) > 0 || !h.primed) {
		h.bindFirst()
	}
	h.primed = true

	h.state = PadState{}
	if h.pad == nil {
		return
	}
	state, err := h.pad.Read()
	if err != nil {
		slog.Warn("Controller read failed, unbinding", "name", h.pad.Name(), "error", err)
		h.release()
		return
	}
	h.state = state
}

// Buttons returns the emulated buttons held on the bound controller,
// including stick directions past the deadzone.
func (h *ControllerHub) Buttons() action.Buttons {
	b := h.state.Buttons
	if h.state.AxisX < -h.deadzone {
		b = b.With(action.DPadLeft)
	}
	if h.state.AxisX > h.deadzone {
		b = b.With(action.DPadRight)
	}
	if h.state.AxisY < -h.deadzone {
		b = b.With(action.DPadUp)
	}
	if h.state.AxisY > h.deadzone {
		b = b.With(action.DPadDown)
	}
	return b
}

// Bound returns the bound controller, or nil.
func (h *ControllerHub) Bound() Pad {
	return h.pad
}

// Close releases the bound controller and the platform source.
func (h *ControllerHub) Close() error {
	h.release()
	if h.source == nil {
		return nil
	}
	return h.source.Close()
}

func (h *ControllerHub) bindFirst() {
	for _, id := range h.source.Enumerate() {
		pad, err := h.source.Open(id)
		if err != nil {
			slog.Debug("Skipping controller", "id", id, "error", err)
			continue
		}
		h.pad = pad
		slog.Info("Controller bound", "id", id, "name", pad.Name())
		return
	}
}

func (h *ControllerHub) release() {
	if h.pad == nil {
		return
	}
	if err := h.pad.Close(); err != nil {
		slog.Debug("Controller close failed", "error", err)
	}
	h.pad = nil
	h.state = PadState{}
}
