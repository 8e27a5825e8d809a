package host

import (
	"image"
	"log/slog"
)

const (
	speedQueue   = 4
	warningQueue = 32
)

// Notifier carries outbound events from the host goroutine to the UI. Sends
// never block the host: frames and speed readings coalesce to the newest
// value, warnings beyond the queue are dropped.
type Notifier struct {
	frames   chan *image.RGBA
	speed    chan float64
	warnings chan string
}

func NewNotifier() *Notifier {
	return &Notifier{
		frames:   make(chan *image.RGBA, 1),
		speed:    make(chan float64, speedQueue),
		warnings: make(chan string, warningQueue),
	}
}

// Frames delivers materialized images. A slow reader only ever sees the
// most recent one.
func (n *Notifier) Frames() <-chan *image.RGBA { return n.frames }

// Speed delivers the machine's maximum speedup about once per second.
func (n *Notifier) Speed() <-chan float64 { return n.speed }

// Warnings delivers human readable problems.
func (n *Notifier) Warnings() <-chan string { return n.warnings }

// The host goroutine is the only sender, so draining a full channel before
// sending cannot race with another send.
func (n *Notifier) publishFrame(img *image.RGBA) {
	select {
	case n.frames <- img:
		return
	default:
	}
	select {
	case <-n.frames:
	default:
	}
	select {
	case n.frames <- img:
	default:
	}
}

func (n *Notifier) publishSpeed(v float64) {
	select {
	case n.speed <- v:
		return
	default:
	}
	select {
	case <-n.speed:
	default:
	}
	select {
	case n.speed <- v:
	default:
	}
}

func (n *Notifier) publishWarning(msg string) {
	select {
	case n.warnings <- msg:
	default:
		slog.Debug("Warning queue full, dropping", "warning", msg)
	}
}
