// Package backend defines the front-ends that present the host loop to a
// user or a script.
package backend

import (
	"context"
	"log/slog"

	"github.com/valerio/go-jeebie/jeebie/host"
	"github.com/valerio/go-jeebie/jeebie/input"
)

// Host is the side of the host loop a backend talks to. Every method is
// safe to call from the backend's goroutine.
type Host interface {
	PostKeyEvent(code input.KeyID, pressed bool)
	RequestLoadProgram(path string)
	RequestQuit()
	State() host.State
	Notifier() *host.Notifier
}

// Backend is a complete front-end: it renders frames, reports speed and
// warnings, and turns platform input into key events.
type Backend interface {
	// Init prepares the backend. It must be called before Run.
	Init(config BackendConfig) error

	// Run consumes host notifications and feeds input until ctx is done.
	// The caller cancels ctx once the host loop has terminated.
	Run(ctx context.Context, h Host) error

	Cleanup() error
}

// BackendConfig holds settings shared by all backends.
type BackendConfig struct {
	Title string
	// LogLevel is the initial minimum level shown or written.
	LogLevel string
	// LogHandler, when set, is used by backends that write logs to the
	// console instead of their own handler.
	LogHandler slog.Handler
}
