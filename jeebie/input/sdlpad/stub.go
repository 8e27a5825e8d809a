//go:build !sdl2

package sdlpad

import (
	"errors"

	"github.com/valerio/go-jeebie/jeebie/input"
)

// Source stub for when SDL2 is not available
type Source struct{}

// New returns an error indicating SDL2 is not available
func New() (*Source, error) {
	return nil, errors.New("SDL2 controllers not available - build with -tags sdl2 to enable")
}

func (s *Source) Events() []input.DeviceEvent { return nil }
func (s *Source) Enumerate() []int            { return nil }
func (s *Source) Close() error                { return nil }

func (s *Source) Open(int) (input.Pad, error) {
	return nil, errors.New("SDL2 controllers not available")
}
