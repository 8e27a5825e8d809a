// Package device plays an audio.Bridge through the system audio output.
package device

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/valerio/go-jeebie/jeebie/audio"
)

// DefaultBufferSize keeps latency low while leaving room for scheduling
// hiccups on the player goroutine.
const DefaultBufferSize = 40 * time.Millisecond

// Device is an oto player pulling from a reader on oto's own goroutine.
// There is a single oto context per process, so only one Device may be
// opened.
type Device struct {
	ctx    *oto.Context
	player *oto.Player
}

// Open creates the audio context and starts playing r. It blocks until the
// platform audio stack is ready.
func Open(r io.Reader, bufferSize time.Duration) (*Device, error) {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   audio.SampleRate,
		ChannelCount: audio.ChannelCount,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   bufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("create audio context: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(r)
	bytes := int(bufferSize.Seconds()*audio.SampleRate) * audio.BytesPerFrame
	player.SetBufferSize(bytes)
	player.Play()

	slog.Info("Audio device opened", "sample_rate", audio.SampleRate, "buffer", bufferSize)
	return &Device{ctx: ctx, player: player}, nil
}

// Play resumes a paused device.
func (d *Device) Play() {
	d.player.Play()
}

// Pause stops pulling samples while keeping the device open.
func (d *Device) Pause() {
	d.player.Pause()
}

// Close stops playback. The oto context itself lives until process exit.
func (d *Device) Close() error {
	if err := d.player.Close(); err != nil {
		return fmt.Errorf("close audio player: %w", err)
	}
	return nil
}

var _ audio.Device = (*Device)(nil)
