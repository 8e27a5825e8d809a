package testpattern

import (
	"github.com/valerio/go-jeebie/jeebie/audio"
	"github.com/valerio/go-jeebie/jeebie/input/action"
	"github.com/valerio/go-jeebie/jeebie/timing"
)

// Each channel is a square wave held while its button is down.
var channels = [...]struct {
	button action.Action
	hz     uint32
}{
	{action.ButtonA, 262},
	{action.ButtonB, 330},
	{action.ButtonStart, 392},
	{action.ButtonSelect, 523},
}

// toneAmplitude leaves headroom for four channels after the bridge's volume
// scaling.
const toneAmplitude = 500

func (m *Machine) produceSamples(cycles uint64) {
	m.sampleAcc += cycles * audio.SampleRate
	for m.sampleAcc >= timing.CPUFrequency {
		m.sampleAcc -= timing.CPUFrequency
		s := m.nextSample()
		// A full buffer means the device is paused or running behind.
		m.samples.Push(audio.Frame{Left: s, Right: s})
	}
}

func (m *Machine) nextSample() int16 {
	var mix int32
	for i, ch := range channels {
		if m.muted[i] || !m.buttons.Pressed(ch.button) {
			continue
		}
		m.phases[i] += ch.hz
		if m.phases[i] >= audio.SampleRate {
			m.phases[i] -= audio.SampleRate
		}
		if m.phases[i] < audio.SampleRate/2 {
			mix += toneAmplitude
		} else {
			mix -= toneAmplitude
		}
	}
	return int16(mix)
}
