package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestButtons(t *testing.T) {
	var b Buttons
	b = b.With(ButtonA).With(DPadLeft).With(EmulatorQuit)

	assert.True(t, b.Pressed(ButtonA))
	assert.True(t, b.Pressed(DPadLeft))
	assert.False(t, b.Pressed(ButtonB))
	assert.False(t, b.Pressed(EmulatorQuit))
	assert.Equal(t, Buttons(1|1<<6), b)
}

func TestSlots(t *testing.T) {
	slot, ok := EmulatorSaveState3.SaveStateSlot()
	assert.True(t, ok)
	assert.Equal(t, 3, slot)

	slot, ok = EmulatorLoadState1.LoadStateSlot()
	assert.True(t, ok)
	assert.Equal(t, 1, slot)

	_, ok = EmulatorLoadState1.SaveStateSlot()
	assert.False(t, ok)

	ch, ok := AudioToggleChannel4.AudioChannel()
	assert.True(t, ok)
	assert.Equal(t, 3, ch)
}

func TestString(t *testing.T) {
	assert.Equal(t, "turbo", EmulatorTurboToggle.String())
	assert.Equal(t, "action(999)", Action(999).String())
}

func TestSlotConstructorsRoundTrip(t *testing.T) {
	for slot := 1; slot <= 4; slot++ {
		got, ok := SaveStateAction(slot).SaveStateSlot()
		assert.True(t, ok)
		assert.Equal(t, slot, got)

		got, ok = LoadStateAction(slot).LoadStateSlot()
		assert.True(t, ok)
		assert.Equal(t, slot, got)
	}
	for ch := 0; ch < 4; ch++ {
		got, ok := AudioToggleAction(ch).AudioChannel()
		assert.True(t, ok)
		assert.Equal(t, ch, got)
	}
	assert.Equal(t, None, SaveStateAction(0))
	assert.Equal(t, None, LoadStateAction(5))
	assert.Equal(t, None, AudioToggleAction(4))
}
