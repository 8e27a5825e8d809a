package input

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-jeebie/jeebie/input/action"
)

type recordingSink struct {
	calls []action.Buttons
}

func (s *recordingSink) SetButtons(b action.Buttons) {
	s.calls = append(s.calls, b)
}

func TestBridge_HotkeyEdges(t *testing.T) {
	tests := []struct {
		name          string
		events        []KeyEvent
		expectedFires int
	}{
		{
			name:          "single press fires once",
			events:        []KeyEvent{{"r", true}},
			expectedFires: 1,
		},
		{
			name:          "key repeat fires once",
			events:        []KeyEvent{{"r", true}, {"r", true}, {"r", true}},
			expectedFires: 1,
		},
		{
			name:          "press release press in one batch fires twice",
			events:        []KeyEvent{{"r", true}, {"r", false}, {"r", true}},
			expectedFires: 2,
		},
		{
			name:          "release alone does nothing",
			events:        []KeyEvent{{"r", false}},
			expectedFires: 0,
		},
		{
			name:          "other keys do not fire",
			events:        []KeyEvent{{"o", true}, {"z", true}},
			expectedFires: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBridge(nil)
			fires := 0
			b.On(action.EmulatorReset, func() { fires++ })

			for _, ev := range tt.events {
				b.PostEvent(ev.Code, ev.Pressed)
			}
			b.DrainAndApply()

			assert.Equal(t, tt.expectedFires, fires)
			assert.Zero(t, b.Pending())
		})
	}
}

func TestBridge_HeldKeyAcrossDrains(t *testing.T) {
	b := NewBridge(nil)
	fires := 0
	b.On(action.EmulatorSaveState1, func() { fires++ })

	b.PostEvent("F1", true)
	b.DrainAndApply()
	b.PostEvent("F1", true)
	b.DrainAndApply()
	b.DrainAndApply()
	assert.Equal(t, 1, fires)

	b.PostEvent("F1", false)
	b.DrainAndApply()
	b.PostEvent("F1", true)
	b.DrainAndApply()
	assert.Equal(t, 2, fires)
}

func TestBridge_MultipleHandlersRunInOrder(t *testing.T) {
	b := NewBridge(nil)
	var order []int
	b.On(action.EmulatorQuit, func() { order = append(order, 1) })
	b.On(action.EmulatorQuit, func() { order = append(order, 2) })

	b.PostEvent("Escape", true)
	b.DrainAndApply()

	assert.Equal(t, []int{1, 2}, order)
}

func TestBridge_DerivedButtons(t *testing.T) {
	b := NewBridge(nil)
	sink := &recordingSink{}
	b.SetSink(sink)

	b.PostEvent("o", true)
	b.PostEvent("w", true)
	b.PostEvent("Space", true)
	b.PostEvent("Space", false)
	b.DrainAndApply()

	require.Len(t, sink.calls, 1)
	got := sink.calls[0]
	assert.True(t, got.Pressed(action.ButtonA))
	assert.True(t, got.Pressed(action.DPadUp))
	assert.False(t, got.Pressed(action.ButtonStart))
	assert.Equal(t, got, b.Buttons())

	// State persists when nothing new arrives.
	b.DrainAndApply()
	require.Len(t, sink.calls, 2)
	assert.Equal(t, got, sink.calls[1])
}

func TestBridge_SparseKeyMap(t *testing.T) {
	b := NewBridge(nil)
	b.PostEvent("q", false)
	b.DrainAndApply()

	assert.Len(t, b.keys, 1)
	assert.False(t, b.IsPressed("q"))
	assert.False(t, b.IsPressed("never-seen"))
}

func TestBridge_Rebind(t *testing.T) {
	b := NewBridge(map[KeyID]action.Action{})
	b.Bind("k", action.ButtonB)
	b.PostEvent("k", true)
	b.DrainAndApply()
	assert.True(t, b.Buttons().Pressed(action.ButtonB))
}

func TestBridge_ConcurrentPostsAreNeverLost(t *testing.T) {
	b := NewBridge(map[KeyID]action.Action{})
	const producers, perProducer = 8, 500

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				b.PostEvent("x", i%2 == 0)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, producers*perProducer, b.Pending())
	b.DrainAndApply()
	assert.Zero(t, b.Pending())
}

func TestBridge_ConcurrentPostsDuringDrains(t *testing.T) {
	const producers, pairs = 8, 2000
	b := NewBridge(map[KeyID]action.Action{})
	fires := 0
	b.On(action.EmulatorReset, func() { fires++ })
	for p := 0; p < producers; p++ {
		b.Bind(KeyID(fmt.Sprintf("key%d", p)), action.EmulatorReset)
	}

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(code KeyID) {
			defer wg.Done()
			for i := 0; i < pairs; i++ {
				b.PostEvent(code, true)
				b.PostEvent(code, false)
			}
		}(KeyID(fmt.Sprintf("key%d", p)))
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	drains := 0
	for running := true; running; drains++ {
		select {
		case <-done:
			running = false
		default:
		}
		b.DrainAndApply()
	}

	assert.Equal(t, producers*pairs, fires, "every press fires exactly once")
	assert.Zero(t, b.Pending())
	assert.Greater(t, drains, 1)
	for p := 0; p < producers; p++ {
		assert.False(t, b.IsPressed(KeyID(fmt.Sprintf("key%d", p))))
	}
}

func TestBridge_Discard(t *testing.T) {
	b := NewBridge(nil)
	fires := 0
	b.On(action.EmulatorReset, func() { fires++ })

	b.PostEvent("o", true)
	b.DrainAndApply()
	b.PostEvent("r", true)
	b.PostEvent("o", false)

	assert.Equal(t, 2, b.Discard())
	assert.Zero(t, b.Pending())
	b.DrainAndApply()

	assert.Zero(t, fires)
	assert.True(t, b.IsPressed("o"), "key state is kept")
}

func TestBridge_PostDuringDrainIsKeptForNextDrain(t *testing.T) {
	b := NewBridge(nil)
	fires := 0
	b.On(action.EmulatorReset, func() {
		fires++
		b.PostEvent("r", false)
	})

	b.PostEvent("r", true)
	b.DrainAndApply()
	assert.Equal(t, 1, b.Pending())

	b.DrainAndApply()
	assert.False(t, b.IsPressed("r"))
	assert.Equal(t, 1, fires)
}

func TestDefaultBindingsIsACopy(t *testing.T) {
	m := DefaultBindings()
	m["o"] = action.None
	act, ok := GetDefaultMapping("o")
	require.True(t, ok)
	assert.Equal(t, action.ButtonA, act)
}
