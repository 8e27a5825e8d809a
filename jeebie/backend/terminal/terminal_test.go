package terminal

import (
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-jeebie/jeebie/backend"
	"github.com/valerio/go-jeebie/jeebie/host"
	"github.com/valerio/go-jeebie/jeebie/input"
)

type post struct {
	code    input.KeyID
	pressed bool
}

type fakeHost struct {
	posts    []post
	quits    int
	notifier *host.Notifier
}

func (h *fakeHost) PostKeyEvent(code input.KeyID, pressed bool) {
	h.posts = append(h.posts, post{code, pressed})
}
func (h *fakeHost) RequestLoadProgram(string) {}
func (h *fakeHost) RequestQuit()              { h.quits++ }
func (h *fakeHost) State() host.State         { return host.Running }
func (h *fakeHost) Notifier() *host.Notifier  { return h.notifier }

var _ backend.Backend = (*Backend)(nil)

func newTestBackend(t *testing.T) (*Backend, *fakeHost, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	b := NewWithScreen(screen)
	require.NoError(t, b.Init(backend.BackendConfig{Title: "tetris"}))
	t.Cleanup(func() { _ = b.Cleanup() })
	screen.SetSize(200, 80)

	h := &fakeHost{notifier: host.NewNotifier()}
	b.host = h
	return b, h, screen
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestKeyName(t *testing.T) {
	tests := []struct {
		ev       *tcell.EventKey
		expected input.KeyID
		ok       bool
	}{
		{runeKey('o'), "o", true},
		{runeKey('O'), "o", true},
		{runeKey(' '), "Space", true},
		{tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), "Enter", true},
		{tcell.NewEventKey(tcell.KeyF7, 0, tcell.ModNone), "F7", true},
		{tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone), "", false},
	}
	for _, tt := range tests {
		code, ok := keyName(tt.ev)
		assert.Equal(t, tt.ok, ok)
		assert.Equal(t, tt.expected, code)
	}
}

func TestButtonKeysReleaseAfterTimeout(t *testing.T) {
	b, h, _ := newTestBackend(t)
	start := time.Now()

	b.handleEvent(runeKey('o'), start)
	b.handleEvent(runeKey('o'), start.Add(50*time.Millisecond))
	assert.Equal(t, []post{{"o", true}}, h.posts, "repeats do not post again")

	b.releaseExpired(start.Add(100 * time.Millisecond))
	assert.Len(t, h.posts, 1, "a repeat refreshed the key")

	b.releaseExpired(start.Add(150 * time.Millisecond))
	assert.Equal(t, []post{{"o", true}, {"o", false}}, h.posts)
	assert.Empty(t, b.held)
}

func TestDirectionsAreExclusive(t *testing.T) {
	b, h, _ := newTestBackend(t)
	now := time.Now()

	b.handleEvent(runeKey('w'), now)
	b.handleEvent(runeKey('o'), now)
	b.handleEvent(runeKey('d'), now)

	assert.Equal(t, []post{{"w", true}, {"o", true}, {"w", false}, {"d", true}}, h.posts)
}

func TestHotkeysPressAndRelease(t *testing.T) {
	b, h, _ := newTestBackend(t)

	b.handleEvent(tcell.NewEventKey(tcell.KeyF2, 0, tcell.ModNone), time.Now())

	assert.Equal(t, []post{{"F2", true}, {"F2", false}}, h.posts)
	assert.Empty(t, b.held)
}

func TestQuitKeys(t *testing.T) {
	b, h, _ := newTestBackend(t)

	b.handleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), time.Now())
	b.handleEvent(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), time.Now())

	assert.Equal(t, 2, h.quits)
	assert.Empty(t, h.posts)
}

func TestLogLevelKeys(t *testing.T) {
	b, h, _ := newTestBackend(t)
	b.handleEvent(runeKey('-'), time.Now())
	assert.Equal(t, "WARN", b.logLevel.String())
	b.handleEvent(runeKey('+'), time.Now())
	b.handleEvent(runeKey('+'), time.Now())
	b.handleEvent(runeKey('+'), time.Now())
	assert.Equal(t, "DEBUG", b.logLevel.String())
	assert.Empty(t, h.posts)
}

func TestRenderFrameAndStatus(t *testing.T) {
	b, _, screen := newTestBackend(t)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{0xFF, 0xFF, 0xFF, 0xFF})
		}
	}
	img.Set(0, 0, color.RGBA{0, 0, 0, 0xFF})
	img.Set(0, 1, color.RGBA{0, 0, 0, 0xFF})
	b.frame = img
	b.stats.Add(2)
	b.stats.Add(4)
	b.warning = "Savestate 3 does not exist"
	b.warningAt = time.Now()

	b.render(time.Now())
	screen.Show()

	mainc, _, _, _ := screen.GetContent(0, 1)
	assert.Equal(t, '█', mainc)
	mainc, _, _, _ = screen.GetContent(1, 1)
	assert.Equal(t, '█', mainc)

	text := screenText(screen)
	assert.Contains(t, text, "tetris")
	assert.Contains(t, text, "State: running")
	assert.Contains(t, text, "Speed: 4.00x (avg 3.00x over 2)")
	assert.Contains(t, text, "Savestate 3 does not exist")
}

func TestRenderTooSmall(t *testing.T) {
	b, _, screen := newTestBackend(t)
	screen.SetSize(40, 10)

	b.render(time.Now())
	screen.Show()

	assert.Contains(t, screenText(screen), "Terminal too small")
}

func screenText(screen tcell.SimulationScreen) string {
	cells, w, _ := screen.GetContents()
	var sb strings.Builder
	for i, c := range cells {
		if i > 0 && i%w == 0 {
			sb.WriteByte('\n')
		}
		if len(c.Runes) > 0 {
			sb.WriteRune(c.Runes[0])
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}
