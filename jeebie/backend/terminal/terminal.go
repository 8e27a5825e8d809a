// Package terminal renders the emulated display in a terminal with tcell.
package terminal

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-jeebie/jeebie/backend"
	"github.com/valerio/go-jeebie/jeebie/display"
	"github.com/valerio/go-jeebie/jeebie/host"
	"github.com/valerio/go-jeebie/jeebie/input"
	"github.com/valerio/go-jeebie/jeebie/input/action"
	"github.com/valerio/go-jeebie/jeebie/render"
	"github.com/valerio/go-jeebie/jeebie/timing"
	"github.com/valerio/go-jeebie/jeebie/video"
)

const (
	width     = video.FramebufferWidth
	height    = video.FramebufferHeight
	frameTime = time.Second / 60

	statusHeight  = 7
	minTermWidth  = 80
	minTermHeight = 24
	logCapacity   = 100
	warningShown  = 5 * time.Second

	// Terminals report presses only. A held key is released once no repeat
	// arrived for this long; slightly longer than a typical repeat interval.
	keyTimeout = 100 * time.Millisecond
)

// Backend implements backend.Backend using tcell.
type Backend struct {
	screen    tcell.Screen
	logBuffer *render.LogBuffer
	logLevel  slog.Level
	config    backend.BackendConfig

	host  backend.Host
	held  map[input.KeyID]time.Time
	frame *image.RGBA
	stats *host.SpeedStats

	warning   string
	warningAt time.Time
}

// New creates a terminal backend on the real terminal.
func New() *Backend {
	return &Backend{logLevel: slog.LevelInfo}
}

// NewWithScreen creates a backend drawing to screen, which Init takes over.
func NewWithScreen(screen tcell.Screen) *Backend {
	return &Backend{screen: screen, logLevel: slog.LevelInfo}
}

func (t *Backend) Init(config backend.BackendConfig) error {
	t.config = config
	t.held = make(map[input.KeyID]time.Time)
	t.stats = host.NewSpeedStats(host.DefaultSpeedWindow)
	if config.LogLevel != "" {
		if err := t.logLevel.UnmarshalText([]byte(config.LogLevel)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", config.LogLevel, err)
		}
	}

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	// Logs go to the on-screen panel; writing to stderr would corrupt it.
	t.logBuffer = render.NewLogBuffer(logCapacity)
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, slog.LevelDebug)))

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()
	slog.Info("Terminal backend initialized")
	return nil
}

func (t *Backend) Run(ctx context.Context, h backend.Host) error {
	t.host = h
	notifier := h.Notifier()

	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	go t.screen.ChannelEvents(events, quit)
	defer close(quit)

	refresh := timing.NewRefresh(frameTime)
	defer refresh.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			t.handleEvent(ev, time.Now())
		case img := <-notifier.Frames():
			t.frame = img
		case v := <-notifier.Speed():
			t.stats.Add(v)
		case w := <-notifier.Warnings():
			t.warning = w
			t.warningAt = time.Now()
		case now := <-refresh.C():
			t.releaseExpired(now)
			t.render(now)
			t.screen.Show()
		}
	}
}

func (t *Backend) Cleanup() error {
	if t.screen != nil {
		slog.Info("Cleaning up terminal backend")
		t.screen.Fini()
	}
	return nil
}

func (t *Backend) handleEvent(ev tcell.Event, now time.Time) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		t.processKeyEvent(ev, now)
	case *tcell.EventResize:
		t.screen.Sync()
	}
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	if ev.Key() == tcell.KeyCtrlC {
		t.host.RequestQuit()
		return
	}
	if ev.Key() == tcell.KeyRune {
		switch ev.Rune() {
		case '+', '=':
			t.changeLogLevel(1)
			return
		case '-', '_':
			t.changeLogLevel(-1)
			return
		}
	}

	code, ok := keyName(ev)
	if !ok {
		return
	}
	act, ok := input.GetDefaultMapping(code)
	if !ok {
		return
	}

	if act == action.EmulatorQuit {
		t.host.RequestQuit()
		return
	}
	if !act.IsButton() {
		t.host.PostKeyEvent(code, true)
		t.host.PostKeyEvent(code, false)
		return
	}

	// Only one direction at a time: a new one releases the others.
	if isDirection(act) {
		for other := range t.held {
			if other == code {
				continue
			}
			if a, _ := input.GetDefaultMapping(other); isDirection(a) {
				t.release(other)
			}
		}
	}
	if _, down := t.held[code]; !down {
		t.host.PostKeyEvent(code, true)
	}
	t.held[code] = now
}

func (t *Backend) releaseExpired(now time.Time) {
	for code, last := range t.held {
		if now.Sub(last) >= keyTimeout {
			t.release(code)
		}
	}
}

func (t *Backend) release(code input.KeyID) {
	delete(t.held, code)
	t.host.PostKeyEvent(code, false)
}

func isDirection(act action.Action) bool {
	return act == action.DPadUp || act == action.DPadDown || act == action.DPadLeft || act == action.DPadRight
}

var specialKeys = map[tcell.Key]input.KeyID{
	tcell.KeyEnter:  "Enter",
	tcell.KeyEscape: "Escape",
	tcell.KeyF1:     "F1",
	tcell.KeyF2:     "F2",
	tcell.KeyF3:     "F3",
	tcell.KeyF4:     "F4",
	tcell.KeyF5:     "F5",
	tcell.KeyF6:     "F6",
	tcell.KeyF7:     "F7",
	tcell.KeyF8:     "F8",
	tcell.KeyF9:     "F9",
	tcell.KeyF10:    "F10",
	tcell.KeyF11:    "F11",
	tcell.KeyF12:    "F12",
}

// keyName converts a tcell key to the names used by the default bindings.
func keyName(ev *tcell.EventKey) (input.KeyID, bool) {
	if ev.Key() != tcell.KeyRune {
		code, ok := specialKeys[ev.Key()]
		return code, ok
	}
	r := ev.Rune()
	switch {
	case r == ' ':
		return "Space", true
	case r >= 'A' && r <= 'Z':
		return input.KeyID(rune(r - 'A' + 'a')), true
	case r > ' ' && r < 0x7f:
		return input.KeyID(r), true
	}
	return "", false
}

func (t *Backend) changeLogLevel(direction int) {
	old := t.logLevel
	switch {
	case direction > 0 && t.logLevel > slog.LevelDebug:
		t.logLevel -= 4
	case direction < 0 && t.logLevel < slog.LevelError:
		t.logLevel += 4
	}
	if old != t.logLevel {
		slog.Info("Log filter changed", "from", old, "to", t.logLevel)
	}
}

func (t *Backend) render(now time.Time) {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		t.drawText(0, termHeight/2, termWidth, fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight), style)
		return
	}

	dividerX := width + 1
	panelX := dividerX + 2
	panelWidth := termWidth - panelX

	t.drawBorders(termWidth, termHeight, dividerX)
	if t.frame != nil {
		t.drawFrame(t.frame)
	}
	t.drawStatus(panelX, 1, panelWidth, now)
	t.drawLogs(panelX, statusHeight+2, panelWidth, termHeight)
}

func (t *Backend) drawBorders(termWidth, termHeight, dividerX int) {
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	for y := 0; y < termHeight; y++ {
		t.screen.SetContent(dividerX, y, '│', nil, borderStyle)
	}
	for x := dividerX + 1; x < termWidth; x++ {
		t.screen.SetContent(x, statusHeight+1, '─', nil, borderStyle)
	}
	t.screen.SetContent(dividerX, statusHeight+1, '├', nil, borderStyle)

	title := " Game Boy "
	if t.config.Title != "" {
		title = " " + t.config.Title + " "
	}
	t.drawText(1, 0, dividerX-1, title, titleStyle)
	t.drawText(dividerX+2, 0, termWidth-dividerX-2, " Status ", titleStyle)
	t.drawText(dividerX+2, statusHeight+1, termWidth-dividerX-2, fmt.Sprintf(" Logs [%s] (-/+ filter) ", t.logLevel), titleStyle)

	help := " o/p=A/B Space=Start Enter=Select WASD=move r=reset F1-F4=save F5-F8=load F9-F12=mute t=turbo c=snapshot Esc=quit "
	t.drawText(0, termHeight-1, termWidth, help, borderStyle)
}

var shadeColors = []tcell.Color{
	tcell.ColorBlack,
	tcell.ColorGray,
	tcell.ColorSilver,
	tcell.ColorWhite,
}

// drawFrame puts two pixel rows into each text row with half blocks.
func (t *Backend) drawFrame(img *image.RGBA) {
	shades := render.Shades(img)
	for y := 0; y < len(shades); y += 2 {
		for x := range shades[y] {
			top := shades[y][x]
			bottom := display.ShadeWhite
			if y+1 < len(shades) {
				bottom = shades[y+1][x]
			}
			char, fg, bg := halfBlock(top, bottom)
			t.screen.SetContent(x, y/2+1, char, nil, tcell.StyleDefault.Foreground(fg).Background(bg))
		}
	}
}

func halfBlock(top, bottom int) (rune, tcell.Color, tcell.Color) {
	char := render.GetHalfBlockChar(top, bottom)
	switch {
	case top == bottom:
		return char, shadeColors[top], tcell.ColorDefault
	case top == display.ShadeWhite:
		// Lower half block: foreground paints the bottom pixel.
		return char, shadeColors[bottom], shadeColors[top]
	default:
		return char, shadeColors[top], shadeColors[bottom]
	}
}

func (t *Backend) drawStatus(x, y, w int, now time.Time) {
	style := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	state := host.Idle
	if t.host != nil {
		state = t.host.State()
	}

	lines := []string{
		fmt.Sprintf("State: %s", state),
		fmt.Sprintf("Speed: %.2fx (avg %.2fx over %d)", t.stats.Current(), t.stats.Average(), t.stats.Len()),
		fmt.Sprintf("Held: %d keys", len(t.held)),
	}
	for i, line := range lines {
		t.drawText(x, y+i, w, line, style)
	}

	if t.warning != "" && now.Sub(t.warningAt) < warningShown {
		t.drawText(x, y+len(lines)+1, w, t.warning, tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true))
	}
}

func (t *Backend) drawLogs(x, y, w, termHeight int) {
	available := termHeight - y - 1
	if w <= 0 || available <= 0 {
		return
	}

	for i, entry := range t.logBuffer.Recent(available, t.logLevel) {
		style := tcell.StyleDefault.Foreground(tcell.ColorBlue)
		switch {
		case entry.Level >= slog.LevelError:
			style = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
		case entry.Level >= slog.LevelWarn:
			style = tcell.StyleDefault.Foreground(tcell.ColorYellow)
		case entry.Level < slog.LevelInfo:
			style = tcell.StyleDefault.Foreground(tcell.ColorGray)
		}
		t.drawText(x, y+i, w, render.FormatLogEntry(entry), style)
	}
}

// drawText writes text clipped to w cells, ending in "..." when cut.
func (t *Backend) drawText(x, y, w int, text string, style tcell.Style) {
	runes := []rune(text)
	if len(runes) > w {
		if w > 3 {
			runes = append(runes[:w-3], '.', '.', '.')
		} else if w > 0 {
			runes = runes[:w]
		} else {
			return
		}
	}
	for i, r := range runes {
		t.screen.SetContent(x+i, y, r, nil, style)
	}
}
