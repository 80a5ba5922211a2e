package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/hollowbeak/murmur/internal/focus"
	"github.com/hollowbeak/murmur/internal/manager"
)

// Config holds TUI configuration options
type Config struct {
	RefreshRate time.Duration // How often to refresh the display
}

// DefaultConfig returns the default TUI configuration
func DefaultConfig() Config {
	return Config{
		RefreshRate: 200 * time.Millisecond,
	}
}

// App is the TUI application for driving an ambient mix interactively
type App struct {
	app    *tview.Application
	header *tview.TextView
	table  *tview.Table
	status *tview.TextView

	config  Config
	manager *manager.Manager
	arbiter *focus.Arbiter

	// Context cancel function
	cancelFunc context.CancelFunc
}

// New creates a TUI application over the given manager. The arbiter is used
// to simulate another application taking the audio output.
func New(m *manager.Manager, arbiter *focus.Arbiter, cfg Config) *App {
	a := &App{
		app:     tview.NewApplication(),
		config:  cfg,
		manager: m,
		arbiter: arbiter,
	}
	a.setupUI()
	return a
}

// setupUI creates the UI layout
func (a *App) setupUI() {
	// Mix state header
	a.header = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.header.SetBorder(true).
		SetTitle(" Mix ").
		SetTitleAlign(tview.AlignLeft)

	// Per-sound table
	a.table = tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0)
	a.table.SetBorder(true).
		SetTitle(" Sounds ").
		SetTitleAlign(tview.AlignLeft)

	// Status bar
	a.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[gray]q:quit  space:pause/resume  s:stop  +/-:volume  f:lose focus  g:regain focus[-]")

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.header, 3, 1, false).
		AddItem(a.table, 0, 1, true).
		AddItem(a.status, 1, 1, false)

	// Handle keyboard input
	a.app.SetInputCapture(a.handleKeyEvent)

	a.app.SetRoot(flex, true)
}

// handleKeyEvent processes keyboard input
func (a *App) handleKeyEvent(event *tcell.EventKey) *tcell.EventKey {
	switch event.Rune() {
	case 'q', 'Q':
		a.app.Stop()
		return nil
	case ' ':
		// Pause/resume toggle for the whole mix
		switch a.manager.State() {
		case manager.StatePaused, manager.StatePausing:
			a.manager.Resume()
		case manager.StatePlaying:
			a.manager.Pause(false)
		}
		return nil
	case 's', 'S':
		a.manager.Stop(false)
		return nil
	case '+', '=':
		a.nudgeVolume(0.05)
		return nil
	case '-', '_':
		a.nudgeVolume(-0.05)
		return nil
	case 'f':
		// Simulate another app transiently taking the output
		a.arbiter.Preempt(true)
		return nil
	case 'F':
		a.arbiter.Preempt(false)
		return nil
	case 'g', 'G':
		a.arbiter.Restore()
		return nil
	}
	return event
}

// nudgeVolume moves the master volume by delta, clamped to [0, 1]
func (a *App) nudgeVolume(delta float64) {
	v := a.manager.Volume() + delta
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	_ = a.manager.SetVolume(v)
}

// Run starts the TUI and blocks until quit
func (a *App) Run(ctx context.Context) error {
	ctx, a.cancelFunc = context.WithCancel(ctx)

	go a.refreshLoop(ctx)

	if err := a.app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	if a.cancelFunc != nil {
		a.cancelFunc()
	}

	return nil
}

// refreshLoop is the single source of redraws, polling the manager at the
// configured rate instead of redrawing per event
func (a *App) refreshLoop(ctx context.Context) {
	refreshRate := a.config.RefreshRate
	if refreshRate <= 0 {
		refreshRate = 200 * time.Millisecond
	}
	ticker := time.NewTicker(refreshRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.app.Stop()
			return
		case <-ticker.C:
			a.app.QueueUpdateDraw(a.refresh)
		}
	}
}

// refresh redraws the header and the sound table from manager state
func (a *App) refresh() {
	state := a.manager.State()
	volume := a.manager.Volume()

	focusNote := ""
	if !a.manager.HasFocus() {
		focusNote = "  [red]output lost[-]"
	}
	a.header.SetText(fmt.Sprintf("[yellow]%s[-]  master volume %3.0f%%%s",
		state, volume*100, focusNote))

	a.table.Clear()
	a.table.SetCell(0, 0, tview.NewTableCell("[::b]sound").SetSelectable(false).SetExpansion(1))
	a.table.SetCell(0, 1, tview.NewTableCell("[::b]state").SetSelectable(false))
	a.table.SetCell(0, 2, tview.NewTableCell("[::b]volume").SetSelectable(false))

	row := 1
	for _, id := range a.manager.Sounds() {
		st, ok := a.manager.SoundState(id)
		if !ok {
			// Sound stopped between the id snapshot and the state read
			continue
		}
		color := "white"
		switch st.String() {
		case "playing":
			color = "green"
		case "pausing", "stopping":
			color = "orange"
		case "paused":
			color = "gray"
		}
		a.table.SetCell(row, 0, tview.NewTableCell(id).SetExpansion(1))
		a.table.SetCell(row, 1, tview.NewTableCell(fmt.Sprintf("[%s]%s[-]", color, st)))
		a.table.SetCell(row, 2, tview.NewTableCell(fmt.Sprintf("%3.0f%%", a.manager.SoundVolume(id)*100)))
		row++
	}
}
