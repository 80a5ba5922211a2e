package tui

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hollowbeak/murmur/internal/focus"
	"github.com/hollowbeak/murmur/internal/manager"
	"github.com/hollowbeak/murmur/internal/sound"
)

// stubPlayer holds whatever state the test assigns and notifies the
// registered listener on each assignment
type stubPlayer struct {
	mu       sync.Mutex
	state    sound.State
	listener sound.StateListener
}

func (p *stubPlayer) Play()                               {}
func (p *stubPlayer) Pause(bool)                          {}
func (p *stubPlayer) Stop(bool)                           {}
func (p *stubPlayer) SetVolume(float64)                   {}
func (p *stubPlayer) SetFadeInDuration(time.Duration)     {}
func (p *stubPlayer) SetFadeOutDuration(time.Duration)    {}
func (p *stubPlayer) SetPremiumSegmentsEnabled(bool)      {}
func (p *stubPlayer) SetAudioBitrate(string)              {}
func (p *stubPlayer) SetAudioAttributes(sound.Attributes) {}

func (p *stubPlayer) SetStateListener(fn sound.StateListener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listener = fn
}

func (p *stubPlayer) State() sound.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *stubPlayer) set(s sound.State) {
	p.mu.Lock()
	p.state = s
	fn := p.listener
	p.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

func newTestApp(t *testing.T) (*App, map[string]*stubPlayer, *manager.Manager) {
	t.Helper()

	var mu sync.Mutex
	players := make(map[string]*stubPlayer)
	factory := sound.FactoryFunc(func(soundID string) sound.Player {
		p := &stubPlayer{}
		mu.Lock()
		players[soundID] = p
		mu.Unlock()
		return p
	})

	arbiter := focus.NewArbiter(zerolog.Nop())
	m := manager.New(manager.Config{}, factory, arbiter, nil, zerolog.Nop())
	return New(m, arbiter, DefaultConfig()), players, m
}

func TestRefresh_RendersSoundsInContiguousRows(t *testing.T) {
	app, players, m := newTestApp(t)

	m.Play("rain")
	m.Play("thunder")
	m.Play("wind")
	players["rain"].set(sound.StatePlaying)
	players["thunder"].set(sound.StatePaused)
	players["wind"].set(sound.StatePlaying)

	app.refresh()

	if got := app.table.GetRowCount(); got != 4 {
		t.Fatalf("expected header plus 3 sound rows, got %d rows", got)
	}
	for row, want := range map[int]string{1: "rain", 2: "thunder", 3: "wind"} {
		if got := app.table.GetCell(row, 0).Text; got != want {
			t.Errorf("row %d: expected sound %q, got %q", row, want, got)
		}
	}

	// Drop the middle sound; the remaining rows must close the gap
	players["thunder"].set(sound.StateStopping)
	players["thunder"].set(sound.StateStopped)
	app.refresh()

	if got := app.table.GetRowCount(); got != 3 {
		t.Fatalf("expected header plus 2 sound rows after stop, got %d rows", got)
	}
	if got := app.table.GetCell(1, 0).Text; got != "rain" {
		t.Errorf("row 1: expected rain, got %q", got)
	}
	if got := app.table.GetCell(2, 0).Text; got != "wind" {
		t.Errorf("row 2: expected wind, got %q", got)
	}
}

func TestRefresh_HeaderShowsAggregateStateAndVolume(t *testing.T) {
	app, players, m := newTestApp(t)

	m.Play("rain")
	players["rain"].set(sound.StatePlaying)

	app.refresh()

	text := app.header.GetText(true)
	if !strings.Contains(text, "playing") {
		t.Errorf("header missing aggregate state, got %q", text)
	}
	if !strings.Contains(text, "100%") {
		t.Errorf("header missing master volume, got %q", text)
	}
}
