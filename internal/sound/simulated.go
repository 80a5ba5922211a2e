package sound

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	defaultBufferDelay = 150 * time.Millisecond
	rampTickInterval   = 20 * time.Millisecond
)

// SimulatedPlayer is an in-process Player that models the full playback
// lifecycle without touching an audio device: a short buffering phase before
// playback, and linear gain ramps for fade-in and fade-out. It backs the CLI
// and exercises the same state machine a real decode pipeline would.
type SimulatedPlayer struct {
	id     string
	logger zerolog.Logger

	mu       sync.Mutex
	state    State
	listener StateListener

	volume  float64 // target volume set by the manager
	gain    float64 // current rendered output gain (follows ramps)
	fadeIn  time.Duration
	fadeOut time.Duration
	bitrate string
	premium bool
	attrs   Attributes

	// Incremented whenever a new async phase starts; stale goroutines
	// observe a mismatch and exit without touching state.
	generation uint64

	bufferDelay time.Duration
	tick        time.Duration
}

// NewSimulatedPlayer creates a stopped simulated player for the given sound id
func NewSimulatedPlayer(id string, logger zerolog.Logger) *SimulatedPlayer {
	return &SimulatedPlayer{
		id:          id,
		logger:      logger.With().Str("component", "player").Str("sound", id).Logger(),
		state:       StateStopped,
		volume:      1,
		bitrate:     DefaultBitrate,
		attrs:       DefaultAttributes(),
		bufferDelay: defaultBufferDelay,
		tick:        rampTickInterval,
	}
}

// NewSimulatedFactory returns a Factory producing simulated players
func NewSimulatedFactory(logger zerolog.Logger) Factory {
	return FactoryFunc(func(soundID string) Player {
		return NewSimulatedPlayer(soundID, logger)
	})
}

// Play starts or resumes playback. A stopped player buffers first; a paused
// or pausing player ramps straight back up.
func (p *SimulatedPlayer) Play() {
	p.mu.Lock()
	switch p.state {
	case StatePlaying, StateBuffering:
		p.mu.Unlock()
		return
	case StatePaused, StatePausing:
		gen := p.bump()
		p.setStateLocked(StatePlaying)
		go p.ramp(gen, p.volume, p.fadeIn, nil)
		p.mu.Unlock()
	default:
		gen := p.bump()
		p.setStateLocked(StateBuffering)
		delay := p.bufferDelay
		p.mu.Unlock()
		go p.buffer(gen, delay)
	}
}

// Pause fades out (or cuts, when immediate) and settles in StatePaused
func (p *SimulatedPlayer) Pause(immediate bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StatePaused, StateStopping:
		return
	case StateStopped:
		// A never-played player parks in paused so a rebuilt mix can
		// carry its pause state without starting playback
		p.bump()
		p.gain = 0
		p.setStateLocked(StatePaused)
		return
	}

	gen := p.bump()
	if immediate || p.fadeOut <= 0 || p.state == StateBuffering {
		p.gain = 0
		p.setStateLocked(StatePaused)
		return
	}

	p.setStateLocked(StatePausing)
	go p.ramp(gen, 0, p.fadeOut, func() {
		p.setStateLocked(StatePaused)
	})
}

// Stop fades out (or cuts, when immediate) and settles in StateStopped.
// The player must not be reused afterwards.
func (p *SimulatedPlayer) Stop(immediate bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateStopped {
		return
	}

	gen := p.bump()
	playing := p.state == StatePlaying || p.state == StatePausing
	if immediate || p.fadeOut <= 0 || !playing {
		p.gain = 0
		p.setStateLocked(StateStopped)
		return
	}

	p.setStateLocked(StateStopping)
	go p.ramp(gen, 0, p.fadeOut, func() {
		p.setStateLocked(StateStopped)
	})
}

// SetVolume sets the target output volume in [0, 1]
func (p *SimulatedPlayer) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.volume = v
	// While audible the gain tracks the target directly. Any fade-in still
	// ramping is cancelled so it cannot drag the gain back to the old target.
	if p.state == StatePlaying {
		p.bump()
		p.gain = v
	}
}

// SetFadeInDuration sets the ramp length used when playback starts
func (p *SimulatedPlayer) SetFadeInDuration(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fadeIn = d
}

// SetFadeOutDuration sets the ramp length used on pause and stop
func (p *SimulatedPlayer) SetFadeOutDuration(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fadeOut = d
}

// SetPremiumSegmentsEnabled toggles the entitlement-gated quality tier
func (p *SimulatedPlayer) SetPremiumSegmentsEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.premium = enabled
}

// SetAudioBitrate selects the stream bitrate
func (p *SimulatedPlayer) SetAudioBitrate(bitrate string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bitrate = bitrate
}

// SetAudioAttributes updates the output attributes
func (p *SimulatedPlayer) SetAudioAttributes(attrs Attributes) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attrs = attrs
}

// SetStateListener registers the single state-change callback
func (p *SimulatedPlayer) SetStateListener(fn StateListener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listener = fn
}

// State returns the player's current state
func (p *SimulatedPlayer) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Gain returns the current rendered output gain, which lags the target
// volume while a fade ramp is in progress
func (p *SimulatedPlayer) Gain() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gain
}

// bump invalidates any in-flight buffering or ramp goroutine.
// Must be called with the lock held.
func (p *SimulatedPlayer) bump() uint64 {
	p.generation++
	return p.generation
}

// setStateLocked transitions state and notifies the listener outside the
// lock. Callers must hold p.mu; the lock is reacquired before returning.
func (p *SimulatedPlayer) setStateLocked(s State) {
	if p.state == s {
		return
	}
	p.state = s
	fn := p.listener
	p.logger.Debug().Stringer("state", s).Msg("Player state changed")
	if fn == nil {
		return
	}
	p.mu.Unlock()
	fn(s)
	p.mu.Lock()
}

// buffer waits out the simulated buffering delay, then starts playback
// with a fade-in ramp
func (p *SimulatedPlayer) buffer(gen uint64, delay time.Duration) {
	time.Sleep(delay)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.generation != gen {
		return
	}
	p.setStateLocked(StatePlaying)
	if p.generation != gen {
		// Listener reentered the player during notification
		return
	}
	go p.ramp(gen, p.volume, p.fadeIn, nil)
}

// ramp drives the output gain towards target over d using a linear tween,
// then runs done (if any) under the lock. A generation mismatch aborts the
// ramp, leaving the gain wherever the superseding phase put it.
func (p *SimulatedPlayer) ramp(gen uint64, target float64, d time.Duration, done func()) {
	p.mu.Lock()
	if p.generation != gen {
		p.mu.Unlock()
		return
	}
	from := p.gain
	tick := p.tick
	p.mu.Unlock()

	if d > 0 && from != target {
		tween := gween.New(float32(from), float32(target), float32(d.Seconds()), ease.Linear)
		ticker := time.NewTicker(tick)
		defer ticker.Stop()

		last := time.Now()
		for range ticker.C {
			now := time.Now()
			value, finished := tween.Update(float32(now.Sub(last).Seconds()))
			last = now

			p.mu.Lock()
			if p.generation != gen {
				p.mu.Unlock()
				return
			}
			p.gain = float64(value)
			p.mu.Unlock()

			if finished {
				break
			}
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.generation != gen {
		return
	}
	p.gain = target
	if done != nil {
		done()
	}
}
