// Package manager coordinates the lifecycle of many concurrently playing
// sounds. It owns one player per active sound, derives a single aggregate
// state from their individual state machines, and mediates access to the
// shared audio-focus resource.
package manager

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hollowbeak/murmur/internal/focus"
	"github.com/hollowbeak/murmur/internal/sound"
)

// ErrVolumeOutOfRange is returned when a volume multiplier falls outside [0, 1]
var ErrVolumeOutOfRange = errors.New("volume must be within [0, 1]")

// Config holds the manager-wide playback defaults
type Config struct {
	FadeInDuration    time.Duration // Ramp length applied when a sound starts
	FadeOutDuration   time.Duration // Ramp length applied on pause and stop
	AudioBitrate      string        // Stream bitrate for new players
	AudioFocusEnabled bool          // Whether to arbitrate the shared output
}

// Manager owns the per-sound players and the focus manager.
//
// All public methods return promptly; audio work is delegated to the
// players. Player state notifications arrive on player goroutines and focus
// events on arbiter goroutines, so every registry access goes through one
// mutex. Player and listener calls are made outside the lock, against a
// snapshot taken under it, so a callback may safely reenter the manager.
type Manager struct {
	mu      sync.Mutex
	players map[string]sound.Player
	volumes map[string]float64

	state   State
	volume  float64
	fadeIn  time.Duration
	fadeOut time.Duration
	premium bool
	bitrate string
	attrs   sound.Attributes

	focusEnabled  bool
	resumeOnFocus bool
	focus         focus.Manager
	arbiter       *focus.Arbiter

	factory  sound.Factory
	listener Listener
	logger   zerolog.Logger
}

// New creates a manager with no tracked sounds. The arbiter backs the real
// focus manager and may be shared with other clients of the output;
// listener may be nil.
func New(cfg Config, factory sound.Factory, arbiter *focus.Arbiter, listener Listener, logger zerolog.Logger) *Manager {
	bitrate := cfg.AudioBitrate
	if bitrate == "" {
		bitrate = sound.DefaultBitrate
	}
	if arbiter == nil {
		arbiter = focus.NewArbiter(logger)
	}

	m := &Manager{
		players:      make(map[string]sound.Player),
		volumes:      make(map[string]float64),
		state:        StateStopped,
		volume:       1,
		fadeIn:       cfg.FadeInDuration,
		fadeOut:      cfg.FadeOutDuration,
		bitrate:      bitrate,
		attrs:        sound.DefaultAttributes(),
		focusEnabled: cfg.AudioFocusEnabled,
		arbiter:      arbiter,
		factory:      factory,
		listener:     listener,
		logger:       logger.With().Str("component", "manager").Logger(),
	}
	if cfg.AudioFocusEnabled {
		m.focus = focus.NewExclusive(arbiter, m.attrs, m)
	} else {
		m.focus = focus.NewNoop(m)
	}
	return m
}

// Play starts the given sound, creating its player if needed. If focus is
// not held, or the mix is pausing or paused, the whole mix is resumed
// instead so that starting one sound never leaves the rest behind.
func (m *Manager) Play(soundID string) {
	m.mu.Lock()
	p := m.ensurePlayerLocked(soundID)
	if !m.focus.HasFocus() || m.state == StatePausing || m.state == StatePaused {
		fns := m.resumeLocked()
		m.mu.Unlock()
		run(fns)
		return
	}
	m.mu.Unlock()
	p.Play()
}

// StopSound requests a faded stop of one sound. Unknown ids are a no-op.
func (m *Manager) StopSound(soundID string) {
	m.mu.Lock()
	p := m.players[soundID]
	m.mu.Unlock()
	if p != nil {
		p.Stop(false)
	}
}

// Stop requests a stop of every tracked sound
func (m *Manager) Stop(immediate bool) {
	m.mu.Lock()
	players := m.snapshotLocked()
	m.mu.Unlock()
	for _, p := range players {
		p.Stop(immediate)
	}
}

// Pause requests a pause of every tracked sound
func (m *Manager) Pause(immediate bool) {
	m.mu.Lock()
	players := m.snapshotLocked()
	m.mu.Unlock()
	for _, p := range players {
		p.Pause(immediate)
	}
}

// Resume plays every tracked sound if focus is held; otherwise it records
// the intent to resume and requests focus, resuming once the gain arrives.
func (m *Manager) Resume() {
	m.mu.Lock()
	fns := m.resumeLocked()
	m.mu.Unlock()
	run(fns)
}

// SetVolume sets the global volume multiplier and pushes the recomputed
// effective volume to every live player. The listener is notified even when
// the value is unchanged.
func (m *Manager) SetVolume(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: got %v", ErrVolumeOutOfRange, v)
	}

	m.mu.Lock()
	m.volume = v
	type push struct {
		p        sound.Player
		combined float64
	}
	pushes := make([]push, 0, len(m.players))
	for id, p := range m.players {
		pushes = append(pushes, push{p, v * m.soundVolumeLocked(id)})
	}
	l := m.listener
	m.mu.Unlock()

	for _, u := range pushes {
		u.p.SetVolume(u.combined)
	}
	if l != nil {
		l.OnManagerVolumeChanged(v)
	}
	return nil
}

// SetSoundVolume sets one sound's volume multiplier. The value is kept even
// when no player is live, so a volume chosen before playback sticks. The
// listener is notified even when the value is unchanged.
func (m *Manager) SetSoundVolume(soundID string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: got %v", ErrVolumeOutOfRange, v)
	}

	m.mu.Lock()
	m.volumes[soundID] = v
	p := m.players[soundID]
	combined := m.volume * v
	l := m.listener
	m.mu.Unlock()

	if p != nil {
		p.SetVolume(combined)
	}
	if l != nil {
		l.OnSoundVolumeChanged(soundID, v)
	}
	return nil
}

// SetFadeInDuration updates the fade-in default and every live player
func (m *Manager) SetFadeInDuration(d time.Duration) {
	m.mu.Lock()
	if m.fadeIn == d {
		m.mu.Unlock()
		return
	}
	m.fadeIn = d
	players := m.snapshotLocked()
	m.mu.Unlock()
	for _, p := range players {
		p.SetFadeInDuration(d)
	}
}

// SetFadeOutDuration updates the fade-out default and every live player
func (m *Manager) SetFadeOutDuration(d time.Duration) {
	m.mu.Lock()
	if m.fadeOut == d {
		m.mu.Unlock()
		return
	}
	m.fadeOut = d
	players := m.snapshotLocked()
	m.mu.Unlock()
	for _, p := range players {
		p.SetFadeOutDuration(d)
	}
}

// SetPremiumSegmentsEnabled updates the premium flag and every live player
func (m *Manager) SetPremiumSegmentsEnabled(enabled bool) {
	m.mu.Lock()
	if m.premium == enabled {
		m.mu.Unlock()
		return
	}
	m.premium = enabled
	players := m.snapshotLocked()
	m.mu.Unlock()
	for _, p := range players {
		p.SetPremiumSegmentsEnabled(enabled)
	}
}

// SetAudioBitrate updates the bitrate default and every live player
func (m *Manager) SetAudioBitrate(bitrate string) {
	m.mu.Lock()
	if m.bitrate == bitrate {
		m.mu.Unlock()
		return
	}
	m.bitrate = bitrate
	players := m.snapshotLocked()
	m.mu.Unlock()
	m.logger.Debug().Str("bitrate", bitrate).Msg("Audio bitrate changed")
	for _, p := range players {
		p.SetAudioBitrate(bitrate)
	}
}

// SetAudioAttributes updates the output attributes on every live player and
// rebuilds the focus manager, since the new attributes need a fresh
// arbitration context. The old focus is abandoned before the new manager is
// activated.
func (m *Manager) SetAudioAttributes(attrs sound.Attributes) {
	m.mu.Lock()
	if m.attrs == attrs {
		m.mu.Unlock()
		return
	}
	m.attrs = attrs
	m.rebuildFocusLocked()
	players := m.snapshotLocked()
	fns := m.reclaimFocusLocked()
	m.mu.Unlock()

	for _, p := range players {
		p.SetAudioAttributes(attrs)
	}
	run(fns)
}

// SetAudioFocusEnabled switches between the real and the no-op focus
// manager. The old instance's focus is abandoned before the swap.
func (m *Manager) SetAudioFocusEnabled(enabled bool) {
	m.mu.Lock()
	if m.focusEnabled == enabled {
		m.mu.Unlock()
		return
	}
	m.focusEnabled = enabled
	m.rebuildFocusLocked()
	fns := m.reclaimFocusLocked()
	m.mu.Unlock()
	m.logger.Info().Bool("enabled", enabled).Msg("Audio focus handling toggled")
	run(fns)
}

// SetPlayerFactory swaps the backing playback engine. Every live player is
// force-stopped and discarded; paused sounds come back as parked-paused
// players without starting playback, playing sounds are restarted through
// the normal play path. The user-visible mix survives the swap.
func (m *Manager) SetPlayerFactory(f sound.Factory) {
	m.mu.Lock()
	if sameFactory(m.factory, f) {
		m.mu.Unlock()
		return
	}
	m.factory = f

	old := m.snapshotLocked()
	var pausedIDs, activeIDs []string
	for id, p := range m.players {
		switch p.State() {
		case sound.StateStopped, sound.StateStopping:
			// Already on the way out; not recreated
		case sound.StatePaused, sound.StatePausing:
			pausedIDs = append(pausedIDs, id)
		default:
			activeIDs = append(activeIDs, id)
		}
	}
	m.players = make(map[string]sound.Player)
	parked := make([]sound.Player, 0, len(pausedIDs))
	for _, id := range pausedIDs {
		parked = append(parked, m.ensurePlayerLocked(id))
	}
	m.mu.Unlock()

	for _, p := range old {
		p.Stop(true)
	}
	sort.Strings(activeIDs)
	for _, id := range activeIDs {
		m.Play(id)
	}
	for _, p := range parked {
		p.Pause(true)
	}
}

// PlayPreset drives the mix towards the desired id-to-volume map: sounds
// not in the map are faded out, sounds already playing only get their
// volume updated, everything else is (re)started.
func (m *Manager) PlayPreset(volumes map[string]float64) error {
	for id, v := range volumes {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: sound %q got %v", ErrVolumeOutOfRange, id, v)
		}
	}

	m.mu.Lock()
	var removed []sound.Player
	for id, p := range m.players {
		if _, ok := volumes[id]; !ok {
			removed = append(removed, p)
		}
	}
	m.mu.Unlock()

	for _, p := range removed {
		p.Stop(false)
	}

	ids := make([]string, 0, len(volumes))
	for id := range volumes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		m.mu.Lock()
		p := m.players[id]
		playing := p != nil && p.State() == sound.StatePlaying
		m.mu.Unlock()

		_ = m.SetSoundVolume(id, volumes[id])
		if !playing {
			m.Play(id)
		}
	}
	return nil
}

// CurrentPreset returns the id-to-volume map of every sound that is not
// stopping or stopped, using the remembered per-sound volume (default 1)
func (m *Manager) CurrentPreset() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	preset := make(map[string]float64)
	for id, p := range m.players {
		switch p.State() {
		case sound.StateStopping, sound.StateStopped:
			continue
		}
		preset[id] = m.soundVolumeLocked(id)
	}
	return preset
}

// HasFocus reports whether the manager currently holds the audio output
func (m *Manager) HasFocus() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focus.HasFocus()
}

// State returns the current aggregate state
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Volume returns the global volume multiplier
func (m *Manager) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// SoundVolume returns the remembered volume for a sound, defaulting to 1
func (m *Manager) SoundVolume(soundID string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.soundVolumeLocked(soundID)
}

// SoundState returns the player state for a tracked sound
func (m *Manager) SoundState(soundID string) (sound.State, bool) {
	m.mu.Lock()
	p := m.players[soundID]
	m.mu.Unlock()
	if p == nil {
		return sound.StateStopped, false
	}
	return p.State(), true
}

// Sounds returns the sorted ids of all tracked sounds
func (m *Manager) Sounds() []string {
	m.mu.Lock()
	ids := make([]string, 0, len(m.players))
	for id := range m.players {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	sort.Strings(ids)
	return ids
}

// OnFocusGained implements focus.Listener. A gain only matters when a
// focus loss or a deferred resume left the intent flag set.
func (m *Manager) OnFocusGained() {
	m.mu.Lock()
	if !m.resumeOnFocus {
		m.mu.Unlock()
		return
	}
	m.resumeOnFocus = false
	fns := m.resumeLocked()
	m.mu.Unlock()
	m.logger.Debug().Msg("Focus gained, resuming")
	run(fns)
}

// OnFocusLost implements focus.Listener. Playback is paused immediately; a
// transient loss queues an auto-resume for the next gain, a permanent one
// does not.
func (m *Manager) OnFocusLost(transient bool) {
	m.mu.Lock()
	if m.state == StatePaused || m.state == StateStopped {
		m.mu.Unlock()
		return
	}
	m.resumeOnFocus = transient
	players := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Info().Bool("transient", transient).Msg("Focus lost, pausing")
	for _, p := range players {
		p.Pause(true)
	}
}

// ensurePlayerLocked returns the live player for soundID, creating and
// configuring one when absent or terminally stopped. Caller holds m.mu.
func (m *Manager) ensurePlayerLocked(soundID string) sound.Player {
	if p, ok := m.players[soundID]; ok && p.State() != sound.StateStopped {
		return p
	}

	p := m.factory.NewPlayer(soundID)
	p.SetFadeInDuration(m.fadeIn)
	p.SetFadeOutDuration(m.fadeOut)
	p.SetPremiumSegmentsEnabled(m.premium)
	p.SetAudioBitrate(m.bitrate)
	p.SetAudioAttributes(m.attrs)
	p.SetVolume(m.volume * m.soundVolumeLocked(soundID))
	p.SetStateListener(func(s sound.State) {
		m.onPlayerState(soundID, p, s)
	})
	m.players[soundID] = p
	return p
}

// onPlayerState handles one player's state notification. Notifications from
// players that are no longer registered under their id (discarded by a stop,
// a replacement, or a factory swap) are dropped.
func (m *Manager) onPlayerState(soundID string, p sound.Player, s sound.State) {
	m.mu.Lock()
	if m.players[soundID] != p {
		m.mu.Unlock()
		return
	}
	if s == sound.StateStopped {
		delete(m.players, soundID)
	}
	fns := m.reconcileLocked()
	l := m.listener
	m.mu.Unlock()

	if l != nil {
		l.OnSoundStateChanged(soundID, s)
	}
	run(fns)
}

// reconcileLocked recomputes the aggregate state, queueing the listener
// notification on change and a focus abandon when the mix settles into
// paused or stopped. Caller holds m.mu.
func (m *Manager) reconcileLocked() []func() {
	states := make([]sound.State, 0, len(m.players))
	for _, p := range m.players {
		states = append(states, p.State())
	}

	next := Reconcile(states)
	if next == m.state {
		return nil
	}
	m.state = next
	m.logger.Debug().Stringer("state", next).Msg("Manager state changed")

	var fns []func()
	if l := m.listener; l != nil {
		fns = append(fns, func() { l.OnManagerStateChanged(next) })
	}
	if next == StatePaused || next == StateStopped {
		f := m.focus
		fns = append(fns, f.AbandonFocus)
	}
	return fns
}

// resumeLocked plays every tracked sound when focus is held; otherwise it
// sets the resume intent and queues a focus request. Caller holds m.mu.
func (m *Manager) resumeLocked() []func() {
	if m.focus.HasFocus() {
		players := m.snapshotLocked()
		return []func(){func() {
			for _, p := range players {
				p.Play()
			}
		}}
	}
	m.resumeOnFocus = true
	f := m.focus
	return []func(){f.RequestFocus}
}

// rebuildFocusLocked abandons the current focus manager and installs a
// fresh one matching focusEnabled and attrs. Caller holds m.mu.
func (m *Manager) rebuildFocusLocked() {
	m.focus.AbandonFocus()
	if m.focusEnabled {
		m.focus = focus.NewExclusive(m.arbiter, m.attrs, m)
	} else {
		m.focus = focus.NewNoop(m)
	}
}

// reclaimFocusLocked queues a focus request when the mix is mid-playback,
// so a focus-manager rebuild does not leave an audible mix without the
// output right. Caller holds m.mu.
func (m *Manager) reclaimFocusLocked() []func() {
	if m.state != StatePlaying || m.focus.HasFocus() {
		return nil
	}
	f := m.focus
	return []func(){f.RequestFocus}
}

// snapshotLocked copies the live player set. Caller holds m.mu.
func (m *Manager) snapshotLocked() []sound.Player {
	players := make([]sound.Player, 0, len(m.players))
	for _, p := range m.players {
		players = append(players, p)
	}
	return players
}

// soundVolumeLocked returns the remembered volume for a sound, defaulting
// to 1. Caller holds m.mu.
func (m *Manager) soundVolumeLocked(soundID string) float64 {
	if v, ok := m.volumes[soundID]; ok {
		return v
	}
	return 1
}

// sameFactory compares factories without panicking on incomparable dynamic
// types such as FactoryFunc
func sameFactory(a, b sound.Factory) bool {
	if a == nil || b == nil {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Kind() == reflect.Func {
		return va.Pointer() == vb.Pointer()
	}
	if !va.Comparable() {
		return false
	}
	return va.Equal(vb)
}

func run(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}
