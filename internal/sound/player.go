package sound

import (
	"time"
)

// State represents the playback state of a single sound player
type State int

const (
	StateStopped   State = iota // No playback; terminal for a player instance
	StateBuffering              // Preparing audio data before playback starts
	StatePlaying                // Audibly playing
	StatePausing                // Fading out towards a pause
	StatePaused                 // Paused, resumable
	StateStopping               // Fading out towards a stop
)

// String returns a human-readable representation of the State
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateBuffering:
		return "buffering"
	case StatePlaying:
		return "playing"
	case StatePausing:
		return "pausing"
	case StatePaused:
		return "paused"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Attributes describes how a sound's output should be treated by the
// platform audio stack. It is passed through to players and to the focus
// manager without interpretation.
type Attributes struct {
	Usage       string
	ContentType string
}

// DefaultAttributes returns the attributes used for regular ambient playback
func DefaultAttributes() Attributes {
	return Attributes{
		Usage:       "media",
		ContentType: "music",
	}
}

// AlarmAttributes returns the attributes used when sounds serve as an alarm
// ringer and must play on the alarm output channel.
func AlarmAttributes() Attributes {
	return Attributes{
		Usage:       "alarm",
		ContentType: "music",
	}
}

// StateListener receives a notification each time a player transitions state.
// Notifications for one player are delivered in transition order, but may
// arrive on the player's own goroutine.
type StateListener func(State)

// Player defines the interface for a single sound's playback engine.
// Implementations own their decode/render loop; all methods return promptly
// and the actual audio work happens asynchronously.
type Player interface {
	// Play starts or resumes playback
	Play()

	// Pause pauses playback; immediate skips the fade-out ramp. Pausing
	// a player that has never started playback parks it in StatePaused
	// without producing any audio.
	Pause(immediate bool)

	// Stop ends playback; immediate skips the fade-out ramp. The player
	// eventually reaches StateStopped and must not be reused afterwards.
	Stop(immediate bool)

	// SetVolume sets the effective output volume in [0, 1]
	SetVolume(v float64)

	// SetFadeInDuration sets the ramp length applied when playback starts
	SetFadeInDuration(d time.Duration)

	// SetFadeOutDuration sets the ramp length applied on pause and stop
	SetFadeOutDuration(d time.Duration)

	// SetPremiumSegmentsEnabled toggles the entitlement-gated quality tier
	SetPremiumSegmentsEnabled(enabled bool)

	// SetAudioBitrate selects the stream bitrate, e.g. Bitrate192
	SetAudioBitrate(bitrate string)

	// SetAudioAttributes updates the output attributes
	SetAudioAttributes(attrs Attributes)

	// SetStateListener registers the single state-change callback
	SetStateListener(fn StateListener)

	// State returns the player's current state
	State() State
}

// Factory creates players. The manager uses exactly one factory at a time;
// swapping factories rebuilds every live player.
type Factory interface {
	NewPlayer(soundID string) Player
}

// FactoryFunc adapts a function to the Factory interface
type FactoryFunc func(soundID string) Player

// NewPlayer calls f
func (f FactoryFunc) NewPlayer(soundID string) Player {
	return f(soundID)
}
