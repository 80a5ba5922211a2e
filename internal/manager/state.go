package manager

import (
	"github.com/hollowbeak/murmur/internal/sound"
)

// State is the aggregate playback state of the whole sound mix. It is
// derived from the per-sound player states and never set directly.
type State int

const (
	StateStopped State = iota // No tracked sounds; initial and re-enterable
	StatePlaying              // At least one sound is audible or starting
	StatePausing              // The mix is winding down towards a pause
	StatePaused               // Every sound is paused
	StateStopping             // Every sound is winding down towards a stop
)

// String returns a human-readable representation of the State
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
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

// Reconcile derives the aggregate state from the multiset of per-sound
// player states. The rules are ordered; the first match wins:
//
//  1. no sounds tracked: stopped
//  2. every sound stopping: stopping
//  3. every sound paused: paused
//  4. every sound pausing or stopping: pausing
//  5. anything else: playing
//
// Rule 4 covers a sound that is independently stopping (say, dropped from a
// preset) while the rest of the mix pauses: the mix reports pausing, not
// playing. This keeps the pause path interruptible and is what the
// focus-abandon behavior relies on, so it must not be "corrected".
func Reconcile(states []sound.State) State {
	if len(states) == 0 {
		return StateStopped
	}

	allStopping := true
	allPaused := true
	allWindingDown := true

	for _, s := range states {
		if s != sound.StateStopping {
			allStopping = false
		}
		if s != sound.StatePaused {
			allPaused = false
		}
		if s != sound.StatePausing && s != sound.StateStopping {
			allWindingDown = false
		}
	}

	switch {
	case allStopping:
		return StateStopping
	case allPaused:
		return StatePaused
	case allWindingDown:
		return StatePausing
	default:
		return StatePlaying
	}
}
