package manager

import (
	"github.com/hollowbeak/murmur/internal/sound"
)

// Listener receives manager events. Callbacks are fired synchronously from
// within the call or notification path that triggered them, but never while
// the manager's internal lock is held, so a listener may call back into the
// manager.
type Listener interface {
	// OnManagerStateChanged fires when the aggregate state changes
	OnManagerStateChanged(state State)

	// OnManagerVolumeChanged fires on every SetVolume call that passes
	// validation, even when the value is unchanged
	OnManagerVolumeChanged(volume float64)

	// OnSoundStateChanged fires for every per-sound player transition
	OnSoundStateChanged(soundID string, state sound.State)

	// OnSoundVolumeChanged fires on every SetSoundVolume call that passes
	// validation, even when the value is unchanged
	OnSoundVolumeChanged(soundID string, volume float64)
}
