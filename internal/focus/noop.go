package focus

import (
	"github.com/hollowbeak/murmur/internal/sound"
)

// Noop is the Manager used when focus handling is disabled. It reports focus
// as always held, so playback is never interrupted and never deferred.
type Noop struct {
	listener Listener
}

// NewNoop creates a Noop manager reporting grants to l
func NewNoop(l Listener) *Noop {
	return &Noop{listener: l}
}

// RequestFocus grants immediately
func (n *Noop) RequestFocus() {
	if n.listener != nil {
		n.listener.OnFocusGained()
	}
}

// AbandonFocus does nothing
func (n *Noop) AbandonFocus() {}

// HasFocus always reports true
func (n *Noop) HasFocus() bool {
	return true
}

// SetAttributes does nothing
func (n *Noop) SetAttributes(sound.Attributes) {}
