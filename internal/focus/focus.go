// Package focus abstracts arbitration of the exclusive audible-output right.
//
// Exactly one client may hold focus at a time. Holders are told
// asynchronously when they gain focus or lose it to another client, and a
// loss may be transient (the winner will give the output back) or permanent.
package focus

import (
	"github.com/hollowbeak/murmur/internal/sound"
)

// Listener receives focus transitions. Callbacks may arrive on an arbiter
// goroutine and must not block.
type Listener interface {
	// OnFocusGained is delivered when a previously requested focus is granted
	OnFocusGained()

	// OnFocusLost is delivered when another client takes the output.
	// A transient loss is expected to reverse; a permanent one is not.
	OnFocusLost(transient bool)
}

// Manager mediates one client's access to the shared output right
type Manager interface {
	// RequestFocus asks for focus. The grant is reported via the listener;
	// it may arrive before RequestFocus returns.
	RequestFocus()

	// AbandonFocus releases focus without notifying the listener
	AbandonFocus()

	// HasFocus reports whether focus is currently held
	HasFocus() bool

	// SetAttributes updates the output attributes the focus request is
	// made with
	SetAttributes(attrs sound.Attributes)
}
