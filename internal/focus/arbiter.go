package focus

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/hollowbeak/murmur/internal/sound"
)

// Arbiter owns the single audible-output right and decides which client
// holds it. Grants and losses are delivered to listeners on their own
// goroutines, mirroring the asynchronous delivery of a platform audio stack.
type Arbiter struct {
	mu        sync.Mutex
	holder    *Exclusive
	preempted *Exclusive // displaced transiently, restored by Restore
	logger    zerolog.Logger
}

// NewArbiter creates an arbiter with no holder
func NewArbiter(logger zerolog.Logger) *Arbiter {
	return &Arbiter{
		logger: logger.With().Str("component", "focus").Logger(),
	}
}

// Preempt simulates another application seizing the output. The current
// holder, if any, is told it lost focus; a transient preemption can later be
// reversed with Restore.
func (a *Arbiter) Preempt(transient bool) {
	a.mu.Lock()
	prev := a.holder
	a.holder = nil
	if transient {
		a.preempted = prev
	} else {
		a.preempted = nil
	}
	a.mu.Unlock()

	if prev != nil {
		a.logger.Debug().Bool("transient", transient).Msg("Holder preempted")
		go prev.lost(transient)
	}
}

// Restore hands the output back to the client displaced by a transient
// Preempt. No-op if there is none or a new holder took over since.
func (a *Arbiter) Restore() {
	a.mu.Lock()
	c := a.preempted
	a.preempted = nil
	if c != nil && a.holder == nil {
		a.holder = c
	} else {
		c = nil
	}
	a.mu.Unlock()

	if c != nil {
		a.logger.Debug().Msg("Holder restored")
		go c.gained()
	}
}

// grant makes c the holder, displacing any current holder permanently
func (a *Arbiter) grant(c *Exclusive) {
	a.mu.Lock()
	if a.holder == c {
		a.mu.Unlock()
		return
	}
	prev := a.holder
	a.holder = c
	a.preempted = nil
	a.mu.Unlock()

	if prev != nil {
		go prev.lost(false)
	}
	go c.gained()
}

// release drops c's claim without notifying anyone. A transient preemption
// of c stays on record: the reversal of a transient preemption always offers
// the output back to the interrupted client, even if it went quiet while
// displaced.
func (a *Arbiter) release(c *Exclusive) {
	a.mu.Lock()
	if a.holder == c {
		a.holder = nil
	}
	a.mu.Unlock()
}

// Exclusive is a Manager backed by an Arbiter. At most one Exclusive per
// arbiter holds focus at a time.
type Exclusive struct {
	arbiter  *Arbiter
	listener Listener

	mu    sync.Mutex
	attrs sound.Attributes
	has   bool
}

// NewExclusive creates an arbiter-backed manager for one client
func NewExclusive(arbiter *Arbiter, attrs sound.Attributes, l Listener) *Exclusive {
	return &Exclusive{
		arbiter:  arbiter,
		listener: l,
		attrs:    attrs,
	}
}

// RequestFocus claims the output; the grant arrives via OnFocusGained
func (e *Exclusive) RequestFocus() {
	e.arbiter.grant(e)
}

// AbandonFocus releases the output without a listener callback
func (e *Exclusive) AbandonFocus() {
	e.arbiter.release(e)
	e.mu.Lock()
	e.has = false
	e.mu.Unlock()
}

// HasFocus reports whether the grant has been observed and not since lost
func (e *Exclusive) HasFocus() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.has
}

// SetAttributes updates the output attributes for future requests
func (e *Exclusive) SetAttributes(attrs sound.Attributes) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attrs = attrs
}

func (e *Exclusive) gained() {
	e.mu.Lock()
	e.has = true
	e.mu.Unlock()
	if e.listener != nil {
		e.listener.OnFocusGained()
	}
}

func (e *Exclusive) lost(transient bool) {
	e.mu.Lock()
	e.has = false
	e.mu.Unlock()
	if e.listener != nil {
		e.listener.OnFocusLost(transient)
	}
}
