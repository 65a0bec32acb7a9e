// internal/timer/timer.go
package timer

import (
	"errors"
	"sync"
)

const (
	// DefaultLockoutTicks is 500 ms at the 100 kHz tick rate
	DefaultLockoutTicks = 50000
	// DefaultHitLEDTicks is 500 ms at the 100 kHz tick rate
	DefaultHitLEDTicks = 50000
)

// ErrInvalidTicks indicates a timer duration must be positive
var ErrInvalidTicks = errors.New("timer duration must be at least one tick")

type lockoutState int

const (
	lockoutIdle lockoutState = iota
	lockoutCounting
)

// Lockout blocks hit detection for a fixed number of ticks after Start.
// Tick is called from the sampling side and Start/Running from the detector,
// so all state sits behind a mutex.
type Lockout struct {
	mu       sync.Mutex
	state    lockoutState
	running  bool
	counter  uint32
	duration uint32
}

// NewLockout creates an idle lockout timer that expires after ticks ticks.
func NewLockout(ticks int) (*Lockout, error) {
	if ticks < 1 {
		return nil, ErrInvalidTicks
	}
	return &Lockout{duration: uint32(ticks)}, nil
}

// Start starts the timer. Starting a running timer has no effect.
func (l *Lockout) Start() {
	l.mu.Lock()
	l.running = true
	l.mu.Unlock()
}

// Running reports whether the lockout period is in progress.
func (l *Lockout) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Tick advances the state machine by one sample period.
func (l *Lockout) Tick() {
	l.mu.Lock()
	defer l.mu.Unlock()

	// State action
	switch l.state {
	case lockoutIdle:
	case lockoutCounting:
		l.counter++
	}

	// State transition
	switch l.state {
	case lockoutIdle:
		if l.running {
			l.state = lockoutCounting
		}
	case lockoutCounting:
		if l.counter >= l.duration {
			l.counter = 0
			l.running = false
			l.state = lockoutIdle
		}
	}
}

type ledState int

const (
	ledOff ledState = iota
	ledOn
)

// HitIndicator lights the hit LED for a fixed number of ticks after Start.
type HitIndicator struct {
	mu       sync.Mutex
	state    ledState
	start    bool
	enabled  bool
	counter  uint32
	duration uint32

	// OnChange is called from Tick whenever the LED turns on or off.
	OnChange func(lit bool)
}

// NewHitIndicator creates an enabled indicator lit for ticks ticks per hit.
func NewHitIndicator(ticks int) (*HitIndicator, error) {
	if ticks < 1 {
		return nil, ErrInvalidTicks
	}
	return &HitIndicator{enabled: true, duration: uint32(ticks)}, nil
}

// Start requests the LED to light. Ignored while disabled.
func (h *HitIndicator) Start() {
	h.mu.Lock()
	if h.enabled {
		h.start = true
	}
	h.mu.Unlock()
}

// Running reports whether a lit period is pending or in progress.
func (h *HitIndicator) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.start
}

// Lit reports whether the LED is currently on.
func (h *HitIndicator) Lit() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state == ledOn
}

// Enable allows Start to light the LED.
func (h *HitIndicator) Enable() {
	h.mu.Lock()
	h.enabled = true
	h.mu.Unlock()
}

// Disable makes Start a no-op. A lit period already running completes.
func (h *HitIndicator) Disable() {
	h.mu.Lock()
	h.enabled = false
	h.mu.Unlock()
}

// Tick advances the state machine by one sample period.
func (h *HitIndicator) Tick() {
	h.mu.Lock()
	var changed, lit bool

	// State transition
	switch h.state {
	case ledOn:
		if h.counter >= h.duration {
			h.counter = 0
			h.start = false
			h.state = ledOff
			changed, lit = true, false
		}
	case ledOff:
		if h.start {
			h.state = ledOn
			changed, lit = true, true
		}
	}

	// State action
	if h.state == ledOn {
		h.counter++
	}
	cb := h.OnChange
	h.mu.Unlock()

	if changed && cb != nil {
		cb(lit)
	}
}
