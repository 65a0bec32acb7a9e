// internal/trigger/trigger.go
package trigger

import (
	"errors"
	"sync"
)

// DefaultDebounceTicks is 50 ms at the 100 kHz tick rate.
const DefaultDebounceTicks = 5000

var (
	// ErrInvalidDebounce indicates the debounce period must be at least one tick
	ErrInvalidDebounce = errors.New("debounce must be at least one tick")
	// ErrTransmitterRequired indicates a trigger needs something to fire
	ErrTransmitterRequired = errors.New("transmitter is required")
)

// Transmitter is started on every confirmed press.
type Transmitter interface {
	Run()
}

type state int

const (
	stateReleased state = iota
	stateDebounce
	statePressed
)

func (s state) String() string {
	switch s {
	case stateReleased:
		return "released"
	case stateDebounce:
		return "debounce"
	case statePressed:
		return "pressed"
	}
	return "unknown"
}

// Trigger debounces the gun's trigger line and fires the transmitter once
// per press. The line must hold its new level for the debounce period
// before a press or release is accepted.
type Trigger struct {
	mu       sync.Mutex
	tx       Transmitter
	state    state
	previous state
	input    bool // raw line level
	expected bool // level being debounced
	enabled  bool
	fire     bool
	counter  uint32
	debounce uint32
	shots    uint32

	// OnShot is called from Tick after each shot with the shots left.
	OnShot func(remaining uint32)
}

// New creates an enabled, released trigger firing tx.
func New(tx Transmitter, debounceTicks int) (*Trigger, error) {
	if tx == nil {
		return nil, ErrTransmitterRequired
	}
	if debounceTicks < 1 {
		return nil, ErrInvalidDebounce
	}
	return &Trigger{tx: tx, enabled: true, debounce: uint32(debounceTicks)}, nil
}

// SetPressed sets the raw trigger line. Bounces are just fast calls
// alternating true and false.
func (t *Trigger) SetPressed(pressed bool) {
	t.mu.Lock()
	t.input = pressed
	t.mu.Unlock()
}

// Enable makes the trigger read its line.
func (t *Trigger) Enable() {
	t.mu.Lock()
	t.enabled = true
	t.mu.Unlock()
}

// Disable makes the trigger read the line as released.
func (t *Trigger) Disable() {
	t.mu.Lock()
	t.enabled = false
	t.mu.Unlock()
}

// Pressed reports whether a debounced press is in effect.
func (t *Trigger) Pressed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == statePressed || (t.state == stateDebounce && t.previous == statePressed)
}

// RemainingShotCount returns the shots left.
func (t *Trigger) RemainingShotCount() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.shots
}

// SetRemainingShotCount sets the shots left.
func (t *Trigger) SetRemainingShotCount(n uint32) {
	t.mu.Lock()
	t.shots = n
	t.mu.Unlock()
}

// Tick advances the state machine by one sample period.
func (t *Trigger) Tick() {
	t.mu.Lock()
	line := t.enabled && t.input

	// State transition
	switch t.state {
	case stateReleased:
		if line {
			t.enterDebounce(stateReleased, true)
		}
	case statePressed:
		if !line {
			t.enterDebounce(statePressed, false)
		}
	case stateDebounce:
		switch {
		case line != t.expected:
			t.state = t.previous
		case t.counter >= t.debounce:
			if t.previous == stateReleased {
				t.state = statePressed
				t.fire = true
			} else {
				t.state = stateReleased
			}
		}
	}

	// State action
	var shot bool
	var remaining uint32
	switch t.state {
	case stateDebounce:
		t.counter++
	case statePressed:
		if t.fire {
			t.fire = false
			if t.shots > 0 {
				t.shots--
			}
			shot, remaining = true, t.shots
		}
	}
	tx, cb := t.tx, t.OnShot
	t.mu.Unlock()

	if shot {
		tx.Run()
		if cb != nil {
			cb(remaining)
		}
	}
}

func (t *Trigger) enterDebounce(from state, expected bool) {
	t.previous = from
	t.expected = expected
	t.counter = 0
	t.state = stateDebounce
}
