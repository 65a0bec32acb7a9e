// internal/transmitter/transmitter.go
package transmitter

import (
	"fmt"
	"math"
	"sync"

	"github.com/ColonelBlimp/lasertag/internal/buffer"
	"github.com/ColonelBlimp/lasertag/internal/filter"
)

// PulseTicks is the length of one burst: 200 ms at the 100 kHz tick rate.
const PulseTicks = 20000

const midScale = float64(buffer.MaxSample) / 2

type state int

const (
	stateInit state = iota
	stateWait
	stateLow
	stateHigh
)

func (s state) String() string {
	switch s {
	case stateInit:
		return "init"
	case stateWait:
		return "wait"
	case stateLow:
		return "low"
	case stateHigh:
		return "high"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Transmitter generates square-wave bursts at one of the player frequencies.
// It is ticked at the ADC rate and reports its output level on every tick.
type Transmitter struct {
	mu sync.Mutex

	state      state
	channel    int // requested frequency number
	period     int // ticks per period of the burst in progress
	start      bool
	continuous bool
	level      bool
	pulseCount int
	halfCount  int
}

// New creates an idle transmitter on frequency 0.
func New() *Transmitter {
	t := &Transmitter{}
	t.Init()
	return t
}

// Init stops the transmitter and returns it to its initial state.
func (t *Transmitter) Init() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = stateInit
	t.channel = 0
	t.period = filter.FrequencyTickTable[0]
	t.start = false
	t.continuous = false
	t.level = false
	t.pulseCount = 0
	t.halfCount = 0
}

// SetFrequencyNumber selects the player frequency. A burst in progress keeps
// its frequency; the new one applies from the next burst.
func (t *Transmitter) SetFrequencyNumber(ch int) error {
	if ch < 0 || ch >= filter.ChannelCount {
		return fmt.Errorf("%w: %d", filter.ErrInvalidChannel, ch)
	}
	t.mu.Lock()
	t.channel = ch
	t.mu.Unlock()
	return nil
}

// FrequencyNumber returns the requested frequency number.
func (t *Transmitter) FrequencyNumber() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.channel
}

// Run starts a burst.
func (t *Transmitter) Run() {
	t.mu.Lock()
	t.start = true
	t.mu.Unlock()
}

// Running reports whether a burst is pending or in progress.
func (t *Transmitter) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.start
}

// SetContinuous makes the transmitter repeat bursts until it is switched
// back off, at which point the current burst completes and it stops.
func (t *Transmitter) SetContinuous(continuous bool) {
	t.mu.Lock()
	t.continuous = continuous
	t.mu.Unlock()
}

// Level returns the output level set by the last Tick.
func (t *Transmitter) Level() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.level
}

// Tick advances the state machine by one sample period and returns the
// output level.
func (t *Transmitter) Tick() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	// State action
	switch t.state {
	case stateLow, stateHigh:
		t.pulseCount++
		t.halfCount++
	}

	// State transition
	switch t.state {
	case stateInit:
		t.level = false
		t.state = stateWait
	case stateWait:
		t.level = false
		if t.start {
			t.latch()
			t.state = stateLow
		}
	case stateLow, stateHigh:
		if t.pulseCount < PulseTicks {
			if t.halfCount >= t.period/2 {
				t.halfCount = 0
				t.toggle()
			}
			break
		}
		t.pulseCount = 0
		t.halfCount = 0
		if t.continuous {
			t.latch()
			break
		}
		t.start = false
		t.level = false
		t.state = stateWait
	}
	return t.level
}

func (t *Transmitter) latch() {
	t.period = filter.FrequencyTickTable[t.channel]
}

func (t *Transmitter) toggle() {
	if t.state == stateLow {
		t.state = stateHigh
		t.level = true
	} else {
		t.state = stateLow
		t.level = false
	}
}

// Render ticks the transmitter n times and returns the output as ADC codes
// swinging amplitude (0 to 1) around mid-scale.
func (t *Transmitter) Render(n int, amplitude float64) []buffer.Sample {
	out := make([]buffer.Sample, n)
	for i := range out {
		out[i] = Code(t.Tick(), amplitude)
	}
	return out
}

// Code converts an output level to the ADC code a sensor would read for a
// square wave of the given amplitude centred on mid-scale.
func Code(high bool, amplitude float64) buffer.Sample {
	amplitude = math.Max(0, math.Min(1, amplitude))
	v := midScale - amplitude*midScale
	if high {
		v = midScale + amplitude*midScale
	}
	return buffer.Sample(math.Round(v))
}
