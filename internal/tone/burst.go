// internal/tone/burst.go
package tone

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/ColonelBlimp/lasertag/internal/buffer"
	"github.com/ColonelBlimp/lasertag/internal/detector"
	"github.com/ColonelBlimp/lasertag/internal/filter"
)

var (
	// ErrInvalidThreshold indicates the presence threshold must be positive
	ErrInvalidThreshold = errors.New("threshold must be positive")
	// ErrInvalidHysteresis indicates at least one block is needed to confirm a change
	ErrInvalidHysteresis = errors.New("hysteresis must be at least 1")
)

// Burst is one transmission found in a recording. Start and End are sample
// offsets, rounded to whole blocks.
type Burst struct {
	Channel int
	Start   int
	End     int
	// Peak is the largest block magnitude seen during the burst
	Peak float64
}

// Duration returns the burst length at sampleRate.
func (b Burst) Duration(sampleRate float64) time.Duration {
	return time.Duration(math.Round(float64(b.End-b.Start) / sampleRate * float64(time.Second)))
}

// BurstCallback is called when a burst ends.
type BurstCallback func(b Burst)

// BurstConfig holds configuration for a burst tracker.
type BurstConfig struct {
	// Channel is the player frequency to track
	Channel int
	// Threshold is the block magnitude that counts as the tone being present
	Threshold float64
	// Hysteresis is consecutive blocks required to confirm a state change
	Hysteresis int
}

// BurstTracker finds the start and end of bursts on one channel. Block
// magnitudes are debounced so a single noisy block neither starts nor ends
// a burst.
type BurstTracker struct {
	config    BurstConfig
	goertzel  *Goertzel
	blockSize int
	block     []float64
	pos       int // samples consumed in full blocks

	on        bool
	pending   bool
	count     int
	pendingAt int
	runPeak   float64
	start     int
	peak      float64

	callbackPtr atomic.Pointer[BurstCallback]
}

// NewBurstTracker creates a tracker for recordings at sampleRate Hz.
func NewBurstTracker(cfg BurstConfig, sampleRate float64, blockSize int) (*BurstTracker, error) {
	if cfg.Channel < 0 || cfg.Channel >= filter.ChannelCount {
		return nil, fmt.Errorf("%w: %d", filter.ErrInvalidChannel, cfg.Channel)
	}
	if !(cfg.Threshold > 0) {
		return nil, ErrInvalidThreshold
	}
	if cfg.Hysteresis < 1 {
		return nil, ErrInvalidHysteresis
	}
	g, err := NewGoertzel(GoertzelConfig{
		TargetFrequency: filter.ChannelFrequency(cfg.Channel),
		SampleRate:      sampleRate,
		BlockSize:       blockSize,
	})
	if err != nil {
		return nil, err
	}
	return &BurstTracker{
		config:    cfg,
		goertzel:  g,
		blockSize: blockSize,
		block:     make([]float64, 0, blockSize),
	}, nil
}

// SetCallback sets the callback for completed bursts.
func (t *BurstTracker) SetCallback(cb BurstCallback) {
	if cb == nil {
		t.callbackPtr.Store(nil)
	} else {
		t.callbackPtr.Store(&cb)
	}
}

// Process feeds samples. A partial block is kept for the next call.
func (t *BurstTracker) Process(samples []buffer.Sample) {
	for _, raw := range samples {
		t.block = append(t.block, detector.Scale(raw))
		if len(t.block) == t.blockSize {
			// Magnitude cannot fail on a full block.
			m, _ := t.goertzel.Magnitude(t.block)
			t.update(m > t.config.Threshold, m)
			t.block = t.block[:0]
			t.pos += t.blockSize
		}
	}
}

// Flush ends a burst still in progress at the last full block.
func (t *BurstTracker) Flush() {
	if t.on {
		t.emit(t.pos)
	}
	t.pending = false
	t.count = 0
}

// Active reports whether a burst is in progress.
func (t *BurstTracker) Active() bool {
	return t.on
}

func (t *BurstTracker) update(present bool, magnitude float64) {
	blockStart := t.pos

	if present == t.on {
		t.pending = t.on
		t.count = 0
		if t.on {
			t.peak = max(t.peak, magnitude)
		}
		return
	}

	if present == t.pending {
		t.count++
		t.runPeak = max(t.runPeak, magnitude)
	} else {
		t.pending = present
		t.count = 1
		t.pendingAt = blockStart
		t.runPeak = magnitude
	}

	if t.count < t.config.Hysteresis {
		return
	}
	t.count = 0
	if present {
		t.on = true
		t.start = t.pendingAt
		t.peak = t.runPeak
		return
	}
	t.emit(t.pendingAt)
}

func (t *BurstTracker) emit(end int) {
	t.on = false
	b := Burst{
		Channel: t.config.Channel,
		Start:   t.start,
		End:     end,
		Peak:    t.peak,
	}
	if cbPtr := t.callbackPtr.Load(); cbPtr != nil {
		(*cbPtr)(b)
	}
}

// FindBursts returns every burst on cfg.Channel in a recording.
func FindBursts(samples []buffer.Sample, cfg BurstConfig, sampleRate float64, blockSize int) ([]Burst, error) {
	t, err := NewBurstTracker(cfg, sampleRate, blockSize)
	if err != nil {
		return nil, err
	}
	var bursts []Burst
	t.SetCallback(func(b Burst) { bursts = append(bursts, b) })
	t.Process(samples)
	t.Flush()
	return bursts, nil
}
