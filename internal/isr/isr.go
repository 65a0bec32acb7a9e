// internal/isr/isr.go
package isr

import (
	"errors"
	"sync/atomic"

	"github.com/ColonelBlimp/lasertag/internal/buffer"
)

var (
	// ErrSinkRequired indicates the handler needs a buffer to push into
	ErrSinkRequired = errors.New("sample sink is required")
	// ErrSourceRequired indicates the handler needs a sample source
	ErrSourceRequired = errors.New("sample source is required")
)

// Sink is the producer's view of the sample buffer.
type Sink interface {
	Lock()
	Unlock()
	PushOverwrite(s buffer.Sample)
}

// Ticker is a timer driven by the sampling interrupt.
type Ticker interface {
	Tick()
}

// Emitter is an output state machine driven by the sampling interrupt.
type Emitter interface {
	Tick() bool
}

// Config wires the collaborators ticked by the handler. Sink and Source are
// required; the rest may be nil.
type Config struct {
	Sink         Sink
	Source       SampleSource
	Trigger      Ticker
	Lockout      Ticker
	HitIndicator Ticker
	Transmitter  Emitter
}

// Handler does the work of one sampling interrupt: it ticks the trigger and
// the transmitter, acquires a sample, pushes it to the buffer inside the
// critical section and ticks the timers.
type Handler struct {
	cfg   Config
	ticks atomic.Uint64
}

// New creates a handler.
func New(cfg Config) (*Handler, error) {
	if cfg.Sink == nil {
		return nil, ErrSinkRequired
	}
	if cfg.Source == nil {
		return nil, ErrSourceRequired
	}
	return &Handler{cfg: cfg}, nil
}

// Tick runs one interrupt. It returns false once the source is exhausted;
// the timers and transmitter are still ticked on that call.
func (h *Handler) Tick() bool {
	if h.cfg.Trigger != nil {
		h.cfg.Trigger.Tick()
	}
	if h.cfg.Transmitter != nil {
		h.cfg.Transmitter.Tick()
	}

	s, ok := h.cfg.Source.Next()
	if ok {
		h.cfg.Sink.Lock()
		h.cfg.Sink.PushOverwrite(s)
		h.cfg.Sink.Unlock()
	}

	if h.cfg.Lockout != nil {
		h.cfg.Lockout.Tick()
	}
	if h.cfg.HitIndicator != nil {
		h.cfg.HitIndicator.Tick()
	}
	h.ticks.Add(1)
	return ok
}

// Ticks returns the number of interrupts handled.
func (h *Handler) Ticks() uint64 {
	return h.ticks.Load()
}
