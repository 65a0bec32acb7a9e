// cmd/tagger.go
package cmd

import (
	"fmt"
	"io"

	"github.com/ColonelBlimp/lasertag/internal/buffer"
	"github.com/ColonelBlimp/lasertag/internal/config"
	"github.com/ColonelBlimp/lasertag/internal/detector"
	"github.com/ColonelBlimp/lasertag/internal/filter"
	"github.com/ColonelBlimp/lasertag/internal/isr"
	"github.com/ColonelBlimp/lasertag/internal/timer"
)

// tagger wires the receive path: interrupt handler, sample buffer, timers
// and detector.
type tagger struct {
	settings  *config.Settings
	buf       *buffer.Buffer
	lockout   *timer.Lockout
	indicator *timer.HitIndicator
	det       *detector.Detector
	handler   *isr.Handler
	out       io.Writer
	hits      []detector.HitEvent
}

// newTagger builds a receiver fed by src. trig and tx are ticked by the
// interrupt handler and either may be nil.
func newTagger(s *config.Settings, src isr.SampleSource, trig isr.Ticker, tx isr.Emitter, out io.Writer) (*tagger, error) {
	buf, err := buffer.New(s.BufferCapacity)
	if err != nil {
		return nil, err
	}
	lockout, err := timer.NewLockout(s.LockoutTicks)
	if err != nil {
		return nil, fmt.Errorf("lockout timer: %w", err)
	}
	indicator, err := timer.NewHitIndicator(s.HitLEDTicks)
	if err != nil {
		return nil, fmt.Errorf("hit indicator: %w", err)
	}
	det, err := detector.New(s.DetectorConfig(), buf, lockout, indicator)
	if err != nil {
		return nil, fmt.Errorf("detector: %w", err)
	}
	det.SetIgnoredFrequencies(s.IgnoreMask())

	handler, err := isr.New(isr.Config{
		Sink:         buf,
		Source:       src,
		Trigger:      trig,
		Lockout:      lockout,
		HitIndicator: indicator,
		Transmitter:  tx,
	})
	if err != nil {
		return nil, err
	}

	t := &tagger{
		settings:  s,
		buf:       buf,
		lockout:   lockout,
		indicator: indicator,
		det:       det,
		handler:   handler,
		out:       out,
	}
	det.SetCallback(t.onHit)
	if s.Debug {
		indicator.OnChange = func(lit bool) {
			_, _ = fmt.Fprintf(out, "[debug] hit LED %s at tick %d\n", onOff(lit), handler.Ticks())
		}
	}
	return t, nil
}

func (t *tagger) onHit(ev detector.HitEvent) {
	t.hits = append(t.hits, ev)
	_, _ = fmt.Fprintf(t.out, "HIT  frequency %d (%.0f Hz)  t=%.3fs  power=%.4g  threshold=%.4g  count=%d\n",
		ev.Channel, filter.ChannelFrequency(ev.Channel), frameSeconds(ev.Frame),
		ev.Power, ev.Threshold, ev.Count)
	if t.settings.Debug {
		p := t.det.Powers()
		_, _ = fmt.Fprintf(t.out, "[debug] powers %.3g\n", p[:])
	}
	t.det.ClearHit()
}

// step runs one interrupt and, every run_interval_ticks, the detector.
// It returns false once the source is exhausted.
func (t *tagger) step() bool {
	ok := t.handler.Tick()
	if t.handler.Ticks()%uint64(t.settings.RunIntervalTicks) == 0 || !ok {
		t.det.Run(false)
	}
	return ok
}

// drain ticks until the source runs out.
func (t *tagger) drain() {
	for t.step() {
	}
}

func (t *tagger) summary() {
	counts := t.det.HitCounts()
	_, _ = fmt.Fprintf(t.out, "\n%d hit(s) in %.3fs (%d ticks, %d frames, %d overflows)\n",
		len(t.hits), float64(t.handler.Ticks())/filter.SampleRate,
		t.handler.Ticks(), t.det.InvocationCount(), t.buf.Overflows())
	for ch, n := range counts {
		if n > 0 {
			_, _ = fmt.Fprintf(t.out, "  frequency %d: %d\n", ch, n)
		}
	}
}

// frameSeconds converts a decimated frame number to seconds of input.
func frameSeconds(frame uint64) float64 {
	return float64(frame) * filter.DecimationFactor / filter.SampleRate
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
