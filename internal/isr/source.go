// internal/isr/source.go
package isr

import (
	"math"
	"math/rand/v2"

	"github.com/ColonelBlimp/lasertag/internal/buffer"
	"github.com/ColonelBlimp/lasertag/internal/transmitter"
)

// SampleSource yields one ADC code per interrupt. ok is false when the
// source has no more samples.
type SampleSource interface {
	Next() (s buffer.Sample, ok bool)
}

// Constant is a source that always yields the same code, like a sensor with
// no light on it.
type Constant buffer.Sample

// Next implements SampleSource.
func (c Constant) Next() (buffer.Sample, bool) {
	return buffer.Sample(c), true
}

// SliceSource replays a recording.
type SliceSource struct {
	samples []buffer.Sample
	pos     int
}

// NewSliceSource creates a source yielding samples in order.
func NewSliceSource(samples []buffer.Sample) *SliceSource {
	return &SliceSource{samples: samples}
}

// Next implements SampleSource.
func (s *SliceSource) Next() (buffer.Sample, bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	v := s.samples[s.pos]
	s.pos++
	return v, true
}

// Reset replaces the samples to replay. Live capture reuses one source per
// audio block.
func (s *SliceSource) Reset(samples []buffer.Sample) {
	s.samples = samples
	s.pos = 0
}

// Remaining returns the number of samples not yet replayed.
func (s *SliceSource) Remaining() int {
	return len(s.samples) - s.pos
}

// LevelReader reports a transmitter's current output level.
type LevelReader interface {
	Level() bool
}

// TransmitterSource models the optical path from a transmitter's LED to the
// sensor: the square wave is attenuated and Gaussian noise is added. Noise
// is relative to full scale.
type TransmitterSource struct {
	tx          LevelReader
	attenuation float64
	noise       float64
	rng         *rand.Rand
}

// NewTransmitterSource creates a loopback source. The same seed always gives
// the same noise.
func NewTransmitterSource(tx LevelReader, attenuation, noise float64, seed uint64) *TransmitterSource {
	return &TransmitterSource{
		tx:          tx,
		attenuation: attenuation,
		noise:       noise,
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Next implements SampleSource.
func (t *TransmitterSource) Next() (buffer.Sample, bool) {
	v := float64(transmitter.Code(t.tx.Level(), t.attenuation))
	if t.noise > 0 {
		v += t.noise * float64(buffer.MaxSample) / 2 * t.rng.NormFloat64()
	}
	v = math.Max(0, math.Min(float64(buffer.MaxSample), math.Round(v)))
	return buffer.Sample(v), true
}
