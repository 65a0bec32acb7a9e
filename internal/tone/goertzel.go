// internal/tone/goertzel.go
package tone

import (
	"errors"
	"math"
)

var (
	// ErrInvalidBlockSize indicates block size must be positive
	ErrInvalidBlockSize = errors.New("block size must be positive")
	// ErrInvalidSampleRate indicates sample rate must be positive
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	// ErrInvalidFrequency indicates frequency must be positive and below Nyquist
	ErrInvalidFrequency = errors.New("target frequency must be positive and less than Nyquist frequency")
	// ErrInsufficientSamples indicates not enough samples for the configured block size
	ErrInsufficientSamples = errors.New("insufficient samples for block size")
)

// GoertzelConfig holds configuration for a single-bin detector.
type GoertzelConfig struct {
	// TargetFrequency is the frequency to measure in Hz
	TargetFrequency float64
	// SampleRate is the ADC rate in Hz (from config: sample_rate)
	SampleRate float64
	// BlockSize is the number of samples per measurement window
	BlockSize int
}

// Goertzel measures the magnitude of one frequency in a block of samples.
// The target does not have to fall on an FFT bin.
type Goertzel struct {
	config      GoertzelConfig
	coefficient float64 // 2 * cos(omega)
	normalizer  float64 // 2 / blockSize
}

// NewGoertzel creates a detector for cfg.TargetFrequency.
func NewGoertzel(cfg GoertzelConfig) (*Goertzel, error) {
	if cfg.BlockSize <= 0 {
		return nil, ErrInvalidBlockSize
	}
	if cfg.SampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if cfg.TargetFrequency <= 0 || cfg.TargetFrequency >= cfg.SampleRate/2 {
		return nil, ErrInvalidFrequency
	}

	omega := 2 * math.Pi * cfg.TargetFrequency / cfg.SampleRate
	return &Goertzel{
		config:      cfg,
		coefficient: 2 * math.Cos(omega),
		normalizer:  2 / float64(cfg.BlockSize),
	}, nil
}

// Magnitude returns the amplitude of the target frequency over the first
// BlockSize samples. A unit sine at the target gives about 1.
func (g *Goertzel) Magnitude(samples []float64) (float64, error) {
	if len(samples) < g.config.BlockSize {
		return 0, ErrInsufficientSamples
	}

	var s0, s1, s2 float64
	coeff := g.coefficient
	for _, x := range samples[:g.config.BlockSize] {
		s0 = x + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}

	power := s1*s1 + s2*s2 - coeff*s1*s2
	if power < 0 {
		power = 0
	}
	return math.Sqrt(power) * g.normalizer, nil
}

// Coefficient returns the recurrence coefficient.
func (g *Goertzel) Coefficient() float64 {
	return g.coefficient
}

// Config returns the configuration.
func (g *Goertzel) Config() GoertzelConfig {
	return g.config
}
