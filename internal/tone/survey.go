// internal/tone/survey.go
package tone

import (
	"fmt"

	"github.com/ColonelBlimp/lasertag/internal/buffer"
	"github.com/ColonelBlimp/lasertag/internal/detector"
	"github.com/ColonelBlimp/lasertag/internal/filter"
)

// DefaultBlockSize is 20 ms at 100 kHz, a 50 Hz resolution against channels
// at least 238 Hz apart.
const DefaultBlockSize = 2000

// Survey measures every player frequency in a recording with one Goertzel
// detector per channel. It checks the filter bank's verdict by an
// independent method.
type Survey struct {
	detectors [filter.ChannelCount]*Goertzel
	blockSize int
	scaled    []float64
}

// Result holds the mean per-channel magnitude over all complete blocks.
type Result struct {
	Magnitudes [filter.ChannelCount]float64
	Blocks     int
}

// Strongest returns the channel with the largest magnitude, the lowest on
// ties.
func (r Result) Strongest() int {
	return filter.ArgMax(r.Magnitudes[:])
}

// NewSurvey creates a survey for recordings at sampleRate Hz.
func NewSurvey(sampleRate float64, blockSize int) (*Survey, error) {
	s := &Survey{blockSize: blockSize, scaled: make([]float64, max(blockSize, 0))}
	for ch := range s.detectors {
		g, err := NewGoertzel(GoertzelConfig{
			TargetFrequency: filter.ChannelFrequency(ch),
			SampleRate:      sampleRate,
			BlockSize:       blockSize,
		})
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch, err)
		}
		s.detectors[ch] = g
	}
	return s, nil
}

// Scan measures samples block by block. A trailing partial block is ignored.
func (s *Survey) Scan(samples []buffer.Sample) (Result, error) {
	var res Result
	if len(samples) < s.blockSize {
		return res, ErrInsufficientSamples
	}

	for start := 0; start+s.blockSize <= len(samples); start += s.blockSize {
		for i, raw := range samples[start : start+s.blockSize] {
			s.scaled[i] = detector.Scale(raw)
		}
		for ch, g := range s.detectors {
			m, err := g.Magnitude(s.scaled)
			if err != nil {
				return res, err
			}
			res.Magnitudes[ch] += m
		}
		res.Blocks++
	}
	for ch := range res.Magnitudes {
		res.Magnitudes[ch] /= float64(res.Blocks)
	}
	return res, nil
}
