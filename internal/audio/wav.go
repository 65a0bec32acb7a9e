// internal/audio/wav.go
package audio

import (
	"errors"
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ColonelBlimp/lasertag/internal/buffer"
)

// pcmBitDepth is the depth recordings are written at. A 12-bit code maps to
// the top 12 bits of a 16-bit sample.
const pcmBitDepth = 16

const wavFormatPCM = 1

var (
	// ErrInvalidWAV indicates the file is not a WAV file
	ErrInvalidWAV = errors.New("not a valid WAV file")
	// ErrUnsupportedBitDepth indicates the WAV bit depth cannot be converted
	ErrUnsupportedBitDepth = errors.New("unsupported WAV bit depth")
)

// Recording is a sensor recording as ADC codes.
type Recording struct {
	SampleRate int
	Samples    []buffer.Sample
}

// ReadWAV loads a PCM WAV file of 16 to 32 bits. Multichannel files are read
// from the first channel.
func ReadWAV(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidWAV)
	}
	depth := int(dec.BitDepth)
	if depth < pcmBitDepth || depth > 32 {
		return nil, fmt.Errorf("%s: %w: %d", path, ErrUnsupportedBitDepth, depth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode recording: %w", err)
	}

	channels := int(dec.NumChans)
	if channels < 1 {
		channels = 1
	}
	samples := make([]buffer.Sample, len(buf.Data)/channels)
	for i := range samples {
		samples[i] = pcmToSample(buf.Data[i*channels], depth)
	}
	return &Recording{SampleRate: int(dec.SampleRate), Samples: samples}, nil
}

// WriteWAV stores samples as a mono 16-bit PCM WAV file.
func WriteWAV(path string, sampleRate int, samples []buffer.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create recording: %w", err)
	}

	enc := wav.NewEncoder(f, sampleRate, pcmBitDepth, 1, wavFormatPCM)
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = sampleToPCM(s)
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: pcmBitDepth,
	}

	if err := enc.Write(buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode recording: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("finish recording: %w", err)
	}
	return f.Close()
}

// sampleToPCM maps an ADC code to a signed 16-bit value.
func sampleToPCM(s buffer.Sample) int {
	return (int(s) - 2048) << 4
}

// pcmToSample maps a signed sample of the given bit depth to an ADC code.
func pcmToSample(v, depth int) buffer.Sample {
	v >>= depth - pcmBitDepth
	code := v>>4 + 2048
	return buffer.Sample(max(0, min(int(buffer.MaxSample), code)))
}
