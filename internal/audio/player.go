// internal/audio/player.go
package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/ColonelBlimp/lasertag/internal/buffer"
)

const playPollInterval = 10 * time.Millisecond

// Player drives an IR LED from the audio output. Only one Player may exist
// per process.
type Player struct {
	ctx *oto.Context
}

// NewPlayer opens the default output device at sampleRate.
func NewPlayer(sampleRate int) (*Player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("init audio output: %w", err)
	}
	<-ready
	return &Player{ctx: ctx}, nil
}

// Play renders samples and blocks until playback finishes or ctx is done.
func (p *Player) Play(ctx context.Context, samples []buffer.Sample) error {
	player := p.ctx.NewPlayer(bytes.NewReader(EncodeS16LE(samples)))
	defer player.Close()

	player.Play()
	ticker := time.NewTicker(playPollInterval)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// EncodeS16LE converts ADC codes to mono signed 16-bit little-endian PCM.
func EncodeS16LE(samples []buffer.Sample) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(sampleToPCM(s))))
	}
	return out
}
