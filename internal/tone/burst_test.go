package tone

import (
	"errors"
	"math"
	"testing"

	"github.com/ColonelBlimp/lasertag/internal/buffer"
	"github.com/ColonelBlimp/lasertag/internal/filter"
	"github.com/ColonelBlimp/lasertag/internal/transmitter"
)

// square returns n samples of a channel's square wave, or mid-scale when
// amplitude is zero.
func square(ch, n int, amplitude float64) []buffer.Sample {
	half := filter.FrequencyTickTable[ch] / 2
	out := make([]buffer.Sample, n)
	for i := range out {
		out[i] = transmitter.Code((i/half)%2 == 1, amplitude)
	}
	return out
}

func silence(n int) []buffer.Sample {
	return square(0, n, 0)
}

func concat(parts ...[]buffer.Sample) []buffer.Sample {
	var out []buffer.Sample
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func testBurstConfig(ch int) BurstConfig {
	return BurstConfig{Channel: ch, Threshold: 0.05, Hysteresis: 2}
}

func TestNewBurstTracker_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     BurstConfig
		block   int
		wantErr error
	}{
		{"channel low", BurstConfig{Channel: -1, Threshold: 0.05, Hysteresis: 2}, testBlockSize, filter.ErrInvalidChannel},
		{"channel high", BurstConfig{Channel: 10, Threshold: 0.05, Hysteresis: 2}, testBlockSize, filter.ErrInvalidChannel},
		{"threshold", BurstConfig{Channel: 0, Threshold: 0, Hysteresis: 2}, testBlockSize, ErrInvalidThreshold},
		{"hysteresis", BurstConfig{Channel: 0, Threshold: 0.05, Hysteresis: 0}, testBlockSize, ErrInvalidHysteresis},
		{"block size", testBurstConfig(0), 0, ErrInvalidBlockSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBurstTracker(tt.cfg, testSampleRate, tt.block)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewBurstTracker() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFindBursts_TwoShots(t *testing.T) {
	const ch = 6
	samples := concat(
		silence(4*testBlockSize),
		square(ch, transmitter.PulseTicks, 0.25),
		silence(10*testBlockSize),
		square(ch, transmitter.PulseTicks, 0.25),
		silence(4*testBlockSize),
	)

	bursts, err := FindBursts(samples, testBurstConfig(ch), testSampleRate, testBlockSize)
	if err != nil {
		t.Fatalf("FindBursts() error = %v", err)
	}
	if len(bursts) != 2 {
		t.Fatalf("got %d bursts, want 2: %+v", len(bursts), bursts)
	}

	wantStarts := []int{4 * testBlockSize, 4*testBlockSize + transmitter.PulseTicks + 10*testBlockSize}
	peak := 0.25 * 4 / math.Pi
	for i, b := range bursts {
		if b.Channel != ch {
			t.Errorf("burst %d Channel = %d, want %d", i, b.Channel, ch)
		}
		if b.Start != wantStarts[i] || b.End != wantStarts[i]+transmitter.PulseTicks {
			t.Errorf("burst %d = [%d, %d), want [%d, %d)", i, b.Start, b.End,
				wantStarts[i], wantStarts[i]+transmitter.PulseTicks)
		}
		if math.Abs(b.Peak-peak) > 0.1*peak {
			t.Errorf("burst %d Peak = %v, want about %v", i, b.Peak, peak)
		}
		if got := b.Duration(testSampleRate); got.Milliseconds() != 200 {
			t.Errorf("burst %d Duration() = %v, want 200ms", i, got)
		}
	}
}

func TestFindBursts_OtherChannelIgnored(t *testing.T) {
	samples := concat(silence(testBlockSize), square(2, transmitter.PulseTicks, 0.25), silence(testBlockSize))
	bursts, err := FindBursts(samples, testBurstConfig(7), testSampleRate, testBlockSize)
	if err != nil {
		t.Fatalf("FindBursts() error = %v", err)
	}
	if len(bursts) != 0 {
		t.Errorf("got %+v on channel 7 from a channel 2 burst", bursts)
	}
}

func TestBurstTracker_HysteresisRejectsGlitch(t *testing.T) {
	const ch = 4
	tr, err := NewBurstTracker(testBurstConfig(ch), testSampleRate, testBlockSize)
	if err != nil {
		t.Fatalf("NewBurstTracker() error = %v", err)
	}
	count := 0
	tr.SetCallback(func(Burst) { count++ })

	// one block of tone is shorter than the hysteresis
	tr.Process(concat(silence(testBlockSize), square(ch, testBlockSize, 0.25), silence(3*testBlockSize)))
	tr.Flush()
	if count != 0 || tr.Active() {
		t.Errorf("bursts = %d, Active() = %v after a one-block glitch", count, tr.Active())
	}
}

func TestBurstTracker_FlushClosesOpenBurst(t *testing.T) {
	const ch = 9
	tr, err := NewBurstTracker(testBurstConfig(ch), testSampleRate, testBlockSize)
	if err != nil {
		t.Fatalf("NewBurstTracker() error = %v", err)
	}
	var got []Burst
	tr.SetCallback(func(b Burst) { got = append(got, b) })

	// uneven chunks exercise the partial block carry-over
	samples := square(ch, 5*testBlockSize+123, 0.25)
	for len(samples) > 0 {
		n := min(777, len(samples))
		tr.Process(samples[:n])
		samples = samples[n:]
	}
	if !tr.Active() || len(got) != 0 {
		t.Fatalf("Active() = %v, bursts = %v; want an open burst", tr.Active(), got)
	}

	tr.Flush()
	if tr.Active() {
		t.Error("Active() after Flush")
	}
	if len(got) != 1 || got[0].Start != 0 || got[0].End != 5*testBlockSize {
		t.Errorf("bursts = %+v, want one [0, %d)", got, 5*testBlockSize)
	}
}
