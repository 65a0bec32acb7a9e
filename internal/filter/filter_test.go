package filter

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"
)

const relTolerance = 1e-9

func closeTo(got, want, tol float64) bool {
	if got == want {
		return true
	}
	scale := math.Max(math.Abs(got), math.Abs(want))
	if scale < 1e-300 {
		return true
	}
	return math.Abs(got-want)/scale <= tol
}

// squareWave returns scaled samples of a full-duty square wave with the
// given period in ticks and amplitude relative to full scale.
func squareWave(periodTicks, n int, amplitude float64) []float64 {
	half := periodTicks / 2
	out := make([]float64, n)
	for i := range out {
		if (i/half)%2 == 1 {
			out[i] = amplitude
		} else {
			out[i] = -amplitude
		}
	}
	return out
}

// feed runs samples through the bank the way the detector does.
func feed(b *Bank, samples []float64) {
	for i, x := range samples {
		b.AddInput(x)
		if (i+1)%DecimationFactor == 0 {
			b.RunFIR()
			for ch := 0; ch < ChannelCount; ch++ {
				b.RunIIR(ch)
				b.ComputePower(ch, b.InvocationCount() == 1)
			}
		}
	}
}

func TestNew_QueueSizes(t *testing.T) {
	b := New()
	if got := b.XQueue().Size(); got != FIRTapCount {
		t.Errorf("XQueue().Size() = %d, want %d", got, FIRTapCount)
	}
	if got := b.YQueue().Size(); got != IIRBCount {
		t.Errorf("YQueue().Size() = %d, want %d", got, IIRBCount)
	}
	for ch := 0; ch < ChannelCount; ch++ {
		if got := b.ZQueue(ch).Size(); got != IIRACount {
			t.Errorf("ZQueue(%d).Size() = %d, want %d", ch, got, IIRACount)
		}
		if got := b.OutputQueue(ch).Size(); got != PowerWindow {
			t.Errorf("OutputQueue(%d).Size() = %d, want %d", ch, got, PowerWindow)
		}
	}
	if b.DecimationValue() != 10 {
		t.Errorf("DecimationValue() = %d, want 10", b.DecimationValue())
	}
}

func TestCoefficients_Shape(t *testing.T) {
	b := New()
	fir := b.FIRCoefficients()
	if len(fir) != FIRTapCount {
		t.Fatalf("len(FIRCoefficients()) = %d, want %d", len(fir), FIRTapCount)
	}
	for i := 0; i < FIRTapCount/2; i++ {
		if fir[i] != fir[FIRTapCount-1-i] {
			t.Errorf("FIR taps not symmetric at %d: %v != %v", i, fir[i], fir[FIRTapCount-1-i])
		}
	}
	if fir[40] != 0.106 {
		t.Errorf("center tap = %v, want 0.106", fir[40])
	}

	for ch := 0; ch < ChannelCount; ch++ {
		a := b.IIRACoefficients(ch)
		bb := b.IIRBCoefficients(ch)
		if len(a) != IIRACount || len(bb) != IIRBCount {
			t.Fatalf("channel %d: len(a)=%d len(b)=%d", ch, len(a), len(bb))
		}
		// Every resonator shares the same pole radius: a[10] = r^10.
		if !closeTo(a[IIRACount-1], 9.0332828533799e-01, 1e-12) {
			t.Errorf("channel %d: a[10] = %v", ch, a[IIRACount-1])
		}
		// Feed-forward taps are odd-symmetric: (1 - z^-2)^5 scaled.
		for i := 0; i < IIRBCount; i++ {
			if bb[i] != -bb[IIRBCount-1-i] {
				t.Errorf("channel %d: b[%d] = %v, b[%d] = %v", ch, i, bb[i], IIRBCount-1-i, bb[IIRBCount-1-i])
			}
		}
	}

	// Accessors hand out copies.
	fir[0] = 42
	if b.FIRCoefficients()[0] == 42 {
		t.Error("FIRCoefficients() exposes internal storage")
	}
}

func TestBank_ZeroIsFixedPoint(t *testing.T) {
	b := New()
	for i := 0; i < 5000; i++ {
		b.AddInput(0)
		if (i+1)%DecimationFactor != 0 {
			continue
		}
		if y := b.RunFIR(); y != 0 {
			t.Fatalf("RunFIR() = %v on zero input", y)
		}
		for ch := 0; ch < ChannelCount; ch++ {
			if z := b.RunIIR(ch); z != 0 {
				t.Fatalf("RunIIR(%d) = %v on zero input", ch, z)
			}
			if p := b.ComputePower(ch, false); p != 0 {
				t.Fatalf("ComputePower(%d) = %v on zero input", ch, p)
			}
		}
	}
}

func TestRunFIR_ImpulseResponse(t *testing.T) {
	b := New()
	want := b.FIRCoefficients()
	for n := 0; n < FIRTapCount+5; n++ {
		x := 0.0
		if n == 0 {
			x = 1
		}
		b.AddInput(x)
		got := b.RunFIR()
		w := 0.0
		if n < FIRTapCount {
			w = want[n]
		}
		if !closeTo(got, w, 1e-15) {
			t.Errorf("h[%d] = %v, want %v", n, got, w)
		}
	}
	if b.InvocationCount() != FIRTapCount+5 {
		t.Errorf("InvocationCount() = %d, want %d", b.InvocationCount(), FIRTapCount+5)
	}
}

// referenceIIR is a plain difference-equation implementation working on
// the raw tables: z[n] = sum b[k] y[n-k] - sum a[k] z[n-1-k].
type referenceIIR struct {
	b, a []float64
	y, z []float64 // newest first
}

func newReferenceIIR(b, a []float64) *referenceIIR {
	return &referenceIIR{b: b, a: a, y: make([]float64, len(b)), z: make([]float64, len(a))}
}

func (r *referenceIIR) step(y float64) float64 {
	copy(r.y[1:], r.y[:len(r.y)-1])
	r.y[0] = y
	// Oldest term first, each sum separately, as the bank accumulates.
	var bs, as float64
	for k := len(r.b) - 1; k >= 0; k-- {
		bs += float64(r.b[k] * r.y[k])
	}
	for k := len(r.a) - 1; k >= 0; k-- {
		as += float64(r.a[k] * r.z[k])
	}
	z := bs - as
	copy(r.z[1:], r.z[:len(r.z)-1])
	r.z[0] = z
	return z
}

func TestRunIIR_ImpulseResponse(t *testing.T) {
	b := New()
	refs := make([]*referenceIIR, ChannelCount)
	for ch := range refs {
		refs[ch] = newReferenceIIR(b.IIRBCoefficients(ch), b.IIRACoefficients(ch))
	}

	// Drive the FIR with an impulse on every input so its output is the
	// FIR impulse response, then check each resonator against the reference.
	var peak [ChannelCount]float64
	for n := 0; n < 400; n++ {
		x := 0.0
		if n == 0 {
			x = 1
		}
		b.AddInput(x)
		y := b.RunFIR()
		for ch := 0; ch < ChannelCount; ch++ {
			got := b.RunIIR(ch)
			want := refs[ch].step(y)
			peak[ch] = math.Max(peak[ch], math.Abs(want))
			if math.Abs(got-want) > relTolerance*peak[ch] {
				t.Fatalf("n=%d channel %d: RunIIR() = %v, reference %v", n, ch, got, want)
			}
			if z, _ := b.ZQueue(ch).ReadAt(0); z != got {
				t.Fatalf("ZQueue(%d) newest = %v, want %v", ch, z, got)
			}
			if o, _ := b.OutputQueue(ch).ReadAt(0); o != got {
				t.Fatalf("OutputQueue(%d) newest = %v, want %v", ch, o, got)
			}
		}
	}
}

func TestComputePower_IncrementalMatchesFromScratch(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	incremental := New()
	scratch := New()
	const ch = 4

	incremental.ComputePower(ch, true)
	scratch.ComputePower(ch, true)

	for i := 0; i < 1000; i++ {
		v := rng.NormFloat64()
		incremental.pushOutput(ch, v)
		scratch.pushOutput(ch, v)

		got := incremental.ComputePower(ch, false)
		want := scratch.ComputePower(ch, true)
		if !closeTo(got, want, relTolerance) {
			t.Fatalf("push %d: incremental = %v, from scratch = %v", i, got, want)
		}
	}
}

func TestComputePower_FromScratchSumsSquares(t *testing.T) {
	b := New()
	const ch = 0
	values := []float64{1, -2, 3, 0.5, -0.25, 4, 1, 1, -1, 2, 3}
	for _, v := range values {
		b.pushOutput(ch, v)
	}
	var want float64
	for _, v := range values[len(values)-PowerWindow:] {
		want += v * v
	}
	if got := b.ComputePower(ch, true); !closeTo(got, want, 1e-15) {
		t.Errorf("ComputePower(from scratch) = %v, want %v", got, want)
	}
	if got := b.Power(ch); !closeTo(got, want, 1e-15) {
		t.Errorf("Power() = %v, want %v", got, want)
	}
}

func TestComputePower_MultiplePushesFallsBack(t *testing.T) {
	b := New()
	const ch = 2
	b.ComputePower(ch, true)
	b.pushOutput(ch, 3)
	b.pushOutput(ch, 4)
	// Two values entered the window; an incremental update would be wrong.
	if got := b.ComputePower(ch, false); got != 25 {
		t.Errorf("ComputePower() = %v, want 25", got)
	}
}

func TestComputePower_NegativeIncrementRecomputes(t *testing.T) {
	b := New()
	const ch = 7
	for i := 0; i < PowerWindow; i++ {
		b.pushOutput(ch, 10)
	}
	b.ComputePower(ch, true)

	// Corrupt the running value so the incremental path would go negative.
	b.SetPower(ch, 0)
	b.pushOutput(ch, 1)
	got := b.ComputePower(ch, false)
	want := 9*100.0 + 1
	if got != want {
		t.Errorf("ComputePower() = %v, want %v", got, want)
	}
	if got < 0 {
		t.Error("power went negative")
	}
}

func TestNormalizedPowerValues(t *testing.T) {
	b := New()
	powers := [ChannelCount]float64{1, 2, 8, 4, 8, 0, 0, 0, 0, 2}
	for ch, p := range powers {
		b.SetPower(ch, p)
	}

	var out [ChannelCount]float64
	idx := b.NormalizedPowerValues(&out)
	if idx != 2 {
		t.Errorf("index of max = %d, want 2 (lowest index on ties)", idx)
	}
	for ch := range powers {
		if !closeTo(out[ch], powers[ch]/8, 1e-15) {
			t.Errorf("normalized[%d] = %v, want %v", ch, out[ch], powers[ch]/8)
		}
	}
	if out[2] != 1 {
		t.Errorf("normalized max = %v, want exactly 1", out[2])
	}
}

func TestNormalizedPowerValues_AllZero(t *testing.T) {
	b := New()
	out := [ChannelCount]float64{9, 9, 9, 9, 9, 9, 9, 9, 9, 9}
	idx := b.NormalizedPowerValues(&out)
	if idx != 0 {
		t.Errorf("index of max = %d, want 0", idx)
	}
	for ch, v := range out {
		if v != 0 {
			t.Errorf("normalized[%d] = %v, want 0", ch, v)
		}
	}
}

func TestPowerValues_Copy(t *testing.T) {
	b := New()
	b.SetPower(3, 1.5)
	var out [ChannelCount]float64
	b.PowerValues(&out)
	out[3] = 0
	if b.Power(3) != 1.5 {
		t.Error("PowerValues() exposes internal storage")
	}
}

func TestBank_SelectsTransmittedChannel(t *testing.T) {
	for ch := 0; ch < ChannelCount; ch++ {
		t.Run(fmt.Sprintf("channel_%d_%.0fHz", ch, ChannelFrequency(ch)), func(t *testing.T) {
			b := New()
			feed(b, squareWave(FrequencyTickTable[ch], 20000, 0.25))

			var powers [ChannelCount]float64
			b.PowerValues(&powers)
			got := ArgMax(powers[:])
			if got != ch {
				t.Fatalf("strongest channel = %d, want %d (powers %v)", got, ch, powers)
			}
			// The resonators are narrow: every other channel is far below.
			for other, p := range powers {
				if other != ch && p*1000 > powers[ch] {
					t.Errorf("channel %d power %v too close to %v", other, p, powers[ch])
				}
			}
		})
	}
}

func TestBank_Init(t *testing.T) {
	b := New()
	feed(b, squareWave(FrequencyTickTable[5], 2000, 1))
	b.Init()
	if b.InputCount() != 0 || b.InvocationCount() != 0 {
		t.Errorf("counters after Init: %d, %d", b.InputCount(), b.InvocationCount())
	}
	for ch := 0; ch < ChannelCount; ch++ {
		if b.Power(ch) != 0 {
			t.Errorf("Power(%d) = %v after Init", ch, b.Power(ch))
		}
		for _, v := range b.ZQueue(ch).Values() {
			if v != 0 {
				t.Fatalf("ZQueue(%d) not zeroed", ch)
			}
		}
	}
}

func TestBank_QueueViewsAreReadOnly(t *testing.T) {
	b := New()
	for _, v := range b.XQueue().Values() {
		if v != 0 {
			t.Fatalf("fresh XQueue holds %v", v)
		}
	}

	x := b.XQueue().Values()
	for i := range x {
		x[i] = 1
	}
	y := b.YQueue().Values()
	y[len(y)-1] = 1
	for ch := 0; ch < ChannelCount; ch++ {
		z := b.ZQueue(ch).Values()
		z[len(z)-1] = 1
		o := b.OutputQueue(ch).Values()
		o[len(o)-1] = 1
	}

	if v, _ := b.XQueue().ReadAt(FIRTapCount - 1); v != 0 {
		t.Errorf("XQueue().ReadAt(%d) = %v after writing to Values()", FIRTapCount-1, v)
	}
	if got := b.RunFIR(); got != 0 {
		t.Errorf("RunFIR() = %v, want 0", got)
	}
	for ch := 0; ch < ChannelCount; ch++ {
		if got := b.RunIIR(ch); got != 0 {
			t.Errorf("RunIIR(%d) = %v, want 0", ch, got)
		}
		if got := b.ComputePower(ch, true); got != 0 {
			t.Errorf("ComputePower(%d) = %v, want 0", ch, got)
		}
	}
}

func TestInvalidChannelPanics(t *testing.T) {
	ops := map[string]func(b *Bank){
		"RunIIR":       func(b *Bank) { b.RunIIR(ChannelCount) },
		"ComputePower": func(b *Bank) { b.ComputePower(-1, true) },
		"Power":        func(b *Bank) { b.Power(10) },
		"SetPower":     func(b *Bank) { b.SetPower(11, 0) },
		"ZQueue":       func(b *Bank) { b.ZQueue(-2) },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok || !errors.Is(err, ErrInvalidChannel) {
					t.Errorf("panic = %v, want ErrInvalidChannel", r)
				}
			}()
			op(New())
		})
	}
}

func TestChannelFrequency(t *testing.T) {
	tests := []struct {
		ch   int
		want float64
	}{
		{0, 1470.588},
		{2, 2000},
		{9, 4166.667},
	}
	for _, tt := range tests {
		if got := ChannelFrequency(tt.ch); math.Abs(got-tt.want) > 0.001 {
			t.Errorf("ChannelFrequency(%d) = %v, want %v", tt.ch, got, tt.want)
		}
	}
}
