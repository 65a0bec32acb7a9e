// internal/filter/filter.go
package filter

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/ColonelBlimp/lasertag/internal/queue"
)

const (
	// ChannelCount is the number of player frequencies
	ChannelCount = 10
	// FIRTapCount is the length of the anti-aliasing filter
	FIRTapCount = 81
	// IIRBCount is the number of feed-forward taps per resonator
	IIRBCount = 11
	// IIRACount is the number of feedback taps per resonator (a[0] excluded)
	IIRACount = 10
	// DecimationFactor is the number of inputs per FIR/IIR invocation
	DecimationFactor = 10
	// PowerWindow is the number of resonator outputs summed into a power value
	PowerWindow = IIRACount
	// SampleRate is the ADC rate in Hz the coefficients were designed for
	SampleRate = 100000

	queueInitValue = 0.0
)

// ErrInvalidChannel indicates a channel index outside [0, ChannelCount).
var ErrInvalidChannel = errors.New("filter channel out of range")

// FrequencyTickTable holds the period of each player frequency in ADC ticks.
var FrequencyTickTable = [ChannelCount]int{68, 58, 50, 44, 38, 34, 30, 28, 26, 24}

// ChannelFrequency returns the nominal frequency of a channel in Hz.
func ChannelFrequency(ch int) float64 {
	checkChannel(ch)
	return float64(SampleRate) / float64(FrequencyTickTable[ch])
}

// Bank is the two-stage filter: a decimating FIR low-pass followed by ten
// IIR resonators, one per player frequency, each with a running power
// estimate over its most recent PowerWindow outputs.
type Bank struct {
	xQueue      *queue.History[float64] // FIR input
	yQueue      *queue.History[float64] // FIR output, shared by all resonators
	zQueue      [ChannelCount]*queue.History[float64]
	outputQueue [ChannelCount]*queue.History[float64]

	// Coefficients reversed so that a window ordered oldest to newest lines
	// up with the taps: tap i multiplies the value i pushes back.
	firTaps [FIRTapCount]float64
	iirB    [ChannelCount][IIRBCount]float64
	iirA    [ChannelCount][IIRACount]float64

	power    [ChannelCount]float64
	evicted  [ChannelCount]float64 // value that left the output window on the last push
	pushes   [ChannelCount]int     // outputs pushed since the last power computation
	computed [ChannelCount]bool    // power has a from-scratch baseline

	inputCount      uint64
	invocationCount uint64

	// scratch for the vectorised products
	firScratch [FIRTapCount]float64
	bScratch   [IIRBCount]float64
	aScratch   [IIRACount]float64
	pScratch   [PowerWindow]float64
}

// New creates a filter bank with all histories zeroed.
func New() *Bank {
	b := &Bank{
		xQueue: queue.MustNew("xQueue", FIRTapCount, queueInitValue),
		yQueue: queue.MustNew("yQueue", IIRBCount, queueInitValue),
	}
	for ch := 0; ch < ChannelCount; ch++ {
		b.zQueue[ch] = queue.MustNew(fmt.Sprintf("zQueue[%d]", ch), IIRACount, queueInitValue)
		b.outputQueue[ch] = queue.MustNew(fmt.Sprintf("outputQueue[%d]", ch), PowerWindow, queueInitValue)
	}
	for i := 0; i < FIRTapCount; i++ {
		b.firTaps[i] = firCoefficients[FIRTapCount-1-i]
	}
	for ch := 0; ch < ChannelCount; ch++ {
		for i := 0; i < IIRBCount; i++ {
			b.iirB[ch][i] = iirBCoefficients[ch][IIRBCount-1-i]
		}
		for i := 0; i < IIRACount; i++ {
			b.iirA[ch][i] = iirACoefficients[ch][IIRACount-1-i]
		}
	}
	return b
}

// Init zeroes every history, the power values and the counters.
func (b *Bank) Init() {
	b.xQueue.Fill(queueInitValue)
	b.yQueue.Fill(queueInitValue)
	for ch := 0; ch < ChannelCount; ch++ {
		b.zQueue[ch].Fill(queueInitValue)
		b.outputQueue[ch].Fill(queueInitValue)
	}
	b.power = [ChannelCount]float64{}
	b.evicted = [ChannelCount]float64{}
	b.pushes = [ChannelCount]int{}
	b.computed = [ChannelCount]bool{}
	b.inputCount = 0
	b.invocationCount = 0
}

// AddInput pushes one scaled sample in [-1, 1] into the FIR input history.
func (b *Bank) AddInput(x float64) {
	b.xQueue.PushOverwrite(x)
	b.inputCount++
}

// RunFIR convolves the last FIRTapCount inputs with the low-pass taps,
// pushes the result onto the history shared by the resonators and returns
// it. Call it once per DecimationFactor inputs.
func (b *Bank) RunFIR() float64 {
	y := dot(b.firScratch[:], b.xQueue.Window(), b.firTaps[:])
	b.yQueue.PushOverwrite(y)
	b.invocationCount++
	return y
}

// RunIIR runs the resonator for channel ch on the FIR output history,
// pushes the result onto the channel's feedback and output histories and
// returns it.
func (b *Bank) RunIIR(ch int) float64 {
	checkChannel(ch)
	z := dot(b.bScratch[:], b.yQueue.Window(), b.iirB[ch][:]) -
		dot(b.aScratch[:], b.zQueue[ch].Window(), b.iirA[ch][:])
	b.zQueue[ch].PushOverwrite(z)
	b.pushOutput(ch, z)
	return z
}

func (b *Bank) pushOutput(ch int, z float64) {
	b.evicted[ch] = b.outputQueue[ch].Oldest()
	b.outputQueue[ch].PushOverwrite(z)
	b.pushes[ch]++
}

// ComputePower updates and returns the power of channel ch: the sum of the
// squares of its last PowerWindow outputs.
//
// With fromScratch false the update is incremental, subtracting the square
// of the value that left the window and adding the newest. That is only
// exact when one output was pushed since the previous computation, so any
// other case, the first computation, and a negative incremental result all
// fall back to a full recompute.
func (b *Bank) ComputePower(ch int, fromScratch bool) float64 {
	checkChannel(ch)
	if fromScratch || !b.computed[ch] || b.pushes[ch] != 1 {
		return b.recomputePower(ch)
	}
	newest := b.outputQueue[ch].At(0)
	oldest := b.evicted[ch]
	p := b.power[ch] - oldest*oldest + newest*newest
	if p < 0 {
		return b.recomputePower(ch)
	}
	b.power[ch] = p
	b.pushes[ch] = 0
	return p
}

func (b *Bank) recomputePower(ch int) float64 {
	w := b.outputQueue[ch].Window()
	vecmath.MulBlock(b.pScratch[:], w, w)
	var p float64
	for _, v := range b.pScratch {
		p += v
	}
	b.power[ch] = p
	b.pushes[ch] = 0
	b.computed[ch] = true
	return p
}

// Power returns the last computed power of channel ch.
func (b *Bank) Power(ch int) float64 {
	checkChannel(ch)
	return b.power[ch]
}

// SetPower overrides the stored power of channel ch. The next incremental
// computation builds on this value, so use it only to drive the detector
// in tests.
func (b *Bank) SetPower(ch int, value float64) {
	checkChannel(ch)
	b.power[ch] = value
}

// PowerValues copies the current power of every channel into out.
func (b *Bank) PowerValues(out *[ChannelCount]float64) {
	*out = b.power
}

// NormalizedPowerValues copies the power values into out divided by the
// largest one and returns the index of that maximum. Ties go to the lowest
// index. When every value is zero out is all zeros and the index is 0.
func (b *Bank) NormalizedPowerValues(out *[ChannelCount]float64) int {
	idx := ArgMax(b.power[:])
	peak := b.power[idx]
	if peak == 0 {
		*out = [ChannelCount]float64{}
		return 0
	}
	vecmath.ScaleBlock(out[:], b.power[:], 1/peak)
	out[idx] = 1
	return idx
}

// ArgMax returns the index of the largest value, the lowest index on ties.
func ArgMax(values []float64) int {
	idx := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[idx] {
			idx = i
		}
	}
	return idx
}

// InputCount returns the number of samples fed through AddInput.
func (b *Bank) InputCount() uint64 {
	return b.inputCount
}

// InvocationCount returns the number of decimated frames (FIR runs).
func (b *Bank) InvocationCount() uint64 {
	return b.invocationCount
}

// dot returns sum(a[i]*b[i]) using scratch for the element-wise products.
func dot(scratch, a, b []float64) float64 {
	vecmath.MulBlock(scratch, a, b)
	var sum float64
	for _, v := range scratch {
		sum += v
	}
	return sum
}

func checkChannel(ch int) {
	if ch < 0 || ch >= ChannelCount {
		panic(fmt.Errorf("%w: %d", ErrInvalidChannel, ch))
	}
}
