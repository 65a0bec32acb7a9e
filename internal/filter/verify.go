package filter

import "github.com/ColonelBlimp/lasertag/internal/queue"

// The accessors below expose the bank's tables and histories read-only for
// conformance tests. The main filter path does not use them.

// FIRCoefficients returns a copy of the FIR taps in table order.
func (b *Bank) FIRCoefficients() []float64 {
	out := make([]float64, FIRTapCount)
	copy(out, firCoefficients[:])
	return out
}

// IIRACoefficients returns a copy of the feedback taps a[1]..a[10] of ch.
func (b *Bank) IIRACoefficients(ch int) []float64 {
	checkChannel(ch)
	out := make([]float64, IIRACount)
	copy(out, iirACoefficients[ch][:])
	return out
}

// IIRBCoefficients returns a copy of the feed-forward taps b[0]..b[10] of ch.
func (b *Bank) IIRBCoefficients(ch int) []float64 {
	checkChannel(ch)
	out := make([]float64, IIRBCount)
	copy(out, iirBCoefficients[ch][:])
	return out
}

// DecimationValue returns the number of inputs per decimated frame.
func (b *Bank) DecimationValue() int { return DecimationFactor }

// XQueue returns a read-only view of the input history the FIR reads.
func (b *Bank) XQueue() queue.Reader[float64] { return b.xQueue.View() }

// YQueue returns a read-only view of the decimated FIR output history.
func (b *Bank) YQueue() queue.Reader[float64] { return b.yQueue.View() }

// ZQueue returns a read-only view of a resonator's feedback history.
func (b *Bank) ZQueue(ch int) queue.Reader[float64] {
	checkChannel(ch)
	return b.zQueue[ch].View()
}

// OutputQueue returns a read-only view of the outputs a channel's power is
// computed over.
func (b *Bank) OutputQueue(ch int) queue.Reader[float64] {
	checkChannel(ch)
	return b.outputQueue[ch].View()
}
