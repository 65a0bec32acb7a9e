// internal/detector/detector.go
package detector

import (
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/ColonelBlimp/lasertag/internal/buffer"
	"github.com/ColonelBlimp/lasertag/internal/filter"
)

// ChannelCount is the number of player frequencies the detector scores.
const ChannelCount = filter.ChannelCount

// scaleOffset maps ADC codes [0, 4095] onto [-1, 1]. Detection thresholds
// are calibrated against exactly this constant.
const scaleOffset = 2047.5

var (
	// ErrSourceRequired indicates a sample source is required
	ErrSourceRequired = errors.New("sample source is required")
	// ErrLockoutRequired indicates a lockout timer is required
	ErrLockoutRequired = errors.New("lockout timer is required")
	// ErrIndicatorRequired indicates a hit indicator is required
	ErrIndicatorRequired = errors.New("hit indicator is required")
	// ErrNoFudgeFactors indicates at least one fudge factor must be configured
	ErrNoFudgeFactors = errors.New("at least one fudge factor is required")
	// ErrInvalidFudgeFactor indicates fudge factors must be positive
	ErrInvalidFudgeFactor = errors.New("fudge factors must be positive")
	// ErrInvalidFudgeIndex indicates the fudge factor index is out of range
	ErrInvalidFudgeIndex = errors.New("fudge factor index out of range")
	// ErrInvalidMinPower indicates min power must be non-negative
	ErrInvalidMinPower = errors.New("min power must be non-negative")
	// ErrDecimationDesync indicates the filter bank saw inputs outside the detector
	ErrDecimationDesync = errors.New("decimation counter out of step with filter inputs")
)

// Source is the shared sample buffer as seen by the consumer. Lock/Unlock is
// the critical section that keeps the producer out while indices change.
type Source interface {
	Lock()
	Unlock()
	Count() int
	Pop() buffer.Sample
}

// LockoutTimer suppresses hit detection for a while after each hit. It
// expires on its own.
type LockoutTimer interface {
	Running() bool
	Start()
}

// HitIndicator shows that a hit was taken.
type HitIndicator interface {
	Start()
}

// HitEvent describes a registered hit.
type HitEvent struct {
	// Channel is the frequency number that hit
	Channel int
	// Power is the channel's power at decision time
	Power float64
	// Threshold is the median power times the active fudge factor
	Threshold float64
	// Frame is the decimated frame the hit was registered on
	Frame uint64
	// Count is the channel's hit count including this hit
	Count uint32
}

// HitCallback is called from Run when a hit is registered. Must be fast.
type HitCallback func(event HitEvent)

// Config holds the detection sensitivity settings.
type Config struct {
	// FudgeFactors is the calibration table (from config: fudge_factors)
	FudgeFactors []float64
	// FudgeFactorIndex selects the active factor (from config: fudge_factor_index)
	FudgeFactorIndex int
	// MinPower is the smallest max power that can count as a hit (from config: min_power)
	MinPower float64
}

// DefaultConfig returns the calibration shipped with the default config file.
func DefaultConfig() Config {
	return Config{
		FudgeFactors:     []float64{5, 10, 20, 50, 100, 200, 500, 1000},
		FudgeFactorIndex: 3,
		MinPower:         1e-4,
	}
}

func (c Config) validate() error {
	if len(c.FudgeFactors) == 0 {
		return ErrNoFudgeFactors
	}
	for _, f := range c.FudgeFactors {
		if !(f > 0) {
			return ErrInvalidFudgeFactor
		}
	}
	if c.FudgeFactorIndex < 0 || c.FudgeFactorIndex >= len(c.FudgeFactors) {
		return ErrInvalidFudgeIndex
	}
	if c.MinPower < 0 {
		return ErrInvalidMinPower
	}
	return nil
}

// Detector drains the sample buffer through the filter bank and decides,
// once per decimated frame, whether a hit was taken.
type Detector struct {
	config    Config
	src       Source
	lockout   LockoutTimer
	indicator HitIndicator
	bank      *filter.Bank

	decimation  int
	fudgeIndex  int
	hitCounts   [ChannelCount]uint32
	ignored     [ChannelCount]bool
	hitDetected bool
	lastHit     int

	powers [ChannelCount]float64
	sorted [ChannelCount]float64

	callbackPtr atomic.Pointer[HitCallback]
}

// New creates a detector reading from src. The detector is initialized and
// ready to Run.
func New(cfg Config, src Source, lockout LockoutTimer, indicator HitIndicator) (*Detector, error) {
	if src == nil {
		return nil, ErrSourceRequired
	}
	if lockout == nil {
		return nil, ErrLockoutRequired
	}
	if indicator == nil {
		return nil, ErrIndicatorRequired
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.FudgeFactors = slices.Clone(cfg.FudgeFactors)

	d := &Detector{
		config:    cfg,
		src:       src,
		lockout:   lockout,
		indicator: indicator,
		bank:      filter.New(),
	}
	d.Init()
	return d, nil
}

// Init resets the filter bank, the hit counts, the hit flag, the ignore
// mask and the fudge factor index.
func (d *Detector) Init() {
	d.bank.Init()
	d.decimation = 0
	d.fudgeIndex = d.config.FudgeFactorIndex
	d.hitCounts = [ChannelCount]uint32{}
	d.ignored = [ChannelCount]bool{}
	d.hitDetected = false
	d.lastHit = 0
}

// SetCallback sets the callback for hit events.
func (d *Detector) SetCallback(cb HitCallback) {
	if cb == nil {
		d.callbackPtr.Store(nil)
	} else {
		d.callbackPtr.Store(&cb)
	}
}

// Scale maps a 12-bit ADC code linearly onto [-1, 1]: 0 -> -1, 4095 -> 1.
func Scale(raw buffer.Sample) float64 {
	return (float64(raw) - scaleOffset) / scaleOffset
}

// Run drains the samples currently in the buffer through the filters.
//
// interruptsEnabled reports whether the producer may push concurrently. If
// so every pop happens inside the buffer's critical section; otherwise the
// caller guarantees nothing else touches the buffer.
func (d *Detector) Run(interruptsEnabled bool) {
	n := d.pending(interruptsEnabled)
	for i := 0; i < n; i++ {
		var raw buffer.Sample
		if interruptsEnabled {
			d.src.Lock()
			raw = d.src.Pop()
			d.src.Unlock()
		} else {
			raw = d.src.Pop()
		}

		d.bank.AddInput(Scale(raw))
		d.decimation++
		if d.decimation < filter.DecimationFactor {
			continue
		}
		d.decimation = 0

		d.runFilters()
		if !d.lockout.Running() {
			d.detectHit()
		}
	}
}

func (d *Detector) pending(interruptsEnabled bool) int {
	if !interruptsEnabled {
		return d.src.Count()
	}
	d.src.Lock()
	defer d.src.Unlock()
	return d.src.Count()
}

// runFilters runs the FIR once and every resonator and power computation.
// Power is computed from scratch on the first frame after Init only.
func (d *Detector) runFilters() {
	frames := d.bank.InvocationCount()
	if d.bank.InputCount() != (frames+1)*filter.DecimationFactor {
		panic(fmt.Errorf("%w: %d inputs at frame %d", ErrDecimationDesync, d.bank.InputCount(), frames+1))
	}
	fromScratch := frames == 0

	d.bank.RunFIR()
	for ch := 0; ch < ChannelCount; ch++ {
		d.bank.RunIIR(ch)
		d.bank.ComputePower(ch, fromScratch)
	}
}

// detectHit scores the current power vector and registers a hit on the
// strongest channel when it stands out and is not ignored.
func (d *Detector) detectHit() {
	d.bank.PowerValues(&d.powers)
	ch := filter.ArgMax(d.powers[:])
	d.lastHit = ch

	threshold, hit := d.isHit(ch)
	if !hit || d.ignored[ch] {
		return
	}

	d.lockout.Start()
	d.indicator.Start()
	d.hitCounts[ch]++
	d.hitDetected = true

	if cbPtr := d.callbackPtr.Load(); cbPtr != nil {
		(*cbPtr)(HitEvent{
			Channel:   ch,
			Power:     d.powers[ch],
			Threshold: threshold,
			Frame:     d.bank.InvocationCount(),
			Count:     d.hitCounts[ch],
		})
	}
}

// isHit compares the strongest channel against the median power scaled by
// the active fudge factor. The strongest power must also reach MinPower so
// that filter noise on a dark sensor never counts.
func (d *Detector) isHit(ch int) (threshold float64, hit bool) {
	d.sorted = d.powers
	slices.Sort(d.sorted[:])
	median := (d.sorted[ChannelCount/2-1] + d.sorted[ChannelCount/2]) / 2
	threshold = median * d.config.FudgeFactors[d.fudgeIndex]

	peak := d.powers[ch]
	return threshold, peak >= d.config.MinPower && peak > threshold
}

// HitDetected reports whether a hit was registered since the last ClearHit.
func (d *Detector) HitDetected() bool {
	return d.hitDetected
}

// ClearHit clears the hit flag. The flag stays set until this is called.
func (d *Detector) ClearHit() {
	d.hitDetected = false
}

// FrequencyOfLastHit returns the strongest channel at the most recent hit
// decision. Ties go to the lowest channel.
func (d *Detector) FrequencyOfLastHit() int {
	return d.lastHit
}

// SetIgnoredFrequencies replaces the ignore mask. Ignoring a frequency also
// resets its hit count to zero.
func (d *Detector) SetIgnoredFrequencies(mask [ChannelCount]bool) {
	d.ignored = mask
	for ch, ignored := range mask {
		if ignored {
			d.hitCounts[ch] = 0
		}
	}
}

// IgnoredFrequencies returns a copy of the ignore mask.
func (d *Detector) IgnoredFrequencies() [ChannelCount]bool {
	return d.ignored
}

// IgnoreAllHits sets every entry of the ignore mask to flag. Unlike
// SetIgnoredFrequencies it leaves the hit counts alone.
func (d *Detector) IgnoreAllHits(flag bool) {
	for ch := range d.ignored {
		d.ignored[ch] = flag
	}
}

// HitCounts returns a copy of the per-channel hit counts.
func (d *Detector) HitCounts() [ChannelCount]uint32 {
	return d.hitCounts
}

// InvocationCount returns the number of decimated frames processed.
func (d *Detector) InvocationCount() uint64 {
	return d.bank.InvocationCount()
}

// SetFudgeFactorIndex selects the active detection sensitivity.
func (d *Detector) SetFudgeFactorIndex(i int) error {
	if i < 0 || i >= len(d.config.FudgeFactors) {
		return fmt.Errorf("%w: %d (have %d)", ErrInvalidFudgeIndex, i, len(d.config.FudgeFactors))
	}
	d.fudgeIndex = i
	return nil
}

// FudgeFactorIndex returns the active fudge factor index.
func (d *Detector) FudgeFactorIndex() int {
	return d.fudgeIndex
}

// Powers returns the current per-channel power values.
func (d *Detector) Powers() [ChannelCount]float64 {
	var out [ChannelCount]float64
	d.bank.PowerValues(&out)
	return out
}

// Bank exposes the filter bank for verification.
func (d *Detector) Bank() *filter.Bank {
	return d.bank
}

// Config returns the detector configuration.
func (d *Detector) Config() Config {
	cfg := d.config
	cfg.FudgeFactors = slices.Clone(cfg.FudgeFactors)
	return cfg
}
