// cmd/simulate.go
package cmd

import (
	"fmt"
	"time"

	"github.com/ColonelBlimp/lasertag/internal/audio"
	"github.com/ColonelBlimp/lasertag/internal/buffer"
	"github.com/ColonelBlimp/lasertag/internal/filter"
	"github.com/ColonelBlimp/lasertag/internal/isr"
	"github.com/ColonelBlimp/lasertag/internal/transmitter"
	"github.com/ColonelBlimp/lasertag/internal/trigger"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Fire a simulated transmitter at the detector",
	Long: `Pulls a simulated trigger, with contact bounce, to fire a transmitter on the
configured frequency through a simulated optical path (attenuation plus
sensor noise) into the receiver, printing each shot and hit.`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().Int("shots", 1, "number of bursts to fire")
	simulateCmd.Flags().Duration("gap", 300*time.Millisecond, "pause between bursts")
	simulateCmd.Flags().Duration("duration", 0, "simulated time (0 to fit all shots plus lockout)")
	simulateCmd.Flags().Uint64("seed", 1, "noise seed")
	simulateCmd.Flags().StringP("out", "o", "", "write the sensor samples to this WAV file")
	rootCmd.AddCommand(simulateCmd)
}

// recorder keeps a copy of every sample its source yields.
type recorder struct {
	src     isr.SampleSource
	samples []buffer.Sample
}

func (r *recorder) Next() (buffer.Sample, bool) {
	s, ok := r.src.Next()
	if ok {
		r.samples = append(r.samples, s)
	}
	return s, ok
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	shots, _ := cmd.Flags().GetInt("shots")
	gap, _ := cmd.Flags().GetDuration("gap")
	duration, _ := cmd.Flags().GetDuration("duration")
	seed, _ := cmd.Flags().GetUint64("seed")
	outPath, _ := cmd.Flags().GetString("out")

	if shots < 0 {
		return fmt.Errorf("shots must not be negative, got %d", shots)
	}
	if gap < 0 || duration < 0 {
		return fmt.Errorf("gap and duration must not be negative")
	}

	tx := transmitter.New()
	if err := tx.SetFrequencyNumber(s.FrequencyNumber); err != nil {
		return err
	}
	tx.SetContinuous(s.Continuous)

	trig, err := trigger.New(tx, trigger.DefaultDebounceTicks)
	if err != nil {
		return err
	}
	trig.SetRemainingShotCount(uint32(shots))

	src := &recorder{src: isr.NewTransmitterSource(tx, s.Attenuation, s.Noise, seed)}
	out := cmd.OutOrStdout()
	tg, err := newTagger(s, src, trig, tx, out)
	if err != nil {
		return err
	}
	trig.OnShot = func(remaining uint32) {
		_, _ = fmt.Fprintf(out, "SHOT frequency %d  t=%.3fs  %d left\n",
			s.FrequencyNumber, float64(tg.handler.Ticks())/filter.SampleRate, remaining)
	}

	p := newPress(durationTicks(gap))
	total := durationTicks(duration)
	if total == 0 {
		total = shots*p.cycle + s.LockoutTicks
	}

	_, _ = fmt.Fprintf(out, "Simulating %d shot(s) on frequency %d (%.0f Hz), attenuation %.2f, noise %.3f\n",
		shots, s.FrequencyNumber, filter.ChannelFrequency(s.FrequencyNumber), s.Attenuation, s.Noise)

	for tick := range total {
		trig.SetPressed(tick/p.cycle < shots && p.level(tick%p.cycle))
		tg.step()
	}
	tg.det.Run(false)
	tg.summary()

	if outPath != "" {
		if err := audio.WriteWAV(outPath, s.SampleRate, src.samples); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Wrote %d samples to %s\n", len(src.samples), outPath)
	}
	return nil
}

// triggerBounce is the contact bounce before each press settles, as
// alternating pressed and released run lengths in ticks.
var triggerBounce = []int{300, 200, 400, 100}

// triggerHoldTicks is how long the trigger stays down after the shot fires.
const triggerHoldTicks = 1000

// press is the trigger line over one simulated shot: bounce, a held press
// that fires once debounced, a release, then quiet for the burst and gap.
type press struct {
	settle int // tick the line settles pressed
	fire   int // tick the debounced press fires
	cycle  int
}

func newPress(gapTicks int) press {
	settle := 0
	for _, n := range triggerBounce {
		settle += n
	}
	fire := settle + trigger.DefaultDebounceTicks
	return press{
		settle: settle,
		fire:   fire,
		cycle:  fire + transmitter.PulseTicks + gapTicks,
	}
}

// level is the raw line at offset ticks into the cycle.
func (p press) level(offset int) bool {
	if offset >= p.settle {
		return offset < p.fire+triggerHoldTicks
	}
	at := 0
	for i, n := range triggerBounce {
		at += n
		if offset < at {
			return i%2 == 0
		}
	}
	return false
}

// durationTicks converts wall time to ADC ticks.
func durationTicks(d time.Duration) int {
	return int(d.Seconds() * filter.SampleRate)
}
