// cmd/transmit.go
package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/ColonelBlimp/lasertag/internal/audio"
	"github.com/ColonelBlimp/lasertag/internal/buffer"
	"github.com/ColonelBlimp/lasertag/internal/filter"
	"github.com/ColonelBlimp/lasertag/internal/transmitter"
	"github.com/spf13/cobra"
)

var transmitCmd = &cobra.Command{
	Use:   "transmit",
	Short: "Fire bursts through the audio output",
	Long: `Plays transmitter bursts on the configured frequency through the default audio
output, for driving an IR LED. With continuous set, bursts repeat until Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runTransmit,
}

func init() {
	transmitCmd.Flags().Int("shots", 1, "number of bursts to fire")
	transmitCmd.Flags().Duration("gap", 300*time.Millisecond, "pause between bursts")
	transmitCmd.Flags().Float64("amplitude", 1.0, "output amplitude (0 to 1)")
	rootCmd.AddCommand(transmitCmd)
}

// renderShot returns one burst followed by gapTicks of silence.
func renderShot(tx *transmitter.Transmitter, amplitude float64, gapTicks int) []buffer.Sample {
	tx.Run()
	samples := make([]buffer.Sample, 0, transmitter.PulseTicks+gapTicks+2)
	for tx.Running() {
		samples = append(samples, transmitter.Code(tx.Tick(), amplitude))
	}
	for range gapTicks {
		samples = append(samples, transmitter.Code(false, 0))
	}
	return samples
}

func runTransmit(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	shots, _ := cmd.Flags().GetInt("shots")
	gap, _ := cmd.Flags().GetDuration("gap")
	amplitude, _ := cmd.Flags().GetFloat64("amplitude")

	tx := transmitter.New()
	if err := tx.SetFrequencyNumber(s.FrequencyNumber); err != nil {
		return err
	}

	player, err := audio.NewPlayer(s.SampleRate)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Transmitting on frequency %d (%.0f Hz)\n",
		s.FrequencyNumber, filter.ChannelFrequency(s.FrequencyNumber))

	if s.Continuous {
		tx.SetContinuous(true)
		tx.Run()
		for ctx.Err() == nil {
			if err := player.Play(ctx, tx.Render(transmitter.PulseTicks, amplitude)); err != nil {
				break
			}
		}
		return nil
	}

	gapTicks := durationTicks(gap)
	for i := range shots {
		if err := player.Play(ctx, renderShot(tx, amplitude, gapTicks)); err != nil {
			if errors.Is(err, ctx.Err()) {
				return nil
			}
			return err
		}
		_, _ = fmt.Fprintf(out, "shot %d\n", i+1)
	}
	return nil
}
