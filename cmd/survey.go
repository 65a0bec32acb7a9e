// cmd/survey.go
package cmd

import (
	"fmt"
	"strings"

	"github.com/ColonelBlimp/lasertag/internal/audio"
	"github.com/ColonelBlimp/lasertag/internal/filter"
	"github.com/ColonelBlimp/lasertag/internal/tone"
	"github.com/spf13/cobra"
)

const surveyBarWidth = 40

var surveyCmd = &cobra.Command{
	Use:   "survey FILE.wav",
	Short: "Measure every player frequency in a recording",
	Long: `Measures the level of each player frequency in a WAV recording with Goertzel
detectors, independently of the hit detection filters.`,
	Args: cobra.ExactArgs(1),
	RunE: runSurvey,
}

func init() {
	surveyCmd.Flags().Int("block", tone.DefaultBlockSize, "samples per Goertzel block")
	surveyCmd.Flags().Float64("threshold", 0.05, "magnitude at which the strongest frequency counts as a burst")
	surveyCmd.Flags().Int("hysteresis", 2, "blocks needed to confirm a burst starting or ending")
	rootCmd.AddCommand(surveyCmd)
}

func runSurvey(cmd *cobra.Command, args []string) error {
	block, _ := cmd.Flags().GetInt("block")
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	hysteresis, _ := cmd.Flags().GetInt("hysteresis")

	rec, err := audio.ReadWAV(args[0])
	if err != nil {
		return err
	}
	survey, err := tone.NewSurvey(float64(rec.SampleRate), block)
	if err != nil {
		return err
	}
	res, err := survey.Scan(rec.Samples)
	if err != nil {
		return err
	}

	strongest := res.Strongest()
	peak := res.Magnitudes[strongest]
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%d block(s) of %d samples at %d Hz\n", res.Blocks, block, rec.SampleRate)
	for ch, m := range res.Magnitudes {
		n := 0
		if peak > 0 {
			n = int(m / peak * surveyBarWidth)
		}
		_, _ = fmt.Fprintf(out, "%d %5.0f Hz  %.4f  %s\n", ch, filter.ChannelFrequency(ch), m, strings.Repeat("#", n))
	}
	_, _ = fmt.Fprintf(out, "strongest: frequency %d\n", strongest)

	rate := float64(rec.SampleRate)
	bursts, err := tone.FindBursts(rec.Samples, tone.BurstConfig{
		Channel:    strongest,
		Threshold:  threshold,
		Hysteresis: hysteresis,
	}, rate, block)
	if err != nil {
		return err
	}
	for i, b := range bursts {
		_, _ = fmt.Fprintf(out, "burst %d: %.3fs to %.3fs (%v) peak %.4f\n", i+1,
			float64(b.Start)/rate, float64(b.End)/rate, b.Duration(rate), b.Peak)
	}
	return nil
}
