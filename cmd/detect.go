// cmd/detect.go
package cmd

import (
	"fmt"

	"github.com/ColonelBlimp/lasertag/internal/audio"
	"github.com/ColonelBlimp/lasertag/internal/filter"
	"github.com/ColonelBlimp/lasertag/internal/isr"
	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect FILE.wav",
	Short: "Detect hits in a sensor recording",
	Long: `Replays a WAV recording of the IR sensor through the receiver one sample per
tick, exactly as the sampling interrupt would, and prints each hit.`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	rec, err := audio.ReadWAV(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if rec.SampleRate != filter.SampleRate {
		_, _ = fmt.Fprintf(out, "warning: %s is %d Hz; the filters expect %d Hz\n",
			args[0], rec.SampleRate, filter.SampleRate)
	}
	_, _ = fmt.Fprintf(out, "Scanning %d samples from %s\n", len(rec.Samples), args[0])

	tg, err := newTagger(s, isr.NewSliceSource(rec.Samples), nil, nil, out)
	if err != nil {
		return err
	}
	tg.drain()
	tg.summary()
	return nil
}
