// cmd/listen.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/ColonelBlimp/lasertag/internal/audio"
	"github.com/ColonelBlimp/lasertag/internal/buffer"
	"github.com/ColonelBlimp/lasertag/internal/filter"
	"github.com/ColonelBlimp/lasertag/internal/isr"
	"github.com/ColonelBlimp/lasertag/internal/recovery"
	"github.com/spf13/cobra"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Detect hits from a live sensor",
	Long: `Captures a light sensor wired to an audio input and prints hits as they are
registered. Press Ctrl-C to stop.`,
	Args: cobra.NoArgs,
	RunE: runListen,
}

func init() {
	listenCmd.Flags().Bool("list", false, "list capture devices and exit")
	rootCmd.AddCommand(listenCmd)
}

func runListen(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	list, _ := cmd.Flags().GetBool("list")
	out := cmd.OutOrStdout()

	cfg := audio.DefaultConfig()
	cfg.DeviceIndex = s.DeviceIndex
	cfg.SampleRate = uint32(s.SampleRate)
	capture := audio.New(cfg)
	if err := capture.Init(); err != nil {
		return err
	}
	defer func() { _ = capture.Close() }()

	if list {
		devices, err := capture.ListDevices()
		if err != nil {
			return err
		}
		for i, d := range devices {
			_, _ = fmt.Fprintf(out, "%d: %s\n", i, d.Name())
		}
		return nil
	}

	src := isr.NewSliceSource(nil)
	tg, err := newTagger(s, src, nil, nil, out)
	if err != nil {
		return err
	}

	// The capture callback is the sampling interrupt.
	capture.SetCallback(func(samples []buffer.Sample) {
		recovery.Guard(func() { _ = capture.Stop() }, func() {
			src.Reset(samples)
			for range samples {
				tg.handler.Tick()
			}
		})
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if err := capture.Start(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Listening at %d Hz, fudge factor %v. Ctrl-C to stop.\n",
		s.SampleRate, s.FudgeFactors[s.FudgeFactorIndex])

	consume(ctx, tg, runPeriod(s.RunIntervalTicks))

	// The device must be stopped before the last pass so the callback is no
	// longer pushing samples or counting overflows.
	if err := capture.Stop(); err != nil && !errors.Is(err, audio.ErrNotRunning) {
		return err
	}
	tg.det.Run(true)
	tg.summary()
	return nil
}

// consume runs the detector until ctx is done, with the producer live.
func consume(ctx context.Context, tg *tagger, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tg.det.Run(true)
		}
	}
}

// runPeriod is the wall time covered by run_interval_ticks, at least 1 ms.
func runPeriod(ticks int) time.Duration {
	return max(time.Duration(ticks)*time.Second/filter.SampleRate, time.Millisecond)
}
