// cmd/root.go
package cmd

import (
	"fmt"
	"os"

	"github.com/ColonelBlimp/lasertag/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "lasertag",
	Short: "Laser tag IR hit detection",
	Long: `Laser tag hit detection for IR square-wave signals.

Samples from a sensor, a recording or a simulated transmitter are filtered
through ten resonators, one per player frequency, and a hit is registered when
one channel's power stands out from the rest.`,
	SilenceUsage: true,
}

// flagBindings maps persistent flags to config keys.
var flagBindings = map[string]string{
	"device":    "device_index",
	"frequency": "frequency_number",
	"fudge":     "fudge_factor_index",
	"ignore":    "ignored_frequencies",
	"debug":     "debug",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags (override config file)
	rootCmd.PersistentFlags().IntP("device", "d", -1, "audio device index (-1 for default)")
	rootCmd.PersistentFlags().IntP("frequency", "f", 0, "player frequency number (0-9) to transmit on")
	rootCmd.PersistentFlags().IntP("fudge", "u", 3, "fudge factor index (higher is less sensitive)")
	rootCmd.PersistentFlags().IntSliceP("ignore", "i", nil, "frequency numbers to ignore, e.g. your own team")
	rootCmd.PersistentFlags().BoolP("debug", "D", false, "enable debug output")
}

// bindFlags binds the persistent flags to viper. It runs on every command
// so bindings survive viper.Reset.
func bindFlags() {
	for flag, key := range flagBindings {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}
}

func initConfig() {
	bindFlags()
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
}

// loadSettings returns validated settings for a command.
func loadSettings() (*config.Settings, error) {
	s, err := config.Get()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return s, nil
}
