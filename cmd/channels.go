// cmd/channels.go
package cmd

import (
	"fmt"

	"github.com/ColonelBlimp/lasertag/internal/filter"
	"github.com/spf13/cobra"
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List the player frequencies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		ignored := s.IgnoreMask()

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, "FREQ  PERIOD  HZ")
		for ch, period := range filter.FrequencyTickTable {
			mark := ""
			if ch == s.FrequencyNumber {
				mark += "  transmit"
			}
			if ignored[ch] {
				mark += "  ignored"
			}
			_, _ = fmt.Fprintf(out, "%4d  %6d  %.0f%s\n", ch, period, filter.ChannelFrequency(ch), mark)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(channelsCmd)
}
