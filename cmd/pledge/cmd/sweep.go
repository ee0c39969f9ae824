package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func SweepCmd() *cobra.Command {
	var at string

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one derailment sweep over every active goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("--at must be RFC 3339: %w", err)
				}
				now = parsed
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.DerailService.Sweep(cmd.Context(), now)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	sweepCmd.Flags().StringVar(&at, "at", "", "evaluate as of this RFC 3339 time instead of now")
	return sweepCmd
}
