package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/refboard/refboard/internal/influence"
)

func zoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "zone <distance>...",
		Short: "Show strength and zone for normalized orbital distances",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(args))
			for _, a := range args {
				d, err := strconv.ParseFloat(a, 64)
				if err != nil {
					return fmt.Errorf("parse distance %q: %w", a, err)
				}
				rows = append(rows, []string{
					num(d),
					strconv.Itoa(influence.StrengthFromDistance(d)),
					influence.ZoneFromDistance(d).String(),
				})
			}

			table(cmd.OutOrStdout(), []string{"DISTANCE", "STRENGTH", "ZONE"}, rows)
			return nil
		},
	}
}
