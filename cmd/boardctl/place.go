package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/refboard/refboard/internal/registry"
)

func placeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "place [angle...]",
		Short: "Pick the orbital angle for a new node given the occupied angles",
		RunE: func(cmd *cobra.Command, args []string) error {
			angles := make([]float64, 0, len(args))
			for _, a := range args {
				v, err := strconv.ParseFloat(a, 64)
				if err != nil {
					return fmt.Errorf("parse angle %q: %w", a, err)
				}
				angles = append(angles, v)
			}

			angle := registry.LargestGapAngle(angles)
			fmt.Fprintf(cmd.OutOrStdout(), "  angle %s  distance %s\n",
				brand.Sprint(num(angle)), num(registry.DefaultOrbitalDistance))
			return nil
		},
	}
}
