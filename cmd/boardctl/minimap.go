package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/refboard/refboard/internal/geom"
)

func minimapCmd(opts *options) *cobra.Command {
	var unproject bool

	cmd := &cobra.Command{
		Use:   "minimap <x> <y>",
		Short: "Project a world point onto the minimap, or back with --unproject",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("parse x: %w", err)
			}
			y, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("parse y: %w", err)
			}

			sp, err := opts.spatial()
			if err != nil {
				return err
			}
			proj := sp.Projector()

			var p geom.Point
			label := "minimap"
			if unproject {
				p = proj.Unproject(x, y)
				label = "world"
			} else {
				p = proj.Project(geom.Point{X: x, Y: y})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s, %s\n", subtle.Sprint(label), num(p.X), num(p.Y))
			return nil
		},
	}
	cmd.Flags().BoolVar(&unproject, "unproject", false, "treat x y as minimap pixels and print the world point")

	return cmd
}
