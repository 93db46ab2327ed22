package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/refboard/refboard/internal/registry"
)

func layoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "layout <count>",
		Short: "Show the default canvas and orbital positions for count nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[0])
			if err != nil || count < 0 {
				return fmt.Errorf("count must be a non-negative integer, got %q", args[0])
			}

			sp, err := opts.spatial()
			if err != nil {
				return err
			}

			canvas := registry.NewCanvas(sp.CanvasRadius)
			orbital := registry.NewOrbital()

			rows := make([][]string, 0, count)
			for i := 0; i < count; i++ {
				p := canvas.Default(i, count)
				o := orbital.Default(i, count)
				rows = append(rows, []string{
					strconv.Itoa(i),
					num(p.X),
					num(p.Y),
					num(o.Angle),
					num(o.Distance),
				})
			}

			out := cmd.OutOrStdout()
			if count == 0 {
				subtle.Fprintln(out, "  No nodes")
				return nil
			}
			table(out, []string{"#", "X", "Y", "ANGLE", "DISTANCE"}, rows)
			return nil
		},
	}
}
