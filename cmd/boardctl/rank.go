package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/refboard/refboard/internal/engine"
)

func rankCmd(opts *options) *cobra.Command {
	var sample bool

	cmd := &cobra.Command{
		Use:   "rank [board.json]",
		Short: "Rank a board's references by influence strength",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sp, err := opts.spatial()
			if err != nil {
				return err
			}
			eng := engine.NewEngine(sp)

			switch {
			case sample:
				eng.LoadSampleBoard("board_sample")
			case len(args) == 1:
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("read board: %w", err)
				}
				if err := eng.LoadBoard(string(data)); err != nil {
					return err
				}
			default:
				return errors.New("pass a board file or --sample")
			}

			ranked := eng.Ranking()
			out := cmd.OutOrStdout()
			if len(ranked) == 0 {
				subtle.Fprintln(out, "  No references")
				return nil
			}

			rows := make([][]string, len(ranked))
			for i, r := range ranked {
				rows[i] = []string{strconv.Itoa(i + 1), r.ID, strconv.Itoa(r.Strength), r.Zone.String()}
			}
			table(out, []string{"#", "REFERENCE", "STRENGTH", "ZONE"}, rows)

			top := ranked[0]
			fmt.Fprintf(out, "\n  strongest: %s (%s)\n", top.ID, zoneColor(top.Zone.String()).Sprint(top.Zone))
			return nil
		},
	}
	cmd.Flags().BoolVar(&sample, "sample", false, "rank the built-in sample board")

	return cmd
}
