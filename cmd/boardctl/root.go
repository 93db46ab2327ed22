package main

import (
	"github.com/spf13/cobra"

	"github.com/refboard/refboard/internal/config"
)

var version = "0.1.0"

type options struct {
	spatialPath string
}

// spatial returns the stock constants, or the TOML preset when --spatial
// is given.
func (o *options) spatial() (config.Spatial, error) {
	if o.spatialPath == "" {
		return config.DefaultSpatial(), nil
	}
	return config.LoadSpatial(o.spatialPath)
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          "boardctl",
		Short:        "boardctl inspects reference board layouts",
		Long:         brand.Sprint("boardctl") + " computes layouts and influence for reference boards\n" + subtle.Sprint("Everything runs locally against the spatial engine"),
		Version:      version,
		SilenceUsage: true,
	}
	cmd.SetVersionTemplate("boardctl {{ .Version }}\n")
	cmd.PersistentFlags().StringVar(&opts.spatialPath, "spatial", "", "TOML preset overriding the spatial constants")

	cmd.AddCommand(
		layoutCmd(opts),
		placeCmd(),
		zoneCmd(),
		minimapCmd(opts),
		rankCmd(opts),
	)

	return cmd
}
