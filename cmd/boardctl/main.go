// Command boardctl inspects board layouts offline: default placements,
// influence zones, minimap projections and strength rankings.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
