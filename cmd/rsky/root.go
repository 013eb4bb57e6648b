package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rsky",
	Short: "rsky computes sky-projected star/planet separations",
	Long: `rsky evaluates the separation between the centers of a star and a transiting
planet, projected onto the plane of the sky, for a series of observation times
on a Keplerian orbit. Separations are in units of stellar radii.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default $RSKY_LOG_LEVEL or info)")
	rootCmd.PersistentFlags().String("catalog", "", "Planet catalog file or URL (default $RSKY_CATALOG_PATH)")
}
