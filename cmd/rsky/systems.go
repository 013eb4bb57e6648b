package main

import (
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/star/rsky/internal/catalog"
)

var systemsCmd = &cobra.Command{
	Use:   "systems",
	Short: "List the planetary systems in a catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		catalogFlag, _ := cmd.Flags().GetString("catalog")
		source := catalogSource(catalogFlag)
		if source == "" {
			return fmt.Errorf("no catalog given; use --catalog or RSKY_CATALOG_PATH")
		}

		c, err := catalog.NewLoader(newLogger(cmd.ErrOrStderr(), level)).Load(contextOf(cmd), source)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tT0\tPERIOD\tA\tINC_DEG\tECC\tOMEGA_DEG")
		for _, name := range c.Names() {
			s, _ := c.Lookup(name)
			p := s.Params
			fmt.Fprintf(tw, "%s\t%g\t%g\t%g\t%.4g\t%g\t%.4g\n",
				s.Name, p.T0, p.Per, p.A, p.Inc*180/math.Pi, p.Ecc, p.Omega*180/math.Pi)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(systemsCmd)
}
