package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/star/rsky/internal/catalog"
	"github.com/star/rsky/internal/orbit"
	"github.com/star/rsky/internal/propagation"
	"github.com/star/rsky/internal/transform"
)

var evalCmd = &cobra.Command{
	Use:   "eval [times-file]",
	Short: "Evaluate separations for times read from a file or stdin",
	Long: `Reads one observation time per line from times-file (or stdin when omitted
or "-") and prints one separation per line in the same order. Blank lines and
lines starting with '#' are skipped. A time is either a plain number in the
same unit as --t0 and --per, or an RFC 3339 timestamp, converted to Julian Date.

Orbital elements come either from --system in a catalog or from the element
flags; --per and --a are required in the latter case.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		logger := newLogger(cmd.ErrOrStderr(), level)

		p, err := elementsFromFlags(cmd)
		if err != nil {
			return err
		}

		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening times file: %w", err)
			}
			defer f.Close()
			in = f
		}

		times, err := readTimes(in)
		if err != nil {
			return err
		}

		workers, _ := cmd.Flags().GetInt("workers")
		withTimes, _ := cmd.Flags().GetBool("with-times")

		prop := propagation.NewPropagator(propagation.PropConfig{Workers: workers}, logger)
		d, err := prop.Evaluate(contextOf(cmd), times, p)
		if err != nil {
			return err
		}

		return writeSeparations(cmd.OutOrStdout(), times, d, withTimes)
	},
}

func init() {
	evalCmd.Flags().Float64("t0", 0, "Time of inferior conjunction")
	evalCmd.Flags().Float64("per", 0, "Orbital period")
	evalCmd.Flags().Float64("a", 0, "Semi-major axis in stellar radii")
	evalCmd.Flags().Float64("inc", math.Pi/2, "Orbital inclination")
	evalCmd.Flags().Float64("ecc", 0, "Orbital eccentricity")
	evalCmd.Flags().Float64("omega", 0, "Argument of periapsis")
	evalCmd.Flags().Bool("degrees", false, "Interpret --inc and --omega in degrees")
	evalCmd.Flags().String("system", "", "Take elements from this catalog system")
	evalCmd.Flags().Int("workers", runtime.NumCPU(), "Evaluation workers")
	evalCmd.Flags().Bool("with-times", false, "Print the time before each separation")
	rootCmd.AddCommand(evalCmd)
}

// elementsFromFlags resolves the orbital elements for eval.
func elementsFromFlags(cmd *cobra.Command) (orbit.Params, error) {
	flags := cmd.Flags()

	if name, _ := flags.GetString("system"); name != "" {
		catalogFlag, _ := flags.GetString("catalog")
		source := catalogSource(catalogFlag)
		if source == "" {
			return orbit.Params{}, fmt.Errorf("--system requires --catalog or RSKY_CATALOG_PATH")
		}
		level, _ := flags.GetString("log-level")
		c, err := catalog.NewLoader(newLogger(cmd.ErrOrStderr(), level)).Load(contextOf(cmd), source)
		if err != nil {
			return orbit.Params{}, err
		}
		sys, ok := c.Lookup(name)
		if !ok {
			return orbit.Params{}, fmt.Errorf("system %q not found in %s", name, source)
		}
		return sys.Params, nil
	}

	if !flags.Changed("per") || !flags.Changed("a") {
		return orbit.Params{}, fmt.Errorf("--per and --a are required unless --system is given")
	}

	var p orbit.Params
	p.T0, _ = flags.GetFloat64("t0")
	p.Per, _ = flags.GetFloat64("per")
	p.A, _ = flags.GetFloat64("a")
	p.Inc, _ = flags.GetFloat64("inc")
	p.Ecc, _ = flags.GetFloat64("ecc")
	p.Omega, _ = flags.GetFloat64("omega")

	if deg, _ := flags.GetBool("degrees"); deg {
		if flags.Changed("inc") {
			p.Inc *= math.Pi / 180
		}
		p.Omega *= math.Pi / 180
	}

	return p, nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// readTimes parses one observation time per line.
func readTimes(r io.Reader) ([]float64, error) {
	scanner := bufio.NewScanner(r)
	times := []float64{}
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		t, err := transform.ParseObservationTime(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		times = append(times, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading times: %w", err)
	}
	return times, nil
}

func writeSeparations(w io.Writer, times, d []float64, withTimes bool) error {
	bw := bufio.NewWriter(w)
	for i, v := range d {
		if withTimes {
			bw.WriteString(strconv.FormatFloat(times[i], 'f', -1, 64))
			bw.WriteByte('\t')
		}
		bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
