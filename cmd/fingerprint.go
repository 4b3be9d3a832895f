package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kush2803/CatLearn/core/atoms"
	"github.com/kush2803/CatLearn/core/fingerprint"
)

var fingerprintProperties []string

// fingerprintCmd converts XYZ structure files into a feature-matrix CSV
// suitable for the build command (targets appended separately).
var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint [xyz files...]",
	Short: "Generate fingerprint vectors from XYZ structure files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		props := make([]atoms.Property, 0, len(fingerprintProperties))
		for _, key := range fingerprintProperties {
			p, err := atoms.ParseProperty(key)
			if err != nil {
				return err
			}
			props = append(props, p)
		}
		gen := fingerprint.NewGenerator(0, props)

		structures := make([]*atoms.Structure, 0, len(args))
		for _, path := range args {
			s, err := readXYZ(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			structures = append(structures, s)
		}

		fs, err := gen.Assemble(structures)
		if err != nil {
			return err
		}
		names, err := gen.FeatureNames(structures[0].TypeSet())
		if err != nil {
			return err
		}

		w := csv.NewWriter(cmd.OutOrStdout())
		if err := w.Write(append([]string{"id"}, names...)); err != nil {
			return err
		}
		n, d := fs.Matrix.Dims()
		for i := 0; i < n; i++ {
			rec := make([]string, d+1)
			rec[0] = fs.IDs[i]
			for j := 0; j < d; j++ {
				rec[j+1] = strconv.FormatFloat(fs.Matrix.At(i, j), 'g', -1, 64)
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	},
}

func init() {
	fingerprintCmd.Flags().StringSliceVarP(&fingerprintProperties, "property", "p", nil, "elemental properties for weighted passes")
	rootCmd.AddCommand(fingerprintCmd)
}

// readXYZ parses a minimal XYZ file: atom count, comment, then
// "symbol x y z" lines.
func readXYZ(path string) (*atoms.Structure, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) < 3 {
		return nil, fmt.Errorf("truncated xyz file")
	}
	count, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return nil, fmt.Errorf("atom count: %w", err)
	}
	if len(lines) < 2+count {
		return nil, fmt.Errorf("expected %d atom lines, found %d", count, len(lines)-2)
	}

	atomList := make([]atoms.Atom, 0, count)
	for _, line := range lines[2 : 2+count] {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, fmt.Errorf("malformed atom line %q", line)
		}
		number, err := atoms.NumberFor(fields[0])
		if err != nil {
			return nil, err
		}
		var pos [3]float64
		for k := 0; k < 3; k++ {
			v, err := strconv.ParseFloat(fields[k+1], 64)
			if err != nil {
				return nil, fmt.Errorf("coordinate in %q: %w", line, err)
			}
			pos[k] = v
		}
		atomList = append(atomList, atoms.Atom{Position: pos, Number: number})
	}
	return atoms.NewStructure(atomList), nil
}
