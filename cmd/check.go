package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/ndview/internal/ndconfig"
	"github.com/HaiFongPan/ndview/internal/selection"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the grid configuration",
	Long: `Parse the grid configuration and print its dimensions, grid layout and
sizing together with the first selection that shows an image.

Examples:
  ndview check
  ndview check -g plots.cfg`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	session, err := openGrid(GetConfig())
	if err != nil {
		return err
	}
	return writeCheck(os.Stdout, session)
}

func writeCheck(out io.Writer, session *gridSession) error {
	cfg := session.config

	fmt.Fprintf(out, "Grid file:    %s\n", session.file)
	fmt.Fprintf(out, "Image path:   %s\n", cfg.Path())
	fmt.Fprintf(out, "Name format:  %s\n", cfg.NameFormat())
	fmt.Fprintf(out, "Plotted by:   %s\n", cfg.PlotBy())

	combinations := 0
	for range selection.Combinations(session.viewer.SelectableDimensions()) {
		combinations++
	}
	fmt.Fprintf(out, "Combinations: %s\n\n", humanize.Comma(int64(combinations)))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DIMENSION\tTITLE\tVALUES")
	for _, d := range cfg.Dimensions() {
		values := make([]string, d.Len())
		for i, v := range d.Values() {
			values[i] = displayValue(v)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.Name(), d.Title(), strings.Join(values, ", "))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nGrid %dx%d (rows %s, columns %s):\n",
		cfg.Rows(), cfg.Cols(), formatFractions(cfg.RowHeights()), formatFractions(cfg.ColWidths()))
	for r := 0; r < cfg.Rows(); r++ {
		cells := make([]string, cfg.Cols())
		for c := 0; c < cfg.Cols(); c++ {
			cell := cfg.Cell(r, c)
			switch cell.Kind {
			case ndconfig.CellSettings:
				cells[c] = "[settings]"
			case ndconfig.CellValue:
				cells[c] = displayValue(cell.Value)
			default:
				cells[c] = "-"
			}
		}
		fmt.Fprintf(out, "  %s\n", strings.Join(cells, " | "))
	}

	if initial, ok := session.viewer.InitialSelection(); ok {
		fmt.Fprintf(out, "\nInitial selection: %s\n", formatAssignment(session, initial))
	} else {
		fmt.Fprintf(out, "\nInitial selection: none, no image found under %s\n", session.viewer.Base())
	}

	if session.imageCache != nil {
		fmt.Fprintf(out, "Image cache: %s\n", session.imageCache.Stats())
	}
	return nil
}

func formatFractions(fractions []float64) string {
	parts := make([]string, len(fractions))
	for i, f := range fractions {
		parts[i] = humanize.FtoaWithDigits(f*100, 1) + "%"
	}
	return strings.Join(parts, " ")
}

func formatAssignment(session *gridSession, current selection.Assignment) string {
	dims := session.viewer.SelectableDimensions()
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = d.Name() + "=" + displayValue(current[i])
	}
	return strings.Join(parts, " ")
}

func displayValue(v string) string {
	if v == "" {
		return "(empty)"
	}
	return v
}
