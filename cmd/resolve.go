package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HaiFongPan/ndview/internal/selection"
)

var resolveSets []string

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the image file behind every grid value",
	Long: `Resolve the file name of every value of the grid dimension for one
selection and report whether the file exists. Dimensions not given with
--set keep the initial selection's value.

Examples:
  ndview resolve
  ndview resolve --set surface=ocean --set level=raw`,
	Args: cobra.NoArgs,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringArrayVarP(&resolveSets, "set", "s", nil, "select a value as dim=value (repeatable)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	session, err := openGrid(GetConfig())
	if err != nil {
		return err
	}

	current, err := parseAssignment(session.viewer, resolveSets)
	if err != nil {
		return err
	}
	return writeResolve(os.Stdout, session, current)
}

func writeResolve(out io.Writer, session *gridSession, current selection.Assignment) error {
	fmt.Fprintf(out, "Selection: %s\n\n", formatAssignment(session, current))

	nonSelectable := session.viewer.NonSelectableDimension()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFILE\tEXISTS\n", nonSelectable.Title())
	for _, value := range nonSelectable.Values() {
		path, exists, err := session.viewer.ResolvePath(value, current...)
		if err != nil {
			return fmt.Errorf("failed to resolve %s=%s: %w", nonSelectable.Name(), value, err)
		}
		fmt.Fprintf(w, "%s\t%s\t%t\n", displayValue(value), path, exists)
	}
	return w.Flush()
}
