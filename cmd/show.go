package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/ndview/internal/ndconfig"
	"github.com/HaiFongPan/ndview/internal/selection"
	"github.com/HaiFongPan/ndview/internal/tui/image"
)

var (
	showSets   []string
	showWidth  int
	showHeight int
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Render the grid images for one selection to the terminal",
	Long: `Render the image of every grid cell for one selection, one after the
other. Images use the terminal's graphics protocol when ui.image_render
allows it and ANSI half-blocks otherwise.

Examples:
  ndview show
  ndview show --set level=processed --width 80 --height 30`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringArrayVarP(&showSets, "set", "s", nil, "select a value as dim=value (repeatable)")
	showCmd.Flags().IntVar(&showWidth, "width", 60, "image width in terminal columns")
	showCmd.Flags().IntVar(&showHeight, "height", 20, "image height in terminal rows")
}

func runShow(cmd *cobra.Command, args []string) error {
	session, err := openGrid(GetConfig())
	if err != nil {
		return err
	}

	current, err := parseAssignment(session.viewer, showSets)
	if err != nil {
		return err
	}

	renderer := image.NewRenderer(GetConfig().UI.ImageRender)
	logrus.WithFields(logrus.Fields{
		"terminal": renderer.TerminalType,
		"protocol": renderer.Protocol,
	}).Debug("rendering grid images")

	images := image.NewManager(session.viewer, renderer)
	return writeShow(os.Stdout, session, images, current)
}

func writeShow(out io.Writer, session *gridSession, images *image.Manager, current selection.Assignment) error {
	cfg := session.config
	title := session.viewer.NonSelectableDimension().Title()

	for r := 0; r < cfg.Rows(); r++ {
		for c := 0; c < cfg.Cols(); c++ {
			cell := cfg.Cell(r, c)
			if cell.Kind != ndconfig.CellValue {
				continue
			}

			fmt.Fprintf(out, "%s: %s\n", title, displayValue(cell.Value))

			path, exists, err := session.viewer.ResolvePath(cell.Value, current...)
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", cell.Value, err)
			}
			if !exists {
				fmt.Fprintln(out, "No image")
				continue
			}

			preview, err := images.Load(path, showWidth, showHeight)
			if err != nil {
				fmt.Fprintf(out, "%s: %v\n", path, err)
				continue
			}
			fmt.Fprintln(out, preview.Rendered)
		}
	}
	return nil
}
