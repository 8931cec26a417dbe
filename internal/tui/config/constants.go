package config

// Layout constants
const (
	// Window size assumed until the terminal reports one
	DefaultWindowWidth  = 80
	DefaultWindowHeight = 24

	// Lines below the grid for status and short help
	FooterHeight = 1

	// Pane chrome: border on each side plus the title line
	PaneBorderSize  = 2
	PaneTitleHeight = 1

	// Panes smaller than this show no image
	MinImageCols = 4
	MinImageRows = 2

	// Cell value titles longer than this are cut
	TitleTruncateLength = 40
)
