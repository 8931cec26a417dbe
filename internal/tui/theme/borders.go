package theme

import "github.com/charmbracelet/lipgloss"

// Pane borders; the focused image pane is drawn with heavy lines
var (
	PaneBorder = lipgloss.Border{
		Top:         "─",
		Bottom:      "─",
		Left:        "│",
		Right:       "│",
		TopLeft:     "┌",
		TopRight:    "┐",
		BottomLeft:  "└",
		BottomRight: "┘",
	}

	FocusedPaneBorder = lipgloss.Border{
		Top:         "━",
		Bottom:      "━",
		Left:        "┃",
		Right:       "┃",
		TopLeft:     "┏",
		TopRight:    "┓",
		BottomLeft:  "┗",
		BottomRight: "┛",
	}
)

// BorderFor returns the pane border for the focus state
func BorderFor(focused bool) lipgloss.Border {
	if focused {
		return FocusedPaneBorder
	}
	return PaneBorder
}
