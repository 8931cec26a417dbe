package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// CreatePaneStyle creates the bordered style of one grid cell; width and
// height are the outer size including the border
func CreatePaneStyle(width, height int, borderColor string, focused bool) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(max(width-2, 0)).
		Height(max(height-2, 0)).
		MaxWidth(width).
		MaxHeight(height).
		Border(BorderFor(focused)).
		BorderForeground(lipgloss.Color(borderColor)).
		Foreground(lipgloss.Color(ColorWhite))
}

// CreatePaneTitleStyle creates the style of a pane's first line
func CreatePaneTitleStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(color))
}

// CreateSelectedValueStyle highlights the selected value of a dimension
func CreateSelectedValueStyle(focused bool) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorBrightGreen))
	if focused {
		style = style.Reverse(true)
	}
	return style
}

// CreateSecondaryTextStyle creates a consistent secondary text style
func CreateSecondaryTextStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightBlack)).
		Italic(true)
}

// CreateFooterStyle creates a consistent footer style
func CreateFooterStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightBlack)).
		MarginLeft(1)
}

// CreateHelpStyle creates the bordered box around the full help
func CreateHelpStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBrightYellow)).
		Padding(0, 2)
}

// CreateLoadingStyle creates a consistent loading state style
func CreateLoadingStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrightYellow))
}

// CreateErrorStyle creates a consistent error style
func CreateErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrightRed))
}
