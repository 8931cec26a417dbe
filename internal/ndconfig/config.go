package ndconfig

import "slices"

// Settings is the grid value marking where the selector pane goes
const Settings = "${settings}"

// CellKind describes what occupies a grid cell
type CellKind int

const (
	// CellUnset means no grid directive targeted the cell
	CellUnset CellKind = iota
	// CellSettings hosts the dimension selectors
	CellSettings
	// CellValue shows the image for one value of the non-selectable dimension
	CellValue
)

// String returns the string representation of the CellKind
func (k CellKind) String() string {
	switch k {
	case CellUnset:
		return "unset"
	case CellSettings:
		return "settings"
	case CellValue:
		return "value"
	default:
		return "unknown"
	}
}

// Cell is one position of the grid layout
type Cell struct {
	Kind  CellKind
	Value string
}

// Config is a parsed grid configuration. It is immutable once built.
type Config struct {
	path          string
	nameFormat    string
	plotBy        string
	dimensions    []Dimension
	plotByIndex   int
	selectable    []Dimension
	nonSelectable Dimension
	grid          [][]Cell
	rowHeights    []float64
	colWidths     []float64
}

// Path returns the base path of the images, always ending with a slash
func (c *Config) Path() string {
	return c.path
}

// NameFormat returns the name template
func (c *Config) NameFormat() string {
	return c.nameFormat
}

// PlotBy returns the name of the dimension laid out across the grid
func (c *Config) PlotBy() string {
	return c.plotBy
}

// PlotByIndex returns the position of the non-selectable dimension in Dimensions
func (c *Config) PlotByIndex() int {
	return c.plotByIndex
}

// Dimensions returns every dimension in declaration order, the non-selectable one included
func (c *Config) Dimensions() []Dimension {
	return slices.Clone(c.dimensions)
}

// SelectableDimensions returns the dimensions the user picks values for
func (c *Config) SelectableDimensions() []Dimension {
	return slices.Clone(c.selectable)
}

// NonSelectableDimension returns the dimension named by plot_by
func (c *Config) NonSelectableDimension() Dimension {
	return c.nonSelectable
}

// Rows returns the number of grid rows
func (c *Config) Rows() int {
	return len(c.grid)
}

// Cols returns the number of grid columns
func (c *Config) Cols() int {
	if len(c.grid) == 0 {
		return 0
	}
	return len(c.grid[0])
}

// Cell returns the cell at row r, column c
func (c *Config) Cell(r, col int) Cell {
	return c.grid[r][col]
}

// SettingsCell returns the position of the selector pane, if one was configured
func (c *Config) SettingsCell() (row, col int, ok bool) {
	for r := range c.grid {
		for cc, cell := range c.grid[r] {
			if cell.Kind == CellSettings {
				return r, cc, true
			}
		}
	}
	return 0, 0, false
}

// RowHeights returns the fractional height of every row
func (c *Config) RowHeights() []float64 {
	return slices.Clone(c.rowHeights)
}

// ColWidths returns the fractional width of every column
func (c *Config) ColWidths() []float64 {
	return slices.Clone(c.colWidths)
}
