package ndconfig

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Scalar directive keys
const (
	KeyPath       = "path"
	KeyNameFormat = "name_format"
	KeyPlotBy     = "plot_by"
	KeyRowHeights = "row_heights"
	KeyColWidths  = "col_widths"

	gridPrefix = "grid_"
	emptyValue = "."
)

// gridDirective is a grid_<row>_<col> line kept until the grid size is known
type gridDirective struct {
	line  int
	key   string
	value string
}

// dimensionBuilder accumulates the values of an open [name] block
type dimensionBuilder struct {
	name   string
	title  string
	values []string
}

// parser holds the state of a single left-to-right pass. current is nil
// outside a dimension block.
type parser struct {
	line       int
	current    *dimensionBuilder
	dimensions []Dimension
	scalars    map[string]string
	grid       []gridDirective
}

// ParseFile reads a grid configuration from disk
func ParseFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open grid config %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"file":       path,
		"dimensions": len(cfg.dimensions),
		"rows":       cfg.Rows(),
		"cols":       cfg.Cols(),
	}).Debug("grid config loaded")

	return cfg, nil
}

// Parse reads a grid configuration from a line-oriented source
func Parse(r io.Reader) (*Config, error) {
	p := &parser{scalars: make(map[string]string)}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.line++
		if err := p.handleLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read grid config: %w", err)
	}
	p.closeBlock()

	return p.build()
}

func (p *parser) handleLine(raw string) error {
	// inside a block only an unindented # starts a comment, "  # x" is a value
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(raw, "#") {
		return nil
	}
	if p.current == nil && strings.HasPrefix(line, "#") {
		return nil
	}

	if name, ok := blockHeader(line); ok {
		p.closeBlock()
		title := name
		if name == emptyValue {
			name = ""
		}
		p.current = &dimensionBuilder{name: name, title: title}
		return nil
	}

	if key, value, ok := directive(line); ok {
		p.closeBlock()
		return p.handleDirective(key, value)
	}

	if p.current != nil {
		if line == emptyValue {
			line = ""
		}
		p.current.values = append(p.current.values, line)
		return nil
	}

	logrus.Warnf("grid config line %d ignored: %q is neither a directive nor inside a dimension block", p.line, line)
	return nil
}

func (p *parser) handleDirective(key, value string) error {
	if strings.HasPrefix(key, gridPrefix) {
		p.grid = append(p.grid, gridDirective{line: p.line, key: key, value: value})
		return nil
	}

	if _, seen := p.scalars[key]; seen {
		return lineErrorf(p.line, "duplicate %s; it may only be given once", key)
	}
	if key == KeyPath && !strings.HasSuffix(value, "/") {
		value += "/"
	}
	p.scalars[key] = value
	return nil
}

// closeBlock appends the dimension being built, if any
func (p *parser) closeBlock() {
	if p.current == nil {
		return
	}
	p.dimensions = append(p.dimensions, NewDimension(p.current.name, p.current.title, p.current.values))
	p.current = nil
}

func (p *parser) build() (*Config, error) {
	for _, key := range []string{KeyPath, KeyNameFormat, KeyPlotBy} {
		if _, ok := p.scalars[key]; !ok {
			return nil, configErrorf("you must provide a value for %s in the config", key)
		}
	}
	if len(p.dimensions) == 0 {
		return nil, configErrorf("you must provide at least one dimension")
	}

	cfg := &Config{
		path:        p.scalars[KeyPath],
		nameFormat:  p.scalars[KeyNameFormat],
		plotBy:      p.scalars[KeyPlotBy],
		dimensions:  p.dimensions,
		plotByIndex: -1,
	}

	seen := make(map[string]bool, len(p.dimensions))
	for i, d := range p.dimensions {
		if seen[d.Name()] {
			return nil, configErrorf("dimension %q is defined more than once", d.Title())
		}
		seen[d.Name()] = true
		if d.Name() == cfg.plotBy {
			cfg.plotByIndex = i
			cfg.nonSelectable = d
			continue
		}
		cfg.selectable = append(cfg.selectable, d)
	}
	if cfg.plotByIndex < 0 {
		return nil, configErrorf("you have stated the field %s to plot by, but this is not defined as a dimension", cfg.plotBy)
	}

	grid, err := p.buildGrid(cfg.nonSelectable)
	if err != nil {
		return nil, err
	}
	cfg.grid = grid

	rowHeights, err := distribute(KeyRowHeights, p.scalars[KeyRowHeights], len(grid))
	if err != nil {
		return nil, err
	}
	colWidths, err := distribute(KeyColWidths, p.scalars[KeyColWidths], len(grid[0]))
	if err != nil {
		return nil, err
	}
	cfg.rowHeights = rowHeights
	cfg.colWidths = colWidths

	return cfg, nil
}

type gridCoord struct {
	row, col int
}

func (p *parser) buildGrid(nonSelectable Dimension) ([][]Cell, error) {
	rows, cols := 0, 0
	coords := make([]gridCoord, len(p.grid))
	for i, g := range p.grid {
		row, col, err := parseGridKey(g)
		if err != nil {
			return nil, err
		}
		coords[i] = gridCoord{row: row, col: col}
		rows = max(rows, row+1)
		cols = max(cols, col+1)
	}
	if rows == 0 || cols == 0 {
		return nil, configErrorf("you must define at least one row and one column to display data in")
	}

	grid := make([][]Cell, rows)
	for r := range grid {
		grid[r] = make([]Cell, cols)
	}

	settings := 0
	for i, g := range p.grid {
		cell := Cell{Kind: CellValue, Value: g.value}
		switch g.value {
		case Settings:
			cell = Cell{Kind: CellSettings}
		case emptyValue:
			cell.Value = ""
		}

		at := coords[i]
		if prev := grid[at.row][at.col]; prev.Kind != CellUnset {
			logrus.Warnf("grid config line %d redefines cell (%d, %d)", g.line, at.row, at.col)
			if prev.Kind == CellSettings {
				settings--
			}
		}

		if cell.Kind == CellSettings {
			settings++
			if settings > 1 {
				return nil, lineErrorf(g.line, "%s may only be placed in one grid cell", Settings)
			}
		} else if cell.Value != "" && !nonSelectable.Contains(cell.Value) {
			return nil, lineErrorf(g.line, "grid cell (%d, %d) has value %q which is not a value of dimension %q",
				at.row, at.col, cell.Value, nonSelectable.Title())
		}
		grid[at.row][at.col] = cell
	}

	return grid, nil
}

// parseGridKey splits grid_<row>_<col> into its indices
func parseGridKey(g gridDirective) (int, int, error) {
	tokens := strings.Split(g.key, "_")
	if len(tokens) != 3 {
		return 0, 0, lineErrorf(g.line, "grid config options must be of the form \"grid_x_y = ...\", got %q", g.key)
	}
	row, err := strconv.Atoi(tokens[1])
	if err != nil || row < 0 {
		return 0, 0, lineErrorf(g.line, "grid config options must be of the form \"grid_x_y = ...\", where x is a valid row number: %q", g.key)
	}
	col, err := strconv.Atoi(tokens[2])
	if err != nil || col < 0 {
		return 0, 0, lineErrorf(g.line, "grid config options must be of the form \"grid_x_y = ...\", where y is a valid column number: %q", g.key)
	}
	return row, col, nil
}

// blockHeader recognises a [name] line
func blockHeader(line string) (string, bool) {
	if len(line) < 2 || line[0] != '[' || line[len(line)-1] != ']' {
		return "", false
	}
	return line[1 : len(line)-1], true
}

// directive recognises key = value lines for the known keys
func directive(line string) (string, string, bool) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	switch key {
	case KeyPath, KeyNameFormat, KeyPlotBy, KeyRowHeights, KeyColWidths:
		return key, strings.TrimSpace(value), true
	}
	if strings.HasPrefix(key, gridPrefix) {
		return key, strings.TrimSpace(value), true
	}
	return "", "", false
}
