package ndconfig

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
# sample configuration
path = /data/images
name_format = ${sensor}_${surface}?${level}_${kind}.png
plot_by = sensor
row_heights = 60,40
col_widths = 50,50
grid_0_0 = ${settings}
grid_0_1 = AATSR
grid_1_1 = MODIS
[sensor]
AATSR
MODIS
[surface]
.
land
ocean
[level]
raw
processed
[kind]
spatial
`

func parseString(t *testing.T, src string) (*Config, error) {
	t.Helper()
	return Parse(strings.NewReader(src))
}

func requireConfigError(t *testing.T, err error) *ConfigError {
	t.Helper()
	require.Error(t, err)
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %T: %v", err, err)
	return cfgErr
}

func TestParse_SampleConfig(t *testing.T) {
	cfg, err := parseString(t, sampleConfig)
	require.NoError(t, err)

	assert.Equal(t, "/data/images/", cfg.Path())
	assert.Equal(t, "${sensor}_${surface}?${level}_${kind}.png", cfg.NameFormat())
	assert.Equal(t, "sensor", cfg.PlotBy())
	assert.Equal(t, 0, cfg.PlotByIndex())

	dims := cfg.Dimensions()
	require.Len(t, dims, 4)
	assert.Equal(t, []string{"", "land", "ocean"}, dims[1].Values())

	assert.Equal(t, 2, cfg.Rows())
	assert.Equal(t, 2, cfg.Cols())
	assert.Equal(t, Cell{Kind: CellSettings}, cfg.Cell(0, 0))
	assert.Equal(t, Cell{Kind: CellValue, Value: "AATSR"}, cfg.Cell(0, 1))
	assert.Equal(t, Cell{Kind: CellUnset}, cfg.Cell(1, 0))
	assert.Equal(t, Cell{Kind: CellValue, Value: "MODIS"}, cfg.Cell(1, 1))

	row, col, ok := cfg.SettingsCell()
	assert.True(t, ok)
	assert.Equal(t, 0, row)
	assert.Equal(t, 0, col)

	assert.InDeltaSlice(t, []float64{0.6, 0.4}, cfg.RowHeights(), 1e-9)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, cfg.ColWidths(), 1e-9)
}

func TestParse_DimensionExtraction(t *testing.T) {
	cfg, err := parseString(t, `
path = /x
name_format = ${sensor}${surface}${level}
plot_by = sensor
grid_0_0 = AATSR
[sensor]
AATSR
[surface]
land
[level]
raw
`)
	require.NoError(t, err)

	selectable := cfg.SelectableDimensions()
	require.Len(t, selectable, 2)
	assert.Equal(t, "surface", selectable[0].Name())
	assert.Equal(t, "level", selectable[1].Name())
	assert.Equal(t, "sensor", cfg.NonSelectableDimension().Name())
}

func TestParse_EmptyDimensionName(t *testing.T) {
	cfg, err := parseString(t, `
path = /x
name_format = a?${}.png
plot_by = kind
grid_0_0 = .
[.]
.
b
[kind]
.
k
`)
	require.NoError(t, err)

	selectable := cfg.SelectableDimensions()
	require.Len(t, selectable, 1)
	assert.Equal(t, "", selectable[0].Name())
	assert.Equal(t, ".", selectable[0].Title())
	assert.Equal(t, []string{"", "b"}, selectable[0].Values())
	assert.Equal(t, Cell{Kind: CellValue, Value: ""}, cfg.Cell(0, 0))
}

func TestParse_DirectiveClosesBlock(t *testing.T) {
	cfg, err := parseString(t, `
[sensor]
AATSR
MODIS
path = /x
# values after a directive are outside any block and ignored
stray
[level]
raw
name_format = ${sensor}_${level}
grid_0_0 = MODIS
plot_by = sensor
`)
	require.NoError(t, err)

	dims := cfg.Dimensions()
	require.Len(t, dims, 2)
	assert.Equal(t, []string{"AATSR", "MODIS"}, dims[0].Values())
	assert.Equal(t, []string{"raw"}, dims[1].Values())
}

func TestParse_ValuesKeepInternalWhitespace(t *testing.T) {
	cfg, err := parseString(t, `
path = /x
name_format = ${a}
plot_by = a
grid_0_0 = two words
[a]
   two words
a=b
a=b
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"two words", "a=b", "a=b"}, cfg.NonSelectableDimension().Values())
}

func TestParse_DuplicateDimensionValuesPreserved(t *testing.T) {
	cfg, err := parseString(t, `
path = /x
name_format = ${a}
plot_by = a
grid_0_0 = x
[a]
x
y
x
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "x"}, cfg.NonSelectableDimension().Values())
}

func TestParse_PathAlreadyEndingInSlash(t *testing.T) {
	cfg, err := parseString(t, `
path = /data/
name_format = ${a}
plot_by = a
grid_0_0 = x
[a]
x
`)
	require.NoError(t, err)
	assert.Equal(t, "/data/", cfg.Path())
}

func TestParse_ValidationErrors(t *testing.T) {
	base := map[string]string{
		"path":        "path = /x",
		"name_format": "name_format = ${a}",
		"plot_by":     "plot_by = a",
		"grid":        "grid_0_0 = x",
		"dims":        "[a]\nx\ny",
	}
	build := func(skip string, extra ...string) string {
		var lines []string
		for _, k := range []string{"path", "name_format", "plot_by", "grid", "dims"} {
			if k != skip {
				lines = append(lines, base[k])
			}
		}
		return strings.Join(append(lines, extra...), "\n")
	}

	tests := []struct {
		name    string
		src     string
		message string
	}{
		{"missing path", build("path"), "path"},
		{"missing name_format", build("name_format"), "name_format"},
		{"missing plot_by", build("plot_by"), "plot_by"},
		{"no dimensions", build("dims"), "at least one dimension"},
		{"plot_by unknown", strings.Replace(build(""), "plot_by = a", "plot_by = b", 1), "b to plot by"},
		{"no grid", build("grid"), "at least one row and one column"},
		{"duplicate path", build("", "path = /y"), "duplicate path"},
		{"duplicate plot_by", build("", "plot_by = a"), "duplicate plot_by"},
		{"duplicate row_heights", build("", "row_heights = 100", "row_heights = 100"), "duplicate row_heights"},
		{"grid key too short", build("", "grid_1 = x"), "grid_x_y"},
		{"grid key too long", build("", "grid_1_2_3 = x"), "grid_x_y"},
		{"grid row not integer", build("", "grid_a_0 = x"), "valid row number"},
		{"grid col negative", build("", "grid_0_-1 = x"), "valid column number"},
		{"cell value unknown", build("", "grid_2_3 = z"), `(2, 3) has value "z"`},
		{"two settings cells", build("", "grid_0_1 = ${settings}", "grid_1_0 = ${settings}"), "one grid cell"},
		{"duplicate dimension", build("", "[a]", "q"), "more than once"},
		{"bad percentage", build("", "row_heights = abc"), "row_heights entry 1"},
		{"percentages over 100", build("", "col_widths = 150"), "more than 100%"},
		{"percentages under 100", build("", "grid_0_1 = y", "col_widths = 30,30"), "must add up to 100%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseString(t, tt.src)
			cfgErr := requireConfigError(t, err)
			assert.Contains(t, cfgErr.Error(), tt.message)
		})
	}
}

func TestParse_CellErrorNamesDimension(t *testing.T) {
	_, err := parseString(t, `
path = /x
name_format = ${sensor}
plot_by = sensor
grid_0_0 = VIIRS
[sensor]
AATSR
`)
	cfgErr := requireConfigError(t, err)
	assert.Contains(t, cfgErr.Error(), "(0, 0)")
	assert.Contains(t, cfgErr.Error(), `"VIIRS"`)
	assert.Contains(t, cfgErr.Error(), `"sensor"`)
	assert.Equal(t, 5, cfgErr.Line)
}

func TestParse_RedefinedCellLastWins(t *testing.T) {
	cfg, err := parseString(t, `
path = /x
name_format = ${a}
plot_by = a
grid_0_0 = ${settings}
grid_0_0 = x
grid_0_1 = ${settings}
[a]
x
`)
	require.NoError(t, err)
	assert.Equal(t, Cell{Kind: CellValue, Value: "x"}, cfg.Cell(0, 0))
	assert.Equal(t, Cell{Kind: CellSettings}, cfg.Cell(0, 1))
}

func TestParse_EmptyCellAccepted(t *testing.T) {
	cfg, err := parseString(t, `
path = /x
name_format = ${sensor}.png
plot_by = sensor
grid_0_0 = ${settings}
grid_0_1 = .
grid_1_1 = MODIS
[sensor]
AATSR
MODIS
`)
	require.NoError(t, err)
	assert.False(t, cfg.NonSelectableDimension().Contains(""))
	assert.Equal(t, Cell{Kind: CellValue, Value: ""}, cfg.Cell(0, 1))
	assert.Equal(t, Cell{Kind: CellValue, Value: "MODIS"}, cfg.Cell(1, 1))
	assert.Equal(t, Cell{Kind: CellUnset}, cfg.Cell(1, 0))
}

func TestParse_IndentedHashInsideBlockIsValue(t *testing.T) {
	cfg, err := parseString(t, `
path = /x
name_format = ${a}_${b}
plot_by = a
  # indented comment outside a block
grid_0_0 = x
[a]
x
# a comment
  # y
[b]
b1
`)
	require.NoError(t, err)
	dims := cfg.Dimensions()
	require.Len(t, dims, 2)
	assert.Equal(t, []string{"x", "# y"}, dims[0].Values())
	assert.Equal(t, []string{"b1"}, dims[1].Values())
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "settings.cfg")
	require.NoError(t, os.WriteFile(file, []byte(sampleConfig), 0644))

	cfg, err := ParseFile(file)
	require.NoError(t, err)
	assert.Equal(t, "sensor", cfg.PlotBy())

	_, err = ParseFile(filepath.Join(dir, "missing.cfg"))
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.False(t, errors.As(err, &cfgErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDimension_ValuesAreCopies(t *testing.T) {
	values := []string{"a", "b"}
	d := NewDimension("x", "X", values)
	values[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, d.Values())

	got := d.Values()
	got[1] = "changed"
	assert.Equal(t, "b", d.Value(1))
	assert.True(t, d.Contains("a"))
	assert.False(t, d.Contains("changed"))
	assert.Equal(t, 2, d.Len())
}
