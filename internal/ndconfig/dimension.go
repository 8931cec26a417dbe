package ndconfig

import "slices"

// Dimension is a named axis which images in the viewer can vary along
type Dimension struct {
	name   string
	title  string
	values []string
}

// NewDimension creates a dimension. The values slice is copied.
func NewDimension(name, title string, values []string) Dimension {
	return Dimension{
		name:   name,
		title:  title,
		values: slices.Clone(values),
	}
}

// Name returns the id used for the dimension in the name format.
// The empty name is the "no value" dimension.
func (d Dimension) Name() string {
	return d.name
}

// Title returns the label shown next to the dimension's selector
func (d Dimension) Title() string {
	return d.title
}

// Values returns a copy of the dimension's values in declaration order
func (d Dimension) Values() []string {
	return slices.Clone(d.values)
}

// Len returns the number of declared values, duplicates included
func (d Dimension) Len() int {
	return len(d.values)
}

// Value returns the i-th declared value
func (d Dimension) Value(i int) string {
	return d.values[i]
}

// Contains reports whether v is one of the dimension's values
func (d Dimension) Contains(v string) bool {
	return slices.Contains(d.values, v)
}
