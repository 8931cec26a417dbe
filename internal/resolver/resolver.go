package resolver

import (
	"errors"
	"fmt"
	"io"

	"github.com/HaiFongPan/ndview/internal/ndconfig"
)

// ErrInvalidArgument is returned when a caller breaks the resolver's contract
var ErrInvalidArgument = errors.New("invalid argument")

// Resolver turns dimension values into image paths
type Resolver struct {
	base        string
	template    *Template
	dimNames    []string
	plotByIndex int
	store       Store
}

// New creates a resolver for cfg backed by store
func New(cfg *ndconfig.Config, store Store) *Resolver {
	dims := cfg.Dimensions()
	names := make([]string, len(dims))
	for i, d := range dims {
		names[i] = d.Name()
	}
	return &Resolver{
		base:        cfg.Path(),
		template:    CompileTemplate(cfg.NameFormat(), names),
		dimNames:    names,
		plotByIndex: cfg.PlotByIndex(),
		store:       store,
	}
}

// Name builds the file name for the given coordinates
func (r *Resolver) Name(coords []Coordinate) string {
	return r.template.Fill(coords)
}

// ExistingFile returns the full path of name if it exists under the base path
func (r *Resolver) ExistingFile(name string) (string, bool) {
	path := r.base + name
	if r.store.Exists(path) {
		return path, true
	}
	return "", false
}

// Coordinates places the selectable values around the non-selectable one in
// declaration order
func (r *Resolver) Coordinates(nonSelectableValue string, selectable []string) ([]Coordinate, error) {
	if len(selectable) != len(r.dimNames)-1 {
		return nil, fmt.Errorf("%w: got %d selectable values, need %d", ErrInvalidArgument, len(selectable), len(r.dimNames)-1)
	}
	coords := make([]Coordinate, len(r.dimNames))
	offset := 0
	for i, name := range r.dimNames {
		if i == r.plotByIndex {
			coords[i] = Coordinate{Dim: name, Value: nonSelectableValue}
			offset = 1
			continue
		}
		coords[i] = Coordinate{Dim: name, Value: selectable[i-offset]}
	}
	return coords, nil
}

// ResolvePath returns the path of the image for one value of the
// non-selectable dimension and one value per selectable dimension.
// A missing file is reported by ok == false, never as an error.
func (r *Resolver) ResolvePath(nonSelectableValue string, selectable ...string) (string, bool, error) {
	coords, err := r.Coordinates(nonSelectableValue, selectable)
	if err != nil {
		return "", false, err
	}
	path, ok := r.ExistingFile(r.Name(coords))
	return path, ok, nil
}

// Open opens a path previously returned by ResolvePath
func (r *Resolver) Open(path string) (io.ReadCloser, error) {
	return r.store.Open(path)
}

// Base returns the base path names are resolved against
func (r *Resolver) Base() string {
	return r.base
}
