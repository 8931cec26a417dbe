package viewer

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/ndview/internal/ndconfig"
	"github.com/HaiFongPan/ndview/internal/resolver"
	"github.com/HaiFongPan/ndview/internal/selection"
)

// Viewer is the query surface a UI drives: which dimensions exist, which
// image belongs to a selection and which values are still worth offering
type Viewer struct {
	cfg           *ndconfig.Config
	resolver      *resolver.Resolver
	selectable    []ndconfig.Dimension
	nonSelectable ndconfig.Dimension
}

// New creates a viewer for cfg reading images from store
func New(cfg *ndconfig.Config, store resolver.Store) *Viewer {
	return &Viewer{
		cfg:           cfg,
		resolver:      resolver.New(cfg, store),
		selectable:    cfg.SelectableDimensions(),
		nonSelectable: cfg.NonSelectableDimension(),
	}
}

// Config returns the grid configuration
func (v *Viewer) Config() *ndconfig.Config {
	return v.cfg
}

// SelectableDimensions returns the dimensions the user picks values for
func (v *Viewer) SelectableDimensions() []ndconfig.Dimension {
	return v.cfg.SelectableDimensions()
}

// NonSelectableDimension returns the dimension laid out across the grid
func (v *Viewer) NonSelectableDimension() ndconfig.Dimension {
	return v.nonSelectable
}

// ResolvePath returns the image path for a grid value and one value per
// selectable dimension. ok is false when the file does not exist.
func (v *Viewer) ResolvePath(nonSelectableValue string, selectable ...string) (string, bool, error) {
	return v.resolver.ResolvePath(nonSelectableValue, selectable...)
}

// Name returns the file name a selection resolves to, whether or not it exists
func (v *Viewer) Name(nonSelectableValue string, selectable ...string) (string, error) {
	coords, err := v.resolver.Coordinates(nonSelectableValue, selectable)
	if err != nil {
		return "", err
	}
	return v.resolver.Name(coords), nil
}

// InitialSelection picks the first combination of selectable values that
// shows at least one image
func (v *Viewer) InitialSelection() (selection.Assignment, bool) {
	return selection.InitialSelection(v.selectable, v.nonSelectable, v.check(new(int)))
}

// Repopulate returns, per selectable dimension, the values still leading to
// at least one image given the rest of current
func (v *Viewer) Repopulate(current selection.Assignment) ([][]string, error) {
	if len(current) != len(v.selectable) {
		return nil, fmt.Errorf("%w: assignment has %d values, need %d", resolver.ErrInvalidArgument, len(current), len(v.selectable))
	}

	checks := 0
	subsets := selection.Repopulate(v.selectable, v.nonSelectable, current, v.check(&checks))

	logrus.WithFields(logrus.Fields{
		"current": []string(current),
		"checks":  checks,
	}).Debug("selectors repopulated")

	return subsets, nil
}

// Open opens an image path returned by ResolvePath
func (v *Viewer) Open(path string) (io.ReadCloser, error) {
	return v.resolver.Open(path)
}

// Base returns the base path images are resolved against
func (v *Viewer) Base() string {
	return v.resolver.Base()
}

func (v *Viewer) check(count *int) selection.Checker {
	return func(nonSelectableValue string, selectable []string) bool {
		*count++
		_, ok, err := v.resolver.ResolvePath(nonSelectableValue, selectable...)
		return err == nil && ok
	}
}
