package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/HaiFongPan/ndview/internal/cache"
	"github.com/HaiFongPan/ndview/internal/config"
	"github.com/HaiFongPan/ndview/internal/ndconfig"
	"github.com/HaiFongPan/ndview/internal/r2"
	"github.com/HaiFongPan/ndview/internal/resolver"
	"github.com/HaiFongPan/ndview/internal/selection"
	"github.com/HaiFongPan/ndview/internal/viewer"
)

// gridSession is a parsed grid file and the viewer over its image store
type gridSession struct {
	file       string
	config     *ndconfig.Config
	viewer     *viewer.Viewer
	local      bool
	imageCache *cache.Cache
}

// openGrid parses the grid file named by cfg and connects its image store
func openGrid(cfg *config.Config) (*gridSession, error) {
	gridCfg, err := ndconfig.ParseFile(cfg.Grid.File)
	if err != nil {
		return nil, fmt.Errorf("failed to load grid %s: %w", cfg.Grid.File, err)
	}

	session := &gridSession{
		file:   cfg.Grid.File,
		config: gridCfg,
		local:  !r2.IsRemote(gridCfg.Path()),
	}

	var store resolver.Store
	if session.local {
		store = resolver.NewLocalStore(afero.NewOsFs())
	} else {
		client, err := r2.NewClient(&cfg.R2)
		if err != nil {
			return nil, fmt.Errorf("failed to create R2 client: %w", err)
		}
		session.imageCache, err = cache.New(nil, cfg.Cache.Dir, cfg.Cache.CacheMaxBytes())
		if err != nil {
			return nil, fmt.Errorf("failed to open image cache: %w", err)
		}
		store = client.Store(session.imageCache)
	}

	session.viewer = viewer.New(gridCfg, store)

	logrus.WithFields(logrus.Fields{
		"grid":       cfg.Grid.File,
		"path":       gridCfg.Path(),
		"dimensions": len(gridCfg.Dimensions()),
		"remote":     !session.local,
	}).Debug("grid opened")

	return session, nil
}

// parseAssignment builds a selection from dim=value pairs. Dimensions
// without a pair take the initial selection's value, or their first value
// when no combination has an image.
func parseAssignment(v *viewer.Viewer, sets []string) (selection.Assignment, error) {
	dims := v.SelectableDimensions()

	current, ok := v.InitialSelection()
	if !ok {
		current = make(selection.Assignment, len(dims))
		for i, d := range dims {
			if d.Len() > 0 {
				current[i] = d.Value(0)
			}
		}
	}

	for _, set := range sets {
		name, value, found := strings.Cut(set, "=")
		if !found {
			return nil, fmt.Errorf("invalid --set %q: expected dim=value", set)
		}
		name = strings.TrimSpace(name)

		idx := slices.IndexFunc(dims, func(d ndconfig.Dimension) bool { return d.Name() == name })
		if idx < 0 {
			if name == v.NonSelectableDimension().Name() {
				return nil, fmt.Errorf("dimension %q is laid out across the grid and cannot be set", name)
			}
			return nil, fmt.Errorf("unknown dimension %q", name)
		}
		if !dims[idx].Contains(value) {
			return nil, fmt.Errorf("dimension %q has no value %q (values: %s)",
				name, value, strings.Join(dims[idx].Values(), ", "))
		}
		current[idx] = value
	}

	return current, nil
}
