// Package heatmap renders feature collections as colored maps: an
// interactive Leaflet page and a static raster preview.
package heatmap

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"github.com/pspoerri/geotiff2geojson/internal/coord"
	"github.com/pspoerri/geotiff2geojson/internal/vector"
)

// ErrNoFeatures is returned when there is nothing to render.
var ErrNoFeatures = errors.New("no features to render")

// Load reads feature collections carrying property and reprojects any that
// are not in WGS84.
func Load(property string, logger logrus.FieldLogger, paths ...string) ([]*vector.Collection, error) {
	out := make([]*vector.Collection, 0, len(paths))
	for _, p := range paths {
		c, err := vector.ReadFile(p, property)
		if err != nil {
			return nil, err
		}
		if c.EPSG != 4326 {
			proj, err := coord.ForEPSG(c.EPSG)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", p, err)
			}
			if c, err = vector.Reproject(c, proj); err != nil {
				return nil, fmt.Errorf("%s: %w", p, err)
			}
		}
		logger.WithFields(logrus.Fields{"path": p, "features": c.Len()}).Debug("Loaded feature collection")
		out = append(out, c)
	}
	return out, nil
}

// Center returns the mean of every exterior-ring vertex, closing vertices
// included.
func Center(collections []*vector.Collection) (orb.Point, error) {
	var sumLon, sumLat float64
	var n int
	for _, c := range collections {
		for _, f := range c.Features {
			if len(f.Geometry) == 0 {
				continue
			}
			for _, pt := range f.Geometry[0] {
				sumLon += pt[0]
				sumLat += pt[1]
				n++
			}
		}
	}
	if n == 0 {
		return orb.Point{}, ErrNoFeatures
	}
	return orb.Point{sumLon / float64(n), sumLat / float64(n)}, nil
}

// Bound returns the combined bounding box of all collections.
func Bound(collections []*vector.Collection) (orb.Bound, bool) {
	var b orb.Bound
	found := false
	for _, c := range collections {
		if c.Len() == 0 {
			continue
		}
		if !found {
			b, found = c.Bound(), true
			continue
		}
		b = b.Union(c.Bound())
	}
	return b, found
}
