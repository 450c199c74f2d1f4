package vector

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/pspoerri/geotiff2geojson/internal/coord"
)

// ErrProjection is returned when a vertex cannot be transformed.
var ErrProjection = errors.New("vertex outside projection domain")

// Reproject returns a copy of c with every vertex transformed from p's CRS
// to WGS84 longitude/latitude.
func Reproject(c *Collection, p coord.Projection) (*Collection, error) {
	out := &Collection{Property: c.Property, EPSG: 4326, Skipped: c.Skipped, Features: make([]Feature, len(c.Features))}
	if p.EPSG() == 4326 {
		copy(out.Features, c.Features)
		return out, nil
	}

	toWGS84 := func(pt orb.Point) orb.Point {
		lon, lat := p.ToWGS84(pt[0], pt[1])
		return orb.Point{lon, lat}
	}
	for i, f := range c.Features {
		poly := project.Polygon(f.Geometry.Clone(), toWGS84)
		for _, ring := range poly {
			for _, pt := range ring {
				if math.IsNaN(pt[0]) || math.IsNaN(pt[1]) {
					return nil, fmt.Errorf("feature %d from EPSG:%d: %w", i, p.EPSG(), ErrProjection)
				}
			}
		}
		out.Features[i] = Feature{Geometry: poly, Value: f.Value}
	}
	return out, nil
}
