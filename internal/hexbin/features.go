package hexbin

import (
	"github.com/paulmach/orb/planar"

	"github.com/pspoerri/geotiff2geojson/internal/vector"
)

// FromFeatures re-bins polygon features by their centroid. The collection
// must be in WGS84.
func FromFeatures(c *vector.Collection, binner Binner) *Accumulator {
	acc := NewAccumulator(binner)
	for _, f := range c.Features {
		centroid, _ := planar.CentroidArea(f.Geometry)
		acc.Add(centroid[0], centroid[1], f.Value)
	}
	return acc
}
