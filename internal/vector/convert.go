package vector

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/pspoerri/geotiff2geojson/internal/coord"
	"github.com/pspoerri/geotiff2geojson/internal/grid"
	"github.com/pspoerri/geotiff2geojson/internal/quadrant"
)

// Options control how cell values become feature properties.
type Options struct {
	// Property is the name of the value property on every feature.
	Property string
	// Invert emits 1-v instead of v.
	Invert bool
	// EPSG of the transform's ground coordinates.
	EPSG int
}

// CellPolygon returns the rectangle of grid cell (row, col) for blocks of
// blockSize pixels. The ring starts at the lower-right corner and runs
// counter-clockwise for a north-up transform.
func CellPolygon(t coord.Affine, blockSize, row, col int) orb.Polygon {
	b := float64(blockSize)
	xMin, yMax := t.Apply(float64(col)*b, float64(row)*b)
	xMax, yMin := t.Apply(float64(col+1)*b, float64(row+1)*b)
	return orb.Polygon{orb.Ring{
		{xMax, yMin},
		{xMax, yMax},
		{xMin, yMax},
		{xMin, yMin},
		{xMax, yMin},
	}}
}

// Convert emits one feature per cell of g that no earlier quadrant covers.
// A cell is tested by its upper-left corner. When at least one feature is
// emitted the bounding box of the emitted cells is registered for q.
func Convert(q quadrant.Quadrant, g *grid.Grid, t coord.Affine, blockSize int, cov *quadrant.Coverage, opts Options) (*Collection, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("block size %d: %w", blockSize, grid.ErrBlockSize)
	}

	c := &Collection{Property: opts.Property, EPSG: opts.EPSG}
	lonMin, latMin := math.Inf(1), math.Inf(1)
	lonMax, latMax := math.Inf(-1), math.Inf(-1)
	b := float64(blockSize)

	for y := 0; y < g.Rows(); y++ {
		for x := 0; x < g.Cols(); x++ {
			xMin, yMax := t.Apply(float64(x)*b, float64(y)*b)
			xMax, yMin := t.Apply(float64(x+1)*b, float64(y+1)*b)

			v := g.Cell(y, x)
			if cov.IsCovered(q, xMin, yMax) || math.IsNaN(v) {
				c.Skipped++
				continue
			}
			if opts.Invert {
				v = 1 - v
			}
			c.Features = append(c.Features, Feature{Geometry: CellPolygon(t, blockSize, y, x), Value: v})

			lonMin = math.Min(lonMin, xMin)
			lonMax = math.Max(lonMax, xMax)
			latMin = math.Min(latMin, yMin)
			latMax = math.Max(latMax, yMax)
		}
	}

	if len(c.Features) > 0 {
		cov.Register(q, lonMin, lonMax, latMin, latMax)
	}
	return c, nil
}

// ConvertGrid emits one feature per cell of g, skipping NaN cells.
func ConvertGrid(g *grid.Grid, t coord.Affine, blockSize int, opts Options) (*Collection, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("block size %d: %w", blockSize, grid.ErrBlockSize)
	}
	c := &Collection{Property: opts.Property, EPSG: opts.EPSG}
	for y := 0; y < g.Rows(); y++ {
		for x := 0; x < g.Cols(); x++ {
			v := g.Cell(y, x)
			if math.IsNaN(v) {
				c.Skipped++
				continue
			}
			if opts.Invert {
				v = 1 - v
			}
			c.Features = append(c.Features, Feature{Geometry: CellPolygon(t, blockSize, y, x), Value: v})
		}
	}
	return c, nil
}
