package vector

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pspoerri/geotiff2geojson/internal/coord"
	"github.com/pspoerri/geotiff2geojson/internal/grid"
	"github.com/pspoerri/geotiff2geojson/internal/quadrant"
)

func constGrid(t *testing.T, rows, cols int, v float64) *grid.Grid {
	t.Helper()
	values := make([]float64, rows*cols)
	for i := range values {
		values[i] = v
	}
	g, err := grid.New(rows, cols, values)
	require.NoError(t, err)
	return g
}

var shadeOpts = Options{Property: "avg_shade_fraction", Invert: true, EPSG: 2056}

func TestCellPolygon_RingOrder(t *testing.T) {
	tr := coord.NorthUp(100, 200, 1, 1)
	got := CellPolygon(tr, 5, 1, 2)
	want := orb.Polygon{orb.Ring{
		{115, 190}, {115, 195}, {110, 195}, {110, 190}, {115, 190},
	}}
	assert.Equal(t, want, got)
	assert.True(t, got[0].Closed())
	assert.Equal(t, orb.CCW, got[0].Orientation())
}

func TestConvert_FullySunlitQuadrant(t *testing.T) {
	// A 20x20 raster of 255 aggregated with b=5.
	g := constGrid(t, 4, 4, 1.0)
	tr := coord.NorthUp(0, 20, 1, 1)
	cov := quadrant.NewCoverage()

	c, err := Convert(quadrant.UpperLeft, g, tr, 5, cov, shadeOpts)
	require.NoError(t, err)
	require.Equal(t, 16, c.Len())
	for _, f := range c.Features {
		assert.Equal(t, 0.0, f.Value)
	}

	e, ok := cov.Extent(quadrant.UpperLeft)
	require.True(t, ok)
	assert.Equal(t, quadrant.Extent{LonMin: 0, LonMax: 20, LatMin: 0, LatMax: 20}, e)
}

func TestConvert_SkipsCoveredCells(t *testing.T) {
	cov := quadrant.NewCoverage()
	cov.Register(quadrant.UpperLeft, 0, 10, 0, 10)

	// upper_right grid spans lon 5..15 in 5-unit cells: the first column's
	// corner (lon 5) is west of the upper_left edge.
	g := constGrid(t, 2, 2, 0.25)
	tr := coord.NorthUp(5, 10, 1, 1)
	c, err := Convert(quadrant.UpperRight, g, tr, 5, cov, shadeOpts)
	require.NoError(t, err)

	require.Equal(t, 2, c.Len())
	assert.Equal(t, 2, c.Skipped)
	for _, f := range c.Features {
		b := f.Geometry.Bound()
		assert.Equal(t, 10.0, b.Min[0])
		assert.Equal(t, 0.75, f.Value)
	}

	e, ok := cov.Extent(quadrant.UpperRight)
	require.True(t, ok)
	assert.Equal(t, quadrant.Extent{LonMin: 10, LonMax: 15, LatMin: 0, LatMax: 10}, e)
}

func TestConvert_FullyCoveredQuadrantIsNotRegistered(t *testing.T) {
	cov := quadrant.NewCoverage()
	tr := coord.NorthUp(0, 10, 1, 1)
	g := constGrid(t, 2, 2, 0.5)

	ul, err := Convert(quadrant.UpperLeft, g, tr, 5, cov, shadeOpts)
	require.NoError(t, err)
	require.Equal(t, 4, ul.Len())
	before, _ := cov.Extent(quadrant.UpperLeft)

	// The same footprint again as upper_right emits nothing.
	ur, err := Convert(quadrant.UpperRight, g, tr, 5, cov, shadeOpts)
	require.NoError(t, err)
	assert.Equal(t, 0, ur.Len())
	_, ok := cov.Extent(quadrant.UpperRight)
	assert.False(t, ok)

	after, _ := cov.Extent(quadrant.UpperLeft)
	assert.Equal(t, before, after)
}

func TestConvert_EmptyGrid(t *testing.T) {
	cov := quadrant.NewCoverage()
	g := constGrid(t, 0, 0, 0)
	c, err := Convert(quadrant.LowerLeft, g, coord.NorthUp(0, 0, 1, 1), 5, cov, shadeOpts)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
	_, ok := cov.Extent(quadrant.LowerLeft)
	assert.False(t, ok)
}

func TestConvert_InvalidBlockSize(t *testing.T) {
	g := constGrid(t, 1, 1, 0)
	_, err := Convert(quadrant.UpperLeft, g, coord.Affine{}, 0, quadrant.NewCoverage(), shadeOpts)
	assert.ErrorIs(t, err, grid.ErrBlockSize)
	_, err = ConvertGrid(g, coord.Affine{}, -2, shadeOpts)
	assert.ErrorIs(t, err, grid.ErrBlockSize)
}

func TestConvert_Deterministic(t *testing.T) {
	values := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	g, err := grid.New(2, 3, values)
	require.NoError(t, err)
	tr := coord.NorthUp(2_600_000, 1_200_000, 0.5, 0.5)

	a, err := Convert(quadrant.UpperLeft, g, tr, 4, quadrant.NewCoverage(), shadeOpts)
	require.NoError(t, err)
	b, err := Convert(quadrant.UpperLeft, g, tr, 4, quadrant.NewCoverage(), shadeOpts)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestConvertGrid(t *testing.T) {
	g, err := grid.New(1, 3, []float64{0.2, nan(), 0.8})
	require.NoError(t, err)
	c, err := ConvertGrid(g, coord.NorthUp(0, 1, 1, 1), 1, Options{Property: "shade_fraction"})
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
	assert.Equal(t, 1, c.Skipped)
	assert.Equal(t, []float64{0.2, 0.8}, c.Values())
	assert.Equal(t, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{3, 1}}, c.Bound())
}
