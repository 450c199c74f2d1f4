package heatmap

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pspoerri/geotiff2geojson/internal/coord"
	"github.com/pspoerri/geotiff2geojson/internal/vector"
)

func square(lon, lat, d, v float64) vector.Feature {
	return vector.Feature{
		Geometry: orb.Polygon{orb.Ring{{lon + d, lat}, {lon + d, lat + d}, {lon, lat + d}, {lon, lat}, {lon + d, lat}}},
		Value:    v,
	}
}

func wgs84Collection(features ...vector.Feature) *vector.Collection {
	return &vector.Collection{Property: "avg_shade_fraction", EPSG: 4326, Features: features}
}

func TestCenter_IncludesClosingVertex(t *testing.T) {
	c := wgs84Collection(square(0, 0, 1, 0.5))
	center, err := Center([]*vector.Collection{c})
	require.NoError(t, err)
	// Vertices (1,0) (1,1) (0,1) (0,0) (1,0).
	assert.InDelta(t, 3.0/5, center[0], 1e-12)
	assert.InDelta(t, 2.0/5, center[1], 1e-12)

	_, err = Center([]*vector.Collection{wgs84Collection()})
	assert.ErrorIs(t, err, ErrNoFeatures)
}

func TestCenter_AcrossCollections(t *testing.T) {
	a := wgs84Collection(square(0, 0, 1, 0))
	b := wgs84Collection(square(10, 10, 1, 0))
	center, err := Center([]*vector.Collection{a, b})
	require.NoError(t, err)
	assert.InDelta(t, 5.6, center[0], 1e-12)
	assert.InDelta(t, 5.4, center[1], 1e-12)
}

func TestScale_At(t *testing.T) {
	blue := color.RGBA{B: 255, A: 255}
	red := color.RGBA{R: 255, A: 255}
	tests := []struct {
		v    float64
		want color.RGBA
	}{
		{0, blue},
		{-0.5, blue},
		{math.NaN(), blue},
		{1.0 / 3, color.RGBA{G: 128, A: 255}},
		{2.0 / 3, color.RGBA{R: 255, G: 255, A: 255}},
		{0.5, color.RGBA{R: 128, G: 192, A: 255}},
		{1, red},
		{7, red},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ShadeScale.At(tt.v), "At(%v)", tt.v)
	}
	assert.Equal(t, "#0000ff", Hex(ShadeScale.At(0)))
}

func TestWriteHTML(t *testing.T) {
	c := wgs84Collection(square(77.2, 28.6, 0.001, 0.25), square(77.201, 28.6, 0.001, 0.75))
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, []*vector.Collection{c}, Options{Title: "Delhi shade"}))

	html := buf.String()
	assert.Contains(t, html, "<title>Delhi shade</title>")
	assert.Contains(t, html, `"avg_shade_fraction"`)
	assert.Contains(t, html, "leaflet.js")
	assert.Contains(t, html, `"#0000ff"`)
	assert.Contains(t, html, `"FeatureCollection"`)
	assert.Contains(t, html, "0.75")
	assert.Equal(t, 1, strings.Count(html, "L.geoJSON("))

	err := WriteHTML(&buf, nil, Options{})
	assert.ErrorIs(t, err, ErrNoFeatures)
}

func TestLoad_ReprojectsProjectedCollections(t *testing.T) {
	dir := t.TempDir()
	tr := coord.NorthUp(2_600_000, 1_200_000, 1, 1)
	src := &vector.Collection{Property: "avg_shade_fraction", EPSG: 2056, Features: []vector.Feature{
		{Geometry: vector.CellPolygon(tr, 10, 0, 0), Value: 0.4},
	}}
	path := filepath.Join(dir, "upper_left_average_shade.json")
	require.NoError(t, vector.WriteFile(path, src))

	logger, _ := test.NewNullLogger()
	got, err := Load("avg_shade_fraction", logger, path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 4326, got[0].EPSG)
	center, err := Center(got)
	require.NoError(t, err)
	assert.InDelta(t, 7.4387, center[0], 0.01)
	assert.InDelta(t, 46.951, center[1], 0.01)

	_, err = Load("avg_shade_fraction", logger, filepath.Join(dir, "lower_left_average_shade.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRenderPreview(t *testing.T) {
	c := wgs84Collection(square(8.5, 47.3, 0.01, 1.0))
	img, err := RenderPreview([]*vector.Collection{c}, Options{Width: 200, Height: 160})
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 160, img.Bounds().Dy())

	// The single red cell fills the middle of the plot area.
	r, g, b, _ := img.At(100, 60).RGBA()
	assert.Greater(t, r, g)
	assert.Greater(t, r, b)
	// Partially transparent red over white leaves about 30% of the green.
	assert.InDelta(t, 255*(1-FillOpacity), float64(g>>8), 3)

	_, err = RenderPreview(nil, Options{})
	assert.ErrorIs(t, err, ErrNoFeatures)
}

func TestWritePreview(t *testing.T) {
	c := wgs84Collection(square(8.5, 47.3, 0.01, 0.2), square(8.51, 47.3, 0.01, 0.9))
	path := filepath.Join(t.TempDir(), "preview.png")
	require.NoError(t, WritePreview(path, []*vector.Collection{c}, Options{Width: 320, Height: 240}, 0))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 240, cfg.Height)

	assert.Error(t, WritePreview(filepath.Join(t.TempDir(), "preview.bmp"), []*vector.Collection{c}, Options{}, 0))
}
