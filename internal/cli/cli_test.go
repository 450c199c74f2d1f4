package cli

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/pspoerri/geotiff2geojson/internal/pipeline"
	"github.com/pspoerri/geotiff2geojson/internal/quadrant"
)

var testBuild = BuildInfo{Version: "test", Commit: "abc", BuildDate: "today"}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(testBuild)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// writeQuadrant writes a 10x10 LV95 shade raster with a world file.
func writeQuadrant(t *testing.T, dir string, originX, originY float64, value uint8) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range img.Pix {
		img.Pix[i] = value
	}
	f, err := os.Create(filepath.Join(dir, "shade_1200.tif"))
	require.NoError(t, err)
	require.NoError(t, tiff.Encode(f, img, nil))
	require.NoError(t, f.Close())
	tfw := fmt.Sprintf("1\n0\n0\n-1\n%f\n%f\n", originX+0.5, originY-0.5)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shade_1200.tfw"), []byte(tfw), 0o644))
}

func writeQuadrants(t *testing.T, root string) {
	t.Helper()
	origins := map[quadrant.Quadrant][2]float64{
		quadrant.UpperLeft:  {2_600_000, 1_200_020},
		quadrant.UpperRight: {2_600_010, 1_200_020},
		quadrant.LowerLeft:  {2_600_000, 1_200_010},
		quadrant.LowerRight: {2_600_010, 1_200_010},
	}
	for q, o := range origins {
		writeQuadrant(t, filepath.Join(root, q.String()), o[0], o[1], 51)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "geotiff2geojson test (commit abc, built today)\n", out)
}

func TestFuseAndHeatmap(t *testing.T) {
	in := t.TempDir()
	writeQuadrants(t, in)
	outDir := t.TempDir()

	out, err := execute(t, "fuse", in, "--output-dir", outDir, "--block-size", "5", "--reproject")
	require.NoError(t, err)
	assert.Contains(t, out, "upper_left:")
	assert.Contains(t, out, "Done: 16 polygons from 1 period(s)")

	var layers []string
	for _, q := range quadrant.Order {
		p := filepath.Join(outDir, pipeline.OutputName(q))
		require.FileExists(t, p)
		layers = append(layers, p)
	}

	page := filepath.Join(outDir, "map.html")
	preview := filepath.Join(outDir, "map.png")
	args := append([]string{"heatmap", "-o", page, "--preview", preview}, layers...)
	out, err = execute(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Done: 4 layer(s)")

	html, err := os.ReadFile(page)
	require.NoError(t, err)
	assert.Contains(t, string(html), "avg_shade_fraction")
	require.FileExists(t, preview)
}

func TestFuse_MissingInput(t *testing.T) {
	_, err := execute(t, "fuse", t.TempDir(), "--output-dir", t.TempDir())
	assert.ErrorIs(t, err, pipeline.ErrMissingInput)
}

func TestFuse_ConfigFileAndEnv(t *testing.T) {
	in := t.TempDir()
	writeQuadrants(t, in)
	outDir := t.TempDir()
	conf := filepath.Join(t.TempDir(), "fuse.toml")
	require.NoError(t, os.WriteFile(conf, []byte(fmt.Sprintf("output-dir = %q\nblock-size = 10\n", outDir)), 0o644))
	t.Setenv("GEOJSON_PROPERTY", "shade")

	out, err := execute(t, "fuse", in, "--config", conf)
	require.NoError(t, err)
	assert.Contains(t, out, "10x10 px")
	assert.Contains(t, out, "Done: 4 polygons")

	data, err := os.ReadFile(filepath.Join(outDir, pipeline.OutputName(quadrant.UpperLeft)))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"shade":`)
}

func TestArgs(t *testing.T) {
	_, err := execute(t, "fuse")
	assert.Error(t, err)
	_, err = execute(t, "heatmap")
	assert.Error(t, err)
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512 B", humanSize(512))
	assert.Equal(t, "1.5 KB", humanSize(1536))
	assert.Equal(t, "2.0 MB", humanSize(2<<20))
}
