package pipeline

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

// shadeTile is an LV95 raster with 1 m pixels. Pixel values are value plus
// step times the column.
type shadeTile struct {
	originX, originY float64
	size             int
	value            uint8
	step             uint8
}

// writeShade writes a grayscale TIFF with a .tfw sidecar and sets its
// modification time to mod.
func writeShade(t *testing.T, path string, st shadeTile, mod time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	img := image.NewGray(image.Rect(0, 0, st.size, st.size))
	for y := 0; y < st.size; y++ {
		for x := 0; x < st.size; x++ {
			img.Pix[y*img.Stride+x] = st.value + st.step*uint8(x)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate}))
	require.NoError(t, f.Close())

	tfw := fmt.Sprintf("1\n0\n0\n-1\n%f\n%f\n", st.originX+0.5, st.originY-0.5)
	base := path[:len(path)-len(filepath.Ext(path))]
	require.NoError(t, os.WriteFile(base+".tfw", []byte(tfw), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

// quadrantTiles lays four 20 m tiles out in a 2x2 arrangement that overlaps
// by 5 m in both directions.
var quadrantTiles = map[string]shadeTile{
	"upper_left":  {originX: 2_600_000, originY: 1_200_040, size: 20},
	"upper_right": {originX: 2_600_015, originY: 1_200_040, size: 20},
	"lower_left":  {originX: 2_600_000, originY: 1_200_025, size: 20},
	"lower_right": {originX: 2_600_015, originY: 1_200_025, size: 20},
}

// abuttingTiles share edges without overlapping.
var abuttingTiles = map[string]shadeTile{
	"upper_left":  {originX: 2_600_000, originY: 1_200_040, size: 20},
	"upper_right": {originX: 2_600_020, originY: 1_200_040, size: 20},
	"lower_left":  {originX: 2_600_000, originY: 1_200_020, size: 20},
	"lower_right": {originX: 2_600_020, originY: 1_200_020, size: 20},
}

// writeQuadrants writes one file per value into every quadrant directory,
// oldest first.
func writeQuadrants(t *testing.T, root string, values ...uint8) {
	t.Helper()
	writeTiles(t, root, quadrantTiles, values...)
}

func writeTiles(t *testing.T, root string, tiles map[string]shadeTile, values ...uint8) {
	t.Helper()
	base := time.Date(2024, 6, 21, 8, 0, 0, 0, time.UTC)
	for name, st := range tiles {
		for i, v := range values {
			st.value = v
			path := filepath.Join(root, name, fmt.Sprintf("%s_%02d00.tif", name, 8+i))
			writeShade(t, path, st, base.Add(time.Duration(i)*time.Hour))
		}
	}
}
