package geotiff

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pspoerri/geotiff2geojson/internal/coord"
)

// readWorldFile parses a six-line ESRI world file. The file stores the
// center of the upper-left pixel; the returned transform addresses corners.
func readWorldFile(path string) (coord.Affine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return coord.Affine{}, err
	}

	fields := strings.Fields(string(data))
	if len(fields) < 6 {
		return coord.Affine{}, fmt.Errorf("world file %s: expected 6 values, got %d", path, len(fields))
	}
	var v [6]float64
	for i := range v {
		v[i], err = strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return coord.Affine{}, fmt.Errorf("world file %s line %d: %w", path, i+1, err)
		}
	}

	// Line order: A, D, B, E, C, F.
	t := coord.Affine{A: v[0], D: v[1], B: v[2], E: v[3], C: v[4], F: v[5]}
	return t.Translate(-0.5, -0.5), nil
}

// findWorldFile returns the sidecar next to a TIFF, or "" if none exists.
func findWorldFile(tiffPath string) string {
	base := strings.TrimSuffix(tiffPath, filepath.Ext(tiffPath))
	for _, ext := range []string{".tfw", ".TFW", ".tifw", ".TIFW", ".wld"} {
		if _, err := os.Stat(base + ext); err == nil {
			return base + ext
		}
	}
	return ""
}

// inferEPSG guesses the CRS of a world-file raster from its extent.
func inferEPSG(t coord.Affine, width, height int) int {
	x0, y0 := t.Apply(0, 0)
	x1, y1 := t.Apply(float64(width), float64(height))
	minX, maxX := math.Min(x0, x1), math.Max(x0, x1)
	minY, maxY := math.Min(y0, y1), math.Max(y0, y1)

	switch {
	case minX >= -180 && maxX <= 360 && minY >= -90 && maxY <= 90:
		return 4326
	case minX >= 2_400_000 && maxX <= 2_900_000 && minY >= 1_000_000 && maxY <= 1_400_000:
		return 2056
	case math.Abs(minX) <= coord.OriginShift && math.Abs(maxY) <= coord.OriginShift:
		return 3857
	}
	return 0
}
