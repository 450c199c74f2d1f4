package geotiff

import (
	"fmt"

	"github.com/pspoerri/geotiff2geojson/internal/coord"
)

// GeoKey IDs.
const (
	gkModelType        = 1024
	gkRasterType       = 1025
	gkGeographicType   = 2048
	gkProjectedCSType  = 3072
	rasterPixelIsPoint = 2
	userDefinedKey     = 32767
)

// geoReference derives the pixel-corner affine transform and EPSG code from
// the GeoTIFF tags of ifd. ok is false when the tags carry no placement.
func geoReference(ifd *IFD) (t coord.Affine, epsg int, ok bool, err error) {
	keys := geoKeyValues(ifd.GeoKeys)
	epsg = epsgFromKeys(keys)

	switch {
	case len(ifd.ModelTransformation) >= 16:
		m := ifd.ModelTransformation
		t = coord.Affine{A: m[0], B: m[1], C: m[3], D: m[4], E: m[5], F: m[7]}
	case len(ifd.ModelTiepoint) >= 6 && len(ifd.ModelPixelScale) >= 2:
		sx, sy := ifd.ModelPixelScale[0], ifd.ModelPixelScale[1]
		if sx == 0 || sy == 0 {
			return t, epsg, false, fmt.Errorf("zero pixel scale: %w", ErrCorrupt)
		}
		i, j := ifd.ModelTiepoint[0], ifd.ModelTiepoint[1]
		x, y := ifd.ModelTiepoint[3], ifd.ModelTiepoint[4]
		t = coord.NorthUp(x-i*sx, y+j*sy, sx, sy)
	default:
		return t, epsg, false, nil
	}

	// PixelIsPoint tiepoints address pixel centers; shift to corners.
	if keys[gkRasterType] == rasterPixelIsPoint {
		t = t.Translate(-0.5, -0.5)
	}
	return t, epsg, true, nil
}

// geoKeyValues maps key IDs to their inline SHORT values. Keys stored in
// the double or ASCII parameter tags are skipped; none of the keys used
// here live there.
func geoKeyValues(dir []uint16) map[uint16]uint16 {
	out := make(map[uint16]uint16)
	if len(dir) < 4 {
		return out
	}
	n := int(dir[3])
	for i := 0; i < n; i++ {
		base := 4 + i*4
		if base+3 >= len(dir) {
			break
		}
		if location := dir[base+1]; location != 0 {
			continue
		}
		out[dir[base]] = dir[base+3]
	}
	return out
}

func epsgFromKeys(keys map[uint16]uint16) int {
	for _, k := range []uint16{gkProjectedCSType, gkGeographicType} {
		if v, ok := keys[k]; ok && v > 0 && v != userDefinedKey {
			return int(v)
		}
	}
	return 0
}
