package coord

import (
	"errors"
	"fmt"
)

// ErrUnsupportedCRS is returned when no projection is known for an EPSG code.
var ErrUnsupportedCRS = errors.New("unsupported CRS")

// Projection converts between a raster's ground CRS and WGS84.
type Projection interface {
	// ToWGS84 converts source CRS coordinates to WGS84 longitude/latitude (degrees).
	// Points outside the projection's domain come back as NaN.
	ToWGS84(x, y float64) (lon, lat float64)

	// FromWGS84 converts WGS84 longitude/latitude (degrees) to source CRS coordinates.
	FromWGS84(lon, lat float64) (x, y float64)

	// EPSG returns the EPSG code for this projection.
	EPSG() int
}

// ForEPSG returns a Projection for the given EPSG code. WGS84, Web Mercator
// and Swiss LV95 use closed-form formulas; WGS84 UTM zones (326xx north,
// 327xx south) go through proj4.
func ForEPSG(epsg int) (Projection, error) {
	switch {
	case epsg == 4326:
		return &WGS84Identity{}, nil
	case epsg == 3857:
		return &WebMercatorProj{}, nil
	case epsg == 2056:
		return &SwissLV95{}, nil
	case epsg > 32600 && epsg <= 32660:
		return NewUTM(epsg-32600, false)
	case epsg > 32700 && epsg <= 32760:
		return NewUTM(epsg-32700, true)
	}
	return nil, fmt.Errorf("EPSG:%d: %w", epsg, ErrUnsupportedCRS)
}

// IsGeographic reports whether the EPSG code is plain WGS84 lon/lat.
func IsGeographic(epsg int) bool { return epsg == 4326 }

// WGS84Identity is a no-op projection for data already in EPSG:4326.
type WGS84Identity struct{}

func (w *WGS84Identity) ToWGS84(x, y float64) (lon, lat float64) { return x, y }
func (w *WGS84Identity) FromWGS84(lon, lat float64) (x, y float64) { return lon, lat }
func (w *WGS84Identity) EPSG() int { return 4326 }
