package coord

import (
	"fmt"
	"math"

	"github.com/ctessum/geom/proj"
)

const wgs84LonLat = "+proj=longlat +datum=WGS84 +no_defs"

// Proj4 is a Projection backed by a proj4 definition string.
type Proj4 struct {
	def     string
	epsg    int
	toWGS   proj.Transformer
	fromWGS proj.Transformer
}

// NewProj4 parses a proj4 definition and prepares transforms to and from
// WGS84. epsg is reported by EPSG() and may be 0 for custom definitions.
func NewProj4(def string, epsg int) (*Proj4, error) {
	src, err := proj.Parse(def)
	if err != nil {
		return nil, fmt.Errorf("parse proj4 %q: %w", def, err)
	}
	dst, err := proj.Parse(wgs84LonLat)
	if err != nil {
		return nil, fmt.Errorf("parse proj4 %q: %w", wgs84LonLat, err)
	}
	to, err := src.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("transform %q -> WGS84: %w", def, err)
	}
	from, err := dst.NewTransform(src)
	if err != nil {
		return nil, fmt.Errorf("transform WGS84 -> %q: %w", def, err)
	}
	return &Proj4{def: def, epsg: epsg, toWGS: to, fromWGS: from}, nil
}

// NewUTM returns the WGS84 UTM projection for zone 1..60.
func NewUTM(zone int, south bool) (*Proj4, error) {
	if zone < 1 || zone > 60 {
		return nil, fmt.Errorf("UTM zone %d: %w", zone, ErrUnsupportedCRS)
	}
	def := fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", zone)
	epsg := 32600 + zone
	if south {
		def = fmt.Sprintf("+proj=utm +zone=%d +south +datum=WGS84 +units=m +no_defs", zone)
		epsg = 32700 + zone
	}
	return NewProj4(def, epsg)
}

func (p *Proj4) EPSG() int { return p.epsg }

// Definition returns the proj4 string the projection was built from.
func (p *Proj4) Definition() string { return p.def }

func (p *Proj4) ToWGS84(x, y float64) (lon, lat float64) {
	lon, lat, err := p.toWGS(x, y)
	if err != nil {
		return math.NaN(), math.NaN()
	}
	return lon, lat
}

func (p *Proj4) FromWGS84(lon, lat float64) (x, y float64) {
	x, y, err := p.fromWGS(lon, lat)
	if err != nil {
		return math.NaN(), math.NaN()
	}
	return x, y
}
