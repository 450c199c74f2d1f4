// Package hexbin groups point samples into discrete global grid cells:
// H3 hexagons or S2 cells.
package hexbin

import (
	"errors"
	"fmt"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/uber/h3-go/v3"
)

var (
	// ErrResolution is returned for an out-of-range H3 resolution or S2 level.
	ErrResolution = errors.New("invalid cell resolution")
	// ErrUnknownSystem is returned by New for an unknown grid system name.
	ErrUnknownSystem = errors.New("unknown grid system")
)

// Binner assigns WGS84 points to cells and outlines cells as polygons.
type Binner interface {
	// Cell returns the id of the cell containing (lon, lat).
	Cell(lon, lat float64) string
	// Boundary returns the closed outline of a cell in lon/lat.
	Boundary(cell string) orb.Ring
	// Name identifies the grid system and resolution, e.g. "h3:8".
	Name() string
}

// New returns a binner for system "h3" or "s2".
func New(system string, resolution int) (Binner, error) {
	switch system {
	case "h3":
		return NewH3(resolution)
	case "s2":
		return NewS2(resolution)
	}
	return nil, fmt.Errorf("%q: %w", system, ErrUnknownSystem)
}

// H3 bins into Uber H3 hexagons.
type H3 struct {
	res int
}

// NewH3 returns an H3 binner for resolution 0..15.
func NewH3(res int) (*H3, error) {
	if res < 0 || res > 15 {
		return nil, fmt.Errorf("h3 resolution %d: %w", res, ErrResolution)
	}
	return &H3{res: res}, nil
}

func (b *H3) Name() string { return fmt.Sprintf("h3:%d", b.res) }

func (b *H3) Cell(lon, lat float64) string {
	return h3.ToString(h3.FromGeo(h3.GeoCoord{Latitude: lat, Longitude: lon}, b.res))
}

func (b *H3) Boundary(cell string) orb.Ring {
	boundary := h3.ToGeoBoundary(h3.FromString(cell))
	ring := make(orb.Ring, 0, len(boundary)+1)
	for _, c := range boundary {
		ring = append(ring, orb.Point{c.Longitude, c.Latitude})
	}
	if len(ring) > 0 {
		ring = append(ring, ring[0])
	}
	return ring
}

// S2 bins into Google S2 cells.
type S2 struct {
	level int
}

// NewS2 returns an S2 binner for level 0..30.
func NewS2(level int) (*S2, error) {
	if level < 0 || level > s2.MaxLevel {
		return nil, fmt.Errorf("s2 level %d: %w", level, ErrResolution)
	}
	return &S2{level: level}, nil
}

func (b *S2) Name() string { return fmt.Sprintf("s2:%d", b.level) }

func (b *S2) Cell(lon, lat float64) string {
	return s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lon)).Parent(b.level).ToToken()
}

func (b *S2) Boundary(cell string) orb.Ring {
	c := s2.CellFromCellID(s2.CellIDFromToken(cell))
	ring := make(orb.Ring, 0, 5)
	for k := 0; k < 4; k++ {
		ll := s2.LatLngFromPoint(c.Vertex(k))
		ring = append(ring, orb.Point{ll.Lng.Degrees(), ll.Lat.Degrees()})
	}
	return append(ring, ring[0])
}
