// Package quadrant tracks which parts of a 2x2 mosaic of rasters have
// already been emitted, so that overlapping edges are written only once.
package quadrant

import (
	"errors"
	"fmt"
)

// ErrUnknown is returned when parsing a name that is not a quadrant tag.
var ErrUnknown = errors.New("unknown quadrant")

// Quadrant is one tile of the 2x2 mosaic.
type Quadrant int

const (
	UpperLeft Quadrant = iota
	UpperRight
	LowerLeft
	LowerRight
)

// Order is the fixed processing order. Coverage decisions depend on it.
var Order = [...]Quadrant{UpperLeft, UpperRight, LowerLeft, LowerRight}

var names = [...]string{"upper_left", "upper_right", "lower_left", "lower_right"}

// String returns the quadrant's tag, which is also its input directory name.
func (q Quadrant) String() string {
	if q < UpperLeft || q > LowerRight {
		return fmt.Sprintf("Quadrant(%d)", int(q))
	}
	return names[q]
}

// Parse returns the quadrant named by tag.
func Parse(tag string) (Quadrant, error) {
	for i, n := range names {
		if n == tag {
			return Quadrant(i), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", tag, ErrUnknown)
}

// Extent is an axis-aligned box in source CRS ground coordinates.
type Extent struct {
	LonMin, LonMax float64
	LatMin, LatMax float64
}
