package coord

import (
	"fmt"
	"math"
)

// Affine maps pixel coordinates (col, row) to ground coordinates in the
// raster's CRS using the GDAL/rasterio convention:
//
//	x = A*col + B*row + C
//	y = D*col + E*row + F
//
// For a north-up raster B and D are zero and E is negative.
type Affine struct {
	A, B, C float64
	D, E, F float64
}

// NorthUp builds the affine transform of an unrotated raster whose upper-left
// pixel corner sits at (originX, originY). Pixel sizes are positive.
func NorthUp(originX, originY, pixelSizeX, pixelSizeY float64) Affine {
	return Affine{
		A: pixelSizeX, C: originX,
		E: -pixelSizeY, F: originY,
	}
}

// Apply returns the ground coordinate of pixel position (col, row).
// Integer positions address pixel corners, not centers.
func (t Affine) Apply(col, row float64) (x, y float64) {
	x = t.A*col + t.B*row + t.C
	y = t.D*col + t.E*row + t.F
	return
}

// Translate returns a transform whose pixel (0,0) is pixel (col,row) of t.
func (t Affine) Translate(col, row float64) Affine {
	x, y := t.Apply(col, row)
	t.C, t.F = x, y
	return t
}

// IsRotated reports whether the transform has rotation or shear terms.
func (t Affine) IsRotated() bool {
	return t.B != 0 || t.D != 0
}

// PixelSize returns the absolute ground size of one pixel along each axis.
func (t Affine) PixelSize() (sx, sy float64) {
	return math.Hypot(t.A, t.D), math.Hypot(t.B, t.E)
}

// Invert returns the transform mapping ground coordinates back to pixels.
func (t Affine) Invert() (Affine, error) {
	det := t.A*t.E - t.B*t.D
	if det == 0 {
		return Affine{}, fmt.Errorf("affine transform is not invertible: %+v", t)
	}
	inv := Affine{
		A: t.E / det, B: -t.B / det,
		D: -t.D / det, E: t.A / det,
	}
	inv.C = -(inv.A*t.C + inv.B*t.F)
	inv.F = -(inv.D*t.C + inv.E*t.F)
	return inv, nil
}

func (t Affine) String() string {
	return fmt.Sprintf("| %g, %g, %g|\n| %g, %g, %g|", t.A, t.B, t.C, t.D, t.E, t.F)
}
