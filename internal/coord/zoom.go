package coord

import "math"

// DefaultZoom is used when bounds are degenerate.
const DefaultZoom = 13

// ZoomForBounds estimates a web map zoom level that fits the WGS84 bounds
// in a viewport of widthPx pixels. The result is clamped to [1, 18].
func ZoomForBounds(minLon, minLat, maxLon, maxLat float64, widthPx int) int {
	span := math.Max(maxLon-minLon, maxLat-minLat)
	if !(span > 0) || math.IsInf(span, 0) || widthPx <= 0 {
		return DefaultZoom
	}
	// At zoom z the world is 256·2^z pixels wide.
	z := int(math.Floor(math.Log2(360.0 * float64(widthPx) / (256.0 * span))))
	if z < 1 {
		z = 1
	}
	if z > 18 {
		z = 18
	}
	return z
}
