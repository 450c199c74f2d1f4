package heatmap

import (
	"fmt"
	"image/color"
	"math"
)

// Scale maps values in [Min, Max] onto evenly spaced color stops.
type Scale struct {
	Min, Max float64
	Stops    []color.RGBA
}

// ShadeScale runs blue, green, yellow, red over [0, 1].
var ShadeScale = Scale{
	Min: 0,
	Max: 1,
	Stops: []color.RGBA{
		{R: 0, G: 0, B: 255, A: 255},
		{R: 0, G: 128, B: 0, A: 255},
		{R: 255, G: 255, B: 0, A: 255},
		{R: 255, G: 0, B: 0, A: 255},
	},
}

// At interpolates the color of v. Values outside the range are clamped and
// NaN maps to the first stop.
func (s Scale) At(v float64) color.RGBA {
	n := len(s.Stops)
	if n == 1 {
		return s.Stops[0]
	}
	t := (v - s.Min) / (s.Max - s.Min)
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	pos := t * float64(n-1)
	i := int(math.Floor(pos))
	if i >= n-1 {
		return s.Stops[n-1]
	}
	f := pos - float64(i)
	a, b := s.Stops[i], s.Stops[i+1]
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*f))
	}
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 255}
}

// Hex formats c as a CSS color.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// hexStops lists the stops as CSS colors for the page script.
func (s Scale) hexStops() []string {
	out := make([]string, len(s.Stops))
	for i, c := range s.Stops {
		out[i] = Hex(c)
	}
	return out
}
