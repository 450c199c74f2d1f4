package heatmap

import (
	"fmt"
	"image"
	"math"
	"os"

	"github.com/fogleman/gg"

	"github.com/pspoerri/geotiff2geojson/internal/encode"
	"github.com/pspoerri/geotiff2geojson/internal/vector"
)

const (
	previewMargin = 20.0
	legendHeight  = 40.0
)

// RenderPreview draws all features onto a white canvas. Longitudes are
// scaled by the cosine of the center latitude so cells keep their shape.
func RenderPreview(collections []*vector.Collection, opts Options) (image.Image, error) {
	opts = opts.withDefaults()
	b, ok := Bound(collections)
	if !ok {
		return nil, ErrNoFeatures
	}

	w, h := float64(opts.Width), float64(opts.Height)
	plotW := w - 2*previewMargin
	plotH := h - 2*previewMargin - legendHeight

	kx := math.Cos(b.Center()[1] * math.Pi / 180)
	spanX := (b.Max[0] - b.Min[0]) * kx
	spanY := b.Max[1] - b.Min[1]
	scale := math.Min(plotW/spanX, plotH/spanY)
	if math.IsInf(scale, 0) || math.IsNaN(scale) || scale <= 0 {
		scale = 1
	}
	offX := previewMargin + (plotW-spanX*scale)/2
	offY := previewMargin + (plotH-spanY*scale)/2
	toPixel := func(lon, lat float64) (float64, float64) {
		return offX + (lon-b.Min[0])*kx*scale, offY + (b.Max[1]-lat)*scale
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetLineWidth(1)

	for _, c := range collections {
		for _, f := range c.Features {
			if len(f.Geometry) == 0 {
				continue
			}
			for i, pt := range f.Geometry[0] {
				x, y := toPixel(pt[0], pt[1])
				if i == 0 {
					dc.MoveTo(x, y)
				} else {
					dc.LineTo(x, y)
				}
			}
			dc.ClosePath()
			col := opts.Scale.At(f.Value)
			dc.SetRGBA255(int(col.R), int(col.G), int(col.B), int(math.Round(FillOpacity*255)))
			dc.FillPreserve()
			dc.SetRGB(0, 0, 0)
			dc.Stroke()
		}
	}

	drawLegend(dc, opts, w, h)
	return dc.Image(), nil
}

func drawLegend(dc *gg.Context, opts Options, w, h float64) {
	barW := math.Min(300, w-2*previewMargin)
	x0 := w - previewMargin - barW
	y0 := h - previewMargin - legendHeight/2
	for i := 0; i < int(barW); i++ {
		v := opts.Scale.Min + (opts.Scale.Max-opts.Scale.Min)*float64(i)/barW
		c := opts.Scale.At(v)
		dc.SetRGB255(int(c.R), int(c.G), int(c.B))
		dc.DrawRectangle(x0+float64(i), y0, 1, 10)
		dc.Fill()
	}
	dc.SetRGB(0, 0, 0)
	dc.DrawString(fmt.Sprintf("%g", opts.Scale.Min), x0, y0+22)
	dc.DrawStringAnchored(fmt.Sprintf("%g", opts.Scale.Max), x0+barW, y0+22, 1, 0)
	dc.DrawStringAnchored(opts.Property, x0, y0-4, 0, 0)
}

// WritePreview renders a preview and encodes it in the format implied by
// path's extension.
func WritePreview(path string, collections []*vector.Collection, opts Options, quality int) error {
	enc, err := encode.ForPath(path, quality)
	if err != nil {
		return err
	}
	img, err := RenderPreview(collections, opts)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := enc.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("encoding preview %s: %w", path, err)
	}
	return f.Close()
}
