package main

import (
	"fmt"
	"os"

	"github.com/pspoerri/geotiff2geojson/internal/coord"
	"github.com/pspoerri/geotiff2geojson/internal/geotiff"
	"github.com/pspoerri/geotiff2geojson/internal/grid"
	"github.com/pspoerri/geotiff2geojson/internal/stats"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: rasterinfo <file.tif>\n")
		os.Exit(1)
	}

	r, err := geotiff.Read(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("File: %s\n", r.Path)
	fmt.Printf("EPSG: %d\n", r.EPSG)
	fmt.Printf("Size: %d x %d\n", r.Width, r.Height)
	fmt.Printf("Samples: %s, %d bit\n", r.Format, r.Bits)
	fmt.Printf("Overviews: %d\n", r.Overviews)
	sx, sy := r.Transform.PixelSize()
	fmt.Printf("Pixel size (CRS units): %f x %f\n", sx, sy)
	fmt.Printf("Transform:\n%s\n", r.Transform)
	if inv, err := r.Transform.Invert(); err == nil {
		fmt.Printf("Inverse transform:\n%s\n", inv)
	}
	if nd, ok := r.NoData(); ok {
		fmt.Printf("NoData: %g\n", nd)
	}

	minX, minY, maxX, maxY := r.Bounds()
	fmt.Printf("Bounds (CRS): X=[%f, %f], Y=[%f, %f]\n", minX, maxX, minY, maxY)
	if proj, err := coord.ForEPSG(r.EPSG); err == nil {
		if p, ok := proj.(*coord.Proj4); ok {
			fmt.Printf("Projection: %s\n", p.Definition())
		}
		lon0, lat0 := proj.ToWGS84(minX, minY)
		lon1, lat1 := proj.ToWGS84(maxX, maxY)
		fmt.Printf("Bounds (WGS84): lon [%.6f, %.6f], lat [%.6f, %.6f]\n", lon0, lon1, lat0, lat1)
	} else {
		fmt.Printf("Bounds (WGS84): %v\n", err)
	}

	// Per-pixel pooling leaves every valid sample and turns nodata into NaN.
	g, err := grid.Pool(r, 1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	d, err := stats.Summarise(g.Values())
	if err != nil {
		fmt.Printf("Values: %v\n", err)
		return
	}
	fmt.Printf("Values: %s\n", d)
}
