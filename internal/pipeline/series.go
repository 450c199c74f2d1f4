package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pspoerri/geotiff2geojson/internal/coord"
	"github.com/pspoerri/geotiff2geojson/internal/geotiff"
	"github.com/pspoerri/geotiff2geojson/internal/grid"
	"github.com/pspoerri/geotiff2geojson/internal/vector"
)

// series is the per-cell mean of a list of aggregated rasters together with
// the georeferencing of the first raster.
type series struct {
	mean      *grid.Grid
	transform coord.Affine
	epsg      int
}

// aggregateSeries reads, aggregates and averages paths in order. Each file
// is released before the next one is read. visit, when non-nil, sees every
// aggregated grid.
func aggregateSeries(ctx context.Context, paths []string, blockSize int, maxValue float64, pb *progressBar,
	logger logrus.FieldLogger, visit func(path string, g *grid.Grid) error) (series, error) {
	var s series
	grids := make([]*grid.Grid, 0, len(paths))
	for i, p := range paths {
		if err := ctx.Err(); err != nil {
			return series{}, err
		}
		r, err := geotiff.Read(p)
		if err != nil {
			return series{}, fmt.Errorf("reading raster: %w", err)
		}
		if i == 0 {
			s.transform, s.epsg = r.Transform, r.EPSG
			if r.Transform.IsRotated() {
				logger.WithField("path", p).Warn("Raster is rotated; cells are emitted as axis-aligned boxes")
			}
		}
		g, err := grid.Aggregate(r, blockSize, maxValue)
		if err != nil {
			return series{}, fmt.Errorf("%s: %w", p, err)
		}
		logger.WithFields(logrus.Fields{
			"path": p, "width": r.Width, "height": r.Height, "rows": g.Rows(), "cols": g.Cols(),
		}).Debug("Aggregated raster")
		if visit != nil {
			if err := visit(p, g); err != nil {
				return series{}, err
			}
		}
		grids = append(grids, g)
		pb.Increment()
	}
	mean, err := grid.Mean(grids...)
	if err != nil {
		return series{}, err
	}
	s.mean = mean
	return s, nil
}

// resolveEPSG applies a configured override to the detected CRS. Without
// either the output carries no crs member and readers assume WGS84.
func resolveEPSG(detected, override int, logger logrus.FieldLogger) int {
	if override != 0 {
		return override
	}
	if detected == 0 {
		logger.Warn("Unknown source CRS; output has no crs member and will be read as WGS84 (set --source-epsg)")
	}
	return detected
}

// reprojectTo4326 returns c in WGS84, reprojecting through the built-in
// projection for its EPSG code.
func reprojectTo4326(c *vector.Collection) (*vector.Collection, error) {
	if coord.IsGeographic(c.EPSG) {
		return c, nil
	}
	proj, err := coord.ForEPSG(c.EPSG)
	if err != nil {
		return nil, err
	}
	return vector.Reproject(c, proj)
}

// shadeValues returns the shaded fraction of every feature value: the
// values themselves when they were inverted on output, their complement
// otherwise.
func shadeValues(c *vector.Collection, inverted bool) []float64 {
	values := c.Values()
	if !inverted {
		for i, v := range values {
			values[i] = 1 - v
		}
	}
	return values
}

func loggerOrDefault(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return logrus.StandardLogger()
	}
	return l
}
