package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pspoerri/geotiff2geojson/internal/grid"
	"github.com/pspoerri/geotiff2geojson/internal/stats"
	"github.com/pspoerri/geotiff2geojson/internal/vector"
)

// AreaProperty is the property of the single-area pipeline's features.
const AreaProperty = "shade_fraction"

// AreaConfig configures RunArea.
type AreaConfig struct {
	// InputDir holds the series files <Area>_<time>.tif[f].
	InputDir  string
	Area      string
	OutputDir string
	BlockSize int
	MaxValue  float64
	Property  string
	Invert    bool
	// SourceEPSG overrides the CRS read from the rasters when non-zero.
	SourceEPSG int
	Reproject  bool
	// HistogramDir receives one histogram per input file; empty disables
	// them.
	HistogramDir string
	Progress     io.Writer
	Logger       logrus.FieldLogger
}

// DefaultAreaConfig returns the settings of the daytime series workflow.
func DefaultAreaConfig() AreaConfig {
	return AreaConfig{
		BlockSize:    10,
		MaxValue:     DefaultMaxValue,
		Property:     AreaProperty,
		HistogramDir: "histograms",
	}
}

// AreaOutputName returns the file name of an area's averaged grid.
func AreaOutputName(area string, hours int) string {
	return fmt.Sprintf("%s_%d-hours.json", area, hours)
}

// RunArea averages the daytime series of one area into blocks and writes
// every cell. A shade histogram is written per input file.
func RunArea(ctx context.Context, cfg AreaConfig) (*Result, error) {
	logger := loggerOrDefault(cfg.Logger).WithField("area", cfg.Area)
	if cfg.BlockSize <= 0 {
		return nil, fmt.Errorf("block size %d: %w", cfg.BlockSize, grid.ErrBlockSize)
	}
	if cfg.MaxValue <= 0 {
		return nil, fmt.Errorf("max value %g: %w", cfg.MaxValue, grid.ErrMaxValue)
	}
	if cfg.Area == "" {
		return nil, fmt.Errorf("area name is empty: %w", ErrMissingInput)
	}
	if cfg.Property == "" {
		cfg.Property = AreaProperty
	}
	start := time.Now()

	files, err := listTIFFs(cfg.InputDir, cfg.Area+"_")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("area %s in %s: %w", cfg.Area, cfg.InputDir, ErrMissingInput)
	}
	if cfg.HistogramDir != "" {
		if err := os.MkdirAll(cfg.HistogramDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating histogram directory: %w", err)
		}
	}
	logger.WithFields(logrus.Fields{"block_size": cfg.BlockSize, "periods": len(files)}).Info("Processing area")

	var pb *progressBar
	if cfg.Progress != nil {
		pb = newProgressBar(cfg.Progress, "Aggregating", len(files))
	}
	defer pb.Finish()

	perHour := func(path string, g *grid.Grid) error {
		if cfg.HistogramDir == "" {
			return nil
		}
		tod := timeOfDay(path)
		out := filepath.Join(cfg.HistogramDir, fmt.Sprintf("%s_%s_histogram.png", cfg.Area, tod))
		title := fmt.Sprintf("Shade Fraction Distribution - %s at %s", cfg.Area, tod)
		if err := stats.WriteHistogram(g.Invert().Values(), title, "Shade Fraction", out); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		logger.WithField("path", out).Debug("Wrote histogram")
		return nil
	}
	s, err := aggregateSeries(ctx, files, cfg.BlockSize, cfg.MaxValue, pb, logger, perHour)
	if err != nil {
		return nil, err
	}
	epsg := resolveEPSG(s.epsg, cfg.SourceEPSG, logger)

	c, err := vector.ConvertGrid(s.mean, s.transform, cfg.BlockSize, vector.Options{
		Property: cfg.Property, Invert: cfg.Invert, EPSG: epsg,
	})
	if err != nil {
		return nil, err
	}
	res := &Result{Periods: len(files)}
	out := Output{Name: cfg.Area, Features: c.Len(), Skipped: c.Skipped}
	if c.Len() == 0 {
		logger.Info("No cells to write; no output written")
		res.Outputs = append(res.Outputs, out)
		res.Elapsed = time.Since(start)
		return res, nil
	}
	shades := shadeValues(c, cfg.Invert)

	if cfg.Reproject {
		if c, err = reprojectTo4326(c); err != nil {
			return nil, err
		}
	}
	out.Path = filepath.Join(cfg.OutputDir, AreaOutputName(cfg.Area, len(files)))
	if err := vector.WriteFile(out.Path, c); err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{"path": out.Path, "features": out.Features}).
		Info("Created GeoJSON with average shade fractions")
	res.Outputs = append(res.Outputs, out)

	if err := summarise(res, shades, "", "", logger); err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)
	return res, nil
}
