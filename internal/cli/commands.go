package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pspoerri/geotiff2geojson/internal/config"
	"github.com/pspoerri/geotiff2geojson/internal/heatmap"
	"github.com/pspoerri/geotiff2geojson/internal/pipeline"
	"github.com/pspoerri/geotiff2geojson/internal/quadrant"
)

func (a *app) fuseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fuse <input-dir>",
		Short: "Average four overlapping quadrant series into non-overlapping shade grids",
		Long: fmt.Sprintf(`fuse reads the shade series in the %s, %s, %s and %s
subdirectories of input-dir, averages each into blocks and writes
<quadrant>_average_shade.json. Cells already covered by an earlier quadrant
are left out.`, quadrant.UpperLeft, quadrant.UpperRight, quadrant.LowerLeft, quadrant.LowerRight),
		Args: cobra.ExactArgs(1),
	}
	c := a.newConfig(cmd, config.FusedOptions)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		logger, err := a.setup(cmd, c)
		if err != nil {
			return err
		}
		cfg := c.Fused(args[0], cmd.ErrOrStderr(), logger)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "geotiff2geojson %s\n", a.build)
		setting(out, "Input", cfg.InputDir)
		setting(out, "Output", cfg.OutputDir)
		setting(out, "Block size", fmt.Sprintf("%dx%d px", cfg.BlockSize, cfg.BlockSize))
		setting(out, "Property", cfg.Property)

		res, err := pipeline.RunFused(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		report(out, res)
		return nil
	}
	return cmd
}

func (a *app) areaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "area <input-dir>",
		Short: "Average one area's daytime shade series",
		Long: `area averages every <area>_<time>.tif in input-dir into blocks, writes
<area>_<n>-hours.json and a shade histogram per input file.`,
		Args: cobra.ExactArgs(1),
	}
	c := a.newConfig(cmd, config.AreaOptions)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		logger, err := a.setup(cmd, c)
		if err != nil {
			return err
		}
		cfg := c.Area(args[0], cmd.ErrOrStderr(), logger)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "geotiff2geojson %s\n", a.build)
		setting(out, "Area", cfg.Area)
		setting(out, "Block size", fmt.Sprintf("%dx%d px", cfg.BlockSize, cfg.BlockSize))

		res, err := pipeline.RunArea(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		report(out, res)
		if cfg.HistogramDir != "" {
			fmt.Fprintf(out, "Histograms have been saved in %s\n", cfg.HistogramDir)
		}
		return nil
	}
	return cmd
}

func (a *app) convertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <file.tif>",
		Short: "Convert a raster into pooled GeoJSON cells",
		Args:  cobra.ExactArgs(1),
	}
	c := a.newConfig(cmd, config.ConvertOptions)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		logger, err := a.setup(cmd, c)
		if err != nil {
			return err
		}
		res, err := pipeline.RunConvert(cmd.Context(), c.Convert(args[0], logger))
		if err != nil {
			return err
		}
		report(cmd.OutOrStdout(), res)
		return nil
	}
	return cmd
}

func (a *app) hexbinCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hexbin <points.csv|features.geojson>",
		Short: "Bin point samples or grid cells into H3 or S2 cells",
		Args:  cobra.ExactArgs(1),
	}
	c := a.newConfig(cmd, config.HexbinOptions)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		logger, err := a.setup(cmd, c)
		if err != nil {
			return err
		}
		res, err := pipeline.RunHexbin(cmd.Context(), c.Hexbin(args[0], logger))
		if err != nil {
			return err
		}
		report(cmd.OutOrStdout(), res)
		return nil
	}
	return cmd
}

func (a *app) heatmapCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "heatmap <file.geojson>...",
		Short: "Render shade grids as an interactive heatmap page",
		Long: `heatmap loads one or more GeoJSON grids, reprojects them to WGS84 and writes
a Leaflet page coloring every cell from blue (0) through green and yellow to
red (1). --preview additionally renders a static image.`,
		Args: cobra.MinimumNArgs(1),
	}
	c := a.newConfig(cmd, config.HeatmapOptions)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		logger, err := a.setup(cmd, c)
		if err != nil {
			return err
		}
		start := time.Now()
		opts := heatmap.Options{
			Title:    c.String(config.KeyTitle),
			Property: c.String(config.KeyProperty),
			Zoom:     c.Int(config.KeyZoom),
		}
		collections, err := heatmap.Load(opts.Property, logger, args...)
		if err != nil {
			return err
		}

		path := c.String(config.KeyOutput)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := heatmap.WriteHTML(f, collections, opts); err != nil {
			f.Close()
			os.Remove(path)
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		logger.WithField("path", path).Info("Wrote heatmap page")

		if preview := c.String(config.KeyPreview); preview != "" {
			if err := heatmap.WritePreview(preview, collections, opts, c.Int(config.KeyQuality)); err != nil {
				return err
			}
			logger.WithField("path", preview).Info("Wrote heatmap preview")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Done: %d layer(s), %v → %s\n",
			len(collections), time.Since(start).Round(time.Millisecond), path)
		return nil
	}
	return cmd
}

// report prints one line per written or skipped output and the summary.
func report(w io.Writer, res *pipeline.Result) {
	var features int
	for _, o := range res.Outputs {
		features += o.Features
		if o.Path == "" {
			fmt.Fprintf(w, "  %-14s no cells emitted (%d covered)\n", o.Name+":", o.Skipped)
			continue
		}
		size := "?"
		if fi, err := os.Stat(o.Path); err == nil {
			size = humanSize(fi.Size())
		}
		fmt.Fprintf(w, "  %-14s %d polygons, %s → %s\n", o.Name+":", o.Features, size, o.Path)
	}
	if d := res.Distribution; d != nil {
		fmt.Fprintf(w, "Shade fraction distribution:\n")
		for _, p := range d.Percentiles {
			fmt.Fprintf(w, "  %3gth percentile: %.4f\n", p.Level, p.Value)
		}
		fmt.Fprintf(w, "  Mean: %.4f, standard deviation: %.4f\n", d.Mean, d.StdDev)
	}
	fmt.Fprintf(w, "Done: %d polygons from %d period(s), %v\n",
		features, res.Periods, res.Elapsed.Round(time.Millisecond))
}

func humanSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
