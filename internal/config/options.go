package config

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/pspoerri/geotiff2geojson/internal/pipeline"
)

// Configuration keys.
const (
	KeyConfig     = "config"
	KeyVerbose    = "verbose"
	KeyDebug      = "debug"
	KeyOutputDir  = "output-dir"
	KeyBlockSize  = "block-size"
	KeyMaxValue   = "max-value"
	KeyProperty   = "property"
	KeyInvert     = "invert"
	KeySourceEPSG = "source-epsg"
	KeyReproject  = "reproject"
	KeyHistogram  = "histogram"
	KeyProgress   = "progress"
	KeyArea       = "area"
	KeyPoolSize   = "pool-size"
	KeyOutput     = "output"
	KeyKeepCRS    = "keep-crs"
	KeySystem     = "system"
	KeyResolution = "resolution"
	KeyLonColumn  = "lon-column"
	KeyLatColumn  = "lat-column"
	KeyValueCol   = "value-column"
	KeyTitle      = "title"
	KeyPreview    = "preview"
	KeyQuality    = "quality"
	KeyZoom       = "zoom"
)

// GlobalOptions apply to every command.
var GlobalOptions = []Option{
	{Name: KeyConfig, Default: "", Usage: "configuration file (toml, yaml or json)"},
	{Name: KeyVerbose, Shorthand: "v", Default: false, Usage: "log progress at info level"},
	{Name: KeyDebug, Default: false, Usage: "log at debug level"},
}

func shadeOptions(property string, blockSize int, invert bool, histogram string) []Option {
	return []Option{
		{Name: KeyOutputDir, Shorthand: "o", Default: ".", Usage: "directory for the GeoJSON output"},
		{Name: KeyBlockSize, Shorthand: "b", Default: blockSize, Usage: "block edge in pixels"},
		{Name: KeyMaxValue, Default: float64(pipeline.DefaultMaxValue), Usage: "pixel value of a fully sunlit pixel"},
		{Name: KeyProperty, Default: property, Usage: "name of the value property"},
		{Name: KeyInvert, Default: invert, Usage: "emit the shaded fraction 1-G instead of the unshaded fraction G"},
		{Name: KeySourceEPSG, Default: 0, Usage: "override the raster CRS (EPSG code, 0 keeps the file's)"},
		{Name: KeyReproject, Default: false, Usage: "write WGS84 coordinates"},
		{Name: KeyHistogram, Default: histogram, Usage: "histogram output (empty disables)"},
		{Name: KeyProgress, Default: false, Usage: "show a progress bar"},
	}
}

// FusedOptions configure the fuse command.
var FusedOptions = shadeOptions(pipeline.FusedProperty, pipeline.DefaultBlockSize, true, "")

// AreaOptions configure the area command. Its histogram option names a
// directory.
var AreaOptions = append(shadeOptions(pipeline.AreaProperty, 10, false, "histograms"),
	Option{Name: KeyArea, Shorthand: "a", Default: "", Usage: "area name; input files are <area>_*.tif"},
)

// ConvertOptions configure the convert command.
var ConvertOptions = []Option{
	{Name: KeyOutput, Shorthand: "o", Default: "", Usage: "output GeoJSON (default: input with .geojson extension)"},
	{Name: KeyPoolSize, Shorthand: "p", Default: 1, Usage: "pool blocks of this many pixels per edge"},
	{Name: KeyProperty, Default: pipeline.RasterProperty, Usage: "name of the value property"},
	{Name: KeySourceEPSG, Default: 0, Usage: "override the raster CRS (EPSG code, 0 keeps the file's)"},
	{Name: KeyKeepCRS, Default: false, Usage: "keep the raster CRS instead of reprojecting to WGS84"},
}

// HexbinOptions configure the hexbin command.
var HexbinOptions = []Option{
	{Name: KeyOutput, Shorthand: "o", Default: "", Usage: "output GeoJSON"},
	{Name: KeySystem, Default: "h3", Usage: "grid system: h3 or s2"},
	{Name: KeyResolution, Shorthand: "r", Default: 8, Usage: "H3 resolution or S2 level"},
	{Name: KeyLonColumn, Default: "longitude", Usage: "CSV longitude column"},
	{Name: KeyLatColumn, Default: "latitude", Usage: "CSV latitude column"},
	{Name: KeyValueCol, Default: "price", Usage: "CSV value column"},
	{Name: KeyProperty, Default: "", Usage: "GeoJSON input property (default: the value column)"},
}

// HeatmapOptions configure the heatmap command.
var HeatmapOptions = []Option{
	{Name: KeyOutput, Shorthand: "o", Default: "shade_heatmap.html", Usage: "output HTML page"},
	{Name: KeyProperty, Default: pipeline.FusedProperty, Usage: "property to color by"},
	{Name: KeyTitle, Default: "Shade heatmap", Usage: "page title"},
	{Name: KeyZoom, Default: 0, Usage: "initial zoom (0 estimates it from the data)"},
	{Name: KeyPreview, Default: "", Usage: "also render a static preview image (png, jpg or webp)"},
	{Name: KeyQuality, Default: 85, Usage: "JPEG/WebP preview quality 1-100"},
}

// LogLevel returns the level selected by the debug and verbose keys.
func (c *Config) LogLevel() logrus.Level {
	switch {
	case c.Bool(KeyDebug):
		return logrus.DebugLevel
	case c.Bool(KeyVerbose):
		return logrus.InfoLevel
	}
	return logrus.WarnLevel
}

// Fused returns the fuse command's settings for inputDir.
func (c *Config) Fused(inputDir string, progress io.Writer, logger logrus.FieldLogger) pipeline.FusedConfig {
	cfg := pipeline.DefaultFusedConfig()
	cfg.InputDir = inputDir
	cfg.OutputDir = c.String(KeyOutputDir)
	cfg.BlockSize = c.Int(KeyBlockSize)
	cfg.MaxValue = c.Float(KeyMaxValue)
	cfg.Property = c.String(KeyProperty)
	cfg.Invert = c.Bool(KeyInvert)
	cfg.SourceEPSG = c.Int(KeySourceEPSG)
	cfg.Reproject = c.Bool(KeyReproject)
	cfg.Histogram = c.String(KeyHistogram)
	if c.Bool(KeyProgress) {
		cfg.Progress = progress
	}
	cfg.Logger = logger
	return cfg
}

// Area returns the area command's settings for inputDir.
func (c *Config) Area(inputDir string, progress io.Writer, logger logrus.FieldLogger) pipeline.AreaConfig {
	cfg := pipeline.DefaultAreaConfig()
	cfg.InputDir = inputDir
	cfg.Area = c.String(KeyArea)
	cfg.OutputDir = c.String(KeyOutputDir)
	cfg.BlockSize = c.Int(KeyBlockSize)
	cfg.MaxValue = c.Float(KeyMaxValue)
	cfg.Property = c.String(KeyProperty)
	cfg.Invert = c.Bool(KeyInvert)
	cfg.SourceEPSG = c.Int(KeySourceEPSG)
	cfg.Reproject = c.Bool(KeyReproject)
	cfg.HistogramDir = c.String(KeyHistogram)
	if c.Bool(KeyProgress) {
		cfg.Progress = progress
	}
	cfg.Logger = logger
	return cfg
}

// Convert returns the convert command's settings for input.
func (c *Config) Convert(input string, logger logrus.FieldLogger) pipeline.ConvertConfig {
	cfg := pipeline.DefaultConvertConfig()
	cfg.Input = input
	cfg.Output = c.String(KeyOutput)
	cfg.PoolSize = c.Int(KeyPoolSize)
	cfg.Property = c.String(KeyProperty)
	cfg.SourceEPSG = c.Int(KeySourceEPSG)
	cfg.KeepCRS = c.Bool(KeyKeepCRS)
	cfg.Logger = logger
	return cfg
}

// Hexbin returns the hexbin command's settings for input.
func (c *Config) Hexbin(input string, logger logrus.FieldLogger) pipeline.HexbinConfig {
	cfg := pipeline.DefaultHexbinConfig()
	cfg.Input = input
	cfg.Output = c.String(KeyOutput)
	cfg.System = c.String(KeySystem)
	cfg.Resolution = c.Int(KeyResolution)
	cfg.LonColumn = c.String(KeyLonColumn)
	cfg.LatColumn = c.String(KeyLatColumn)
	cfg.ValueColumn = c.String(KeyValueCol)
	cfg.Property = c.String(KeyProperty)
	cfg.Logger = logger
	return cfg
}
