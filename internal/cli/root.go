// Package cli builds the geotiff2geojson command tree.
package cli

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pspoerri/geotiff2geojson/internal/config"
)

// BuildInfo is set via -ldflags at build time.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", b.Version, b.Commit, b.BuildDate)
}

// app carries what every command shares.
type app struct {
	root   *cobra.Command
	build  BuildInfo
	logger *logrus.Logger
}

// NewRootCommand returns the geotiff2geojson command with all subcommands.
func NewRootCommand(build BuildInfo) *cobra.Command {
	a := &app{build: build, logger: logrus.New()}
	a.root = &cobra.Command{
		Use:   "geotiff2geojson",
		Short: "Aggregate shade rasters into GeoJSON grids",
		Long: `geotiff2geojson turns single-band GeoTIFF shade rasters into block-aggregated
GeoJSON polygon grids, binned point layers and heatmaps.

Configuration can be given as flags, in a configuration file (--config, toml,
yaml or json) or as environment variables named GEOJSON_<FLAG>, for example
GEOJSON_BLOCK_SIZE=10. Flags take precedence over the environment, which takes
precedence over the file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	a.root.AddCommand(
		a.fuseCommand(),
		a.areaCommand(),
		a.convertCommand(),
		a.hexbinCommand(),
		a.heatmapCommand(),
		a.versionCommand(),
	)
	return a.root
}

// newConfig returns a configuration bound to the global flags and to
// options on cmd's own flags.
func (a *app) newConfig(cmd *cobra.Command, options []config.Option) *config.Config {
	c := config.New()
	mustRegister(c.Register(a.root.PersistentFlags(), config.GlobalOptions...))
	mustRegister(c.Register(cmd.Flags(), options...))
	return c
}

func mustRegister(err error) {
	if err != nil {
		panic(err)
	}
}

// setup reads the configuration file and applies the log level.
func (a *app) setup(cmd *cobra.Command, c *config.Config) (logrus.FieldLogger, error) {
	if err := c.ReadFile(); err != nil {
		return nil, err
	}
	a.logger.SetOutput(cmd.ErrOrStderr())
	a.logger.SetLevel(c.LogLevel())
	return a.logger, nil
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "geotiff2geojson %s\n", a.build)
		},
	}
}

func setting(w io.Writer, name string, value interface{}) {
	fmt.Fprintf(w, "  %-14s %v\n", name+":", value)
}
